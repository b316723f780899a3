package sim

import (
	"clockdriver/regs"
)

// Timer emulates an up-counting TIM2/TIM6 with preloaded PSC, optional ARR
// and CCR1 preload, update events and channel 1 PWM output.
//
// Time advances one timer kernel clock per read of SR or CNT, or through Tick.
type Timer struct {
	name string
	m    *MCU
	gate uint32

	cr1, sr, egr, ccmr1, ccer, cnt, psc, arr, ccr1 *Reg

	count     uint32
	div       uint32
	activePSC uint32
	activeARR uint32
	activeCCR uint32
	clocks    uint64
	stuck     bool
}

func newTimer(m *MCU, name string, gate uint32) *Timer {
	t := &Timer{name: name, m: m, gate: gate, activeARR: regs.MaxCount}

	gated := func(old, v uint32) uint32 {
		if !m.apb1Enabled(t.gate) {
			return old
		}
		return v & 0xFFFF
	}

	t.cr1 = m.reg(name+".CR1", 0)
	t.cr1.write = gated

	t.sr = m.reg(name+".SR", 0)
	t.sr.write = func(old, v uint32) uint32 {
		if !m.apb1Enabled(t.gate) {
			return old
		}
		// rc_w0
		return old & v
	}
	t.sr.get = func() uint32 {
		t.tick()
		return t.sr.val
	}

	t.egr = m.reg(name+".EGR", 0)
	t.egr.write = func(old, v uint32) uint32 {
		if m.apb1Enabled(t.gate) && v&regs.TIM_EGR_UG != 0 {
			t.count = 0
			t.div = 0
			t.update()
		}
		return 0
	}

	t.ccmr1 = m.reg(name+".CCMR1", 0)
	t.ccmr1.write = gated
	t.ccer = m.reg(name+".CCER", 0)
	t.ccer.write = gated

	t.cnt = m.reg(name+".CNT", 0)
	t.cnt.write = func(old, v uint32) uint32 {
		if !m.apb1Enabled(t.gate) {
			return old
		}
		t.count = v & 0xFFFF
		return t.count
	}
	t.cnt.get = func() uint32 {
		t.tick()
		t.cnt.val = t.count
		return t.count
	}

	t.psc = m.reg(name+".PSC", 0)
	t.psc.write = gated

	t.arr = m.reg(name+".ARR", regs.MaxCount)
	t.arr.write = func(old, v uint32) uint32 {
		v = gated(old, v)
		if t.cr1.val&regs.TIM_CR1_ARPE == 0 {
			t.activeARR = v
		}
		return v
	}

	t.ccr1 = m.reg(name+".CCR1", 0)
	t.ccr1.write = func(old, v uint32) uint32 {
		v = gated(old, v)
		if t.ccmr1.val&regs.TIM_CCMR1_OC1PE == 0 {
			t.activeCCR = v
		}
		return v
	}
	return t
}

func (t *Timer) handle() *regs.TIM {
	return &regs.TIM{
		CR1:   t.cr1,
		SR:    t.sr,
		EGR:   t.egr,
		CCMR1: t.ccmr1,
		CCER:  t.ccer,
		CNT:   t.cnt,
		PSC:   t.psc,
		ARR:   t.arr,
		CCR1:  t.ccr1,
	}
}

func (t *Timer) running() bool {
	return t.m.apb1Enabled(t.gate) && t.cr1.val&regs.TIM_CR1_CEN != 0
}

// update is the update event: shadow registers load and UIF is raised
func (t *Timer) update() {
	t.activePSC = t.psc.val
	t.activeARR = t.arr.val
	t.activeCCR = t.ccr1.val
	if t.stuck || t.cr1.val&regs.TIM_CR1_UDIS != 0 {
		return
	}
	t.sr.val |= regs.TIM_SR_UIF
}

func (t *Timer) tick() {
	if !t.running() {
		return
	}
	t.clocks++
	if t.div < t.activePSC {
		t.div++
		return
	}
	t.div = 0
	if t.count >= t.activeARR {
		t.count = 0
		t.update()
		return
	}
	t.count++
}

// Tick advances the timer by n kernel clocks
func (t *Timer) Tick(n int) {
	for i := 0; i < n; i++ {
		t.tick()
	}
}

// Count returns the counter without advancing time
func (t *Timer) Count() uint32 {
	return t.count
}

// Clocks returns the number of kernel clocks elapsed while the counter ran
func (t *Timer) Clocks() uint64 {
	return t.clocks
}

// Prescaler returns the prescaler value currently in effect
func (t *Timer) Prescaler() uint32 {
	return t.activePSC
}

// Output reports the level of channel 1 in PWM mode 1: active while the
// counter is below the active compare value.
func (t *Timer) Output() bool {
	if !t.running() || t.ccer.val&regs.TIM_CCER_CC1E == 0 {
		return false
	}
	mode := (t.ccmr1.val & regs.TIM_CCMR1_OC1M_Msk) >> regs.TIM_CCMR1_OC1M_Pos
	if mode != regs.OCModePWM1 {
		return false
	}
	active := t.count < t.activeCCR
	if t.ccer.val&regs.TIM_CCER_CC1P != 0 {
		active = !active
	}
	return active
}

// Sample steps through periods full counter periods and returns the number
// of counter ticks the output was active and the total ticks sampled.
func (t *Timer) Sample(periods int) (active, total int) {
	ticks := periods * int(t.activeARR+1) * int(t.activePSC+1)
	for i := 0; i < ticks; i++ {
		if t.Output() {
			active++
		}
		total++
		t.tick()
	}
	return active, total
}
