// Package sim emulates the STM32L0x3 registers that the clock and timer
// drivers touch, including the hardware side of every handshake: ready flags
// that follow their enable bits, SWS following SW, the regulator busy flag,
// timers that count while their status register is polled, and rc_w0 status
// bits. It lets the drivers run unmodified on the host.
package sim

import (
	"clockdriver/regs"
)

// Sites that can be stuck with MCU.Stick to emulate a readiness condition
// that never comes true.
const (
	StuckHSI     = "hsi"
	StuckVOS     = "vos"
	StuckPLL     = "pll"
	StuckSWS     = "sws"
	StuckTIM2UIF = "tim2.uif"
	StuckTIM6UIF = "tim6.uif"
)

// Reset values (RM0367)
const (
	resetRCC_CR    = regs.RCC_CR_MSION | regs.RCC_CR_MSIRDY
	resetRCC_ICSCR = 5 << regs.RCC_ICSCR_MSIRANGE_Pos
	resetPWR_CR    = regs.VoltageRange2 << regs.PWR_CR_VOS_Pos
	resetGPIOA     = 0xEBFFFCFF
)

// DefaultLatency is the number of polls a ready flag lags its enable bit
const DefaultLatency = 3

// Write is one entry of the register write log
type Write struct {
	Reg   string
	Value uint32
}

// Reg is a simulated register. Hooks model the hardware side.
type Reg struct {
	name  string
	m     *MCU
	val   uint32
	get   func() uint32
	write func(old, v uint32) uint32
}

// Get reads the register, letting the hardware advance first
func (r *Reg) Get() uint32 {
	if r.get != nil {
		return r.get()
	}
	return r.val
}

// Set writes the register and records the stored value
func (r *Reg) Set(v uint32) {
	if r.write != nil {
		v = r.write(r.val, v)
	}
	r.val = v
	r.m.writes = append(r.m.writes, Write{Reg: r.name, Value: v})
}

// Peek returns the stored value without side effects
func (r *Reg) Peek() uint32 {
	return r.val
}

// Poke stores v without side effects or logging
func (r *Reg) Poke(v uint32) {
	r.val = v
}

// Name returns the register name, e.g. "RCC.CFGR"
func (r *Reg) Name() string {
	return r.name
}

// MCU is a simulated STM32L053
type MCU struct {
	// Latency is the number of polls a ready flag lags its enable bit.
	Latency int

	regs   map[string]*Reg
	writes []Write
	stuck  map[string]bool

	hsiWait int
	pllWait int
	swsWait int
	vosWait int

	TIM2 *Timer
	TIM6 *Timer

	tx []byte

	periph *regs.Peripherals
}

// New returns an MCU in its power-on state: MSI at range 5 is the system clock
func New() *MCU {
	m := &MCU{
		Latency: DefaultLatency,
		regs:    make(map[string]*Reg),
		stuck:   make(map[string]bool),
	}
	m.buildRCC()
	m.buildPWR()
	m.reg("FLASH.ACR", 0)
	m.buildGPIOA()
	m.TIM2 = newTimer(m, "TIM2", regs.RCC_APB1ENR_TIM2EN)
	m.TIM6 = newTimer(m, "TIM6", regs.RCC_APB1ENR_TIM6EN)
	m.buildUSART2()
	return m
}

func (m *MCU) reg(name string, reset uint32) *Reg {
	r := &Reg{name: name, m: m, val: reset}
	m.regs[name] = r
	return r
}

// Reg returns the named register, e.g. "TIM2.ARR". It panics on unknown names.
func (m *MCU) Reg(name string) *Reg {
	r, ok := m.regs[name]
	if !ok {
		panic("sim: unknown register " + name)
	}
	return r
}

// Stick makes the readiness condition at site never become true
func (m *MCU) Stick(site string) {
	m.stuck[site] = true
	switch site {
	case StuckTIM2UIF:
		m.TIM2.stuck = true
	case StuckTIM6UIF:
		m.TIM6.stuck = true
	}
}

// Writes returns the register write log in order
func (m *MCU) Writes() []Write {
	return m.writes
}

// FirstWrite returns the index in the write log of the first write to reg
// whose value satisfies v&mask == want, or -1.
func (m *MCU) FirstWrite(reg string, mask, want uint32) int {
	for i, w := range m.writes {
		if w.Reg == reg && w.Value&mask == want {
			return i
		}
	}
	return -1
}

// CountWrites returns how many writes to reg stored exactly value
func (m *MCU) CountWrites(reg string, value uint32) int {
	n := 0
	for _, w := range m.writes {
		if w.Reg == reg && w.Value == value {
			n++
		}
	}
	return n
}

// ResetLog clears the write log
func (m *MCU) ResetLog() {
	m.writes = m.writes[:0]
}

// TX returns every byte written to USART2 while the transmitter was enabled
func (m *MCU) TX() []byte {
	return m.tx
}

// Peripherals returns register handles backed by this MCU. The same set is
// returned on every call.
func (m *MCU) Peripherals() *regs.Peripherals {
	if m.periph != nil {
		return m.periph
	}
	m.periph = &regs.Peripherals{
		RCC: &regs.RCC{
			CR:       m.Reg("RCC.CR"),
			ICSCR:    m.Reg("RCC.ICSCR"),
			CFGR:     m.Reg("RCC.CFGR"),
			APB1RSTR: m.Reg("RCC.APB1RSTR"),
			IOPENR:   m.Reg("RCC.IOPENR"),
			APB1ENR:  m.Reg("RCC.APB1ENR"),
		},
		PWR: &regs.PWR{
			CR:  m.Reg("PWR.CR"),
			CSR: m.Reg("PWR.CSR"),
		},
		FLASH: &regs.FLASH{
			ACR: m.Reg("FLASH.ACR"),
		},
		GPIOA: &regs.GPIO{
			MODER:   m.Reg("GPIOA.MODER"),
			OTYPER:  m.Reg("GPIOA.OTYPER"),
			OSPEEDR: m.Reg("GPIOA.OSPEEDR"),
			PUPDR:   m.Reg("GPIOA.PUPDR"),
			AFRL:    m.Reg("GPIOA.AFRL"),
			AFRH:    m.Reg("GPIOA.AFRH"),
		},
		TIM2: m.TIM2.handle(),
		TIM6: m.TIM6.handle(),
		USART2: &regs.USART{
			CR1: m.Reg("USART2.CR1"),
			BRR: m.Reg("USART2.BRR"),
			ISR: m.Reg("USART2.ISR"),
			TDR: m.Reg("USART2.TDR"),
		},
	}
	return m.periph
}

func (m *MCU) apb1Enabled(mask uint32) bool {
	return m.regs["RCC.APB1ENR"].val&mask != 0
}

func (m *MCU) buildRCC() {
	const roCR = regs.RCC_CR_HSI16RDYF | regs.RCC_CR_HSI16DIVF | regs.RCC_CR_MSIRDY |
		regs.RCC_CR_HSERDY | regs.RCC_CR_PLLRDY

	cr := m.reg("RCC.CR", resetRCC_CR)
	cr.write = func(old, v uint32) uint32 {
		v = v&^roCR | old&roCR
		if v&regs.RCC_CR_HSI16ON == 0 {
			v &^= regs.RCC_CR_HSI16RDYF
		} else if old&regs.RCC_CR_HSI16ON == 0 {
			m.hsiWait = m.Latency
		}
		if v&regs.RCC_CR_PLLON == 0 {
			v &^= regs.RCC_CR_PLLRDY
		} else if old&regs.RCC_CR_PLLON == 0 {
			m.pllWait = m.Latency
		}
		if v&regs.RCC_CR_HSI16DIVEN != 0 {
			v |= regs.RCC_CR_HSI16DIVF
		} else {
			v &^= regs.RCC_CR_HSI16DIVF
		}
		return v
	}
	cr.get = func() uint32 {
		m.stepOscillators()
		return cr.val
	}

	m.reg("RCC.ICSCR", resetRCC_ICSCR)

	cfgr := m.reg("RCC.CFGR", 0)
	cfgr.write = func(old, v uint32) uint32 {
		v = v&^regs.RCC_CFGR_SWS_Msk | old&regs.RCC_CFGR_SWS_Msk
		if v&regs.RCC_CFGR_SW_Msk != old&regs.RCC_CFGR_SW_Msk {
			m.swsWait = m.Latency
		}
		return v
	}
	cfgr.get = func() uint32 {
		m.stepSwitch()
		return cfgr.val
	}

	rst := m.reg("RCC.APB1RSTR", 0)
	rst.write = func(old, v uint32) uint32 {
		if v&regs.RCC_APB1RSTR_PWRRST != 0 {
			m.regs["PWR.CR"].val = resetPWR_CR
			m.regs["PWR.CSR"].val = 0
		}
		return v
	}

	m.reg("RCC.IOPENR", 0)
	m.reg("RCC.APB1ENR", 0)
}

func (m *MCU) stepOscillators() {
	cr := m.regs["RCC.CR"]
	v := cr.val
	if v&regs.RCC_CR_HSI16ON != 0 && v&regs.RCC_CR_HSI16RDYF == 0 && !m.stuck[StuckHSI] {
		if m.hsiWait > 0 {
			m.hsiWait--
		} else {
			v |= regs.RCC_CR_HSI16RDYF
		}
	}
	if v&regs.RCC_CR_PLLON != 0 && v&regs.RCC_CR_PLLRDY == 0 && !m.stuck[StuckPLL] && m.pllInputReady(v) {
		if m.pllWait > 0 {
			m.pllWait--
		} else {
			v |= regs.RCC_CR_PLLRDY
		}
	}
	cr.val = v
}

func (m *MCU) pllInputReady(cr uint32) bool {
	if m.regs["RCC.CFGR"].val&regs.RCC_CFGR_PLLSRC != 0 {
		return cr&regs.RCC_CR_HSERDY != 0
	}
	return cr&regs.RCC_CR_HSI16RDYF != 0
}

func (m *MCU) stepSwitch() {
	cfgr := m.regs["RCC.CFGR"]
	sw := cfgr.val & regs.RCC_CFGR_SW_Msk
	sws := (cfgr.val & regs.RCC_CFGR_SWS_Msk) >> regs.RCC_CFGR_SWS_Pos
	if sw == sws || m.stuck[StuckSWS] {
		return
	}
	cr := m.regs["RCC.CR"].val
	var ready bool
	switch sw {
	case regs.ClockSourceMSI:
		ready = cr&regs.RCC_CR_MSIRDY != 0
	case regs.ClockSourceHSI16:
		ready = cr&regs.RCC_CR_HSI16RDYF != 0
	case regs.ClockSourceHSE:
		ready = cr&regs.RCC_CR_HSERDY != 0
	case regs.ClockSourcePLL:
		ready = cr&regs.RCC_CR_PLLRDY != 0
	}
	if !ready {
		return
	}
	if m.swsWait > 0 {
		m.swsWait--
		return
	}
	cfgr.val = cfgr.val&^regs.RCC_CFGR_SWS_Msk | sw<<regs.RCC_CFGR_SWS_Pos
}

func (m *MCU) buildPWR() {
	cr := m.reg("PWR.CR", resetPWR_CR)
	csr := m.reg("PWR.CSR", 0)
	cr.write = func(old, v uint32) uint32 {
		// The interface ignores writes while its clock is gated
		if !m.apb1Enabled(regs.RCC_APB1ENR_PWREN) {
			return old
		}
		if v&regs.PWR_CR_VOS_Msk != old&regs.PWR_CR_VOS_Msk {
			csr.val |= regs.PWR_CSR_VOSF
			m.vosWait = m.Latency
		}
		return v
	}
	csr.write = func(old, v uint32) uint32 {
		return old
	}
	csr.get = func() uint32 {
		if csr.val&regs.PWR_CSR_VOSF != 0 && !m.stuck[StuckVOS] {
			if m.vosWait > 0 {
				m.vosWait--
			} else {
				csr.val &^= regs.PWR_CSR_VOSF
			}
		}
		return csr.val
	}
}

func (m *MCU) buildGPIOA() {
	gated := func(old, v uint32) uint32 {
		if m.regs["RCC.IOPENR"].val&regs.RCC_IOPENR_IOPAEN == 0 {
			return old
		}
		return v
	}
	m.reg("GPIOA.MODER", resetGPIOA).write = gated
	m.reg("GPIOA.OTYPER", 0).write = gated
	m.reg("GPIOA.OSPEEDR", 0).write = gated
	m.reg("GPIOA.PUPDR", 0).write = gated
	m.reg("GPIOA.AFRL", 0).write = gated
	m.reg("GPIOA.AFRH", 0).write = gated
}

func (m *MCU) buildUSART2() {
	gated := func(old, v uint32) uint32 {
		if !m.apb1Enabled(regs.RCC_APB1ENR_USART2EN) {
			return old
		}
		return v
	}
	cr1 := m.reg("USART2.CR1", 0)
	cr1.write = gated
	m.reg("USART2.BRR", 0).write = gated
	m.reg("USART2.ISR", regs.USART_ISR_TXE|regs.USART_ISR_TC).write = func(old, v uint32) uint32 {
		return old
	}
	m.reg("USART2.TDR", 0).write = func(old, v uint32) uint32 {
		const on = regs.USART_CR1_UE | regs.USART_CR1_TE
		if m.apb1Enabled(regs.RCC_APB1ENR_USART2EN) && cr1.val&on == on {
			m.tx = append(m.tx, byte(v))
		}
		return v & 0x1FF
	}
}
