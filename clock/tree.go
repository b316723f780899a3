package clock

import (
	"clockdriver/core"
	"clockdriver/regs"
)

// Tree holds the bus and timer kernel frequencies in Hz
type Tree struct {
	SYSCLK   uint32
	HCLK     uint32
	PCLK1    uint32
	PCLK2    uint32
	TIMPCLK1 uint32 // APB1 timers (TIM2, TIM6)
	TIMPCLK2 uint32 // APB2 timers
}

func newTree(sysclk, ahbDiv, apb1Div, apb2Div uint32) Tree {
	t := Tree{SYSCLK: sysclk}
	t.HCLK = sysclk / ahbDiv
	t.PCLK1 = t.HCLK / apb1Div
	t.PCLK2 = t.HCLK / apb2Div
	t.TIMPCLK1 = timerClock(t.PCLK1, apb1Div)
	t.TIMPCLK2 = timerClock(t.PCLK2, apb2Div)
	return t
}

// timerClock applies the fixed ×2 stage in front of the timers whenever the
// APB prescaler divides.
func timerClock(pclk, apbDiv uint32) uint32 {
	if apbDiv == 1 {
		return pclk
	}
	return pclk * 2
}

// String renders the tree for the debug log
func (t Tree) String() string {
	return "sysclk=" + core.Hz(t.SYSCLK) +
		" hclk=" + core.Hz(t.HCLK) +
		" pclk1=" + core.Hz(t.PCLK1) +
		" pclk2=" + core.Hz(t.PCLK2) +
		" tim1=" + core.Hz(t.TIMPCLK1) +
		" tim2=" + core.Hz(t.TIMPCLK2)
}

// SysclkFromRegisters derives SYSCLK from the active source reported in SWS
func SysclkFromRegisters(rcc *regs.RCC) uint32 {
	cfgr := rcc.CFGR.Get()
	cr := rcc.CR.Get()
	switch (cfgr & regs.RCC_CFGR_SWS_Msk) >> regs.RCC_CFGR_SWS_Pos {
	case regs.ClockSourceMSI:
		msirange := (rcc.ICSCR.Get() & regs.RCC_ICSCR_MSIRANGE_Msk) >> regs.RCC_ICSCR_MSIRANGE_Pos
		return regs.MSIBase << (msirange + 1)
	case regs.ClockSourceHSI16:
		return hsi16(cr)
	case regs.ClockSourceHSE:
		return regs.HSEValue
	default:
		mul := decode(pllMulCodes, (cfgr&regs.RCC_CFGR_PLLMUL_Msk)>>regs.RCC_CFGR_PLLMUL_Pos)
		div := decode(pllDivCodes, (cfgr&regs.RCC_CFGR_PLLDIV_Msk)>>regs.RCC_CFGR_PLLDIV_Pos)
		if div == 0 {
			return 0
		}
		in := uint32(regs.HSEValue)
		if cfgr&regs.RCC_CFGR_PLLSRC == 0 {
			in = hsi16(cr)
		}
		return in * mul / div
	}
}

func hsi16(cr uint32) uint32 {
	if cr&regs.RCC_CR_HSI16DIVF != 0 {
		return regs.HSI16Value / 4
	}
	return regs.HSI16Value
}

// TreeFromRegisters reads the whole tree back from RCC
func TreeFromRegisters(rcc *regs.RCC) Tree {
	cfgr := rcc.CFGR.Get()
	return newTree(SysclkFromRegisters(rcc),
		decodeAHB((cfgr&regs.RCC_CFGR_HPRE_Msk)>>regs.RCC_CFGR_HPRE_Pos),
		decodeAPB((cfgr&regs.RCC_CFGR_PPRE1_Msk)>>regs.RCC_CFGR_PPRE1_Pos),
		decodeAPB((cfgr&regs.RCC_CFGR_PPRE2_Msk)>>regs.RCC_CFGR_PPRE2_Pos))
}

// CoreClockFromRegisters is the HCLK the registers currently produce.
// The sequencer publishes it through core.SetCoreClock after the switch.
func CoreClockFromRegisters(rcc *regs.RCC) uint32 {
	return TreeFromRegisters(rcc).HCLK
}
