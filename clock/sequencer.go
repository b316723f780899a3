// Package clock brings the STM32L0x3 from its MSI reset clock up to the PLL
// driven by HSI16 and describes the resulting clock tree.
package clock

import (
	"clockdriver/core"
	"clockdriver/regs"
)

// Sequencer owns the oscillator, power and flash controllers during startup
type Sequencer struct {
	rcc   *regs.RCC
	pwr   *regs.PWR
	flash *regs.FLASH
	cfg   Config
	tree  Tree
	done  bool
}

// New creates a sequencer for cfg. Use DefaultConfig for the fixed 32 MHz setup.
func New(rcc *regs.RCC, pwr *regs.PWR, flash *regs.FLASH, cfg Config) *Sequencer {
	return &Sequencer{
		rcc:   rcc,
		pwr:   pwr,
		flash: flash,
		cfg:   cfg,
	}
}

// Tree returns the clock tree left behind by Configure
func (s *Sequencer) Tree() Tree {
	return s.tree
}

// Configure switches SYSCLK to the PLL. Each step waits for its hardware
// acknowledgement before the next one starts; the order is fixed:
//
//  1. HSI16 on
//  2. power interface reset, regulator range
//  3. flash wait states (before the frequency goes up)
//  4. AHB/APB prescalers
//  5. PLL source, multiplier, divider
//  6. PLL on
//  7. SYSCLK switch to PLL
//  8. core clock published
//
// With core.Forever (the default) a readiness flag that never comes keeps
// Configure spinning. With a bounded policy it returns a *core.Fault.
func (s *Sequencer) Configure() error {
	if s.done {
		return ErrAlreadyRunning
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	wait := s.cfg.Wait

	// 1) HSI16
	regs.SetBits(s.rcc.CR, regs.RCC_CR_HSI16ON)
	polls, err := wait.Until(core.SiteHSI, func() bool {
		return regs.HasBits(s.rcc.CR, regs.RCC_CR_HSI16RDYF)
	})
	if err != nil {
		return err
	}
	core.RecordEvent(core.EvtHSIReady, polls, regs.HSI16Value)

	// 2) PWR interface and regulator
	regs.SetBits(s.rcc.APB1RSTR, regs.RCC_APB1RSTR_PWRRST)
	regs.ClearBits(s.rcc.APB1RSTR, regs.RCC_APB1RSTR_PWRRST)
	regs.SetBits(s.rcc.APB1ENR, regs.RCC_APB1ENR_PWREN)
	regs.ReplaceBits(s.pwr.CR, s.cfg.VoltageRange, regs.PWR_CR_VOS_Msk, regs.PWR_CR_VOS_Pos)
	polls, err = wait.Until(core.SiteRegulator, func() bool {
		return !regs.HasBits(s.pwr.CSR, regs.PWR_CSR_VOSF)
	})
	if err != nil {
		return err
	}
	core.RecordEvent(core.EvtRegulatorReady, polls, s.cfg.VoltageRange)

	// 3) Flash must be slowed down before the clock speeds up
	regs.ReplaceBits(s.flash.ACR, s.cfg.FlashLatency, regs.FLASH_ACR_LATENCY, 0)
	setFlag(s.flash.ACR, regs.FLASH_ACR_PRFTEN, s.cfg.Prefetch)
	setFlag(s.flash.ACR, regs.FLASH_ACR_PRE_READ, s.cfg.PreRead)
	setFlag(s.flash.ACR, regs.FLASH_ACR_DISAB_BUF, s.cfg.DisableBuffer)
	core.RecordEvent(core.EvtFlashLatency, 0, s.flash.ACR.Get())

	// 4) Bus prescalers
	hpre, _ := encode(ahbCodes, s.cfg.AHBDiv)
	ppre1, _ := encode(apbCodes, s.cfg.APB1Div)
	ppre2, _ := encode(apbCodes, s.cfg.APB2Div)
	regs.ReplaceBits(s.rcc.CFGR, hpre, regs.RCC_CFGR_HPRE_Msk, regs.RCC_CFGR_HPRE_Pos)
	regs.ReplaceBits(s.rcc.CFGR, ppre1, regs.RCC_CFGR_PPRE1_Msk, regs.RCC_CFGR_PPRE1_Pos)
	regs.ReplaceBits(s.rcc.CFGR, ppre2, regs.RCC_CFGR_PPRE2_Msk, regs.RCC_CFGR_PPRE2_Pos)
	core.RecordEvent(core.EvtPrescalers, 0, s.cfg.AHBDiv<<16|s.cfg.APB1Div<<8|s.cfg.APB2Div)

	// 5) PLL from HSI16
	mul, _ := encode(pllMulCodes, s.cfg.PLLMul)
	div, _ := encode(pllDivCodes, s.cfg.PLLDiv)
	regs.ClearBits(s.rcc.CFGR, regs.RCC_CFGR_PLLSRC)
	regs.ReplaceBits(s.rcc.CFGR, mul, regs.RCC_CFGR_PLLMUL_Msk, regs.RCC_CFGR_PLLMUL_Pos)
	regs.ReplaceBits(s.rcc.CFGR, div, regs.RCC_CFGR_PLLDIV_Msk, regs.RCC_CFGR_PLLDIV_Pos)
	core.RecordEvent(core.EvtPLLConfigured, 0, s.cfg.PLLMul<<8|s.cfg.PLLDiv)

	// 6) PLL lock
	regs.SetBits(s.rcc.CR, regs.RCC_CR_PLLON)
	polls, err = wait.Until(core.SitePLL, func() bool {
		return regs.HasBits(s.rcc.CR, regs.RCC_CR_PLLRDY)
	})
	if err != nil {
		return err
	}
	core.RecordEvent(core.EvtPLLReady, polls, 0)

	// 7) The switch is asynchronous: SWS follows SW when the mux has moved
	regs.ReplaceBits(s.rcc.CFGR, regs.ClockSourcePLL, regs.RCC_CFGR_SW_Msk, regs.RCC_CFGR_SW_Pos)
	polls, err = wait.Until(core.SiteSysclk, func() bool {
		return s.rcc.CFGR.Get()&regs.RCC_CFGR_SWS_Msk == regs.ClockSourcePLL<<regs.RCC_CFGR_SWS_Pos
	})
	if err != nil {
		return err
	}
	core.RecordEvent(core.EvtSysclkSwitched, polls, regs.ClockSourcePLL)

	// 8) Anything asking for the core clock from now on gets the new value
	s.tree = TreeFromRegisters(s.rcc)
	core.SetCoreClock(s.tree.HCLK)
	core.RecordEvent(core.EvtCoreClock, 0, s.tree.HCLK)
	core.DebugPrintln("[CLOCK] " + s.tree.String())

	s.done = true
	return nil
}

// Active reports whether SWS currently shows the PLL as system clock
func (s *Sequencer) Active() bool {
	return s.rcc.CFGR.Get()&regs.RCC_CFGR_SWS_Msk == regs.ClockSourcePLL<<regs.RCC_CFGR_SWS_Pos
}

func setFlag(r regs.Register, mask uint32, on bool) {
	if on {
		regs.SetBits(r, mask)
	} else {
		regs.ClearBits(r, mask)
	}
}
