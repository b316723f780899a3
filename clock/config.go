package clock

import (
	"errors"

	"clockdriver/core"
	"clockdriver/regs"
)

var (
	ErrPLLMul         = errors.New("clock: unsupported PLL multiplier")
	ErrPLLDiv         = errors.New("clock: unsupported PLL divider")
	ErrPrescaler      = errors.New("clock: unsupported bus prescaler")
	ErrVCO            = errors.New("clock: PLL VCO above limit for voltage range")
	ErrSysclk         = errors.New("clock: system clock above limit for voltage range")
	ErrFlashLatency   = errors.New("clock: flash latency too low for HCLK")
	ErrVoltageRange   = errors.New("clock: unsupported voltage range")
	ErrAlreadyRunning = errors.New("clock: system clock already configured")
)

// Config is the clock topology. The firmware only ever uses DefaultConfig:
// HSI16 × 4 ÷ 2 = 32 MHz, AHB ÷1, APB1 ÷4, APB2 ÷2.
type Config struct {
	PLLMul  uint32
	PLLDiv  uint32
	AHBDiv  uint32
	APB1Div uint32
	APB2Div uint32

	VoltageRange uint32

	FlashLatency  uint32 // wait states, 0 or 1
	Prefetch      bool
	PreRead       bool
	DisableBuffer bool

	Wait core.WaitPolicy
}

// DefaultConfig returns the 32 MHz configuration
func DefaultConfig() Config {
	return Config{
		PLLMul:       4,
		PLLDiv:       2,
		AHBDiv:       1,
		APB1Div:      4,
		APB2Div:      2,
		VoltageRange: regs.VoltageRange1,
		FlashLatency: 1,
		Prefetch:     false,
		PreRead:      true,
		Wait:         core.Forever,
	}
}

type code struct {
	value uint32
	bits  uint32
}

// RM0367 §7.3.3 field encodings
var (
	pllMulCodes = []code{{3, 0}, {4, 1}, {6, 2}, {8, 3}, {12, 4}, {16, 5}, {24, 6}, {32, 7}, {48, 8}}
	pllDivCodes = []code{{2, 1}, {3, 2}, {4, 3}}
	ahbCodes    = []code{{1, 0}, {2, 8}, {4, 9}, {8, 10}, {16, 11}, {64, 12}, {128, 13}, {256, 14}, {512, 15}}
	apbCodes    = []code{{1, 0}, {2, 4}, {4, 5}, {8, 6}, {16, 7}}
)

func encode(table []code, value uint32) (uint32, bool) {
	for _, c := range table {
		if c.value == value {
			return c.bits, true
		}
	}
	return 0, false
}

func decode(table []code, bits uint32) uint32 {
	for _, c := range table {
		if c.bits == bits {
			return c.value
		}
	}
	return 0
}

// HPRE and PPRE treat every code below the first divider code as ÷1
func decodeAHB(bits uint32) uint32 {
	if bits < 8 {
		return 1
	}
	return decode(ahbCodes, bits)
}

func decodeAPB(bits uint32) uint32 {
	if bits < 4 {
		return 1
	}
	return decode(apbCodes, bits)
}

// limits per voltage range: max VCO, max SYSCLK, max HCLK at zero wait states
var rangeLimits = [4]struct {
	vco, sysclk, zeroWS uint32
}{
	regs.VoltageRange1: {96000000, 32000000, 16000000},
	regs.VoltageRange2: {48000000, 16000000, 8000000},
	regs.VoltageRange3: {24000000, 4200000, 4200000},
}

// Validate checks every field has a hardware encoding and the resulting
// frequencies are legal for the voltage range.
func (c Config) Validate() error {
	if _, ok := encode(pllMulCodes, c.PLLMul); !ok {
		return ErrPLLMul
	}
	if _, ok := encode(pllDivCodes, c.PLLDiv); !ok {
		return ErrPLLDiv
	}
	if _, ok := encode(ahbCodes, c.AHBDiv); !ok {
		return ErrPrescaler
	}
	if _, ok := encode(apbCodes, c.APB1Div); !ok {
		return ErrPrescaler
	}
	if _, ok := encode(apbCodes, c.APB2Div); !ok {
		return ErrPrescaler
	}
	if c.VoltageRange < regs.VoltageRange1 || c.VoltageRange > regs.VoltageRange3 {
		return ErrVoltageRange
	}
	lim := rangeLimits[c.VoltageRange]
	if regs.HSI16Value*c.PLLMul > lim.vco {
		return ErrVCO
	}
	t := c.Tree()
	if t.SYSCLK > lim.sysclk {
		return ErrSysclk
	}
	if t.HCLK > lim.zeroWS && c.FlashLatency == 0 {
		return ErrFlashLatency
	}
	return nil
}

// Tree returns the frequencies this configuration produces
func (c Config) Tree() Tree {
	return newTree(regs.HSI16Value*c.PLLMul/c.PLLDiv, c.AHBDiv, c.APB1Div, c.APB2Div)
}
