package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockdriver/core"
	"clockdriver/regs"
	"clockdriver/regs/sim"
)

func TestResetTree(t *testing.T) {
	m := sim.New()
	assert.Equal(t, uint32(core.ResetCoreClock), CoreClockFromRegisters(m.Peripherals().RCC))
}

func TestTreeFromHSI16Divided(t *testing.T) {
	m := sim.New()
	rcc := m.Peripherals().RCC
	regs.SetBits(rcc.CR, regs.RCC_CR_HSI16ON|regs.RCC_CR_HSI16DIVEN)
	for !regs.HasBits(rcc.CR, regs.RCC_CR_HSI16RDYF) {
	}
	regs.ReplaceBits(rcc.CFGR, regs.ClockSourceHSI16, regs.RCC_CFGR_SW_Msk, regs.RCC_CFGR_SW_Pos)
	regs.ReplaceBits(rcc.CFGR, 9, regs.RCC_CFGR_HPRE_Msk, regs.RCC_CFGR_HPRE_Pos)

	for i := 0; i < 10 && SysclkFromRegisters(rcc) != 4000000; i++ {
	}
	tree := TreeFromRegisters(rcc)
	require.Equal(t, uint32(4000000), tree.SYSCLK)
	assert.Equal(t, uint32(1000000), tree.HCLK)
	assert.Equal(t, uint32(1000000), tree.PCLK1)
	assert.Equal(t, uint32(1000000), tree.TIMPCLK1)
}

func TestTreeString(t *testing.T) {
	assert.Equal(t, "sysclk=32MHz hclk=32MHz pclk1=8MHz pclk2=16MHz tim1=16MHz tim2=32MHz",
		DefaultConfig().Tree().String())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"default", func(c *Config) {}, nil},
		{"pll mul", func(c *Config) { c.PLLMul = 5 }, ErrPLLMul},
		{"pll div", func(c *Config) { c.PLLDiv = 5 }, ErrPLLDiv},
		{"ahb", func(c *Config) { c.AHBDiv = 3 }, ErrPrescaler},
		{"apb1", func(c *Config) { c.APB1Div = 32 }, ErrPrescaler},
		{"apb2", func(c *Config) { c.APB2Div = 0 }, ErrPrescaler},
		{"range", func(c *Config) { c.VoltageRange = 0 }, ErrVoltageRange},
		{"vco", func(c *Config) { c.PLLMul = 8 }, ErrVCO},
		{"sysclk", func(c *Config) { c.PLLMul = 6 }, ErrSysclk},
		{"range 2 vco", func(c *Config) { c.VoltageRange = regs.VoltageRange2 }, ErrVCO},
		{"zero wait states", func(c *Config) { c.FlashLatency = 0 }, ErrFlashLatency},
		{"zero wait states at 16MHz", func(c *Config) { c.FlashLatency = 0; c.AHBDiv = 2 }, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}
