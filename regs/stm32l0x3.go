package regs

// STM32L0x3 peripheral base addresses (RM0367 §2.2.2)
const (
	TIM2Base   = 0x40000000
	TIM6Base   = 0x40001000
	USART2Base = 0x40004400
	PWRBase    = 0x40007000
	RCCBase    = 0x40021000
	FLASHBase  = 0x40022000
	GPIOABase  = 0x50000000
)

// Oscillator frequencies
const (
	HSI16Value = 16000000
	MSIBase    = 32768 // MSI range 0; range n runs at MSIBase << (n+1)
	HSEValue   = 8000000
)

// RCC register bits
const (
	RCC_CR_HSI16ON    = 1 << 0
	RCC_CR_HSI16RDYF  = 1 << 2
	RCC_CR_HSI16DIVEN = 1 << 3
	RCC_CR_HSI16DIVF  = 1 << 4
	RCC_CR_MSION      = 1 << 8
	RCC_CR_MSIRDY     = 1 << 9
	RCC_CR_HSEON      = 1 << 16
	RCC_CR_HSERDY     = 1 << 17
	RCC_CR_PLLON      = 1 << 24
	RCC_CR_PLLRDY     = 1 << 25

	RCC_ICSCR_MSIRANGE_Pos = 13
	RCC_ICSCR_MSIRANGE_Msk = 0x7 << RCC_ICSCR_MSIRANGE_Pos

	RCC_CFGR_SW_Pos     = 0
	RCC_CFGR_SW_Msk     = 0x3 << RCC_CFGR_SW_Pos
	RCC_CFGR_SWS_Pos    = 2
	RCC_CFGR_SWS_Msk    = 0x3 << RCC_CFGR_SWS_Pos
	RCC_CFGR_HPRE_Pos   = 4
	RCC_CFGR_HPRE_Msk   = 0xF << RCC_CFGR_HPRE_Pos
	RCC_CFGR_PPRE1_Pos  = 8
	RCC_CFGR_PPRE1_Msk  = 0x7 << RCC_CFGR_PPRE1_Pos
	RCC_CFGR_PPRE2_Pos  = 11
	RCC_CFGR_PPRE2_Msk  = 0x7 << RCC_CFGR_PPRE2_Pos
	RCC_CFGR_PLLSRC     = 1 << 16
	RCC_CFGR_PLLMUL_Pos = 18
	RCC_CFGR_PLLMUL_Msk = 0xF << RCC_CFGR_PLLMUL_Pos
	RCC_CFGR_PLLDIV_Pos = 22
	RCC_CFGR_PLLDIV_Msk = 0x3 << RCC_CFGR_PLLDIV_Pos

	RCC_APB1RSTR_PWRRST = 1 << 28

	RCC_IOPENR_IOPAEN = 1 << 0

	RCC_APB1ENR_TIM2EN   = 1 << 0
	RCC_APB1ENR_TIM6EN   = 1 << 4
	RCC_APB1ENR_USART2EN = 1 << 17
	RCC_APB1ENR_PWREN    = 1 << 28
)

// System clock switch values for CFGR.SW / CFGR.SWS
const (
	ClockSourceMSI   = 0
	ClockSourceHSI16 = 1
	ClockSourceHSE   = 2
	ClockSourcePLL   = 3
)

// PWR register bits
const (
	PWR_CR_VOS_Pos = 11
	PWR_CR_VOS_Msk = 0x3 << PWR_CR_VOS_Pos
	PWR_CSR_VOSF   = 1 << 4

	// Regulator ranges for PWR_CR.VOS
	VoltageRange1 = 1 // 1.8 V, up to 32 MHz
	VoltageRange2 = 2 // 1.5 V, up to 16 MHz
	VoltageRange3 = 3 // 1.2 V, up to 4.2 MHz
)

// FLASH_ACR bits
const (
	FLASH_ACR_LATENCY   = 1 << 0
	FLASH_ACR_PRFTEN    = 1 << 1
	FLASH_ACR_SLEEP_PD  = 1 << 3
	FLASH_ACR_RUN_PD    = 1 << 4
	FLASH_ACR_DISAB_BUF = 1 << 5
	FLASH_ACR_PRE_READ  = 1 << 6
)

// GPIO modes for MODER
const (
	GPIOModeInput     = 0
	GPIOModeOutput    = 1
	GPIOModeAlternate = 2
	GPIOModeAnalog    = 3
)

// General purpose and basic timer bits
const (
	TIM_CR1_CEN  = 1 << 0
	TIM_CR1_UDIS = 1 << 1
	TIM_CR1_URS  = 1 << 2
	TIM_CR1_OPM  = 1 << 3
	TIM_CR1_DIR  = 1 << 4
	TIM_CR1_ARPE = 1 << 7

	TIM_SR_UIF   = 1 << 0
	TIM_SR_CC1IF = 1 << 1

	TIM_EGR_UG = 1 << 0

	TIM_CCMR1_CC1S_Msk = 0x3
	TIM_CCMR1_OC1PE    = 1 << 3
	TIM_CCMR1_OC1M_Pos = 4
	TIM_CCMR1_OC1M_Msk = 0x7 << TIM_CCMR1_OC1M_Pos

	TIM_CCER_CC1E = 1 << 0
	TIM_CCER_CC1P = 1 << 1

	// Output compare modes for CCMR1.OC1M
	OCModeFrozen = 0
	OCModeActive = 1
	OCModePWM1   = 6 // active while CNT < CCR1
	OCModePWM2   = 7

	// MaxCount is the largest value of a 16-bit counter
	MaxCount = 0xFFFF
)

// USART bits
const (
	USART_CR1_UE  = 1 << 0
	USART_CR1_TE  = 1 << 3
	USART_ISR_TC  = 1 << 6
	USART_ISR_TXE = 1 << 7
)
