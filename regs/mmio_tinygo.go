//go:build tinygo

package regs

import (
	"runtime/volatile"
	"sync/atomic"
	"unsafe"
)

var taken uint32

// reg maps the register at base+offset
func reg(base, offset uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(base + offset))
}

// Take returns the MMIO-backed peripherals. Only the first call succeeds;
// later calls return nil, false so no two drivers alias the same block.
func Take() (*Peripherals, bool) {
	if !atomic.CompareAndSwapUint32(&taken, 0, 1) {
		return nil, false
	}
	return &Peripherals{
		RCC: &RCC{
			CR:       reg(RCCBase, 0x00),
			ICSCR:    reg(RCCBase, 0x04),
			CFGR:     reg(RCCBase, 0x0C),
			APB1RSTR: reg(RCCBase, 0x28),
			IOPENR:   reg(RCCBase, 0x2C),
			APB1ENR:  reg(RCCBase, 0x38),
		},
		PWR: &PWR{
			CR:  reg(PWRBase, 0x00),
			CSR: reg(PWRBase, 0x04),
		},
		FLASH: &FLASH{
			ACR: reg(FLASHBase, 0x00),
		},
		GPIOA: &GPIO{
			MODER:   reg(GPIOABase, 0x00),
			OTYPER:  reg(GPIOABase, 0x04),
			OSPEEDR: reg(GPIOABase, 0x08),
			PUPDR:   reg(GPIOABase, 0x0C),
			AFRL:    reg(GPIOABase, 0x20),
			AFRH:    reg(GPIOABase, 0x24),
		},
		TIM2:   timerAt(TIM2Base),
		TIM6:   timerAt(TIM6Base),
		USART2: &USART{
			CR1: reg(USART2Base, 0x00),
			BRR: reg(USART2Base, 0x0C),
			ISR: reg(USART2Base, 0x1C),
			TDR: reg(USART2Base, 0x28),
		},
	}, true
}

func timerAt(base uintptr) *TIM {
	return &TIM{
		CR1:   reg(base, 0x00),
		SR:    reg(base, 0x10),
		EGR:   reg(base, 0x14),
		CCMR1: reg(base, 0x18),
		CCER:  reg(base, 0x20),
		CNT:   reg(base, 0x24),
		PSC:   reg(base, 0x28),
		ARR:   reg(base, 0x2C),
		CCR1:  reg(base, 0x34),
	}
}
