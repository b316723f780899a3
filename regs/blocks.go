package regs

// RCC is the reset and clock control block
type RCC struct {
	CR       Register // 0x00
	ICSCR    Register // 0x04
	CFGR     Register // 0x0C
	APB1RSTR Register // 0x28
	IOPENR   Register // 0x2C
	APB1ENR  Register // 0x38
}

// APB1Gate returns the APB1ENR clock-enable handle for mask
func (r *RCC) APB1Gate(mask uint32) Gate {
	return Gate{Reg: r.APB1ENR, Mask: mask}
}

// IOPGate returns the IOPENR clock-enable handle for mask
func (r *RCC) IOPGate(mask uint32) Gate {
	return Gate{Reg: r.IOPENR, Mask: mask}
}

// PWR is the power controller
type PWR struct {
	CR  Register // 0x00
	CSR Register // 0x04
}

// FLASH is the NVM interface; only the access control register is used
type FLASH struct {
	ACR Register // 0x00
}

// GPIO is one I/O port
type GPIO struct {
	MODER   Register // 0x00
	OTYPER  Register // 0x04
	OSPEEDR Register // 0x08
	PUPDR   Register // 0x0C
	AFRL    Register // 0x20
	AFRH    Register // 0x24
}

// SetMode sets the 2-bit MODER field of pin
func (g *GPIO) SetMode(pin uint8, mode uint32) {
	Field{Pos: pin * 2, Width: 2}.Set(g.MODER, mode)
}

// Mode returns the MODER field of pin
func (g *GPIO) Mode(pin uint8) uint32 {
	return Field{Pos: pin * 2, Width: 2}.Get(g.MODER)
}

// SetAltFunc binds pin to alternate function af
func (g *GPIO) SetAltFunc(pin uint8, af uint32) {
	reg := g.AFRL
	if pin >= 8 {
		reg = g.AFRH
		pin -= 8
	}
	Field{Pos: pin * 4, Width: 4}.Set(reg, af)
}

// AltFunc returns the alternate function selected for pin
func (g *GPIO) AltFunc(pin uint8) uint32 {
	reg := g.AFRL
	if pin >= 8 {
		reg = g.AFRH
		pin -= 8
	}
	return Field{Pos: pin * 4, Width: 4}.Get(reg)
}

// TIM covers both the general purpose (TIM2) and basic (TIM6) timers.
// TIM6 leaves the capture/compare registers unconnected.
type TIM struct {
	CR1   Register // 0x00
	SR    Register // 0x10
	EGR   Register // 0x14
	CCMR1 Register // 0x18
	CCER  Register // 0x20
	CNT   Register // 0x24
	PSC   Register // 0x28
	ARR   Register // 0x2C
	CCR1  Register // 0x34
}

// ClearUpdate clears UIF. SR bits are rc_w0: writing 1 leaves them alone.
func (t *TIM) ClearUpdate() {
	t.SR.Set(^uint32(TIM_SR_UIF))
}

// USART is used transmit-only for the boot report
type USART struct {
	CR1 Register // 0x00
	BRR Register // 0x0C
	ISR Register // 0x1C
	TDR Register // 0x28
}

// Peripherals holds one handle per block. Whoever holds it owns the hardware.
type Peripherals struct {
	RCC    *RCC
	PWR    *PWR
	FLASH  *FLASH
	GPIOA  *GPIO
	TIM2   *TIM
	TIM6   *TIM
	USART2 *USART
}
