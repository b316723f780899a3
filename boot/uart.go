package boot

import (
	"errors"

	"clockdriver/core"
	"clockdriver/protocol"
	"clockdriver/regs"
)

// USART2 transmit pin on the Nucleo: PA2, AF4, wired to the ST-LINK VCP
const (
	ReportPin     = 2
	ReportAltFunc = 4
)

var ErrBaud = errors.New("boot: baud rate not reachable from PCLK")

// ReportPort is a transmit-only USART carrying report frames
type ReportPort struct {
	usart    *regs.USART
	gate     regs.Gate
	port     *regs.GPIO
	portGate regs.Gate
	pin      uint8
	af       uint32
	wait     core.WaitPolicy
	seq      uint8
}

// NewReportPort wraps usart and its TX pin
func NewReportPort(usart *regs.USART, gate regs.Gate, port *regs.GPIO, portGate regs.Gate, pin uint8, af uint32, wait core.WaitPolicy) *ReportPort {
	return &ReportPort{
		usart:    usart,
		gate:     gate,
		port:     port,
		portGate: portGate,
		pin:      pin,
		af:       af,
		wait:     wait,
	}
}

// Configure enables the transmitter at baud, 8N1, oversampling by 16, from
// the peripheral clock pclk.
func (u *ReportPort) Configure(pclk, baud uint32) error {
	if baud == 0 {
		return ErrBaud
	}
	brr := (pclk + baud/2) / baud
	if brr < 16 || brr > regs.MaxCount {
		return ErrBaud
	}

	u.portGate.Enable()
	u.port.SetMode(u.pin, regs.GPIOModeAlternate)
	u.port.SetAltFunc(u.pin, u.af)

	u.gate.Enable()
	u.usart.CR1.Set(0)
	u.usart.BRR.Set(brr)
	u.usart.CR1.Set(regs.USART_CR1_TE | regs.USART_CR1_UE)
	return nil
}

// Write sends data byte by byte, waiting for an empty transmit register
func (u *ReportPort) Write(data []byte) (int, error) {
	for i, b := range data {
		_, err := u.wait.Until(core.SiteReportTXE, func() bool {
			return regs.HasBits(u.usart.ISR, regs.USART_ISR_TXE)
		})
		if err != nil {
			return i, err
		}
		u.usart.TDR.Set(uint32(b))
	}
	return len(data), nil
}

// WriteString sends s as one text line. It has the core.DebugWriter signature.
func (u *ReportPort) WriteString(s string) {
	u.Write([]byte(s))
	u.Write([]byte("\r\n"))
}

// SendReport frames r and sends it, preceded by a sync byte so a receiver
// that joined mid-stream can lock on.
func (u *ReportPort) SendReport(r *protocol.BootReport) error {
	frame := make([]byte, 0, protocol.MessageLengthMax+1)
	frame = append(frame, protocol.MessageValueSync)
	frame = protocol.AppendBootReport(frame, u.seq, r)
	u.seq = (u.seq + 1) & protocol.MessageSeqMask
	_, err := u.Write(frame)
	return err
}
