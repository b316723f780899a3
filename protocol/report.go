package protocol

import "errors"

// Message IDs
const (
	MsgBootReport = 1
)

// Wait site IDs carried in a report
const (
	SiteHSI       = 1
	SiteRegulator = 2
	SitePLL       = 3
	SiteSysclk    = 4
	SiteDelayUIF  = 5
	SitePWMUIF    = 6
)

// SiteName returns a printable name for a wait site ID
func SiteName(id uint8) string {
	switch id {
	case SiteHSI:
		return "hsi16_ready"
	case SiteRegulator:
		return "vos_ready"
	case SitePLL:
		return "pll_ready"
	case SiteSysclk:
		return "sysclk_switch"
	case SiteDelayUIF:
		return "tim6_update"
	case SitePWMUIF:
		return "tim2_update"
	default:
		return "unknown"
	}
}

// MaxSites bounds the poll counters carried by one report. With every value
// at its widest encoding a full report still fits in MessageLengthMax.
const MaxSites = 6

var (
	ErrUnknownMessage = errors.New("unknown message id")
	ErrVersion        = errors.New("unsupported report version")
	ErrTooManySites   = errors.New("too many wait sites in report")
	ErrTrailingData   = errors.New("trailing data after report")
)

// SitePolls is the number of polls spent at one wait site
type SitePolls struct {
	Site  uint8
	Polls uint32
}

// BootReport is what the firmware knows about its own startup
type BootReport struct {
	SYSCLK    uint32
	HCLK      uint32
	PCLK1     uint32
	PCLK2     uint32
	TIMPCLK1  uint32
	TIMPCLK2  uint32
	CoreClock uint32
	PWMPeriod uint16
	PWMPulse  uint16
	Sites     []SitePolls
}

func (r *BootReport) clocks() []*uint32 {
	return []*uint32{&r.SYSCLK, &r.HCLK, &r.PCLK1, &r.PCLK2, &r.TIMPCLK1, &r.TIMPCLK2, &r.CoreClock}
}

// AppendBootReport appends r as one frame to dst
func AppendBootReport(dst []byte, seq uint8, r *BootReport) []byte {
	payload := make([]byte, 0, MessageLengthMax)
	payload = AppendVLQUint(payload, MsgBootReport)
	payload = AppendVLQUint(payload, Version)
	for _, v := range r.clocks() {
		payload = AppendVLQUint(payload, *v)
	}
	payload = AppendVLQUint(payload, uint32(r.PWMPeriod))
	payload = AppendVLQUint(payload, uint32(r.PWMPulse))

	sites := r.Sites
	if len(sites) > MaxSites {
		sites = sites[:MaxSites]
	}
	payload = AppendVLQUint(payload, uint32(len(sites)))
	for _, s := range sites {
		payload = AppendVLQUint(payload, uint32(s.Site))
		payload = AppendVLQUint(payload, s.Polls)
	}
	return AppendFrame(dst, seq, payload)
}

// DecodeBootReport parses the payload of a MsgBootReport frame
func DecodeBootReport(payload []byte) (*BootReport, error) {
	rd := &vlqReader{data: payload}
	if id := rd.uint(); rd.err == nil && id != MsgBootReport {
		return nil, ErrUnknownMessage
	}
	if v := rd.uint(); rd.err == nil && v != Version {
		return nil, ErrVersion
	}

	r := &BootReport{}
	for _, dst := range r.clocks() {
		*dst = rd.uint()
	}
	r.PWMPeriod = uint16(rd.uint())
	r.PWMPulse = uint16(rd.uint())

	n := rd.uint()
	if rd.err != nil {
		return nil, rd.err
	}
	if n > MaxSites {
		return nil, ErrTooManySites
	}
	r.Sites = make([]SitePolls, n)
	for i := range r.Sites {
		r.Sites[i].Site = uint8(rd.uint())
		r.Sites[i].Polls = rd.uint()
	}
	if rd.err != nil {
		return nil, rd.err
	}
	if len(rd.data) != 0 {
		return nil, ErrTrailingData
	}
	return r, nil
}

// Polls returns the poll count reported for site
func (r *BootReport) Polls(site uint8) (uint32, bool) {
	for _, s := range r.Sites {
		if s.Site == site {
			return s.Polls, true
		}
	}
	return 0, false
}
