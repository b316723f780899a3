package core

import "errors"

// ErrNotReady is wrapped by every Fault
var ErrNotReady = errors.New("hardware not ready")

// Wait sites, one per busy-poll in the startup path
const (
	SiteHSI       = "hsi16_ready"
	SiteRegulator = "vos_ready"
	SitePLL       = "pll_ready"
	SiteSysclk    = "sysclk_switch"
	SiteDelayUIF  = "tim6_update"
	SitePWMUIF    = "tim2_update"
	SiteReportTXE = "usart2_txe"
)

// Fault reports a readiness condition that did not come true within the
// wait policy's poll limit.
type Fault struct {
	Site  string
	Polls uint32
}

func (f *Fault) Error() string {
	return "wait " + f.Site + ": not ready after " + Utoa(f.Polls) + " polls"
}

func (f *Fault) Unwrap() error { return ErrNotReady }

// WaitPolicy bounds a status-bit busy-poll. A zero Limit spins forever,
// which is the startup behaviour: with no clock there is nobody to report to.
// There is no cancellation; a wait can only end by the condition or the limit.
type WaitPolicy struct {
	Limit uint32
}

// Forever never gives up
var Forever = WaitPolicy{}

// Bounded gives up after limit polls with a *Fault
func Bounded(limit uint32) WaitPolicy {
	return WaitPolicy{Limit: limit}
}

// Until polls ready until it reports true and returns the number of polls
// that returned false. With a limit it returns a *Fault once the limit is hit.
func (p WaitPolicy) Until(site string, ready func() bool) (uint32, error) {
	var polls uint32
	for !ready() {
		if polls != ^uint32(0) {
			polls++
		}
		if p.Limit != 0 && polls >= p.Limit {
			RecordEvent(EvtFault, polls, 0)
			return polls, &Fault{Site: site, Polls: polls}
		}
	}
	return polls, nil
}
