package ircsasl

import "time"

// A Scheduler arms the negotiation timeout. Schedule runs f once after d
// unless the returned cancel function is called first; cancel must be safe
// to call after f has already run.
//
// The default scheduler fires f on its own goroutine via time.AfterFunc.
// Hosts built around a single-threaded event loop can provide a Scheduler
// that delivers the callback as a loop event instead.
type Scheduler interface {
	Schedule(d time.Duration, f func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}
