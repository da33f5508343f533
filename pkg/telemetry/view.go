package telemetry

import "sync"

// ViewSession is a scoped guard over one view-visibility cycle: Track opens
// the session, End closes it. End is idempotent, so each cycle produces
// exactly one StartView and one StopView no matter how many unmount paths
// call it. Sessions with distinct names are independent.
type ViewSession struct {
	facade *Facade
	name   string
	once   sync.Once
}

// Track starts a monitoring session for the named view and returns the guard
// that closes it.
func (f *Facade) Track(name string) *ViewSession {
	f.StartViewTracking(name)
	return &ViewSession{facade: f, name: name}
}

// Name returns the session key.
func (s *ViewSession) Name() string {
	return s.name
}

// End closes the session. Calling End more than once is a no-op.
func (s *ViewSession) End() {
	s.once.Do(func() {
		s.facade.StopViewTracking(s.name)
	})
}
