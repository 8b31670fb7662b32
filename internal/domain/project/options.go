package project

import "time"

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier registers the feed told about project changes.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithActivity registers the activity log for workflow events.
func WithActivity(a ActivityLogger) Option {
	return func(s *Service) { s.activity = a }
}

// WithIDGenerator overrides how project and comment IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}
