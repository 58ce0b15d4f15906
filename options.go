package hma

import (
	"log/slog"
)

// Options configures a HMA registry. The zero value is not usable;
// construct one with defaultOptions and apply functional options.
type Options struct {
	clientSlots   int
	pageLockSlots int
	logger        *slog.Logger
}

// Option configures Options during Connect, Inspect or InspectPage.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		clientSlots:   DefaultClientSlots,
		pageLockSlots: DefaultPageLockSlots,
		logger:        slog.Default(),
	}
}

// WithClientSlots overrides C, the number of client slots. Tests use
// this to exercise slot exhaustion with small values; production
// callers normally leave it at DefaultClientSlots.
func WithClientSlots(n int) Option {
	return func(o *Options) {
		o.clientSlots = n
	}
}

// WithPageLockSlots overrides P, the number of page-lock slots.
func WithPageLockSlots(n int) Option {
	return func(o *Options) {
		o.pageLockSlots = n
	}
}

// WithLogger injects a structured logger. The core logs through this
// logger instead of a package global so tests can capture output and
// callers can route it through their own handler.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
