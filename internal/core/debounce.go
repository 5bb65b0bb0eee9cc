package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Debouncer coalesces write-intent signals into a single deferred write.
// Schedule only asserts that a write is owed; repeated signals collapse
// rather than queueing. The write fires once per quiescent period, no
// earlier than the delay after the most recent signal.
type Debouncer struct {
	delay  time.Duration
	signal chan struct{}
	write  func() error
	logger zerolog.Logger
}

func NewDebouncer(delay time.Duration, write func() error, logger zerolog.Logger) *Debouncer {
	return &Debouncer{
		delay:  delay,
		signal: make(chan struct{}, 1),
		write:  write,
		logger: logger,
	}
}

// Schedule signals that a write is owed. Non-blocking; safe from any
// goroutine.
func (d *Debouncer) Schedule() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Run executes the debounce loop until the context is cancelled. It idles
// until the first signal, then races the timer against further signals,
// restarting the timer on each. When the timer wins, one write executes and
// the loop returns to idle. Write errors are logged; the state that produced
// them is retried naturally by the next signal.
func (d *Debouncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug().Msg("Debouncer stopping")
			return
		case <-d.signal:
		}

		timer := time.NewTimer(d.delay)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				d.logger.Debug().Msg("Debouncer stopping")
				return
			case <-d.signal:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(d.delay)
			case <-timer.C:
				if err := d.write(); err != nil {
					d.logger.Error().Err(err).Msg("Debounced write failed")
				}
				break wait
			}
		}
	}
}
