package mpd

import (
	"context"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often the monitor samples MPD status.
const DefaultPollInterval = time.Second

// endSlack is added to the poll interval when deciding whether the last
// sampled position was close enough to the end of the song.
const endSlack = time.Second

// StatusSource provides MPD status.
type StatusSource interface {
	Status() (mpd.Attrs, error)
}

// PlaybackHandler receives end-of-song and progress events.
type PlaybackHandler interface {
	HandleEnded(ctx context.Context)
	ReportProgress(ctx context.Context, elapsed time.Duration)
}

// Monitor turns MPD status changes into playback events. A transition
// from play to stop means the song ran out, unless the last sample was
// far from the end. Loading a new song clears the queue, which also
// passes through stop.
type Monitor struct {
	src      StatusSource
	handler  PlaybackHandler
	interval time.Duration
	last     Progress
}

// NewMonitor creates a monitor. A zero interval uses DefaultPollInterval.
func NewMonitor(src StatusSource, h PlaybackHandler, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{src: src, handler: h, interval: interval}
}

// Run polls until ctx is done. events, if non-nil, triggers an
// immediate poll on each MPD player event.
func (m *Monitor) Run(ctx context.Context, events <-chan string) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.Poll(ctx)
		}
	}
}

// Poll samples status once and dispatches events.
func (m *Monitor) Poll(ctx context.Context) {
	status, err := m.src.Status()
	if err != nil {
		log.Debug().Err(err).Msg("MPD status poll failed")
		return
	}
	p := ParseProgress(status)
	prev := m.last
	m.last = p

	switch {
	case p.State == "play":
		m.handler.ReportProgress(ctx, p.Elapsed)
	case p.State == "stop" && prev.State == "play":
		if !m.nearEnd(prev) {
			log.Debug().Dur("elapsed", prev.Elapsed).Msg("Playback stopped before the end")
			return
		}
		log.Debug().Msg("Song ended")
		m.handler.HandleEnded(ctx)
	}
}

// nearEnd reports whether p could be the last sample before the song
// finished. Unknown durations count as near.
func (m *Monitor) nearEnd(p Progress) bool {
	if p.Duration <= 0 {
		return true
	}
	return p.Duration-p.Elapsed <= m.interval+endSlack
}
