package mpd

import (
	"context"
	"strconv"
	"time"
)

// Progress is the playback position parsed from an MPD status.
type Progress struct {
	State    string
	Elapsed  time.Duration
	Duration time.Duration
}

// AtEnd reports whether the song finished. MPD stops after the last
// song of a single-entry queue.
func (p Progress) AtEnd() bool {
	if p.State == "stop" {
		return true
	}
	return p.Duration > 0 && p.Elapsed >= p.Duration
}

// ParseProgress reads state, elapsed and duration from status attrs.
func ParseProgress(status map[string]string) Progress {
	p := Progress{State: status["state"]}
	if p.State == "" {
		p.State = "stop"
	}
	if v, err := strconv.ParseFloat(status["elapsed"], 64); err == nil {
		p.Elapsed = seconds(v)
	}
	if v, err := strconv.ParseFloat(status["duration"], 64); err == nil {
		p.Duration = seconds(v)
	}
	return p
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Output adapts a Client to the player's audio output.
type Output struct {
	c *Client
}

// NewOutput wraps c.
func NewOutput(c *Client) *Output {
	return &Output{c: c}
}

func (o *Output) Load(_ context.Context, url string) error { return o.c.Replace(url) }
func (o *Output) Play(context.Context) error { return o.c.Resume() }
func (o *Output) Pause(context.Context) error { return o.c.Pause() }
func (o *Output) Rewind(context.Context) error { return o.c.Rewind() }

// AtEnd reports whether the current song finished.
func (o *Output) AtEnd(context.Context) (bool, error) {
	status, err := o.c.Status()
	if err != nil {
		return false, err
	}
	return ParseProgress(status).AtEnd(), nil
}
