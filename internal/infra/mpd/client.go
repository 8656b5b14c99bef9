// Package mpd drives an MPD server as the player's audio output.
package mpd

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned by Ping before Connect.
var ErrNotConnected = errors.New("not connected")

// Client wraps the MPD client with reconnection logic.
type Client struct {
	mu       sync.RWMutex
	client   *mpd.Client
	watcher  *mpd.Watcher
	host     string
	port     int
	password string
}

// NewClient creates a new MPD client wrapper.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		host:     host,
		port:     port,
		password: password,
	}
}

// Addr returns host:port.
func (c *Client) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// Connect establishes connection to MPD.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	addr := c.Addr()
	log.Info().Str("addr", addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	if c.password != "" {
		if err := client.Command("password %s", c.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	c.client = client
	log.Info().Msg("Connected to MPD")
	return nil
}

// ensureConnected pings the server and reconnects if the link dropped.
func (c *Client) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return c.connectLocked()
	}

	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting...")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}

	return nil
}

// Close closes the MPD connection and any watcher.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}

	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// Ping checks if the connection is alive.
func (c *Client) Ping() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return ErrNotConnected
	}
	return c.client.Ping()
}

// with runs fn against a live connection.
func (c *Client) with(fn func(*mpd.Client) error) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return fn(c.client)
}

// Status returns the current MPD status.
func (c *Client) Status() (mpd.Attrs, error) {
	var attrs mpd.Attrs
	err := c.with(func(m *mpd.Client) error {
		var err error
		attrs, err = m.Status()
		return err
	})
	return attrs, err
}

// Replace clears the queue, adds uri and starts it.
func (c *Client) Replace(uri string) error {
	return c.with(func(m *mpd.Client) error {
		if err := m.Clear(); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		if err := m.Add(uri); err != nil {
			return fmt.Errorf("add %s: %w", uri, err)
		}
		return m.Play(0)
	})
}

// Resume continues a paused song, or restarts a stopped one.
func (c *Client) Resume() error {
	return c.with(func(m *mpd.Client) error {
		status, err := m.Status()
		if err != nil {
			return err
		}
		if status["state"] == "pause" {
			return m.Pause(false)
		}
		return m.Play(-1)
	})
}

// Pause pauses playback. Pausing a stopped player is a no-op.
func (c *Client) Pause() error {
	return c.with(func(m *mpd.Client) error {
		return m.Pause(true)
	})
}

// Rewind seeks to the start of the current song.
func (c *Client) Rewind() error {
	return c.with(func(m *mpd.Client) error {
		status, err := m.Status()
		if err != nil {
			return err
		}
		songPos, err := strconv.Atoi(status["song"])
		if err != nil {
			// Nothing selected; a stopped single-song queue restarts at 0 anyway.
			return nil
		}
		return m.Seek(songPos, 0)
	})
}

// Watch starts watching for MPD subsystem changes.
// Returns a channel that receives subsystem names when they change.
func (c *Client) Watch(subsystems ...string) (<-chan string, error) {
	watcher, err := mpd.NewWatcher("tcp", c.Addr(), c.password, subsystems...)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	ch := make(chan string, 10)

	go func() {
		defer close(ch)
		for {
			select {
			case subsystem, ok := <-watcher.Event:
				if !ok {
					return
				}
				ch <- subsystem
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("MPD watcher error")
				time.Sleep(time.Second)
			}
		}
	}()

	return ch, nil
}
