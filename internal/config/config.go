// Package config resolves runtime options from flags and environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultAPIURL is the backend used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Environment variables consulted, in precedence order after flags.
const (
	EnvAPIURL       = "VIBESYNC_API_URL"
	EnvPublicAPIURL = "NEXT_PUBLIC_API_URL"
	EnvPort         = "VIBESYNC_PORT"
	EnvDataDir      = "VIBESYNC_DATA_DIR"
	EnvMPDHost      = "VIBESYNC_MPD_HOST"
	EnvMPDPassword  = "VIBESYNC_MPD_PASSWORD"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config contains runtime options for the player service.
type Config struct {
	Port               string
	APIURL             string
	MPDHost            string
	MPDPort            int
	MPDPassword        string
	DataDir            string
	StaticDir          string
	Debug              bool
	RetryCount         int
	RequestTimeout     time.Duration
	PollInterval       time.Duration
	MaxExternalClients int
}

// DBPath is the local state database file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "vibesync.db")
}

// MPDEnabled reports whether audio goes to MPD. With no host the player
// runs without audio output.
func (c Config) MPDEnabled() bool {
	return c.MPDHost != ""
}

// Load parses args (without the program name). getenv may be nil.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := func(def string, keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return def
	}

	fs := flag.NewFlagSet("vibesync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var c Config
	fs.StringVar(&c.Port, "port", env("3001", EnvPort), "HTTP server port")
	fs.StringVar(&c.APIURL, "api-url", env(DefaultAPIURL, EnvAPIURL, EnvPublicAPIURL), "backend API base URL")
	fs.StringVar(&c.MPDHost, "mpd-host", env("localhost", EnvMPDHost), "MPD host (empty disables audio output)")
	fs.IntVar(&c.MPDPort, "mpd-port", 6600, "MPD port")
	fs.StringVar(&c.MPDPassword, "mpd-password", env("", EnvMPDPassword), "MPD password")
	fs.StringVar(&c.DataDir, "data", env("data", EnvDataDir), "directory for local state")
	fs.StringVar(&c.StaticDir, "static", "", "directory to serve static files from (optional)")
	fs.BoolVar(&c.Debug, "debug", false, "enable debug logging")
	fs.IntVar(&c.RetryCount, "retries", 3, "retries for idempotent backend requests")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", 15*time.Second, "backend request timeout")
	fs.DurationVar(&c.PollInterval, "poll-interval", time.Second, "MPD status poll interval")
	fs.IntVar(&c.MaxExternalClients, "max-clients", 4, "max concurrent non-local socket clients")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalid, c.Port)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api url %q", ErrInvalid, c.APIURL)
	}
	if c.MPDPort <= 0 || c.MPDPort > 65535 {
		return fmt.Errorf("%w: mpd port %d", ErrInvalid, c.MPDPort)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("%w: retries %d", ErrInvalid, c.RetryCount)
	}
	if c.RequestTimeout <= 0 || c.PollInterval <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalid)
	}
	if c.MaxExternalClients < 1 {
		return fmt.Errorf("%w: max clients %d", ErrInvalid, c.MaxExternalClients)
	}
	return nil
}
