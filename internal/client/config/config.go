// Package config holds settings for the pixo command-line client.
package config

import (
	"flag"
	"os"
	"time"
)

// Config holds runtime settings for the pixo CLI.
//
// Fields:
//   - ServerURL: base URL of the pixo HTTP API.
//   - RequestTimeout: upper bound for a single API call or asset upload.
//   - Args: the command and its arguments left after flag parsing.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	Args           []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig applies defaults and then command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		panic(err)
	}
	return cfg
}

// parseFlags populates cfg from args.
//
// Supported flags:
//
//	-a string   base URL of the pixo server
//	-t int      request timeout in seconds
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("pixo", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the pixo server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.Args = fs.Args()
	return nil
}
