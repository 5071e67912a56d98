package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/configbuf/internal/configure"
)

// Decoration describes the frame insets drawn around a client.
type Decoration struct {
	Top         int `yaml:"top"`
	Bottom      int `yaml:"bottom"`
	Left        int `yaml:"left"`
	Right       int `yaml:"right"`
	BorderWidth int `yaml:"border_width"` // client border inside the wrapper
}

// Geometry is a client rectangle in root coordinates.
type Geometry struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Demo configures the `configbuf demo` animation.
type Demo struct {
	Title           string        `yaml:"title"`
	Steps           int           `yaml:"steps"`
	Interval        time.Duration `yaml:"interval"`
	CheckpointEvery int           `yaml:"checkpoint_every"` // 0 = flush only at the end
	Start           Geometry      `yaml:"start"`
	End             Geometry      `yaml:"end"`
	Raise           bool          `yaml:"raise"` // restack mid-animation
}

// Config is the effective configuration.
type Config struct {
	LogLevel   string     `yaml:"log_level"`
	Invariants string     `yaml:"invariants"` // panic | log
	Decoration Decoration `yaml:"decoration"`
	Demo       Demo       `yaml:"demo"`
}

// ValidationError points at the offending key, and the file position when known.
type ValidationError struct {
	Path   string
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.File, e.Line, e.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		Invariants: "panic",
		Decoration: Decoration{Top: 24, Bottom: 4, Left: 4, Right: 4},
		Demo: Demo{
			Title:           "configbuf demo",
			Steps:           120,
			Interval:        16 * time.Millisecond,
			CheckpointEvery: 10,
			Start:           Geometry{X: 100, Y: 100, Width: 320, Height: 200},
			End:             Geometry{X: 600, Y: 300, Width: 480, Height: 320},
			Raise:           true,
		},
	}
}

// Validate checks the configuration for values the buffer cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if _, err := configure.ParseInvariantPolicy(c.Invariants); err != nil {
		return &ValidationError{Path: "invariants", Err: err}
	}

	d := c.Decoration
	if d.Top < 0 || d.Bottom < 0 || d.Left < 0 || d.Right < 0 {
		return &ValidationError{Path: "decoration", Err: fmt.Errorf("decoration insets must be >= 0")}
	}
	if d.BorderWidth < 0 {
		return &ValidationError{Path: "decoration.border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}

	if c.Demo.Steps < 1 {
		return &ValidationError{Path: "demo.steps", Err: fmt.Errorf("steps must be >= 1")}
	}
	if c.Demo.Interval <= 0 {
		return &ValidationError{Path: "demo.interval", Err: fmt.Errorf("interval must be > 0")}
	}
	if c.Demo.CheckpointEvery < 0 {
		return &ValidationError{Path: "demo.checkpoint_every", Err: fmt.Errorf("checkpoint_every must be >= 0")}
	}
	for path, g := range map[string]Geometry{"demo.start": c.Demo.Start, "demo.end": c.Demo.End} {
		if g.Width < 1 || g.Height < 1 {
			return &ValidationError{Path: path, Err: fmt.Errorf("width and height must be >= 1, got %dx%d", g.Width, g.Height)}
		}
	}
	return nil
}

// Policy returns the invariant policy named by Invariants.
func (c *Config) Policy() configure.InvariantPolicy {
	p, _ := configure.ParseInvariantPolicy(c.Invariants)
	return p
}
