// Package config loads the acorn YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"acorn/acornos/delay"
	"acorn/acornos/profiler"
	"acorn/internal/reportsched"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Profiling ProfilingConfig `yaml:"profiling"`
	Report    ReportConfig    `yaml:"report"`
	Display   DisplayConfig   `yaml:"display"`
	Demo      DemoConfig      `yaml:"demo"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type RuntimeConfig struct {
	// DelayWidth is "narrow" (16-bit, unit per call) or "wide" (32-bit µs).
	DelayWidth string `yaml:"delay_width"`
	Hz         int    `yaml:"hz"`
	Ticks      uint64 `yaml:"ticks"`
	Headless   bool   `yaml:"headless"`
	Simulate   bool   `yaml:"simulate"`
	Strict     bool   `yaml:"strict"`

	width delay.Width
}

// Width is the parsed DelayWidth. Valid after Validate.
func (r RuntimeConfig) Width() delay.Width { return r.width }

type ProfilingConfig struct {
	Enabled   bool             `yaml:"enabled"`
	Profilers []ProfilerConfig `yaml:"profilers"`
}

// ProfilerConfig attaches one histogram to one coroutine.
type ProfilerConfig struct {
	Task string `yaml:"task"`
	// Kind is "wait" or "run".
	Kind string `yaml:"kind"`
	// Hist is "lin", "log2" or "log".
	Hist    string  `yaml:"hist"`
	Bins    int     `yaml:"bins"`
	Divider uint32  `yaml:"divider"`
	Base    float64 `yaml:"base"`

	kind profiler.Kind
}

// ProfilerKind is the parsed Kind. Valid after Validate.
func (p ProfilerConfig) ProfilerKind() profiler.Kind { return p.kind }

type ReportConfig struct {
	// Schedule is a cron spec or "@every <duration>". Empty disables
	// scheduled reports.
	Schedule string `yaml:"schedule"`
	Reset    bool   `yaml:"reset"`
	// Store is "none" or "sqlite".
	Store string `yaml:"store"`
	Path  string `yaml:"path"`
}

type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Refresh string `yaml:"refresh"`

	refresh time.Duration
}

// RefreshInterval is the parsed Refresh. Valid after Validate.
func (d DisplayConfig) RefreshInterval() time.Duration { return d.refresh }

type DemoConfig struct {
	BlinkOnMs      uint32 `yaml:"blink_on_ms"`
	BlinkOffMs     uint32 `yaml:"blink_off_ms"`
	BurstSpin      int    `yaml:"burst_spin"`
	BurstGapUs     uint32 `yaml:"burst_gap_us"`
	BurstBatch     uint32 `yaml:"burst_batch"`
	Countdown      uint32 `yaml:"countdown"`
	CountdownStepS uint32 `yaml:"countdown_step_s"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{Level: "info"},
		Runtime: RuntimeConfig{
			DelayWidth: "narrow",
			Hz:         1000,
		},
		Profiling: ProfilingConfig{
			Enabled: true,
			Profilers: []ProfilerConfig{
				{Task: "blink", Kind: "wait", Hist: "lin", Bins: 10, Divider: 1000},
				{Task: "burst", Kind: "run", Hist: "log2", Bins: 32},
			},
		},
		Report: ReportConfig{
			Schedule: "@every 10s",
			Store:    "none",
		},
		Display: DisplayConfig{Enabled: true, Refresh: "500ms"},
		Demo: DemoConfig{
			BlinkOnMs:      100,
			BlinkOffMs:     900,
			BurstSpin:      64,
			BurstGapUs:     2500,
			BurstBatch:     8,
			Countdown:      10,
			CountdownStepS: 1,
		},
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks every field and fills the parsed values.
func (c *Config) Validate() error {
	w, err := delay.ParseWidth(c.Runtime.DelayWidth)
	if err != nil {
		return invalid("runtime.delay_width: %v", err)
	}
	c.Runtime.width = w
	if c.Runtime.Hz < 0 {
		return invalid("runtime.hz must be >= 0")
	}

	for i := range c.Profiling.Profilers {
		p := &c.Profiling.Profilers[i]
		path := fmt.Sprintf("profiling.profilers[%d]", i)
		if strings.TrimSpace(p.Task) == "" {
			return invalid("%s.task is required", path)
		}
		k, ok := profiler.ParseKind(p.Kind)
		if !ok {
			return invalid("%s.kind must be wait or run, got %q", path, p.Kind)
		}
		p.kind = k
		if p.Bins <= 0 {
			return invalid("%s.bins must be > 0", path)
		}
		switch p.Hist {
		case "lin":
			if p.Divider == 0 {
				return invalid("%s.divider must be > 0", path)
			}
		case "log2":
		case "log":
			if p.Base <= 1 {
				return invalid("%s.base must be > 1", path)
			}
		default:
			return invalid("%s.hist must be lin, log2 or log, got %q", path, p.Hist)
		}
	}

	if err := reportsched.Parse(c.Report.Schedule); err != nil {
		return invalid("report.schedule: %v", err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Report.Store)) {
	case "", "none":
	case "sqlite":
		if strings.TrimSpace(c.Report.Path) == "" {
			return invalid("report.path is required for sqlite")
		}
	default:
		return invalid("report.store must be none or sqlite, got %q", c.Report.Store)
	}

	d, err := ParseDurationOrDefault("display.refresh", c.Display.Refresh, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.Display.refresh = d
	return nil
}
