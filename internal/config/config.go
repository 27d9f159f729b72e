package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Timing contains the stage delays and motion cadence, in milliseconds.
type Timing struct {
	TickMS           int     `toml:"tick_ms"`
	Step             float64 `toml:"step"`
	PositionDelayMS  int     `toml:"position_delay_ms"`
	GripDelayMS      int     `toml:"grip_delay_ms"`
	TransferDelayMS  int     `toml:"transfer_delay_ms"`
	ReleaseDelayMS   int     `toml:"release_delay_ms"`
	ResetDelayMS     int     `toml:"reset_delay_ms"`
	CounterPulseMS   int     `toml:"counter_pulse_ms"`
	GripTransitionMS int     `toml:"grip_transition_ms"`
	ClawTransitionMS int     `toml:"claw_transition_ms"`
}

// Rect is a rendered bounding box in track units.
type Rect struct {
	Left   float64 `toml:"left"`
	Top    float64 `toml:"top"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Layout describes the track and bin geometry.
type Layout struct {
	Track           Rect            `toml:"track"`
	PickupMargin    float64         `toml:"pickup_margin"`
	FigureHalfWidth float64         `toml:"figure_half_width"`
	FigureStartX    float64         `toml:"figure_start_x"`
	FigureStartY    float64         `toml:"figure_start_y"`
	Bins            map[string]Rect `toml:"bins"`
}

// Workflow contains runner policy.
type Workflow struct {
	// OnFailure is "halt" (failed figure blocks the queue) or "skip".
	OnFailure string `toml:"on_failure"`
	// Speed multiplies wall-clock pacing; 0 runs on a virtual clock.
	Speed float64 `toml:"speed"`
}

// Display contains terminal rendering settings.
type Display struct {
	Mode  string `toml:"mode"`
	Color string `toml:"color"`
	Width int    `toml:"width"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	Dir            string            `toml:"dir"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for sortline.
type Config struct {
	Timing   Timing   `toml:"timing"`
	Layout   Layout   `toml:"layout"`
	Workflow Workflow `toml:"workflow"`
	Display  Display  `toml:"display"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path, and whether that path existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		// bins from the file replace the defaults rather than merging into them
		cfg.Layout.Bins = nil

		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sortline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory when one is configured.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Logging.Dir, err)
	}
	return nil
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Tick returns the motion tick interval.
func (t Timing) Tick() time.Duration { return ms(t.TickMS) }

// PositionDelay returns the pause after the claw is positioned.
func (t Timing) PositionDelay() time.Duration { return ms(t.PositionDelayMS) }

// GripDelay returns the pause after the grip closes.
func (t Timing) GripDelay() time.Duration { return ms(t.GripDelayMS) }

// TransferDelay returns the pause while the claw travels to the bin.
func (t Timing) TransferDelay() time.Duration { return ms(t.TransferDelayMS) }

// ReleaseDelay returns the pause after the grip opens.
func (t Timing) ReleaseDelay() time.Duration { return ms(t.ReleaseDelayMS) }

// ResetDelay returns the pause before the claw is hidden.
func (t Timing) ResetDelay() time.Duration { return ms(t.ResetDelayMS) }

// CounterPulse returns how long a counter stays enlarged after an update.
func (t Timing) CounterPulse() time.Duration { return ms(t.CounterPulseMS) }

// GripTransition returns the figure transfer transition length.
func (t Timing) GripTransition() time.Duration { return ms(t.GripTransitionMS) }

// ClawTransition returns the claw travel transition length.
func (t Timing) ClawTransition() time.Duration { return ms(t.ClawTransitionMS) }

// PickupPoint returns the conveyor offset where the claw collects figures.
func (l Layout) PickupPoint() float64 {
	return l.Track.Width - l.PickupMargin
}

// Realtime reports whether the scheduler should pace events against the wall clock.
func (w Workflow) Realtime() bool { return w.Speed > 0 }

// HaltOnFailure reports whether a failed figure blocks the queue.
func (w Workflow) HaltOnFailure() bool { return w.OnFailure != OnFailureSkip }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
