package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sortline/internal/config"
)

func TestLoadDefaultsWhenConfigMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "sortline", "config.toml")
	if resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Timing.Tick() != 20*time.Millisecond {
		t.Fatalf("unexpected tick: %v", cfg.Timing.Tick())
	}
	if cfg.Timing.Step != 3 {
		t.Fatalf("unexpected step: %v", cfg.Timing.Step)
	}
	if cfg.Timing.TransferDelay() != 800*time.Millisecond {
		t.Fatalf("unexpected transfer delay: %v", cfg.Timing.TransferDelay())
	}
	if cfg.Layout.PickupPoint() != 700 {
		t.Fatalf("unexpected pickup point: %v", cfg.Layout.PickupPoint())
	}
	if len(cfg.Layout.Bins) != 3 {
		t.Fatalf("expected three default bins, got %d", len(cfg.Layout.Bins))
	}
	if !cfg.Workflow.HaltOnFailure() {
		t.Fatal("expected halt on failure by default")
	}
}

func TestLoadCustomConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sortline.toml")
	content := `
[timing]
tick_ms = 10
step = 5

[layout.track]
width = 400

[layout.bins.Star]
left = 10
width = 40

[workflow]
on_failure = "SKIP"
speed = 0

[logging]
format = "JSON"
dir = "` + filepath.Join(dir, "logs") + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Timing.TickMS != 10 || cfg.Timing.Step != 5 {
		t.Fatalf("unexpected timing: %+v", cfg.Timing)
	}
	if cfg.Layout.PickupPoint() != 300 {
		t.Fatalf("unexpected pickup point: %v", cfg.Layout.PickupPoint())
	}
	if _, ok := cfg.Layout.Bins["star"]; !ok || len(cfg.Layout.Bins) != 1 {
		t.Fatalf("expected only the normalized star bin, got %v", cfg.Layout.Bins)
	}
	if cfg.Workflow.HaltOnFailure() {
		t.Fatal("expected skip policy")
	}
	if cfg.Workflow.Realtime() {
		t.Fatal("expected virtual clock when speed is 0")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Logging.Dir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"pickup beyond track", func(c *config.Config) { c.Layout.PickupMargin = c.Layout.Track.Width }, "pickup_margin"},
		{"failure policy", func(c *config.Config) { c.Workflow.OnFailure = "retry" }, "workflow.on_failure"},
		{"negative delay", func(c *config.Config) { c.Timing.GripDelayMS = -1 }, "timing.grip_delay_ms"},
		{"bin width", func(c *config.Config) { c.Layout.Bins["circle"] = config.Rect{Left: 1} }, "layout.bins.circle.width"},
		{"display mode", func(c *config.Config) { c.Display.Mode = "gui" }, "display.mode"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sortline.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBinsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout.bins.Square]
left = 10
width = 50

[layout.bins.circle]
left = 340
width = 120
`)
	for i := 0; i < 50; i++ {
		cfg, _, _, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(cfg.Layout.Bins) != 2 {
			t.Fatalf("load %d: expected only the configured bins, got %v", i, cfg.Layout.Bins)
		}
		if _, ok := cfg.Layout.Bins["triangle"]; ok {
			t.Fatalf("load %d: default triangle bin should not be merged in", i)
		}
		if square := cfg.Layout.Bins["square"]; square.Left != 10 || square.Width != 50 {
			t.Fatalf("load %d: unexpected square bin %+v", i, square)
		}
	}
}

func TestLoadRejectsBinsThatNormalizeAlike(t *testing.T) {
	path := writeConfig(t, `
[layout.bins.Square]
left = 10
width = 50

[layout.bins.square]
left = 100
width = 120
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for bins that differ only by case")
	}
	if !strings.Contains(err.Error(), "layout.bins") || !strings.Contains(err.Error(), "square") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sortline.toml")
	if err := os.WriteFile(path, []byte("[timing]\nspeedy = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	defaults := config.Default()
	if cfg.Timing != defaults.Timing {
		t.Fatalf("sample timing diverges from defaults: %+v vs %+v", cfg.Timing, defaults.Timing)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), "tick_ms = 20") {
		t.Fatalf("expected tick_ms in encoded config:\n%s", data)
	}
}
