package testsupport

import (
	"path/filepath"
	"testing"

	"sortline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces the default config with a per-test log directory and a
// virtual clock. Options are applied in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Workflow.Speed = 0
	cfgVal.Display.Mode = config.DisplayNone

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithOnFailure sets the workflow failure policy.
func WithOnFailure(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.OnFailure = policy
	}
}

// WithoutBin removes the bin for kind from the layout.
func WithoutBin(kind string) ConfigOption {
	return func(b *configBuilder) {
		delete(b.cfg.Layout.Bins, kind)
	}
}

// WithBin adds or replaces a bin rectangle.
func WithBin(kind string, rect config.Rect) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Layout.Bins == nil {
			b.cfg.Layout.Bins = make(map[string]config.Rect)
		}
		b.cfg.Layout.Bins[kind] = rect
	}
}

// WithTrackWidth changes the track width, and with it the pickup offset.
func WithTrackWidth(width float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Layout.Track.Width = width
	}
}

// WithStageOverride sets a per-stage log level.
func WithStageOverride(stage, level string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Logging.StageOverrides == nil {
			b.cfg.Logging.StageOverrides = make(map[string]string)
		}
		b.cfg.Logging.StageOverrides[stage] = level
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
