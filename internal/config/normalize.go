package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTiming()
	if err := c.normalizeLayout(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeDisplay()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeTiming() {
	if c.Timing.TickMS <= 0 {
		c.Timing.TickMS = defaultTickMS
	}
	if c.Timing.Step <= 0 {
		c.Timing.Step = defaultStep
	}
	if c.Timing.CounterPulseMS < 0 {
		c.Timing.CounterPulseMS = 0
	}
}

func (c *Config) normalizeLayout() error {
	if len(c.Layout.Bins) == 0 {
		c.Layout.Bins = defaultBins()
		return nil
	}
	bins := make(map[string]Rect, len(c.Layout.Bins))
	origin := make(map[string]string, len(c.Layout.Bins))
	for _, name := range slices.Sorted(maps.Keys(c.Layout.Bins)) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if prev, dup := origin[key]; dup {
			return fmt.Errorf("layout.bins: %q and %q both name the %s bin", prev, name, key)
		}
		origin[key] = name
		bins[key] = c.Layout.Bins[name]
	}
	c.Layout.Bins = bins
	return nil
}

func (c *Config) normalizeWorkflow() {
	c.Workflow.OnFailure = strings.ToLower(strings.TrimSpace(c.Workflow.OnFailure))
	if c.Workflow.OnFailure == "" {
		c.Workflow.OnFailure = OnFailureHalt
	}
}

func (c *Config) normalizeDisplay() {
	c.Display.Mode = strings.ToLower(strings.TrimSpace(c.Display.Mode))
	if c.Display.Mode == "" {
		c.Display.Mode = defaultDisplayMode
	}
	c.Display.Color = strings.ToLower(strings.TrimSpace(c.Display.Color))
	if c.Display.Color == "" {
		c.Display.Color = defaultDisplayColor
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}
