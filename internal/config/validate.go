package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTiming() error {
	delays := []struct {
		key   string
		value int
	}{
		{"timing.position_delay_ms", c.Timing.PositionDelayMS},
		{"timing.grip_delay_ms", c.Timing.GripDelayMS},
		{"timing.transfer_delay_ms", c.Timing.TransferDelayMS},
		{"timing.release_delay_ms", c.Timing.ReleaseDelayMS},
		{"timing.reset_delay_ms", c.Timing.ResetDelayMS},
		{"timing.grip_transition_ms", c.Timing.GripTransitionMS},
		{"timing.claw_transition_ms", c.Timing.ClawTransitionMS},
	}
	for _, d := range delays {
		if d.value < 0 {
			return fmt.Errorf("%s must not be negative", d.key)
		}
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.Track.Width <= 0 {
		return errors.New("layout.track.width must be positive")
	}
	if c.Layout.PickupPoint() <= 0 {
		return fmt.Errorf("layout.pickup_margin (%g) must be smaller than layout.track.width (%g)",
			c.Layout.PickupMargin, c.Layout.Track.Width)
	}
	if c.Layout.FigureHalfWidth < 0 {
		return errors.New("layout.figure_half_width must not be negative")
	}
	names := make([]string, 0, len(c.Layout.Bins))
	for name := range c.Layout.Bins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c.Layout.Bins[name].Width <= 0 {
			return fmt.Errorf("layout.bins.%s.width must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	switch c.Workflow.OnFailure {
	case OnFailureHalt, OnFailureSkip:
	default:
		return fmt.Errorf("workflow.on_failure: unsupported value %q (use %q or %q)", c.Workflow.OnFailure, OnFailureHalt, OnFailureSkip)
	}
	if c.Workflow.Speed < 0 {
		return errors.New("workflow.speed must not be negative")
	}
	return nil
}

func (c *Config) validateDisplay() error {
	switch c.Display.Mode {
	case DisplayTerminal, DisplayLog, DisplayNone:
	default:
		return fmt.Errorf("display.mode: unsupported value %q", c.Display.Mode)
	}
	switch c.Display.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("display.color: unsupported value %q", c.Display.Color)
	}
	if c.Display.Width < 0 {
		return errors.New("display.width must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
