package config

const (
	defaultConfigPath       = "~/.config/sortline/config.toml"
	defaultTickMS           = 20
	defaultStep             = 3
	defaultPositionDelayMS  = 300
	defaultGripDelayMS      = 300
	defaultTransferDelayMS  = 800
	defaultReleaseDelayMS   = 300
	defaultResetDelayMS     = 300
	defaultCounterPulseMS   = 200
	defaultGripTransitionMS = 300
	defaultClawTransitionMS = 800
	defaultTrackWidth       = 800
	defaultTrackHeight      = 120
	defaultPickupMargin     = 100
	defaultFigureHalfWidth  = 30
	defaultFigureStartX     = 20
	defaultFigureStartY     = 20
	defaultBinWidth         = 120
	defaultBinHeight        = 100
	defaultBinTop           = 200
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultDisplayMode      = DisplayTerminal
	defaultDisplayColor     = ColorAuto
	defaultSpeed            = 1.0

	OnFailureHalt = "halt"
	OnFailureSkip = "skip"

	DisplayTerminal = "terminal"
	DisplayLog      = "log"
	DisplayNone     = "none"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Timing: Timing{
			TickMS:           defaultTickMS,
			Step:             defaultStep,
			PositionDelayMS:  defaultPositionDelayMS,
			GripDelayMS:      defaultGripDelayMS,
			TransferDelayMS:  defaultTransferDelayMS,
			ReleaseDelayMS:   defaultReleaseDelayMS,
			ResetDelayMS:     defaultResetDelayMS,
			CounterPulseMS:   defaultCounterPulseMS,
			GripTransitionMS: defaultGripTransitionMS,
			ClawTransitionMS: defaultClawTransitionMS,
		},
		Layout: Layout{
			Track:           Rect{Left: 0, Top: 0, Width: defaultTrackWidth, Height: defaultTrackHeight},
			PickupMargin:    defaultPickupMargin,
			FigureHalfWidth: defaultFigureHalfWidth,
			FigureStartX:    defaultFigureStartX,
			FigureStartY:    defaultFigureStartY,
			Bins:            defaultBins(),
		},
		Workflow: Workflow{
			OnFailure: OnFailureHalt,
			Speed:     defaultSpeed,
		},
		Display: Display{
			Mode:  defaultDisplayMode,
			Color: defaultDisplayColor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultBins() map[string]Rect {
	return map[string]Rect{
		"square":   {Left: 100, Top: defaultBinTop, Width: defaultBinWidth, Height: defaultBinHeight},
		"circle":   {Left: 340, Top: defaultBinTop, Width: defaultBinWidth, Height: defaultBinHeight},
		"triangle": {Left: 580, Top: defaultBinTop, Width: defaultBinWidth, Height: defaultBinHeight},
	}
}
