package classify

// Stage is one step of the claw sequence.
type Stage int

const (
	StageIdle Stage = iota
	StagePosition
	StageGrip
	StageTransfer
	StageRelease
	StageTally
	StageReset
)

var stageNames = map[Stage]string{
	StageIdle:     "idle",
	StagePosition: "position",
	StageGrip:     "grip",
	StageTransfer: "transfer",
	StageRelease:  "release",
	StageTally:    "tally",
	StageReset:    "reset",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Stages returns the sequence in execution order.
func Stages() []Stage {
	return []Stage{StagePosition, StageGrip, StageTransfer, StageRelease, StageTally, StageReset}
}

// Terminal reports whether no stage follows s.
func (s Stage) Terminal() bool { return s == StageReset }
