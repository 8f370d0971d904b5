package pipeline

// State is the phase a generation run is in.
type State int32

const (
	StateIdle State = iota
	StateConfiguring
	StateGenerating
	StateClassifying
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateConfiguring: "configuring",
	StateGenerating:  "generating",
	StateClassifying: "classifying",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s within a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// canTransition lists the allowed moves. Every run starts from a terminal
// state or Idle and goes through Configuring.
func canTransition(from, to State) bool {
	switch to {
	case StateConfiguring:
		return from == StateIdle || from.Terminal()
	case StateGenerating:
		return from == StateConfiguring
	case StateClassifying:
		return from == StateGenerating
	case StateDone:
		return from == StateClassifying
	case StateFailed:
		return !from.Terminal() && from != StateIdle
	}
	return false
}
