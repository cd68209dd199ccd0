package component

// Phase names the lifecycle moment an error surfaced in.
type Phase int

const (
	PhaseRender Phase = iota
	PhaseAttach
	PhaseUpdate
	PhaseDestroy
	PhaseEvent
	PhaseAsync
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseRender:
		return "render"
	case PhaseAttach:
		return "attach"
	case PhaseUpdate:
		return "update"
	case PhaseDestroy:
		return "destroy"
	case PhaseEvent:
		return "event"
	case PhaseAsync:
		return "async"
	default:
		return "unknown"
	}
}
