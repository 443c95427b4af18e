package auto

// State 等待循环的状态
type State int

const (
	Idle State = iota
	Capturing
	Matching
	Found
	NotFound
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Capturing:
		return "Capturing"
	case Matching:
		return "Matching"
	case Found:
		return "Found"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}
