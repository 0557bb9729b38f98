// Package snap implements the scroll direction classifier: a sliding
// window over recent relative deltas, a rational-threshold direction
// decision and a lock state machine that holds a decided axis to
// suppress jitter between the horizontal and vertical wheels.
package snap

// Direction is the outcome of classifying accumulated motion.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionX
	DirectionY
	DirectionDiagPlus
	DirectionDiagMinus
)

func (d Direction) String() string {
	switch d {
	case DirectionX:
		return "x"
	case DirectionY:
		return "y"
	case DirectionDiagPlus:
		return "diag+"
	case DirectionDiagMinus:
		return "diag-"
	default:
		return "none"
	}
}
