package environment

import (
	"fmt"

	"github.com/samuelfneumann/goinvaders/emulator"
	"gonum.org/v1/gonum/mat"
)

// Button masks for the six-action space, indexed by action
var discrete6Buttons = [6]uint8{
	0,                                      // NOOP
	emulator.BtnP1Fire,                     // FIRE
	emulator.BtnLeft,                       // LEFT
	emulator.BtnRight,                      // RIGHT
	emulator.BtnLeft | emulator.BtnP1Fire,  // LEFT+FIRE
	emulator.BtnRight | emulator.BtnP1Fire, // RIGHT+FIRE
}

// Button masks for the four-action space, indexed by action
var discrete4Buttons = [4]uint8{
	0,                  // NOOP
	emulator.BtnP1Fire, // FIRE
	emulator.BtnLeft,   // LEFT
	emulator.BtnRight,  // RIGHT
}

// actionEncoder deterministically maps abstract actions to hardware
// input bitmasks for a single action space variant
type actionEncoder struct {
	actionType ActionType
}

// newActionEncoder returns a new actionEncoder for the given action
// space variant. The variant must already be validated.
func newActionEncoder(actionType ActionType) *actionEncoder {
	return &actionEncoder{actionType: actionType}
}

// Encode converts an action to the button bitmask that realizes it.
// Discrete variants take a 1-dimensional action holding the action
// index; MultiDiscrete takes a 2-dimensional (move, fire) action.
func (a *actionEncoder) Encode(action mat.Vector) (uint8, error) {
	switch a.actionType {
	case Discrete6:
		return a.encodeDiscrete(action, discrete6Buttons[:])

	case Discrete4:
		return a.encodeDiscrete(action, discrete4Buttons[:])

	case MultiDiscrete:
		return a.encodeMultiDiscrete(action)
	}

	// Unreachable with a validated Config
	return 0, &EnvironmentError{
		Op:  "encode",
		Err: fmt.Errorf("no such action type %q", a.actionType),
	}
}

// encodeDiscrete looks an action index up in a button table
func (a *actionEncoder) encodeDiscrete(action mat.Vector,
	buttons []uint8) (uint8, error) {
	if action.Len() != 1 {
		return 0, &EnvironmentError{
			Op: "encode",
			Err: fmt.Errorf("%w: %v wants 1-dimensional actions, got %v "+
				"dimensions", errInvalidAction, a.actionType, action.Len()),
		}
	}

	index := int(action.AtVec(0))
	if index < 0 || index >= len(buttons) {
		return 0, &EnvironmentError{
			Op: "encode",
			Err: fmt.Errorf("%w: index %v ∉ [0, %v]", errInvalidAction,
				index, len(buttons)-1),
		}
	}
	return buttons[index], nil
}

// encodeMultiDiscrete combines a (move, fire) pair into a bitmask
func (a *actionEncoder) encodeMultiDiscrete(action mat.Vector) (uint8, error) {
	if action.Len() != 2 {
		return 0, &EnvironmentError{
			Op: "encode",
			Err: fmt.Errorf("%w: %v wants 2-dimensional actions, got %v "+
				"dimensions", errInvalidAction, MultiDiscrete, action.Len()),
		}
	}

	move := int(action.AtVec(0))
	fire := int(action.AtVec(1))
	if move < 0 || move > 2 {
		return 0, &EnvironmentError{
			Op: "encode",
			Err: fmt.Errorf("%w: move %v ∉ [0, 2]", errInvalidAction,
				move),
		}
	}
	if fire < 0 || fire > 1 {
		return 0, &EnvironmentError{
			Op: "encode",
			Err: fmt.Errorf("%w: fire %v ∉ [0, 1]", errInvalidAction,
				fire),
		}
	}

	var buttons uint8
	switch move {
	case 1:
		buttons |= emulator.BtnLeft
	case 2:
		buttons |= emulator.BtnRight
	}
	if fire == 1 {
		buttons |= emulator.BtnP1Fire
	}
	return buttons, nil
}

// noop returns the action that presses no buttons for the encoder's
// action space variant
func (a *actionEncoder) noop() mat.Vector {
	if a.actionType == MultiDiscrete {
		return mat.NewVecDense(2, nil)
	}
	return mat.NewVecDense(1, nil)
}

// ActionSpec returns the action specification of the encoder's action
// space variant
func (a *actionEncoder) ActionSpec() Spec {
	switch a.actionType {
	case Discrete6:
		shape := mat.NewVecDense(1, nil)
		lowerBound := mat.NewVecDense(1, nil)
		upperBound := mat.NewVecDense(1, []float64{5})
		return NewSpec(shape, Action, lowerBound, upperBound, Discrete)

	case Discrete4:
		shape := mat.NewVecDense(1, nil)
		lowerBound := mat.NewVecDense(1, nil)
		upperBound := mat.NewVecDense(1, []float64{3})
		return NewSpec(shape, Action, lowerBound, upperBound, Discrete)

	default:
		shape := mat.NewVecDense(2, nil)
		lowerBound := mat.NewVecDense(2, nil)
		upperBound := mat.NewVecDense(2, []float64{2, 1})
		return NewSpec(shape, Action, lowerBound, upperBound, Discrete)
	}
}
