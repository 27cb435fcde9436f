// Package session tracks the form lifecycle: model loading, input and
// result display.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State is a lifecycle stage.
type State string

const (
	AwaitingModel State = "awaiting_model"
	AwaitingInput State = "awaiting_input"
	ShowingResult State = "showing_result"
	Halted        State = "halted"
)

// ErrInvalidTransition is returned when an event does not apply to the current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// Machine is the lifecycle state machine. Halted is terminal.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine starts in AwaitingModel.
func NewMachine() *Machine {
	return &Machine{state: AwaitingModel}
}

// NewInputMachine starts in AwaitingInput, for sessions opened after load.
func NewInputMachine() *Machine {
	return &Machine{state: AwaitingInput}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ModelLoaded moves AwaitingModel to AwaitingInput.
func (m *Machine) ModelLoaded() error {
	return m.transition("model loaded", AwaitingInput, AwaitingModel)
}

// ModelMissing moves AwaitingModel to Halted.
func (m *Machine) ModelMissing() error {
	return m.transition("model missing", Halted, AwaitingModel)
}

// Predicted moves to ShowingResult.
func (m *Machine) Predicted() error {
	return m.transition("predict", ShowingResult, AwaitingInput, ShowingResult)
}

// FieldChanged drops any shown result.
func (m *Machine) FieldChanged() error {
	return m.transition("field changed", AwaitingInput, AwaitingInput, ShowingResult)
}

func (m *Machine) transition(event string, to State, from ...State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range from {
		if m.state == s {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, m.state)
}
