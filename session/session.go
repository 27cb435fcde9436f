package session

import (
	"context"
	"errors"

	"heartrisk/form"
	"heartrisk/ml"
	"heartrisk/presenter"
)

// Message types exchanged with a live form client.
const (
	TypeFieldChanged = "field_changed"
	TypePredict      = "predict"
	TypeState        = "state"
	TypeResult       = "result"
	TypeError        = "error"
)

// Inbound is a client message. Value and Values entries may be JSON strings
// or numbers.
type Inbound struct {
	Type   string                 `json:"type"`
	Field  string                 `json:"field,omitempty"`
	Value  interface{}            `json:"value,omitempty"`
	Values map[string]interface{} `json:"values,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type            string            `json:"type"`
	State           State             `json:"state"`
	Record          *ml.FeatureRecord `json:"record,omitempty"`
	Probability     *float64          `json:"probability,omitempty"`
	ProbabilityText string            `json:"probability_text,omitempty"`
	Label           ml.RiskLabel      `json:"label,omitempty"`
	Error           string            `json:"error,omitempty"`
	Fields          []form.FieldError `json:"fields,omitempty"`
}

// Predictor is the capability a session needs from ml.Predictor.
type Predictor interface {
	Predict(ctx context.Context, record ml.FeatureRecord) (ml.Prediction, error)
}

// Session is one live form. It is driven by a single goroutine.
type Session struct {
	ID        string
	machine   *Machine
	predictor Predictor
	inputs    map[string]interface{}
}

// New opens a session against a loaded predictor.
func New(id string, predictor Predictor) *Session {
	return &Session{
		ID:        id,
		machine:   NewInputMachine(),
		predictor: predictor,
		inputs:    make(map[string]interface{}),
	}
}

func (s *Session) State() State {
	return s.machine.State()
}

// Handle applies one client message and returns the reply.
func (s *Session) Handle(ctx context.Context, in Inbound) Outbound {
	switch in.Type {
	case TypeFieldChanged:
		return s.fieldChanged(in)
	case TypePredict:
		return s.predict(ctx, in)
	default:
		return s.fail("unknown message type "+in.Type, nil)
	}
}

func (s *Session) fieldChanged(in Inbound) Outbound {
	if _, err := form.CollectJSON(map[string]interface{}{in.Field: in.Value}); err != nil {
		return s.fail(err.Error(), fieldErrors(err))
	}
	s.inputs[in.Field] = in.Value
	_ = s.machine.FieldChanged()
	return Outbound{Type: TypeState, State: s.machine.State()}
}

func (s *Session) predict(ctx context.Context, in Inbound) Outbound {
	merged := make(map[string]interface{}, len(s.inputs)+len(in.Values))
	for name, v := range s.inputs {
		merged[name] = v
	}
	for name, v := range in.Values {
		merged[name] = v
	}
	values, err := form.CollectJSON(merged)
	if err != nil {
		return s.fail(err.Error(), fieldErrors(err))
	}
	s.inputs = merged
	record, err := form.Build(values)
	if err != nil {
		return s.fail(err.Error(), nil)
	}
	prediction, err := s.predictor.Predict(ctx, record)
	if err != nil {
		return s.fail(err.Error(), nil)
	}
	_ = s.machine.Predicted()

	probability := prediction.Probability
	return Outbound{
		Type:            TypeResult,
		State:           s.machine.State(),
		Record:          &record,
		Probability:     &probability,
		ProbabilityText: presenter.ProbabilityLine(probability),
		Label:           prediction.Label,
	}
}

func (s *Session) fail(msg string, fields []form.FieldError) Outbound {
	return Outbound{Type: TypeError, State: s.machine.State(), Error: msg, Fields: fields}
}

func fieldErrors(err error) []form.FieldError {
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return nil
}
