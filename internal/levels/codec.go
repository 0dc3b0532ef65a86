package levels

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type transitionWire struct {
	ToTurnID string        `json:"to_turn_id" yaml:"to_turn_id"`
	When     wireCondition `json:"when" yaml:"when"`
}

func (s wireCondition) decode() (BranchCondition, error) {
	threshold := func() (float64, error) {
		if s.Threshold == nil {
			return 0, fmt.Errorf("condition %q: missing threshold", s.Kind)
		}
		return *s.Threshold, nil
	}
	tool := func() (Tool, error) {
		if s.Tool == "" {
			return "", fmt.Errorf("condition %q: missing tool", s.Kind)
		}
		return s.Tool, nil
	}

	switch s.Kind {
	case KindAlways:
		return Always{}, nil
	case KindTurnScoreBelow:
		x, err := threshold()
		return TurnScoreBelow{Threshold: x}, err
	case KindTurnScoreAtLeast:
		x, err := threshold()
		return TurnScoreAtLeast{Threshold: x}, err
	case KindSemanticBelow:
		x, err := threshold()
		return SemanticBelow{Threshold: x}, err
	case KindRequiredToolNotUsed:
		t, err := tool()
		return RequiredToolNotUsed{Tool: t}, err
	case KindRequiredToolUsed:
		t, err := tool()
		return RequiredToolUsed{Tool: t}, err
	default:
		return nil, fmt.Errorf("unknown condition kind %q", s.Kind)
	}
}

func (t Transition) wire() (transitionWire, error) {
	if t.When == nil {
		return transitionWire{}, fmt.Errorf("transition to %q: missing condition", t.ToTurnID)
	}
	return transitionWire{ToTurnID: t.ToTurnID, When: encodeCondition(t.When)}, nil
}

func (t *Transition) fromWire(w transitionWire) error {
	cond, err := w.When.decode()
	if err != nil {
		return fmt.Errorf("transition to %q: %w", w.ToTurnID, err)
	}
	t.ToTurnID = w.ToTurnID
	t.When = cond
	return nil
}

// MarshalJSON encodes the condition as {"kind": ..., "threshold"|"tool": ...}.
func (t Transition) MarshalJSON() ([]byte, error) {
	w, err := t.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (t *Transition) UnmarshalJSON(data []byte) error {
	var w transitionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return t.fromWire(w)
}

func (t Transition) MarshalYAML() (interface{}, error) {
	return t.wire()
}

func (t *Transition) UnmarshalYAML(value *yaml.Node) error {
	var w transitionWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return t.fromWire(w)
}
