package levels

// #region condition
// BranchCondition guards a transition. The set of conditions is closed:
// every implementation lives in this file and every visitor must handle
// all of them.
type BranchCondition interface {
	Accept(v ConditionVisitor)
	isBranchCondition()
}

// ConditionVisitor dispatches on the concrete condition kind.
type ConditionVisitor interface {
	VisitAlways(Always)
	VisitTurnScoreBelow(TurnScoreBelow)
	VisitTurnScoreAtLeast(TurnScoreAtLeast)
	VisitSemanticBelow(SemanticBelow)
	VisitRequiredToolNotUsed(RequiredToolNotUsed)
	VisitRequiredToolUsed(RequiredToolUsed)
}

// Always matches unconditionally.
type Always struct{}

// TurnScoreBelow matches when the turn score (0..1) is below Threshold.
type TurnScoreBelow struct{ Threshold float64 }

// TurnScoreAtLeast matches when the turn score (0..1) is at least Threshold.
type TurnScoreAtLeast struct{ Threshold float64 }

// SemanticBelow matches when the semantic similarity (0..1) is below Threshold.
type SemanticBelow struct{ Threshold float64 }

// RequiredToolNotUsed matches when Tool was not used during the turn.
type RequiredToolNotUsed struct{ Tool Tool }

// RequiredToolUsed matches when Tool was used during the turn.
type RequiredToolUsed struct{ Tool Tool }

func (c Always) Accept(v ConditionVisitor)              { v.VisitAlways(c) }
func (c TurnScoreBelow) Accept(v ConditionVisitor)      { v.VisitTurnScoreBelow(c) }
func (c TurnScoreAtLeast) Accept(v ConditionVisitor)    { v.VisitTurnScoreAtLeast(c) }
func (c SemanticBelow) Accept(v ConditionVisitor)       { v.VisitSemanticBelow(c) }
func (c RequiredToolNotUsed) Accept(v ConditionVisitor) { v.VisitRequiredToolNotUsed(c) }
func (c RequiredToolUsed) Accept(v ConditionVisitor)    { v.VisitRequiredToolUsed(c) }

func (Always) isBranchCondition()              {}
func (TurnScoreBelow) isBranchCondition()      {}
func (TurnScoreAtLeast) isBranchCondition()    {}
func (SemanticBelow) isBranchCondition()       {}
func (RequiredToolNotUsed) isBranchCondition() {}
func (RequiredToolUsed) isBranchCondition()    {}

// #endregion condition

// #region kinds
// Condition kinds as they appear in scenario files.
const (
	KindAlways              = "always"
	KindTurnScoreBelow      = "turn_score_below"
	KindTurnScoreAtLeast    = "turn_score_at_least"
	KindSemanticBelow       = "semantic_below"
	KindRequiredToolNotUsed = "required_tool_not_used"
	KindRequiredToolUsed    = "required_tool_used"
)

// wireCondition is the flat wire form of a condition.
type wireCondition struct {
	Kind      string   `json:"kind" yaml:"kind"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Tool      Tool     `json:"tool,omitempty" yaml:"tool,omitempty"`
}

type wireEncoder struct{ out wireCondition }

func (e *wireEncoder) threshold(kind string, x float64) {
	e.out = wireCondition{Kind: kind, Threshold: &x}
}

func (e *wireEncoder) VisitAlways(Always) { e.out = wireCondition{Kind: KindAlways} }
func (e *wireEncoder) VisitTurnScoreBelow(c TurnScoreBelow) {
	e.threshold(KindTurnScoreBelow, c.Threshold)
}
func (e *wireEncoder) VisitTurnScoreAtLeast(c TurnScoreAtLeast) {
	e.threshold(KindTurnScoreAtLeast, c.Threshold)
}
func (e *wireEncoder) VisitSemanticBelow(c SemanticBelow) {
	e.threshold(KindSemanticBelow, c.Threshold)
}
func (e *wireEncoder) VisitRequiredToolNotUsed(c RequiredToolNotUsed) {
	e.out = wireCondition{Kind: KindRequiredToolNotUsed, Tool: c.Tool}
}
func (e *wireEncoder) VisitRequiredToolUsed(c RequiredToolUsed) {
	e.out = wireCondition{Kind: KindRequiredToolUsed, Tool: c.Tool}
}

func encodeCondition(c BranchCondition) wireCondition {
	var e wireEncoder
	c.Accept(&e)
	return e.out
}

// ConditionKind returns the wire kind of c.
func ConditionKind(c BranchCondition) string {
	return encodeCondition(c).Kind
}

// #endregion kinds
