package rules

// Rule is a named CEL expression that must evaluate to true for a record to pass.
type Rule struct {
	ID         string
	Name       string
	Expression string
	Active     bool
}

// EvaluationResult contains the outcome of evaluating a rule
type EvaluationResult struct {
	RuleID   string
	RuleName string
	Matched  bool
	Error    error
}
