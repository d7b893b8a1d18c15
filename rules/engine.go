package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Engine compiles rules from a store once and evaluates them against facts.
// Safe for concurrent evaluation.
type Engine struct {
	env      *cel.Env
	store    RuleStore
	programs map[string]cel.Program // ruleID -> compiled program
	mu       sync.RWMutex
}

// NewEngineWithEnv creates a rules engine over a custom CEL environment and
// compiles every active rule in the store.
func NewEngineWithEnv(env *cel.Env, store RuleStore) (*Engine, error) {
	en := &Engine{
		env:      env,
		store:    store,
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAllRules(); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return en, nil
}

// CompileRule compiles a single rule expression to a cost-limited CEL program.
func (en *Engine) CompileRule(ruleID, expression string) error {
	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := en.env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	en.mu.Lock()
	en.programs[ruleID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAllRules compiles all active rules from the store
func (en *Engine) CompileAllRules() error {
	rules, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if err := en.CompileRule(rule.ID, rule.Expression); err != nil {
			return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
		}
	}

	return nil
}

// AddRule validates that a rule compiles, then adds it to the store.
func (en *Engine) AddRule(r *Rule) error {
	if _, err := en.store.Get(r.ID); err == nil {
		return fmt.Errorf("rule with ID %s already exists", r.ID)
	}

	if err := en.CompileRule(r.ID, r.Expression); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := en.store.Add(r); err != nil {
		en.mu.Lock()
		delete(en.programs, r.ID)
		en.mu.Unlock()
		return err
	}

	return nil
}

// EvaluateAll evaluates all active rules against the provided facts.
// Keeps evaluating when individual rules fail; failures are reported per result.
func (en *Engine) EvaluateAll(facts map[string]any) ([]*EvaluationResult, error) {
	rules, err := en.store.ListActive()
	if err != nil {
		return nil, err
	}

	results := make([]*EvaluationResult, 0, len(rules))
	for _, rule := range rules {
		en.mu.RLock()
		prog, exists := en.programs[rule.ID]
		en.mu.RUnlock()

		if !exists {
			results = append(results, &EvaluationResult{
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Error:    fmt.Errorf("rule %s is not compiled", rule.ID),
			})
			continue
		}

		results = append(results, evaluate(rule, prog, facts))
	}

	return results, nil
}

func evaluate(rule *Rule, prog cel.Program, facts map[string]any) *EvaluationResult {
	out, _, err := prog.Eval(facts)
	if err != nil {
		return &EvaluationResult{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Error:    err,
		}
	}

	matched := false
	if boolVal, ok := out.Value().(bool); ok {
		matched = boolVal
	}

	return &EvaluationResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Matched:  matched,
	}
}
