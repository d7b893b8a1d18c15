package schema

import (
	"fmt"
	"strings"

	"github.com/liamcoop/talky/rules"
)

// integerPattern matches strings the corrector accepts as an integer value.
const integerPattern = `^\s*[+-]?[0-9]+\s*$`

// FieldRule returns the CEL expression that holds when field of object has the given type.
// Missing fields never match.
func FieldRule(objectName, fieldName, typeName string) (string, error) {
	ref := objectName + "." + fieldName
	present := "has(" + ref + ")"

	var check string
	switch typeName {
	case "string":
		check = fmt.Sprintf("type(%s) == string", ref)
	case "bool":
		check = fmt.Sprintf("type(%s) == bool", ref)
	case "float64":
		check = fmt.Sprintf("(type(%[1]s) == double || type(%[1]s) == int)", ref)
	case "int":
		check = fmt.Sprintf("(type(%[1]s) == int || (type(%[1]s) == double && %[1]s == double(int(%[1]s))) || (type(%[1]s) == string && %[1]s.matches(r'%[2]s')))", ref, integerPattern)
	default:
		return "", fmt.Errorf("unsupported field type %q", typeName)
	}

	return present + " && " + check, nil
}

// TypeRules derives one active rule per schema field, ID'd as object.field.
func TypeRules(s Schema) ([]*rules.Rule, error) {
	var out []*rules.Rule
	for objectName := range s {
		for _, fieldName := range s.Fields(objectName) {
			expr, err := FieldRule(objectName, fieldName, s[objectName][fieldName])
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", objectName, fieldName, err)
			}
			out = append(out, &rules.Rule{
				ID:         objectName + "." + fieldName,
				Name:       fmt.Sprintf("%s must be %s", fieldName, s[objectName][fieldName]),
				Expression: expr,
				Active:     true,
			})
		}
	}
	return out, nil
}

// ViolationError lists the rules a record failed.
type ViolationError struct {
	Object     string
	Violations []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s violates schema: %s", e.Object, strings.Join(e.Violations, "; "))
}

// Checker validates decoded records against a compiled schema.
type Checker struct {
	schema Schema
	engine *rules.Engine
}

// NewChecker validates s and compiles its type rules.
func NewChecker(s Schema) (*Checker, error) {
	if err := ValidateSchema(s); err != nil {
		return nil, err
	}

	env, err := CreateCELEnvFromSchema(s)
	if err != nil {
		return nil, err
	}

	typeRules, err := TypeRules(s)
	if err != nil {
		return nil, err
	}

	store := rules.NewInMemoryRuleStore()
	for _, r := range typeRules {
		if err := store.Add(r); err != nil {
			return nil, err
		}
	}

	engine, err := rules.NewEngineWithEnv(env, store)
	if err != nil {
		return nil, err
	}

	return &Checker{schema: s, engine: engine}, nil
}

// AddRule compiles an extra rule over objectName. The rule's ID is object.name,
// so a name that repeats a field is rejected as a duplicate.
func (c *Checker) AddRule(objectName, name, expression string) error {
	if _, ok := c.schema[objectName]; !ok {
		return fmt.Errorf("object %q is not part of the schema", objectName)
	}
	if err := validateIdentifier(name); err != nil {
		return fmt.Errorf("invalid rule name %q: %w", name, err)
	}
	return c.engine.AddRule(&rules.Rule{
		ID:         objectName + "." + name,
		Name:       name,
		Expression: expression,
		Active:     true,
	})
}

// Check evaluates every rule against record bound as objectName.
// Returns a *ViolationError naming each rule that did not match.
func (c *Checker) Check(objectName string, record map[string]any) error {
	if _, ok := c.schema[objectName]; !ok {
		return fmt.Errorf("object %q is not part of the schema", objectName)
	}

	facts := make(map[string]any, len(c.schema))
	for name := range c.schema {
		facts[name] = map[string]any{}
	}
	facts[objectName] = record

	results, err := c.engine.EvaluateAll(facts)
	if err != nil {
		return err
	}

	var violations []string
	for _, res := range results {
		if !strings.HasPrefix(res.RuleID, objectName+".") {
			continue
		}
		switch {
		case res.Error != nil:
			violations = append(violations, fmt.Sprintf("%s (%v)", res.RuleName, res.Error))
		case !res.Matched:
			violations = append(violations, res.RuleName)
		}
	}

	if len(violations) > 0 {
		return &ViolationError{Object: objectName, Violations: violations}
	}
	return nil
}
