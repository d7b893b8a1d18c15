package schema

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
)

// Schema maps object names to field definitions (field name -> type name).
type Schema map[string]map[string]string

// DetailsObject is the object name the corrected event record is bound to.
const DetailsObject = "details"

// CorrectedDetails is the fixed shape every correction must satisfy.
func CorrectedDetails() Schema {
	return Schema{
		DetailsObject: {
			"numero":  "int",
			"theme":   "string",
			"date":    "string",
			"horaire": "string",
			"lieu":    "string",
		},
	}
}

// CreateCELEnvFromSchema creates a CEL environment with one variable per schema object.
// Objects are declared as DynType so decoded JSON maps can be bound directly.
func CreateCELEnvFromSchema(s Schema) (*cel.Env, error) {
	var opts []cel.EnvOption
	for objectName := range s {
		opts = append(opts, cel.Variable(objectName, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// Fields returns the field names of an object in sorted order.
func (s Schema) Fields(objectName string) []string {
	fields := make([]string, 0, len(s[objectName]))
	for name := range s[objectName] {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
