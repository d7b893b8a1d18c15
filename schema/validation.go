package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateSchema validates a schema definition.
// Returns an error if validation fails, nil if schema is valid.
func ValidateSchema(s Schema) error {
	if len(s) == 0 {
		return fmt.Errorf("schema cannot be empty, must contain at least one object definition")
	}

	for objectName, fields := range s {
		if err := validateIdentifier(objectName); err != nil {
			return fmt.Errorf("invalid object name %q: %w", objectName, err)
		}

		if len(fields) == 0 {
			return fmt.Errorf("object %q must contain at least one field", objectName)
		}

		for fieldName, typeName := range fields {
			if err := validateIdentifier(fieldName); err != nil {
				return fmt.Errorf("invalid field name %q in object %q: %w", fieldName, objectName, err)
			}

			if typeName == "" {
				return fmt.Errorf("field %q in object %q has empty type name", fieldName, objectName)
			}

			if strings.TrimSpace(typeName) != typeName {
				return fmt.Errorf("field %q in object %q has type with leading/trailing whitespace: %q", fieldName, objectName, typeName)
			}

			if !isValidFieldType(typeName) {
				return fmt.Errorf("field %q in object %q has invalid type %q (must be one of: int, float64, string, bool)", fieldName, objectName, typeName)
			}
		}
	}

	return nil
}

// validateIdentifier validates an object, field or rule name.
// Must match ^[a-zA-Z_][a-zA-Z0-9_]*$, be 1-100 characters and not be a reserved keyword.
func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("identifier length %d exceeds maximum of 100 characters", len(name))
	}

	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$ (start with letter or underscore, followed by letters, digits, or underscores)")
	}

	if isReservedKeyword(name) {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}

	return nil
}

// isValidFieldType reports whether a type name can be checked against decoded JSON.
// Type names are case-sensitive.
func isValidFieldType(typeName string) bool {
	switch typeName {
	case "int", "float64", "string", "bool":
		return true
	}
	return false
}

// isReservedKeyword checks if a name is a CEL reserved keyword.
func isReservedKeyword(name string) bool {
	reservedKeywords := map[string]bool{
		// Boolean and null literals
		"true":  true,
		"false": true,
		"null":  true,
		// Control flow
		"if":       true,
		"else":     true,
		"for":      true,
		"while":    true,
		"break":    true,
		"continue": true,
		"return":   true,
		// Declarations
		"var":      true,
		"let":      true,
		"const":    true,
		"function": true,
		// Other keywords
		"in":        true,
		"as":        true,
		"import":    true,
		"package":   true,
		"namespace": true,
		"loop":      true,
		"void":      true,
	}

	return reservedKeywords[name]
}
