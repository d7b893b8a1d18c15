package talkshow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/liamcoop/talky/internal/logger"
	"github.com/liamcoop/talky/llm"
	"github.com/liamcoop/talky/schema"
)

// ErrNoJSON is returned when a model reply holds no JSON object.
var ErrNoJSON = errors.New("no JSON object found in model reply")

// AcceptanceRule is an extra CEL condition over details that a model
// correction must satisfy, e.g. size(details.theme) > 0.
type AcceptanceRule struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Corrector normalizes RawDetails into CorrectedDetails.
// The model is asked first; any failure falls back to Fallback.
type Corrector struct {
	model   llm.Model
	checker *schema.Checker
}

// NewCorrector compiles the CorrectedDetails schema plus any extra rules and binds them to model.
func NewCorrector(model llm.Model, extra ...AcceptanceRule) (*Corrector, error) {
	checker, err := schema.NewChecker(schema.CorrectedDetails())
	if err != nil {
		return nil, fmt.Errorf("compile corrected details schema: %w", err)
	}
	for _, r := range extra {
		if err := checker.AddRule(schema.DetailsObject, r.Name, r.Expression); err != nil {
			return nil, fmt.Errorf("acceptance rule %q: %w", r.Name, err)
		}
	}
	return &Corrector{model: model, checker: checker}, nil
}

// Correct never fails. The returned Correction says which path produced the details.
func (c *Corrector) Correct(ctx context.Context, raw RawDetails) Correction {
	details, err := c.correctWithModel(ctx, raw)
	if err == nil {
		logger.ModelCorrections.Add(1)
		return Correction{Details: details, Source: SourceModel}
	}

	logger.FallbackCorrection.Add(1)
	logger.Warn("correction failed, using original details", "error", err)
	return Correction{Details: Fallback(raw), Source: SourceFallback, Err: err}
}

func (c *Corrector) correctWithModel(ctx context.Context, raw RawDetails) (details CorrectedDetails, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			details, err = CorrectedDetails{}, fmt.Errorf("corrector panic: %v", rec)
		}
	}()

	payload, err := json.Marshal(raw)
	if err != nil {
		return CorrectedDetails{}, fmt.Errorf("encode details: %w", err)
	}

	reply, err := c.model.Complete(ctx, llm.Prompt{
		System: correctorSystemPrompt,
		User:   correctorUserPrefix + string(payload),
		Format: llm.FormatJSON,
	})
	if err != nil {
		return CorrectedDetails{}, fmt.Errorf("corrector model call: %w", err)
	}
	logger.Trace("corrector reply", "reply", reply)

	return c.parse(reply)
}

// parse extracts the JSON object from reply and checks it against the schema.
func (c *Corrector) parse(reply string) (CorrectedDetails, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end <= start {
		return CorrectedDetails{}, ErrNoJSON
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &record); err != nil {
		return CorrectedDetails{}, fmt.Errorf("parse corrected details: %w", err)
	}

	if err := c.checker.Check(schema.DetailsObject, record); err != nil {
		return CorrectedDetails{}, err
	}

	numero, ok := coerceNumero(record["numero"])
	if !ok {
		return CorrectedDetails{}, &schema.ViolationError{
			Object:     schema.DetailsObject,
			Violations: []string{"numero must be int"},
		}
	}

	return CorrectedDetails{
		Numero:  numero,
		Theme:   record["theme"].(string),
		Date:    record["date"].(string),
		Horaire: record["horaire"].(string),
		Lieu:    record["lieu"].(string),
	}, nil
}
