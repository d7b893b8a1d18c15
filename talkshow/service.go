package talkshow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/liamcoop/talky/internal/logger"
	"github.com/liamcoop/talky/llm"
)

// Result is the outcome of one pipeline run.
type Result struct {
	ID         string
	Message    string
	Correction Correction
}

// RunError wraps a generation failure with the run it belongs to.
type RunError struct {
	ID  string
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: %v", e.ID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Service chains the Corrector and the Generator.
type Service struct {
	corrector *Corrector
	generator *Generator
}

// NewService builds both stages on the same model.
func NewService(model llm.Model, extra ...AcceptanceRule) (*Service, error) {
	corrector, err := NewCorrector(model, extra...)
	if err != nil {
		return nil, err
	}
	return &Service{corrector: corrector, generator: NewGenerator(model)}, nil
}

// Run corrects raw then generates the announcement.
// Only generation errors are returned, as a *RunError.
func (s *Service) Run(ctx context.Context, raw RawDetails) (*Result, error) {
	id := uuid.New().String()
	start := time.Now()

	correction := s.corrector.Correct(ctx, raw)
	logger.Debug("details corrected",
		"run_id", id,
		"source", string(correction.Source),
		"numero", correction.Details.Numero,
	)

	msg, err := s.generator.Generate(ctx, correction.Details)
	if err != nil {
		logger.GenerationFailures.Add(1)
		return nil, &RunError{ID: id, Err: err}
	}

	logger.Info("talk-show generated",
		"run_id", id,
		"source", string(correction.Source),
		"duration", time.Since(start),
	)

	return &Result{ID: id, Message: msg, Correction: correction}, nil
}
