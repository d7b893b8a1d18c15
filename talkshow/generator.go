package talkshow

import (
	"context"
	"fmt"

	"github.com/liamcoop/talky/llm"
)

// Generator renders CorrectedDetails into a talk-show announcement.
type Generator struct {
	model llm.Model
}

func NewGenerator(model llm.Model) *Generator {
	return &Generator{model: model}
}

// Generate returns the model's reply verbatim. Errors are not recovered.
func (g *Generator) Generate(ctx context.Context, d CorrectedDetails) (string, error) {
	prompt, err := RenderTalkShowPrompt(d)
	if err != nil {
		return "", fmt.Errorf("render talk-show prompt: %w", err)
	}

	out, err := g.model.Complete(ctx, llm.Prompt{User: prompt, Format: llm.FormatText})
	if err != nil {
		return "", fmt.Errorf("generate talk-show: %w", err)
	}
	return out, nil
}
