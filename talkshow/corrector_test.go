package talkshow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/liamcoop/talky/llm"
	"github.com/liamcoop/talky/schema"
)

func newTestCorrector(t *testing.T, m llm.Model) *Corrector {
	t.Helper()
	c, err := NewCorrector(m)
	if err != nil {
		t.Fatalf("NewCorrector() failed: %v", err)
	}
	return c
}

func TestCorrect_ModelPath(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  CorrectedDetails
	}{
		{
			name:  "plain json",
			reply: `{"numero": 3, "theme": "Travail", "date": "12 mai", "horaire": "18h-19h", "lieu": "Studio A"}`,
			want:  CorrectedDetails{Numero: 3, Theme: "Travail", Date: "12 mai", Horaire: "18h-19h", Lieu: "Studio A"},
		},
		{
			name:  "fenced with prose",
			reply: "Voici:\n```json\n{\"numero\": \"4\", \"theme\": \"IA\", \"date\": \"1 juin\", \"horaire\": \"de 18:00 à 19:00\", \"lieu\": \"Paris\"}\n```",
			want:  CorrectedDetails{Numero: 4, Theme: "IA", Date: "1 juin", Horaire: "de 18:00 à 19:00", Lieu: "Paris"},
		},
		{
			name:  "extra keys ignored",
			reply: `{"numero": 5.0, "theme": "", "date": "d", "horaire": "h", "lieu": "l", "note": "x"}`,
			want:  CorrectedDetails{Numero: 5, Theme: "", Date: "d", Horaire: "h", Lieu: "l"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCorrector(t, &fakeModel{correct: reply(tt.reply)})
			got := c.Correct(context.Background(), RawDetails{"numero": "x"})
			if got.Source != SourceModel {
				t.Fatalf("expected model source, got %s (err: %v)", got.Source, got.Err)
			}
			if got.Err != nil {
				t.Errorf("unexpected error: %v", got.Err)
			}
			if got.Details != tt.want {
				t.Errorf("Details = %+v, want %+v", got.Details, tt.want)
			}
		})
	}
}

func TestCorrect_SendsJSONPrompt(t *testing.T) {
	m := &fakeModel{correct: reply(`{"numero":1,"theme":"t","date":"d","horaire":"h","lieu":"l"}`)}
	c := newTestCorrector(t, m)

	c.Correct(context.Background(), RawDetails{"numero": "un", "theme": "Travail"})

	if len(m.prompts) != 1 {
		t.Fatalf("expected one model call, got %d", len(m.prompts))
	}
	p := m.prompts[0]
	if p.Format != llm.FormatJSON {
		t.Errorf("expected JSON format, got %s", p.Format)
	}
	if p.System != correctorSystemPrompt {
		t.Error("corrector should send its system instruction")
	}
	if p.User != correctorUserPrefix+`{"numero":"un","theme":"Travail"}` {
		t.Errorf("unexpected user message: %q", p.User)
	}
}

func TestCorrect_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		correct func() (string, error)
		check   func(t *testing.T, err error)
	}{
		{
			name:    "provider error",
			correct: fail(errProviderDown),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, errProviderDown) {
					t.Errorf("expected provider error, got %v", err)
				}
			},
		},
		{
			name:    "no json",
			correct: reply("désolé, je ne peux pas"),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("expected ErrNoJSON, got %v", err)
				}
			},
		},
		{
			name:    "malformed json",
			correct: reply(`{"numero": 3, "theme": }`),
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "parse corrected details") {
					t.Errorf("expected parse error, got %v", err)
				}
			},
		},
		{
			name:    "non-integer numero",
			correct: reply(`{"numero": "trois", "theme": "t", "date": "d", "horaire": "h", "lieu": "l"}`),
			check:   expectViolation("numero must be int"),
		},
		{
			name:    "missing field",
			correct: reply(`{"numero": 3, "theme": "t", "date": "d", "horaire": "h"}`),
			check:   expectViolation("lieu must be string"),
		},
		{
			name:    "wrong type",
			correct: reply(`{"numero": 3, "theme": ["t"], "date": "d", "horaire": "h", "lieu": "l"}`),
			check:   expectViolation("theme must be string"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCorrector(t, &fakeModel{correct: tt.correct})
			raw := RawDetails{"numero": "7", "theme": "Travail", "date": "12 mai", "horaire": "18h-19h", "lieu": "Studio A"}

			got := c.Correct(context.Background(), raw)

			if got.Source != SourceFallback {
				t.Fatalf("expected fallback source, got %s", got.Source)
			}
			want := CorrectedDetails{Numero: 7, Theme: "Travail", Date: "12 mai", Horaire: "18h-19h", Lieu: "Studio A"}
			if got.Details != want {
				t.Errorf("Details = %+v, want %+v", got.Details, want)
			}
			tt.check(t, got.Err)
		})
	}
}

func expectViolation(rule string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var verr *schema.ViolationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *schema.ViolationError, got %T: %v", err, err)
		}
		for _, v := range verr.Violations {
			if strings.HasPrefix(v, rule) {
				return
			}
		}
		t.Errorf("expected violation %q, got %v", rule, verr.Violations)
	}
}

func TestCorrect_FallbackNumero(t *testing.T) {
	c := newTestCorrector(t, &fakeModel{})

	tests := []struct {
		numero any
		want   int
	}{
		{"abc", 1},
		{"7", 7},
		{"", 1},
	}
	for _, tt := range tests {
		got := c.Correct(context.Background(), RawDetails{"numero": tt.numero})
		if got.Details.Numero != tt.want {
			t.Errorf("numero %q: got %d, want %d", tt.numero, got.Details.Numero, tt.want)
		}
	}
}

func TestCorrect_DoesNotMutateInput(t *testing.T) {
	c := newTestCorrector(t, &fakeModel{})
	raw := RawDetails{"numero": "abc"}

	c.Correct(context.Background(), raw)

	if raw["numero"] != "abc" {
		t.Errorf("input was modified: %v", raw)
	}
}

// panicModel fails the corrector call with a runtime panic.
type panicModel struct{}

func (panicModel) Complete(context.Context, llm.Prompt) (string, error) {
	var m map[string]int
	m["numero"]++
	return "", nil
}

func TestCorrect_PanicFallsBack(t *testing.T) {
	c := newTestCorrector(t, panicModel{})

	got := c.Correct(context.Background(), RawDetails{"numero": "7", "theme": "Travail"})

	if got.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %s", got.Source)
	}
	if got.Details.Numero != 7 || got.Details.Theme != "Travail" {
		t.Errorf("unexpected details: %+v", got.Details)
	}
	if got.Err == nil || !strings.Contains(got.Err.Error(), "corrector panic") {
		t.Errorf("expected the panic as the fallback cause, got %v", got.Err)
	}
}

func TestCorrect_AcceptanceRules(t *testing.T) {
	m := &fakeModel{correct: reply(`{"numero": 3, "theme": "", "date": "d", "horaire": "h", "lieu": "l"}`)}
	c, err := NewCorrector(m, AcceptanceRule{Name: "theme_not_empty", Expression: `size(details.theme) > 0`})
	if err != nil {
		t.Fatalf("NewCorrector() failed: %v", err)
	}

	got := c.Correct(context.Background(), RawDetails{"numero": "2", "theme": "Travail"})

	if got.Source != SourceFallback {
		t.Fatalf("a reply breaking an acceptance rule should fall back, got %s", got.Source)
	}
	if got.Details.Theme != "Travail" || got.Details.Numero != 2 {
		t.Errorf("unexpected details: %+v", got.Details)
	}
	expectViolation("theme_not_empty")(t, got.Err)
}

func TestNewCorrector_RejectsBadAcceptanceRule(t *testing.T) {
	_, err := NewCorrector(&fakeModel{}, AcceptanceRule{Name: "bad", Expression: `details.theme >`})
	if err == nil || !strings.Contains(err.Error(), `acceptance rule "bad"`) {
		t.Fatalf("expected acceptance rule error, got %v", err)
	}
}
