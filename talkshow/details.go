package talkshow

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// defaultNumero is used when numero cannot be read as an integer.
const defaultNumero = 1

// RawDetails is the free-form event description sent by the caller.
type RawDetails map[string]any

// CorrectedDetails is the fixed record the generator renders.
type CorrectedDetails struct {
	Numero  int    `json:"numero"`
	Theme   string `json:"theme"`
	Date    string `json:"date"`
	Horaire string `json:"horaire"`
	Lieu    string `json:"lieu"`
}

// Source tells where a CorrectedDetails came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Correction is the outcome of Corrector.Correct.
// Err holds the reason the model path was abandoned when Source is SourceFallback.
type Correction struct {
	Details CorrectedDetails
	Source  Source
	Err     error
}

// Fallback builds CorrectedDetails from raw without calling a model.
func Fallback(raw RawDetails) CorrectedDetails {
	n, ok := coerceNumero(raw["numero"])
	if !ok {
		n = defaultNumero
	}
	return CorrectedDetails{
		Numero:  n,
		Theme:   stringField(raw["theme"]),
		Date:    stringField(raw["date"]),
		Horaire: stringField(raw["horaire"]),
		Lieu:    stringField(raw["lieu"]),
	}
}

// coerceNumero reads v as an integer. Floats truncate toward zero,
// booleans count as 0 and 1, and strings may carry surrounding spaces and a sign.
func coerceNumero(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return truncate(float64(n))
	case float64:
		return truncate(n)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return coerceNumero(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int(t), true
}

// stringField renders a passthrough value as text. Missing and null become "".
func stringField(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
