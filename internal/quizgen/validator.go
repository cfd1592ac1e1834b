package quizgen

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError describes why a candidate was rejected.
type ValidationError struct {
	Rule    string // Short identifier of the failed rule, e.g. "choices"
	Message string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Message)
}

func reject(rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Validator coerces decoded JSON candidates into well-formed Questions.
// It is stateless apart from its IDSource and safe for concurrent use.
type Validator struct {
	ids IDSource
}

// NewValidator returns a Validator that assigns missing ids from ids.
// A nil ids uses the time-based strategy.
func NewValidator(ids IDSource) *Validator {
	if ids == nil {
		ids = NewTimeIDs()
	}
	return &Validator{ids: ids}
}

var defaultValidator = NewValidator(nil)

// Validate checks a candidate (normally a map decoded from JSON) and
// returns the question in canonical form, or the first rule it breaks.
// Fields that do not belong to the question's type are dropped.
func (v *Validator) Validate(candidate any) (Question, *ValidationError) {
	rec, ok := candidate.(map[string]any)
	if !ok {
		return Question{}, reject("record", "candidate is %T, not an object", candidate)
	}

	// An absent type means mcq; an explicit null is not a type.
	qtype := TypeMCQ
	if raw, present := rec["type"]; present {
		if raw == nil {
			return Question{}, reject("type", "type is null")
		}
		qtype = QuestionType(strings.TrimSpace(stringify(raw)))
	}
	if !qtype.Valid() {
		return Question{}, reject("type", "unsupported type %q", qtype)
	}

	text := strings.TrimSpace(stringify(rec["question"]))
	if text == "" {
		return Question{}, reject("question", "question text is empty")
	}

	q := Question{ID: v.id(rec["id"]), Type: qtype, Text: text}

	switch qtype {
	case TypeReadingMCQ, TypeMCQ:
		if qtype == TypeReadingMCQ {
			q.Passage = strings.TrimSpace(stringify(rec["passage"]))
			if q.Passage == "" {
				return Question{}, reject("passage", "reading_mcq requires a passage")
			}
		}
		choices, ok := stringList(rec["choices"])
		if !ok || len(choices) != 4 {
			return Question{}, reject("choices", "expected exactly 4 choices")
		}
		idx, ok := toInt(rec["correctIndex"])
		if !ok {
			return Question{}, reject("correctIndex", "correctIndex %v is not an integer", rec["correctIndex"])
		}
		if idx < 0 || idx > 3 {
			return Question{}, reject("correctIndex", "correctIndex %d out of range [0,3]", idx)
		}
		q.Choices = choices
		q.CorrectIndex = idx

	case TypeTF:
		truth, ok := toTruth(rec["answer"])
		if !ok {
			return Question{}, reject("answer", "tf answer %v is not a boolean", rec["answer"])
		}
		q.Truth = truth

	case TypeFill:
		q.Answer = strings.TrimSpace(stringify(rec["answer"]))
		if q.Answer == "" {
			return Question{}, reject("answer", "fill answer is empty")
		}

	case TypeReorder:
		words, ok := stringList(rec["words"])
		if !ok || len(words) < 3 {
			return Question{}, reject("words", "reorder needs at least 3 words")
		}
		q.Answer = strings.TrimSpace(stringify(rec["answer"]))
		if q.Answer == "" {
			return Question{}, reject("answer", "reorder answer is empty")
		}
		q.Words = words
	}

	return q, nil
}

// id keeps a positive integral id from the candidate and otherwise
// synthesizes one.
func (v *Validator) id(raw any) int64 {
	switch n := raw.(type) {
	case float64:
		if n >= 1 && n == math.Trunc(n) && n < math.MaxInt64 {
			return int64(n)
		}
	case int:
		if n > 0 {
			return int64(n)
		}
	case int64:
		if n > 0 {
			return n
		}
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			return i
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return v.ids.NextID()
}

// stringify renders a scalar JSON value as text. Integral numbers render
// without a fractional part.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprint(s)
	}
}

func stringList(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return append([]string(nil), items...), true
	case []any:
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = stringify(item)
		}
		return out, true
	}
	return nil, false
}

// toInt accepts integers, integral floats and numeric strings. Booleans
// and fractional numbers are rejected.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func toTruth(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if v == nil {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(stringify(v))) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
