package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
)

// QuestionType identifies one of the supported question shapes.
type QuestionType string

const (
	TypeMCQ        QuestionType = "mcq"
	TypeReadingMCQ QuestionType = "reading_mcq"
	TypeTF         QuestionType = "tf"
	TypeFill       QuestionType = "fill"
	TypeReorder    QuestionType = "reorder"
)

// SupportedTypes lists every question type in prompt order.
var SupportedTypes = []QuestionType{TypeMCQ, TypeReadingMCQ, TypeTF, TypeFill, TypeReorder}

// Valid reports whether t is a supported question type.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMCQ, TypeReadingMCQ, TypeTF, TypeFill, TypeReorder:
		return true
	}
	return false
}

// IsChoice reports whether questions of this type carry four choices.
func (t QuestionType) IsChoice() bool {
	return t == TypeMCQ || t == TypeReadingMCQ
}

// Question is a validated quiz question. Only the fields belonging to
// Type are meaningful; the JSON form carries only those.
type Question struct {
	ID   int64
	Type QuestionType

	// Text is the question prompt, possibly prefixed with a "[material] " tag.
	Text string

	// Passage is the reading text of a reading_mcq question.
	Passage string

	// Choices and CorrectIndex belong to mcq and reading_mcq.
	Choices      []string
	CorrectIndex int

	// Truth is the answer of a tf question.
	Truth bool

	// Answer is the expected answer of fill and reorder questions.
	Answer string

	// Words are the shuffled words of a reorder question.
	Words []string
}

// Record returns the question's wire form as a generic map, the same shape
// a model backend is asked to produce.
func (q Question) Record() map[string]any {
	rec := map[string]any{
		"id":       q.ID,
		"type":     string(q.Type),
		"question": q.Text,
	}
	switch q.Type {
	case TypeReadingMCQ:
		rec["passage"] = q.Passage
		rec["choices"] = q.Choices
		rec["correctIndex"] = q.CorrectIndex
	case TypeMCQ:
		rec["choices"] = q.Choices
		rec["correctIndex"] = q.CorrectIndex
	case TypeTF:
		rec["answer"] = q.Truth
	case TypeFill:
		rec["answer"] = q.Answer
	case TypeReorder:
		rec["words"] = q.Words
		rec["answer"] = q.Answer
	}
	return rec
}

func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Record())
}

// UnmarshalJSON decodes a stored or client-supplied question and runs it
// through the validator, so a decoded Question is always well-formed.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, verr := defaultValidator.Validate(raw)
	if verr != nil {
		return verr
	}
	*q = out
	return nil
}

// Request is one batch generation request.
type Request struct {
	Grade          int
	Skill          string
	Difficulty     string
	Count          int
	Types          []string
	Material       string
	UnitText       string
	PoolMultiplier int
	Avoid          []string
}

// Result is the outcome of a batch generation. A short result carries a
// Warning; it is never an error.
type Result struct {
	Questions []Question
	Warning   string

	// RequestID identifies the call in logs and the generation store.
	RequestID string
	// Rounds is the number of generation rounds that ran.
	Rounds int
	// Fallbacks counts rounds served by the mock generator after a model failure.
	Fallbacks int
}

// RegenerateRequest asks for a single replacement question.
type RegenerateRequest struct {
	Grade      int
	Skill      string
	Difficulty string
	Type       string
	Material   string
	UnitText   string
	Avoid      []string
}

// BatchInput is what one generation round asks a generator for.
type BatchInput struct {
	Grade      int
	Skill      string
	Difficulty string
	Types      []QuestionType
	Count      int
	Material   string
	UnitText   string
	AvoidStems []string
}

// BatchResult is either a set of validated questions or a failure. A nil
// Failure means success, even when Questions is empty.
type BatchResult struct {
	Questions []Question
	Failure   *GenerationError
}

// BatchGenerator produces a round of validated questions.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, in BatchInput) BatchResult
}

// FailureKind classifies a failed model-backed batch.
type FailureKind string

const (
	KindBackendUnavailable FailureKind = "BackendUnavailable"
	KindMalformedResponse  FailureKind = "MalformedResponse"
)

// GenerationError describes why a model-backed batch produced nothing.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
