package quizgen

import (
	"encoding/json"
	"regexp"
)

// PayloadShape tags what was recovered from a model's free-text response.
type PayloadShape int

const (
	ShapeUnparseable PayloadShape = iota
	ShapeArray
	ShapeObjectWithQuestions
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeObjectWithQuestions:
		return "object-with-questions"
	default:
		return "unparseable"
	}
}

// Payload is the recovered candidate list. Items is nil when Shape is
// ShapeUnparseable, in which case Reason says why.
type Payload struct {
	Shape  PayloadShape
	Items  []any
	Reason string
}

// Greedy matches span from the first opening to the last closing bracket,
// which tolerates code fences and prose around the JSON.
var (
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArray  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractPayload finds the question list in model output. An embedded
// object with a "questions" array wins; otherwise an embedded array is
// used as-is.
func ExtractPayload(text string) Payload {
	if m := jsonObject.FindString(text); m != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			if items, ok := obj["questions"].([]any); ok {
				return Payload{Shape: ShapeObjectWithQuestions, Items: items}
			}
		}
	}

	m := jsonArray.FindString(text)
	if m == "" {
		return Payload{Shape: ShapeUnparseable, Reason: "model did not return valid JSON"}
	}
	var items []any
	if err := json.Unmarshal([]byte(m), &items); err != nil {
		return Payload{Shape: ShapeUnparseable, Reason: "model did not return valid JSON: " + err.Error()}
	}
	return Payload{Shape: ShapeArray, Items: items}
}
