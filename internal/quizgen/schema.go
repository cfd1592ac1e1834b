package quizgen

import "github.com/abhisek/quizsmith/internal/llm"

// QuizBatchSchema constrains structured-output providers to the batch
// envelope. Every item carries every field so strict providers accept it;
// the validator drops the fields a type does not use. The tf answer is a
// string here and is coerced from "true"/"false".
//
// Replies are only held to the envelope (a "questions" array). Items are
// judged one by one by Validator, so a single off-shape item is dropped
// instead of failing the batch.
var QuizBatchSchema = &llm.Schema{
	Name:        "quiz-batch",
	Description: "A batch of English quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{"type": "integer"},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"mcq", "reading_mcq", "tf", "fill", "reorder"},
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question prompt shown to the student",
						},
						"passage": map[string]any{
							"type":        "string",
							"description": "Reading passage for reading_mcq, empty otherwise",
						},
						"choices": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options for mcq and reading_mcq, empty otherwise",
						},
						"correctIndex": map[string]any{
							"type":        "integer",
							"description": "Index of the correct choice (0-3) for mcq and reading_mcq, 0 otherwise",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "\"true\"/\"false\" for tf, the word for fill, the sentence for reorder",
						},
						"words": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Shuffled words for reorder, empty otherwise",
						},
					},
					"required":             []any{"id", "type", "question", "passage", "choices", "correctIndex", "answer", "words"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
	Accept: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{"type": "array"},
		},
		"required": []any{"questions"},
	},
}
