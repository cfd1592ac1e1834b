package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an English teacher writing quiz questions for school students.

Rules:
- Return ONLY valid JSON: an object with a "questions" array.
- Do NOT repeat the same idea. Avoid near-duplicates.
- Questions must match the provided material/unit when possible.
- For mcq/reading_mcq: choices must be EXACTLY 4, and only one correct.
- For fill: answer is ONE word (or short phrase for grade 8-9).
- For tf: the statement must be clear; answer is "true" or "false".
- For reorder: provide shuffled words; answer is the correct sentence.`

// typeExamples show every item with the full field set of the batch
// schema; unused fields stay empty.
var typeExamples = map[QuestionType]string{
	TypeMCQ:        `{"id": 1, "type": "mcq", "question": "...", "passage": "", "choices": ["A", "B", "C", "D"], "correctIndex": 0, "answer": "", "words": []}`,
	TypeReadingMCQ: `{"id": 2, "type": "reading_mcq", "question": "...", "passage": "...", "choices": ["A", "B", "C", "D"], "correctIndex": 2, "answer": "", "words": []}`,
	TypeTF:         `{"id": 3, "type": "tf", "question": "...", "passage": "", "choices": [], "correctIndex": 0, "answer": "true", "words": []}`,
	TypeFill:       `{"id": 4, "type": "fill", "question": "I ___ a student.", "passage": "", "choices": [], "correctIndex": 0, "answer": "am", "words": []}`,
	TypeReorder:    `{"id": 5, "type": "reorder", "question": "Arrange the words ...", "passage": "", "choices": [], "correctIndex": 0, "answer": "...", "words": ["..."]}`,
}

// buildUserMessage renders the batch request for the model.
func buildUserMessage(in BatchInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate EXACTLY %d questions for Grade %d.\n\n", in.Count, in.Grade)
	fmt.Fprintf(&b, "Skill: %s\n", in.Skill)
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	if in.Material != "" {
		fmt.Fprintf(&b, "Material/Unit: %s\n", in.Material)
	} else {
		b.WriteString("Material/Unit: (not provided)\n")
	}
	fmt.Fprintf(&b, "Allowed question types: %s\n", joinTypes(in.Types))

	b.WriteString("\nOutput must be a JSON object with this exact format:\n{\n  \"questions\": [ ... ]\n}\n")

	b.WriteString("\nType schemas:\n")
	for i, t := range SupportedTypes {
		fmt.Fprintf(&b, "%d) %s:\n%s\n\n", i+1, t, typeExamples[t])
	}

	b.WriteString("Avoid these stems (do not repeat them):\n")
	b.WriteString(buildAvoid(in.AvoidStems, cfg.PromptAvoidCap))

	if lesson := trimContext(in.UnitText, cfg.ContextBudget); lesson != "" {
		b.WriteString("\n\nLesson text (if provided, base questions on it):\n")
		b.WriteString(lesson)
	}

	return b.String()
}

// buildAvoid lists the first max stems, or a "(none)" marker.
func buildAvoid(stems []string, max int) string {
	if max > 0 && len(stems) > max {
		stems = stems[:max]
	}
	if len(stems) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for _, s := range stems {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// trimContext trims lesson text and caps it at budget runes.
func trimContext(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 {
		return text
	}
	if r := []rune(text); len(r) > budget {
		return string(r[:budget])
	}
	return text
}

func joinTypes(types []QuestionType) string {
	if len(types) == 0 {
		return string(TypeMCQ)
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
