package quizgen

import (
	"encoding/json"
	"errors"
	"testing"
)

func validCandidates() map[QuestionType]map[string]any {
	return map[QuestionType]map[string]any{
		TypeMCQ: {
			"type": "mcq", "question": "Choose the best word: 'sunny'",
			"choices": []any{"sunny", "rainy", "windy", "cloudy"}, "correctIndex": float64(0),
		},
		TypeReadingMCQ: {
			"type": "reading_mcq", "passage": "Sara has a small cat.", "question": "What does Sara have?",
			"choices": []any{"a cat", "a dog", "a bird", "a fish"}, "correctIndex": float64(0),
		},
		TypeTF:      {"type": "tf", "question": "She are a student.", "answer": false},
		TypeFill:    {"type": "fill", "question": "I ___ a student.", "answer": "am"},
		TypeReorder: {"type": "reorder", "question": "Arrange the words", "words": []any{"a", "am", "I", "student"}, "answer": "I am a student"},
	}
}

func TestValidate_MinimalExamplesPass(t *testing.T) {
	v := NewValidator(NewSequenceIDs(0))
	for typ, c := range validCandidates() {
		q, err := v.Validate(c)
		if err != nil {
			t.Errorf("%s: unexpected rejection: %v", typ, err)
			continue
		}
		if q.Type != typ {
			t.Errorf("%s: got type %q", typ, q.Type)
		}
		if q.ID <= 0 {
			t.Errorf("%s: expected synthesized id, got %d", typ, q.ID)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		typ      QuestionType
		mutate   func(map[string]any)
		wantRule string
	}{
		{"unsupported type", TypeMCQ, func(c map[string]any) { c["type"] = "essay" }, "type"},
		{"null type", TypeMCQ, func(c map[string]any) { c["type"] = nil }, "type"},
		{"empty question", TypeMCQ, func(c map[string]any) { c["question"] = "   " }, "question"},
		{"missing question", TypeFill, func(c map[string]any) { delete(c, "question") }, "question"},
		{"three choices", TypeMCQ, func(c map[string]any) { c["choices"] = []any{"a", "b", "c"} }, "choices"},
		{"five choices", TypeReadingMCQ, func(c map[string]any) { c["choices"] = []any{"a", "b", "c", "d", "e"} }, "choices"},
		{"choices not a list", TypeMCQ, func(c map[string]any) { c["choices"] = "a,b,c,d" }, "choices"},
		{"index too high", TypeMCQ, func(c map[string]any) { c["correctIndex"] = float64(4) }, "correctIndex"},
		{"negative index", TypeMCQ, func(c map[string]any) { c["correctIndex"] = "-1" }, "correctIndex"},
		{"fractional index", TypeMCQ, func(c map[string]any) { c["correctIndex"] = 1.5 }, "correctIndex"},
		{"boolean index", TypeMCQ, func(c map[string]any) { c["correctIndex"] = true }, "correctIndex"},
		{"missing index", TypeMCQ, func(c map[string]any) { delete(c, "correctIndex") }, "correctIndex"},
		{"word index", TypeMCQ, func(c map[string]any) { c["correctIndex"] = "two" }, "correctIndex"},
		{"reading without passage", TypeReadingMCQ, func(c map[string]any) { c["passage"] = "" }, "passage"},
		{"tf unknown alias", TypeTF, func(c map[string]any) { c["answer"] = "maybe" }, "answer"},
		{"tf missing answer", TypeTF, func(c map[string]any) { delete(c, "answer") }, "answer"},
		{"fill empty answer", TypeFill, func(c map[string]any) { c["answer"] = "  " }, "answer"},
		{"fill missing answer", TypeFill, func(c map[string]any) { delete(c, "answer") }, "answer"},
		{"reorder two words", TypeReorder, func(c map[string]any) { c["words"] = []any{"I", "am"} }, "words"},
		{"reorder empty answer", TypeReorder, func(c map[string]any) { c["answer"] = "" }, "answer"},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidates()[tt.typ]
			tt.mutate(c)
			_, err := v.Validate(c)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if err.Rule != tt.wantRule {
				t.Errorf("rule = %q, want %q (%s)", err.Rule, tt.wantRule, err.Message)
			}
		})
	}
}

func TestValidate_NotARecord(t *testing.T) {
	v := NewValidator(nil)
	for _, c := range []any{nil, "question", float64(3), []any{map[string]any{}}} {
		if _, err := v.Validate(c); err == nil || err.Rule != "record" {
			t.Errorf("Validate(%#v) = %v, want record rejection", c, err)
		}
	}
}

func TestValidate_Coercion(t *testing.T) {
	v := NewValidator(NewSequenceIDs(100))

	q, err := v.Validate(map[string]any{
		"question":     "  Pick one  ",
		"choices":      []any{"one", float64(2), true, nil},
		"correctIndex": " 2 ",
		"passage":      "dropped for mcq",
	})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if q.Type != TypeMCQ {
		t.Errorf("missing type should default to mcq, got %q", q.Type)
	}
	if q.Text != "Pick one" {
		t.Errorf("text = %q", q.Text)
	}
	if q.CorrectIndex != 2 {
		t.Errorf("correctIndex = %d", q.CorrectIndex)
	}
	want := []string{"one", "2", "true", ""}
	for i := range want {
		if q.Choices[i] != want[i] {
			t.Errorf("choice %d = %q, want %q", i, q.Choices[i], want[i])
		}
	}
	if q.Passage != "" {
		t.Errorf("extraneous passage kept: %q", q.Passage)
	}
	if q.ID != 101 {
		t.Errorf("id = %d, want 101", q.ID)
	}

	q, err = v.Validate(map[string]any{"type": " tf ", "question": "Q", "answer": " YES "})
	if err != nil || !q.Truth {
		t.Errorf("tf yes alias: q=%+v err=%v", q, err)
	}
	q, err = v.Validate(map[string]any{"type": "tf", "question": "Q", "answer": float64(0)})
	if err != nil || q.Truth {
		t.Errorf("tf 0 alias: q=%+v err=%v", q, err)
	}
	q, err = v.Validate(map[string]any{"type": "fill", "question": "Q", "answer": float64(5)})
	if err != nil || q.Answer != "5" {
		t.Errorf("numeric fill answer: q=%+v err=%v", q, err)
	}
	q, err = v.Validate(map[string]any{"type": "reorder", "question": "Q", "words": []string{"I", "am", "here"}, "answer": "I am here"})
	if err != nil || len(q.Words) != 3 {
		t.Errorf("[]string words: q=%+v err=%v", q, err)
	}
}

func TestValidate_IDs(t *testing.T) {
	v := NewValidator(NewSequenceIDs(500))
	base := func(id any) map[string]any {
		return map[string]any{"type": "fill", "question": "Q", "answer": "a", "id": id}
	}

	tests := []struct {
		id   any
		want int64
	}{
		{float64(42), 42},
		{"77", 77},
		{json.Number("1712345678901"), 1712345678901},
		{int64(9), 9},
		{float64(-5), 501},
		{"abc", 502},
		{float64(2.5), 503},
		{nil, 504},
	}
	for _, tt := range tests {
		q, err := v.Validate(base(tt.id))
		if err != nil {
			t.Fatalf("unexpected rejection: %v", err)
		}
		if q.ID != tt.want {
			t.Errorf("id %#v -> %d, want %d", tt.id, q.ID, tt.want)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	var err error = &ValidationError{Rule: "choices", Message: "expected exactly 4 choices"}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != "choices" {
		t.Fatalf("errors.As failed: %v", err)
	}
	if err.Error() != `rule "choices": expected exactly 4 choices` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestQuestionJSON(t *testing.T) {
	tf := Question{ID: 3, Type: TypeTF, Text: "We is happy today.", Truth: false, Answer: "ignored"}
	data, err := json.Marshal(tf)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"answer":false,"id":3,"question":"We is happy today.","type":"tf"}` {
		t.Errorf("tf json = %s", data)
	}

	fill := Question{ID: 4, Type: TypeFill, Text: "I ___ a student.", Answer: "am"}
	data, _ = json.Marshal(fill)
	if string(data) != `{"answer":"am","id":4,"question":"I ___ a student.","type":"fill"}` {
		t.Errorf("fill json = %s", data)
	}

	var back Question
	if err := json.Unmarshal([]byte(`{"id":7,"type":"tf","question":"Q","answer":"yes"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != 7 || !back.Truth || back.Type != TypeTF {
		t.Errorf("decoded %+v", back)
	}

	if err := json.Unmarshal([]byte(`{"type":"mcq","question":"Q","choices":["a"]}`), &back); err == nil {
		t.Error("expected invalid question to fail decoding")
	}
}

func TestIDSources(t *testing.T) {
	seq, err := NewIDSource(IDStrategySequence)
	if err != nil {
		t.Fatal(err)
	}
	a, b := seq.NextID(), seq.NextID()
	if b != a+1 {
		t.Errorf("sequence ids %d, %d", a, b)
	}

	timed, err := NewIDSource("")
	if err != nil {
		t.Fatal(err)
	}
	if id := timed.NextID(); id < 1_600_000_000_000 {
		t.Errorf("time id %d looks wrong", id)
	}

	if _, err := NewIDSource("uuid"); err == nil {
		t.Error("expected unknown strategy error")
	}
}
