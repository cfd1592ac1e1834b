package quizgen

import "testing"

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantShape PayloadShape
		wantItems int
	}{
		{
			name:      "bare array",
			text:      `[{"type":"tf","question":"Q","answer":true}]`,
			wantShape: ShapeArray,
			wantItems: 1,
		},
		{
			name:      "fenced object with prose",
			text:      "Sure! Here are your questions:\n```json\n{\"questions\": [{\"type\":\"fill\"}, {\"type\":\"tf\"}]}\n```\nGood luck!",
			wantShape: ShapeObjectWithQuestions,
			wantItems: 2,
		},
		{
			name:      "object with empty questions",
			text:      `{"questions": []}`,
			wantShape: ShapeObjectWithQuestions,
			wantItems: 0,
		},
		{
			name:      "object without questions falls back to inner array",
			text:      `{"items": [1, 2]}`,
			wantShape: ShapeArray,
			wantItems: 2,
		},
		{
			name:      "questions is not an array",
			text:      `{"questions": "none"}`,
			wantShape: ShapeUnparseable,
		},
		{
			name:      "no json",
			text:      "I cannot help with that.",
			wantShape: ShapeUnparseable,
		},
		{
			name:      "truncated array",
			text:      `[{"type":"tf"`,
			wantShape: ShapeUnparseable,
		},
		{
			name:      "broken array",
			text:      `here: [1, 2,, 3]`,
			wantShape: ShapeUnparseable,
		},
		{
			name:      "empty",
			text:      "",
			wantShape: ShapeUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ExtractPayload(tt.text)
			if p.Shape != tt.wantShape {
				t.Fatalf("shape = %s, want %s (reason %q)", p.Shape, tt.wantShape, p.Reason)
			}
			if len(p.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(p.Items), tt.wantItems)
			}
			if p.Shape == ShapeUnparseable && p.Reason == "" {
				t.Error("unparseable payload should carry a reason")
			}
		})
	}
}
