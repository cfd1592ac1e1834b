package quizgen

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Hello,   World!! ", "hello world!!"},
		{"She's \t going\n", "she's going"},
		{"[Unit 3] What is it?", "unit 3 what is it?"},
		{"Café — naïve", "caf nave"},
		{"a  b", "ab"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"Choose: \"happy\", 'sad'", "choose happy 'sad'"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Hello , World",
		"a - b",
		"x   y",
		"  [Material] Arrange the words to make a correct sentence:  ",
		"İstanbul ist schön",
		"What?! No... 'Yes'.",
		" em space ",
		"tab\t-\tseparated",
	}
	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}
