package quizgen

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

func seededMock(banks Banks) *MockGenerator {
	return NewMockGenerator(banks, NewSequenceIDs(1000), rand.New(rand.NewPCG(1, 2)))
}

func TestMockGenerator_EveryTypeValidates(t *testing.T) {
	g := seededMock(Banks{})
	v := NewValidator(nil)

	for _, typ := range SupportedTypes {
		for _, skill := range []string{"vocabulary", "grammar"} {
			res := g.GenerateBatch(context.Background(), BatchInput{
				Grade: 5, Skill: skill, Difficulty: "easy",
				Types: []QuestionType{typ}, Count: 8,
			})
			if res.Failure != nil {
				t.Fatalf("mock generator failed: %v", res.Failure)
			}
			if len(res.Questions) != 8 {
				t.Fatalf("%s/%s: got %d questions, want 8", typ, skill, len(res.Questions))
			}
			for _, q := range res.Questions {
				if q.Type != typ {
					t.Errorf("%s/%s: got type %q", typ, skill, q.Type)
				}
				if _, err := v.Validate(wireRecord(q)); err != nil {
					t.Errorf("%s/%s: generated question fails validation: %v (%+v)", typ, skill, err, q)
				}
				if typ.IsChoice() && q.Choices[q.CorrectIndex] == "" {
					t.Errorf("%s: empty correct choice", typ)
				}
			}
		}
	}
}

func TestMockGenerator_ReadingForcedForReadingSkill(t *testing.T) {
	g := seededMock(Banks{})
	res := g.GenerateBatch(context.Background(), BatchInput{
		Grade: 5, Skill: "reading",
		Types: []QuestionType{TypeMCQ, TypeTF, TypeReadingMCQ}, Count: 10,
	})

	answers := make(map[string]string)
	for _, item := range DefaultBanks().Reading {
		answers[item.Passage] = item.Answer
	}
	for _, q := range res.Questions {
		if q.Type != TypeReadingMCQ {
			t.Fatalf("expected reading_mcq, got %q", q.Type)
		}
		want, ok := answers[q.Passage]
		if !ok {
			t.Fatalf("unknown passage %q", q.Passage)
		}
		if q.Choices[q.CorrectIndex] != want {
			t.Errorf("correctIndex points at %q, want %q", q.Choices[q.CorrectIndex], want)
		}
	}
}

func TestMockGenerator_GrammarTemplates(t *testing.T) {
	g := seededMock(Banks{})
	res := g.GenerateBatch(context.Background(), BatchInput{
		Grade: 7, Skill: "grammar", Difficulty: "hard",
		Types: []QuestionType{TypeMCQ}, Count: 5,
	})
	for _, q := range res.Questions {
		if q.Choices[q.CorrectIndex] != "goes" {
			t.Errorf("correct choice = %q", q.Choices[q.CorrectIndex])
		}
		if !strings.Contains(q.Text, "(hard)") {
			t.Errorf("difficulty missing from %q", q.Text)
		}
	}

	res = g.GenerateBatch(context.Background(), BatchInput{
		Skill: "grammar", Types: []QuestionType{TypeReorder}, Count: 3,
	})
	for _, q := range res.Questions {
		if q.Answer != grammarSentence {
			t.Errorf("reorder answer = %q", q.Answer)
		}
		sorted := slices.Sorted(slices.Values(q.Words))
		want := slices.Sorted(slices.Values(strings.Fields(grammarSentence)))
		if !slices.Equal(sorted, want) {
			t.Errorf("words %v are not a permutation of the answer", q.Words)
		}
	}
}

func TestMockGenerator_MaterialPrefixAndIDs(t *testing.T) {
	g := seededMock(Banks{})
	res := g.GenerateBatch(context.Background(), BatchInput{
		Grade: 4, Skill: "vocabulary", Types: []QuestionType{TypeFill, TypeTF}, Count: 6, Material: "Unit 2",
	})
	for i, q := range res.Questions {
		if !strings.HasPrefix(q.Text, "[Unit 2] ") {
			t.Errorf("missing material tag: %q", q.Text)
		}
		if q.ID != int64(1001+i) {
			t.Errorf("question %d id = %d", i, q.ID)
		}
	}
}

func TestMockGenerator_SmallBanksPadDistractors(t *testing.T) {
	for _, bank := range [][]string{{"cat", "dog"}, {"cat"}} {
		g := seededMock(Banks{Vocabulary: map[int][]string{5: bank}})
		res := g.GenerateBatch(context.Background(), BatchInput{
			Grade: 5, Skill: "vocabulary", Types: []QuestionType{TypeMCQ}, Count: 5,
		})
		for _, q := range res.Questions {
			if len(q.Choices) != 4 {
				t.Fatalf("bank %v: %d choices", bank, len(q.Choices))
			}
			correct := q.Choices[q.CorrectIndex]
			if !strings.Contains(q.Text, "'"+correct+"'") {
				t.Errorf("bank %v: correct choice %q does not match %q", bank, correct, q.Text)
			}
			matches := 0
			for _, c := range q.Choices {
				if c == correct {
					matches++
				}
			}
			if matches != 1 {
				t.Errorf("bank %v: answer appears %d times in %v", bank, matches, q.Choices)
			}
		}
	}
}

func TestMockGenerator_UnknownGradeUsesDefaultBank(t *testing.T) {
	g := seededMock(Banks{})
	res := g.GenerateBatch(context.Background(), BatchInput{
		Grade: 12, Skill: "vocabulary", Types: []QuestionType{TypeFill}, Count: 10,
	})
	bank := DefaultBanks().Vocabulary[DefaultGrade]
	for _, q := range res.Questions {
		if !slices.Contains(bank, q.Answer) {
			t.Errorf("answer %q not from the grade %d bank", q.Answer, DefaultGrade)
		}
	}
}

func TestMockGenerator_NoTypesMeansMCQ(t *testing.T) {
	g := seededMock(Banks{})
	res := g.GenerateBatch(context.Background(), BatchInput{Grade: 5, Count: 3})
	for _, q := range res.Questions {
		if q.Type != TypeMCQ {
			t.Errorf("type = %q", q.Type)
		}
	}
}
