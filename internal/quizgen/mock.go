package quizgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	grammarFillText   = "She ____ to school every day."
	grammarFillAnswer = "goes"
	grammarSentence   = "She goes to school every day"
	basicSentence     = "I am a student"
	reorderPrompt     = "Arrange the words to make a correct sentence:"
	readingPrompt     = "Answer the question based on the passage."
)

var grammarChoices = []string{"go", "goes", "going", "goed"}

// MockGenerator builds questions from static banks. It never fails and
// needs no network, which makes it the fallback for every model failure.
type MockGenerator struct {
	banks Banks
	ids   IDSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGenerator returns a generator over banks merged onto the
// defaults. rng may be nil, in which case a clock-seeded source is used;
// tests pass a seeded one.
func NewMockGenerator(banks Banks, ids IDSource, rng *rand.Rand) *MockGenerator {
	if ids == nil {
		ids = NewTimeIDs()
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &MockGenerator{banks: DefaultBanks().Merge(banks), ids: ids, rng: rng}
}

// GenerateBatch returns exactly in.Count questions.
func (g *MockGenerator) GenerateBatch(_ context.Context, in BatchInput) BatchResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	types := in.Types
	if len(types) == 0 {
		types = []QuestionType{TypeMCQ}
	}
	bank := g.banks.VocabularyFor(in.Grade)
	forceReading := in.Skill == "reading" && slices.Contains(types, TypeReadingMCQ)

	out := make([]Question, 0, in.Count)
	for range in.Count {
		t := types[g.rng.IntN(len(types))]
		if forceReading {
			t = TypeReadingMCQ
		}

		var q Question
		switch t {
		case TypeReadingMCQ:
			q = g.reading()
		case TypeTF:
			q = g.trueFalse()
		case TypeFill:
			q = g.fill(in.Skill, bank)
		case TypeReorder:
			q = g.reorder(in.Skill)
		default:
			q = g.multipleChoice(in.Skill, in.Difficulty, bank)
		}
		q.ID = g.ids.NextID()
		q.Text = withMaterial(in.Material, q.Text)
		out = append(out, q)
	}
	return BatchResult{Questions: out}
}

func (g *MockGenerator) reading() Question {
	item := g.banks.Reading[g.rng.IntN(len(g.banks.Reading))]
	choices := append([]string{item.Answer}, item.Distractors...)
	g.shuffle(choices)
	return Question{
		Type:         TypeReadingMCQ,
		Passage:      item.Passage,
		Text:         readingPrompt + " " + item.Question,
		Choices:      choices,
		CorrectIndex: slices.Index(choices, item.Answer),
	}
}

func (g *MockGenerator) trueFalse() Question {
	s := g.banks.Statements[g.rng.IntN(len(g.banks.Statements))]
	return Question{Type: TypeTF, Text: s.Text, Truth: s.Truth}
}

func (g *MockGenerator) fill(skill string, bank []string) Question {
	if skill == "grammar" {
		return Question{Type: TypeFill, Text: grammarFillText, Answer: grammarFillAnswer}
	}
	return Question{Type: TypeFill, Text: "I like ____ .", Answer: g.pick(bank)}
}

func (g *MockGenerator) reorder(skill string) Question {
	sentence := basicSentence
	if skill == "grammar" {
		sentence = grammarSentence
	}
	words := strings.Fields(sentence)
	g.shuffle(words)
	return Question{Type: TypeReorder, Text: reorderPrompt, Words: words, Answer: sentence}
}

func (g *MockGenerator) multipleChoice(skill, difficulty string, bank []string) Question {
	if skill == "grammar" {
		choices := slices.Clone(grammarChoices)
		g.shuffle(choices)
		return Question{
			Type:         TypeMCQ,
			Text:         fmt.Sprintf("Choose the correct option (%s): %s", difficulty, grammarFillText),
			Choices:      choices,
			CorrectIndex: slices.Index(choices, grammarFillAnswer),
		}
	}

	word := g.pick(bank)
	choices := append([]string{word}, g.distractors(word, bank)...)
	g.shuffle(choices)
	return Question{
		Type:         TypeMCQ,
		Text:         fmt.Sprintf("Choose the best word meaning/usage: '%s'", word),
		Choices:      choices,
		CorrectIndex: slices.Index(choices, word),
	}
}

// distractors returns three bank words other than word, distinct where the
// bank allows and padded with repeats where it does not.
func (g *MockGenerator) distractors(word string, bank []string) []string {
	pool := without(bank, word)
	if len(pool) == 0 {
		pool = without(fallbackVocabulary, word)
	}
	g.shuffle(pool)
	out := pool[:min(3, len(pool))]
	for len(out) < 3 {
		out = append(out, pool[g.rng.IntN(len(pool))])
	}
	return out
}

func (g *MockGenerator) pick(bank []string) string {
	return bank[g.rng.IntN(len(bank))]
}

func (g *MockGenerator) shuffle(s []string) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// without returns the distinct entries of words other than drop.
func without(words []string, drop string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != drop && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

func withMaterial(material, text string) string {
	if material == "" {
		return text
	}
	return "[" + material + "] " + text
}
