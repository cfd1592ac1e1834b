package quizgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultGrade is the grade whose vocabulary is used when a requested
// grade has no bank.
const DefaultGrade = 5

var fallbackVocabulary = []string{"happy", "school", "friend", "read", "write"}

// ReadingItem is a short passage with one comprehension question.
type ReadingItem struct {
	Passage     string   `yaml:"passage"`
	Question    string   `yaml:"question"`
	Answer      string   `yaml:"answer"`
	Distractors []string `yaml:"distractors"`
}

// Statement is a sentence whose grammatical correctness is known.
type Statement struct {
	Text  string `yaml:"text"`
	Truth bool   `yaml:"truth"`
}

// Banks is the static content the mock generator draws from.
type Banks struct {
	Vocabulary map[int][]string `yaml:"vocabulary"`
	Reading    []ReadingItem    `yaml:"reading"`
	Statements []Statement      `yaml:"statements"`
}

// DefaultBanks returns the built-in banks.
func DefaultBanks() Banks {
	return Banks{
		Vocabulary: map[int][]string{
			4: {
				"family", "mother", "father", "brother", "sister", "school", "class", "teacher", "friend",
				"happy", "sad", "angry", "tired", "big", "small", "new", "old", "hot", "cold",
				"cat", "dog", "bird", "house", "book", "pen", "bag", "chair", "table", "play", "read", "write",
			},
			5: {
				"weather", "sunny", "rainy", "cloudy", "windy", "holiday", "travel", "city", "country", "market",
				"friendly", "careful", "helpful", "beautiful", "dangerous", "important", "different", "easy", "difficult",
				"breakfast", "lunch", "dinner", "sports", "basketball", "football", "swim", "visit", "learn", "practice",
			},
			6: {
				"practice", "healthy", "exercise", "food", "vegetables", "fruit", "important", "different", "example",
				"project", "homework", "subject", "science", "history", "computer", "future", "plan", "improve", "choose",
				"between", "because", "before", "after", "always", "sometimes", "usually", "never",
			},
			7: {
				"grammar", "sentence", "subject", "verb", "object", "present simple", "past simple", "comparative", "superlative",
				"adjective", "adverb", "preposition", "pronoun", "article", "question", "answer",
			},
			8: {
				"present perfect", "modal verbs", "passive voice", "conditionals", "if clause", "permission", "advice",
				"should", "must", "can", "could", "might", "report", "explain", "describe",
			},
			9: {
				"reported speech", "relative clauses", "first conditional", "second conditional", "active", "passive",
				"although", "however", "therefore", "because", "despite", "unless",
			},
		},
		Reading: []ReadingItem{
			{
				Passage:     "Sara has a small cat. The cat is white and friendly.",
				Question:    "What color is Sara's cat?",
				Answer:      "white",
				Distractors: []string{"black", "brown", "gray"},
			},
			{
				Passage:     "Ali goes to school by bus. He is always on time.",
				Question:    "How does Ali go to school?",
				Answer:      "by bus",
				Distractors: []string{"on foot", "by car", "by train"},
			},
			{
				Passage:     "Mona likes apples and bananas. She eats fruit every day.",
				Question:    "What does Mona eat every day?",
				Answer:      "fruit",
				Distractors: []string{"candy", "bread", "rice"},
			},
		},
		Statements: []Statement{
			{Text: "He goes to school every day.", Truth: true},
			{Text: "She are a student.", Truth: false},
			{Text: "We is happy today.", Truth: false},
			{Text: "They play football after school.", Truth: true},
		},
	}
}

// LoadBanks reads banks from a YAML file and merges them over the
// defaults. A grade listed in the file replaces that grade's vocabulary;
// a non-empty reading or statements list replaces the default list.
func LoadBanks(path string) (Banks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Banks{}, fmt.Errorf("read banks: %w", err)
	}
	var file Banks
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Banks{}, fmt.Errorf("parse banks %s: %w", path, err)
	}
	if err := file.check(); err != nil {
		return Banks{}, fmt.Errorf("banks %s: %w", path, err)
	}
	return DefaultBanks().Merge(file), nil
}

// Merge returns b with the non-empty sections of over applied on top.
func (b Banks) Merge(over Banks) Banks {
	out := Banks{
		Vocabulary: make(map[int][]string, len(b.Vocabulary)+len(over.Vocabulary)),
		Reading:    b.Reading,
		Statements: b.Statements,
	}
	for grade, words := range b.Vocabulary {
		out.Vocabulary[grade] = words
	}
	for grade, words := range over.Vocabulary {
		if len(words) > 0 {
			out.Vocabulary[grade] = words
		}
	}
	if len(over.Reading) > 0 {
		out.Reading = over.Reading
	}
	if len(over.Statements) > 0 {
		out.Statements = over.Statements
	}
	return out
}

func (b Banks) check() error {
	for i, item := range b.Reading {
		if item.Passage == "" || item.Question == "" || item.Answer == "" {
			return fmt.Errorf("reading item %d: passage, question and answer are required", i)
		}
		if len(item.Distractors) != 3 {
			return fmt.Errorf("reading item %d: expected 3 distractors, got %d", i, len(item.Distractors))
		}
	}
	for i, s := range b.Statements {
		if s.Text == "" {
			return fmt.Errorf("statement %d: text is required", i)
		}
	}
	return nil
}

// VocabularyFor returns the bank for grade, falling back to the default
// grade and then to a minimal built-in list.
func (b Banks) VocabularyFor(grade int) []string {
	if words := b.Vocabulary[grade]; len(words) > 0 {
		return words
	}
	if words := b.Vocabulary[DefaultGrade]; len(words) > 0 {
		return words
	}
	return fallbackVocabulary
}
