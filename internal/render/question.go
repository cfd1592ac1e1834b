package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizsmith/internal/quizgen"
)

var choiceLabels = []string{"A", "B", "C", "D"}

// Question renders one question as a card. n is its 1-based position.
func Question(q quizgen.Question, n int) string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("%d.", n)))
	b.WriteString(" ")
	b.WriteString(Badge.Render("[" + string(q.Type) + "]"))
	b.WriteString(" ")
	b.WriteString(Hint.Render(fmt.Sprintf("#%d", q.ID)))
	b.WriteString("\n")

	if q.Passage != "" {
		b.WriteString(Passage.Render(q.Passage))
		b.WriteString("\n")
	}
	b.WriteString(Body.Render(q.Text))
	b.WriteString("\n")

	switch q.Type {
	case quizgen.TypeMCQ, quizgen.TypeReadingMCQ:
		for i, c := range q.Choices {
			label := fmt.Sprintf("?)  %s", c)
			if i < len(choiceLabels) {
				label = fmt.Sprintf("%s)  %s", choiceLabels[i], c)
			}
			if i == q.CorrectIndex {
				b.WriteString(Correct.Render("✓ " + label))
			} else {
				b.WriteString(Option.Render("  " + label))
			}
			b.WriteString("\n")
		}
	case quizgen.TypeTF:
		b.WriteString(answerLine(fmt.Sprintf("%t", q.Truth)))
	case quizgen.TypeFill:
		b.WriteString(answerLine(q.Answer))
	case quizgen.TypeReorder:
		b.WriteString(Hint.Render("Words: " + strings.Join(q.Words, " / ")))
		b.WriteString("\n")
		b.WriteString(answerLine(q.Answer))
	}

	return Card.Render(strings.TrimRight(b.String(), "\n"))
}

func answerLine(answer string) string {
	return Correct.Render("Answer: "+answer) + "\n"
}

// Result renders a whole batch, followed by its warning if any.
func Result(res quizgen.Result) string {
	var b strings.Builder
	if len(res.Questions) == 0 {
		b.WriteString(Hint.Render("No questions generated."))
		b.WriteString("\n")
	}
	for i, q := range res.Questions {
		b.WriteString(Question(q, i+1))
		b.WriteString("\n")
	}
	if res.Warning != "" {
		b.WriteString(Warning.Render("⚠ " + res.Warning))
		b.WriteString("\n")
	}
	return b.String()
}
