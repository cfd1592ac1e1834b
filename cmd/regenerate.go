package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quizsmith/internal/quizgen"
	"github.com/abhisek/quizsmith/internal/render"
	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Generate one replacement question of a given type",
	Example: `  quizsmith regenerate --type tf --avoid "The sun is hot."
  quizsmith regenerate --skill reading --type reading_mcq --format json`,
	RunE: runRegenerate,
}

func init() {
	f := regenerateCmd.Flags()
	f.Int("grade", quizgen.DefaultGrade, "Student grade")
	f.String("skill", "vocabulary", "Skill: vocabulary, grammar, reading, ...")
	f.String("difficulty", "easy", "Difficulty label passed to the generator")
	f.String("type", string(quizgen.TypeMCQ), "Question type (mcq, reading_mcq, tf, fill, reorder)")
	f.String("material", "", "Material or unit label")
	f.String("unit-text", "", "Lesson text to base the question on")
	f.String("unit-file", "", "Read lesson text from a file")
	f.StringSlice("avoid", nil, "Question stems to avoid")
	f.String("format", "pretty", "Output format: pretty or json")
	f.String("banks", "", "YAML file overriding the mock generator banks")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	grade, _ := f.GetInt("grade")
	skill, _ := f.GetString("skill")
	difficulty, _ := f.GetString("difficulty")
	qtype, _ := f.GetString("type")
	material, _ := f.GetString("material")
	avoid, _ := f.GetStringSlice("avoid")
	format, _ := f.GetString("format")

	if err := checkFormat(format); err != nil {
		return err
	}
	unitText, err := unitTextFromFlags(cmd)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	q, err := p.orch.Regenerate(cmd.Context(), quizgen.RegenerateRequest{
		Grade:      grade,
		Skill:      strings.ToLower(strings.TrimSpace(skill)),
		Difficulty: strings.ToLower(strings.TrimSpace(difficulty)),
		Type:       qtype,
		Material:   strings.TrimSpace(material),
		UnitText:   unitText,
		Avoid:      avoid,
	})
	if errors.Is(err, quizgen.ErrCouldNotRegenerate) {
		return fmt.Errorf("could not regenerate a new %s question; try a different type or a shorter avoid list", qtype)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(w, map[string]quizgen.Question{"question": q})
	}
	_, err = fmt.Fprintln(w, render.Question(q, 1))
	return err
}
