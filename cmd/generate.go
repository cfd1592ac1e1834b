package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/quizsmith/internal/quizgen"
	"github.com/abhisek/quizsmith/internal/render"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of quiz questions",
	Long: `Generate a batch of unique, validated quiz questions and record it in
the database. Questions are printed as JSON or as styled cards.`,
	Example: `  quizsmith generate --grade 6 --skill grammar --count 12
  quizsmith generate --skill reading --unit-file unit3.txt --format json
  quizsmith generate --types tf,fill --avoid-history 50`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("grade", quizgen.DefaultGrade, "Student grade")
	f.String("skill", "vocabulary", "Skill: vocabulary, grammar, reading, ...")
	f.String("difficulty", "easy", "Difficulty label passed to the generator")
	f.IntP("count", "n", 10, "Number of questions")
	f.StringSlice("types", nil, "Question types (mcq, reading_mcq, tf, fill, reorder)")
	f.String("material", "", "Material or unit label")
	f.String("unit-text", "", "Lesson text to base questions on")
	f.String("unit-file", "", "Read lesson text from a file")
	f.Int("pool", 3, "Pool multiplier (1-6): how much to over-request per round")
	f.StringSlice("avoid", nil, "Question stems to avoid")
	f.Int("avoid-history", 0, "Also avoid the N most recently stored stems")
	f.String("format", "pretty", "Output format: pretty or json")
	f.String("banks", "", "YAML file overriding the mock generator banks")
}

// batchOutput mirrors the HTTP response body.
type batchOutput struct {
	Questions []quizgen.Question `json:"questions"`
	Warning   string             `json:"warning,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	grade, _ := f.GetInt("grade")
	skill, _ := f.GetString("skill")
	difficulty, _ := f.GetString("difficulty")
	count, _ := f.GetInt("count")
	types, _ := f.GetStringSlice("types")
	material, _ := f.GetString("material")
	pool, _ := f.GetInt("pool")
	avoid, _ := f.GetStringSlice("avoid")
	history, _ := f.GetInt("avoid-history")
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

	ctx := cmd.Context()
	if history > 0 {
		stems, err := p.store.GenerationRepo().RecentStems(ctx, history)
		if err != nil {
			return fmt.Errorf("load recent stems: %w", err)
		}
		avoid = append(avoid, stems...)
	}

	res := p.orch.Generate(ctx, quizgen.Request{
		Grade:          grade,
		Skill:          strings.ToLower(strings.TrimSpace(skill)),
		Difficulty:     strings.ToLower(strings.TrimSpace(difficulty)),
		Count:          count,
		Types:          types,
		Material:       strings.TrimSpace(material),
		UnitText:       unitText,
		PoolMultiplier: pool,
		Avoid:          avoid,
	})

	return writeResult(cmd.OutOrStdout(), format, res)
}

func writeResult(w io.Writer, format string, res quizgen.Result) error {
	if format == "json" {
		out := batchOutput{Questions: res.Questions, Warning: res.Warning}
		if out.Questions == nil {
			out.Questions = []quizgen.Question{}
		}
		return writeJSON(w, out)
	}
	_, err := fmt.Fprint(w, render.Result(res))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want pretty or json)", format)
	}
}

// unitTextFromFlags returns --unit-text, or the contents of --unit-file.
func unitTextFromFlags(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("unit-text")
	path, _ := cmd.Flags().GetString("unit-file")
	if path == "" {
		return text, nil
	}
	if text != "" {
		return "", fmt.Errorf("--unit-text and --unit-file are mutually exclusive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read unit file: %w", err)
	}
	return string(data), nil
}
