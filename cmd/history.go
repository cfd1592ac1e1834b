package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abhisek/quizsmith/internal/quizgen"
	"github.com/abhisek/quizsmith/internal/render"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		gens, err := s.GenerationRepo().RecentGenerations(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(gens) == 0 {
			fmt.Fprintln(w, "No generations recorded yet.")
			return nil
		}

		rows := make([][]string, len(gens))
		for i, g := range gens {
			rows[i] = []string{
				strconv.FormatInt(g.ID, 10),
				g.Timestamp.Local().Format(timeLayout),
				g.Kind,
				strconv.Itoa(g.Grade),
				truncate(g.Skill, 12),
				truncate(g.Difficulty, 8),
				fmt.Sprintf("%d/%d", g.Returned, g.Requested),
				strconv.Itoa(g.Rounds),
				truncate(g.RequestID, 8),
				truncate(g.Warning, 30),
			}
		}
		fmt.Fprintln(w, render.Table([]string{"ID", "Time", "Kind", "Grade", "Skill", "Level", "Got/Want", "Rounds", "Request", "Warning"}, rows, false))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the questions of one generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		stored, err := s.GenerationRepo().GenerationQuestions(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("query questions: %w", err)
		}
		if len(stored) == 0 {
			return fmt.Errorf("generation %d has no questions", id)
		}

		questions := make([]quizgen.Question, 0, len(stored))
		for _, sq := range stored {
			var q quizgen.Question
			if err := json.Unmarshal([]byte(sq.Payload), &q); err != nil {
				return fmt.Errorf("decode question %d: %w", sq.QuestionID, err)
			}
			questions = append(questions, q)
		}

		return writeResult(cmd.OutOrStdout(), format, quizgen.Result{Questions: questions})
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	historyShowCmd.Flags().String("format", "pretty", "Output format: pretty or json")

	historyCmd.AddCommand(historyShowCmd)
}
