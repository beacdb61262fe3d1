package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nova/internal/cli"
	"github.com/Veraticus/nova/internal/intent"
	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/temporal"
)

func intentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intent [message]",
		Short: "Show which intents a message carries",
		Long: `Classify a message and print the scores behind the decision.

Without --llm only the keyword patterns are used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIntent,
	}

	cmd.Flags().Bool("llm", false, "Consult the language model for ambiguous messages")

	return cmd
}

func runIntent(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	useLLM, _ := cmd.Flags().GetBool("llm")

	return withApp(cmd, appOptions{llm: useLLM}, func(a *app) error {
		det := a.detector.Classify(cmd.Context(), message)
		printDetection(cmd, det)
		return nil
	})
}

func printDetection(cmd *cobra.Command, det intent.Detection) {
	rows := make([][]string, 0, len(model.ScoredIntents))
	for _, i := range model.ScoredIntents {
		rows = append(rows, []string{i.String(), score(det.Regex, i), score(det.Other, i)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"INTENT", "KEYWORDS", "MODEL"}, rows))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.SubtleStyle.Render("path:"), det.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.SubtleStyle.Render("intents:"), cli.FormatIntents(det.Intents.Names()))
}

func score(s intent.Scores, i model.Intent) string {
	v, ok := s[i]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func whenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "when [message]",
		Short: "Show the date range a message refers to",
		Long: `Extract the time range from a message the way "nova ask" does.

Examples:
  nova when "what's happening next friday"
  nova when "tasks for the next 5 days" --date 2025-12-09`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWhen,
	}

	cmd.Flags().String("date", "", "Reference date (YYYY-MM-DD, default today)")

	return cmd
}

func runWhen(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	ref := time.Now()
	if date, _ := cmd.Flags().GetString("date"); date != "" {
		parsed, err := time.ParseInLocation(temporal.DateLayout, date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", date, err)
		}
		ref = parsed
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	parser := temporal.NewParser(temporal.WithMaxDays(cfg.MaxDays))

	tr, ok := parser.Parse(message, ref)
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No time reference found; nova would use today."))
		tr = temporal.Today(ref)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"DESCRIPTION", "PATTERN", "START", "END", "DAYS"}, [][]string{{
		tr.Description, string(tr.Pattern), tr.StartDate(), tr.EndDate(), fmt.Sprint(tr.Days()),
	}}))
	return nil
}
