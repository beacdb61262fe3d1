package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nova/internal/assistant"
	"github.com/Veraticus/nova/internal/cli"
)

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask nova a question",
		Long: `Ask nova a question about your day.

Only the data your question needs is fetched. Mention "refresh" or "latest"
to bypass cached data.

Examples:
  nova ask "what's the weather tomorrow?"
  nova ask "anything on my calendar this week?" --show-context
  nova ask "what tasks are due friday" --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().Bool("show-context", false, "Print the data block sent to the model")
	cmd.Flags().Bool("dry-run", false, "Detect and fetch without calling the model")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	showContext, _ := cmd.Flags().GetBool("show-context")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	opts := appOptions{llm: !dryRun, store: true, sources: true}
	return withApp(cmd, opts, func(a *app) error {
		asst := a.assistant()
		ctx := cmd.Context()

		if dryRun {
			printAnswer(cmd, asst.Prepare(ctx, message), true)
			return nil
		}

		answer, err := asst.Ask(ctx, message)
		if err != nil {
			return fmt.Errorf("failed to answer: %w", err)
		}
		printAnswer(cmd, answer, showContext)
		return nil
	})
}

func briefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate today's briefing",
		Long:  `Fetch today's weather, events and tasks and summarize them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			showContext, _ := cmd.Flags().GetBool("show-context")
			return withApp(cmd, appOptions{llm: true, store: true, sources: true}, func(a *app) error {
				answer, err := a.assistant().Briefing(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to generate briefing: %w", err)
				}
				printAnswer(cmd, answer, showContext)
				return nil
			})
		},
	}

	cmd.Flags().Bool("show-context", false, "Print the data block sent to the model")

	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Chat with nova until you type "exit" or press Ctrl+C.

Every message goes through the same detection and cache as "nova ask".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{llm: true, store: true, sources: true}, func(a *app) error {
				asst := a.assistant()
				ask := func(ctx context.Context, message string) (string, error) {
					answer, err := asst.Ask(ctx, message)
					if err != nil {
						return "", err
					}
					return answer.Text, nil
				}
				return cli.NewREPL(cmd.InOrStdin(), cmd.OutOrStdout(), ask).Run(cmd.Context())
			})
		},
	}
}

func printAnswer(cmd *cobra.Command, answer assistant.Answer, showContext bool) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n",
		cli.SubtleStyle.Render("intents:"),
		cli.FormatIntents(answer.Intents.Names()),
		cli.SubtleStyle.Render(answer.Range.String()))

	if showContext {
		block := answer.Context
		if block == "" {
			block = "(no data)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Context", block))
	}
	if answer.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	}
}
