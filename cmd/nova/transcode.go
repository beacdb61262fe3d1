package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nova/internal/config"
	"github.com/Veraticus/nova/internal/temporal"
	"github.com/Veraticus/nova/internal/transcoder"
)

func transcodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcode [file]",
		Short: "Render a JSON payload the way the model sees it",
		Long: `Read a JSON document with optional "weather", "events" and "todos"
fields and print the text rendering nova would send to the model.

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runTranscode,
	}

	cmd.Flags().String("start", "", "Range start (YYYY-MM-DD) used for headings")
	cmd.Flags().String("end", "", "Range end (YYYY-MM-DD, default start)")
	cmd.Flags().String("description", "", "Range description (default derived from dates)")
	cmd.Flags().String("section", "all", "Section to render (all, weather, events, todos)")

	return cmd
}

func runTranscode(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	var data transcoder.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	tr, err := transcodeRange(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t := transcoder.New(cfg.Transcoder)

	section, _ := cmd.Flags().GetString("section")
	var out string
	switch section {
	case "all":
		out = t.All(data, tr)
	case "weather":
		out = t.Weather(data.Weather)
	case "events":
		out = t.Events(data.Events, tr)
	case "todos":
		out = t.Todos(data.Todos)
	default:
		return fmt.Errorf("%w: unknown section %q", errUsage, section)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

// transcodeRange builds the optional range from --start, --end and
// --description. No --start means no range.
func transcodeRange(cmd *cobra.Command) (*temporal.TimeRange, error) {
	startFlag, _ := cmd.Flags().GetString("start")
	if startFlag == "" {
		return nil, nil
	}
	endFlag, _ := cmd.Flags().GetString("end")
	if endFlag == "" {
		endFlag = startFlag
	}

	start, err := time.Parse(temporal.DateLayout, startFlag)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid --start %q", errUsage, startFlag)
	}
	end, err := time.Parse(temporal.DateLayout, endFlag)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid --end %q", errUsage, endFlag)
	}

	description, _ := cmd.Flags().GetString("description")
	if description == "" {
		description = startFlag
		if endFlag != startFlag {
			description = startFlag + " to " + endFlag
		}
	}

	tr, err := temporal.NewTimeRange(start, end, description, temporal.PatternNone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return &tr, nil
}
