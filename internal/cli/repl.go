package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// AskFunc answers one chat message.
type AskFunc func(ctx context.Context, message string) (string, error)

// REPL runs an interactive chat loop over a line reader.
type REPL struct {
	in     *NonBlockingReader
	out    io.Writer
	ask    AskFunc
	prompt string
}

// NewREPL creates a chat loop reading from in and writing to out.
func NewREPL(in io.Reader, out io.Writer, ask AskFunc) *REPL {
	return &REPL{
		in:     NewNonBlockingReader(in),
		out:    out,
		ask:    ask,
		prompt: "you",
	}
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "/exit", "/quit", "bye":
		return true
	}
	return false
}

// Run loops until the input ends, the user types an exit word, or ctx is
// canceled. Failed answers are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	_, _ = fmt.Fprintln(r.out, FormatTitle("Nova"))
	_, _ = fmt.Fprintln(r.out, SubtleStyle.Render("Type 'exit' to leave."))

	for {
		_, _ = fmt.Fprint(r.out, FormatPrompt(r.prompt))
		line, err := r.in.ReadLine(ctx)
		eof := errors.Is(err, io.EOF)
		switch {
		case errors.Is(err, ErrInputCancelled):
			_, _ = fmt.Fprintln(r.out)
			_, _ = fmt.Fprintln(r.out, FormatInfo("Chat ended."))
			return nil
		case err != nil && !eof:
			return fmt.Errorf("reading input: %w", err)
		}

		if isExit(line) {
			_, _ = fmt.Fprintln(r.out, FormatInfo("Goodbye."))
			return nil
		}
		if line != "" {
			r.answer(ctx, line)
		}
		if eof {
			return nil
		}
	}
}

func (r *REPL) answer(ctx context.Context, line string) {
	reply, err := r.ask(ctx, line)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		_, _ = fmt.Fprintln(r.out, FormatError(err.Error()))
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n\n", RobotIcon, reply)
}
