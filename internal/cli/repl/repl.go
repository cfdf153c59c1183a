package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Executor runs one command line, already split into words.
type Executor func(args []string) error

// REPL is the read-eval-print loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) { r.prompt = prompt }
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a REPL that runs lines with exec and completes from commands.
func New(exec Executor, commands []string, opts ...Option) *REPL {
	r := &REPL{
		input:     strings.NewReader(""),
		output:    io.Discard,
		prompt:    "stakewatch> ",
		exec:      exec,
		completer: NewCompleter(commands),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, quit or end of input. Command errors are
// printed and the loop continues.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: history not saved: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)
		if done := r.execute(line); done {
			return nil
		}
		if eof {
			return nil
		}
	}
}

// execute runs one line and reports whether the loop should stop.
func (r *REPL) execute(line string) bool {
	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help":
		prefix := strings.Join(args[1:], " ")
		for _, cmd := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, "  "+cmd)
		}
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if err := r.exec(args); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		if suggestions := r.completer.Complete(args[0]); len(suggestions) > 0 && !r.completer.Known(args[0]) {
			fmt.Fprintf(r.output, "Did you mean: %s\n", strings.Join(suggestions, ", "))
		}
	}
	return false
}

// Split breaks line into words. Quotes group words and are removed; a
// backslash outside single quotes escapes the next character.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(c)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
