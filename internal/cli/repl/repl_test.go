package repl

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(input string, rec *recorder) (*REPL, *bytes.Buffer) {
	out := &bytes.Buffer{}
	r := New(rec.exec, []string{"ping", "user", "user create", "user get", "validators", "validators list"},
		WithIO(strings.NewReader(input), out),
	)
	return r, out
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\nping\n"},
		{"quit command", "quit\nping\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(tt.input, rec)
			if err := r.Run(); err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executed %v after exit", rec.calls)
			}
		})
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("\n\nping\nuser get --phone 5550001111\nvalidators list", rec)
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{
		{"ping"},
		{"user", "get", "--phone", "5550001111"},
		{"validators", "list"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if n := strings.Count(out.String(), "stakewatch> "); n != 5 {
		t.Errorf("prompts = %d, want 5", n)
	}
}

func TestREPL_Run_ErrorContinues(t *testing.T) {
	rec := &recorder{err: errors.New("No Help Topic for 'use'")}
	r, out := newTestREPL("use\nping\nexit\n", rec)
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(rec.calls) != 2 {
		t.Errorf("calls = %v, want 2", rec.calls)
	}
	if !strings.Contains(out.String(), "Error: No Help Topic") {
		t.Errorf("error not printed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Did you mean: user, user create, user get") {
		t.Errorf("suggestions missing:\n%s", out.String())
	}
}

func TestREPL_Builtins(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("help val\nping\nhistory\nexit\n", rec)
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "  validators\n  validators list\n") {
		t.Errorf("help output:\n%s", s)
	}
	if !strings.Contains(s, "   1  help val\n   2  ping\n   3  history\n") {
		t.Errorf("history output:\n%s", s)
	}
	if len(rec.calls) != 1 {
		t.Errorf("builtins reached the executor: %v", rec.calls)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"ping", []string{"ping"}, false},
		{"  user   get  --phone 1 ", []string{"user", "get", "--phone", "1"}, false},
		{`user update --first-name "Ada Mary" --last-name 'O Brien'`,
			[]string{"user", "update", "--first-name", "Ada Mary", "--last-name", "O Brien"}, false},
		{`token issue --password a\ b`, []string{"token", "issue", "--password", "a b"}, false},
		{`x ""`, []string{"x", ""}, false},
		{`x 'it\s'`, []string{"x", `it\s`}, false},
		{`x "open`, nil, true},
		{`x \`, nil, true},
		{"   ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Split(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Split(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
