package repl

import (
	"reflect"
	"testing"
)

func TestCompleter(t *testing.T) {
	c := NewCompleter([]string{"token", "token issue", "token get", "ping"})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"tok", []string{"token", "token get", "token issue"}},
		{"token i", []string{"token issue"}},
		{"h", []string{"help", "history"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}

	if !c.Known("ping") || !c.Known("exit") || c.Known("pin") {
		t.Error("Known mismatch")
	}
	if len(c.Complete("")) != 8 {
		t.Errorf("Complete(\"\") = %v", c.Complete(""))
	}
}
