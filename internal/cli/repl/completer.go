package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "help", "history", "quit"}

// Completer matches command names by prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over commands plus the builtins.
func NewCompleter(commands []string) *Completer {
	all := append(append([]string{}, commands...), builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the commands that start with prefix, in sorted order.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether word is exactly one of the commands.
func (c *Completer) Known(word string) bool {
	i := sort.SearchStrings(c.commands, word)
	return i < len(c.commands) && c.commands[i] == word
}
