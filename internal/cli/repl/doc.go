// Package repl is the interactive loop behind `stakewatch-cli shell`.
//
// Each line is split into words (single and double quotes group words) and
// handed to an Executor. The builtins are help, history, exit and quit.
// History is kept in memory and, when a file is set, persisted between
// sessions.
package repl
