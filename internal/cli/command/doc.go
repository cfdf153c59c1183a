// Package command defines the stakewatch-cli commands on urfave/cli/v2.
//
// Every HTTP command follows the same shape: build a client from the global
// flags, bound the call by --timeout, decode the answer and hand it to the
// selected output formatter.
package command
