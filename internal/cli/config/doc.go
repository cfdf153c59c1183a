// Package config reads and writes the stakewatch-cli profile,
// ~/.stakewatch/cli.yaml. The profile supplies defaults for the server
// address, bearer token and output format; flags and STAKEWATCH_*
// environment variables override it.
package config
