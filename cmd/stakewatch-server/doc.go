// Command stakewatch-server serves the account, token and validator
// snapshot REST API.
//
// The server provides:
//
//   - the REST API (ping, users, tokens, validators) over HTTP and HTTPS;
//     the HTTPS key pair is reloaded when its files change
//   - a daily rebuild of the validator snapshot from the scores database
//   - an optional Prometheus listener on server.metrics.addr
//
// Usage:
//
//	stakewatch-server [flags]
//	stakewatch-server -config /path/to/config.yaml
//
// Every setting can also be given as an environment variable prefixed with
// STAKEWATCH_, e.g. STAKEWATCH_SERVER_HTTP_ADDR=:9090.
package main
