// Package connection is the HTTP client stakewatch-cli uses to reach the
// server. Requests are JSON; the bearer token travels in the "token" header
// and error answers carry their message under "Error".
package connection
