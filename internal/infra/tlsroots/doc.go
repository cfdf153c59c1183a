// Package tlsroots loads trusted CA certificates for the CLI's HTTPS client
// and keeps the server's HTTPS key pair current.
//
// Pool extends the system roots with a private CA bundle. KeyPairWatcher
// reloads the server certificate when its files change on disk, so renewed
// certificates are served without a restart.
package tlsroots
