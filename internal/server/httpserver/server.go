package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"
)

// Server wraps an http.Server. The plaintext and TLS listeners are two
// Servers sharing one handler.
type Server struct {
	httpServer *http.Server
}

// New creates a plaintext server for addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewTLS creates a server whose certificate comes from tlsConfig, typically
// through GetCertificate so a renewed key pair is served without a restart.
func NewTLS(addr string, handler http.Handler, tlsConfig *tls.Config) *Server {
	s := New(addr, handler)
	s.httpServer.TLSConfig = tlsConfig
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server using the TLS config given to
// NewTLS.
func (s *Server) ListenAndServeTLS() error {
	return s.httpServer.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
