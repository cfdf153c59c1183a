package tlsroots

import (
	"crypto/tls"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/stakewatch/internal/telemetry/logger"
)

func newTestWatcher(t *testing.T) (w *KeyPairWatcher, certFile, keyFile string) {
	t.Helper()
	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	writeKeyPair(t, certFile, keyFile, 1)

	w, err := NewKeyPairWatcher(certFile, keyFile,
		WithLogger(logger.Discard()),
		WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewKeyPairWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w, certFile, keyFile
}

func servedSerial(t *testing.T, w *KeyPairWatcher) int64 {
	t.Helper()
	cert, err := w.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	leaf := cert.Leaf
	if leaf == nil {
		t.Fatal("certificate leaf not parsed")
	}
	return leaf.SerialNumber.Int64()
}

func TestNewKeyPairWatcher_Errors(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")

	if _, err := NewKeyPairWatcher(certFile, keyFile); err == nil {
		t.Error("expected error for missing files")
	}

	os.WriteFile(certFile, []byte("invalid"), 0o644)
	os.WriteFile(keyFile, []byte("invalid"), 0o600)
	if _, err := NewKeyPairWatcher(certFile, keyFile); err == nil {
		t.Error("expected error for invalid key pair")
	}
}

func TestKeyPairWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	w, certFile, _ := newTestWatcher(t)

	if err := os.WriteFile(certFile, []byte("truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(); err == nil {
		t.Fatal("Reload() expected error for broken certificate")
	}
	if got := servedSerial(t, w); got != 1 {
		t.Errorf("serial = %d, want previous certificate 1", got)
	}
}

func TestKeyPairWatcher_FollowsRotation(t *testing.T) {
	w, certFile, keyFile := newTestWatcher(t)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	writeKeyPair(t, certFile, keyFile, 2)

	deadline := time.Now().Add(5 * time.Second)
	for servedSerial(t, w) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("rotated key pair was not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestKeyPairWatcher_StopIsIdempotent(t *testing.T) {
	w, _, _ := newTestWatcher(t)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestKeyPairWatcher_Handshake(t *testing.T) {
	w, certFile, _ := newTestWatcher(t)

	ln, err := tls.Listen("tcp", "127.0.0.1:0", w.ServerTLSConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.(*tls.Conn).Handshake()
			conn.Close()
		}
	}()

	pool, err := LoadCAFile(certFile)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 5 * time.Second}, "tcp", ln.Addr().String(), pool.ClientTLSConfig())
	if err != nil {
		t.Fatalf("handshake with trusted CA failed: %v", err)
	}
	defer conn.Close()
	if got := conn.ConnectionState().PeerCertificates[0].SerialNumber.Int64(); got != 1 {
		t.Errorf("peer serial = %d, want 1", got)
	}

	_, err = tls.Dial("tcp", ln.Addr().String(), NewEmptyPool().ClientTLSConfig())
	if err == nil {
		t.Error("handshake without the CA should fail verification")
	}
}
