package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or certbot
// produces while replacing a key pair.
const DefaultDebounce = 500 * time.Millisecond

// KeyPairWatcher serves the current server key pair and reloads it when the
// certificate or key file changes. A failed reload keeps the previous pair.
type KeyPairWatcher struct {
	certFile string
	keyFile  string
	debounce time.Duration
	logger   *slog.Logger

	cert atomic.Pointer[tls.Certificate]

	mu       sync.Mutex
	timer    *time.Timer
	fsw      *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Option configures a KeyPairWatcher.
type Option func(*KeyPairWatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *KeyPairWatcher) {
		w.logger = logger
	}
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *KeyPairWatcher) {
		w.debounce = d
	}
}

// NewKeyPairWatcher loads the key pair once. Call Start to follow changes.
func NewKeyPairWatcher(certFile, keyFile string, opts ...Option) (*KeyPairWatcher, error) {
	w := &KeyPairWatcher{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Start watches the directories holding the key pair. Watching directories
// rather than files survives editors and tools that replace by rename.
func (w *KeyPairWatcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create key pair watcher: %w", err)
	}
	dirs := []string{filepath.Dir(w.certFile)}
	if kd := filepath.Dir(w.keyFile); kd != dirs[0] {
		dirs = append(dirs, kd)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()

	w.logger.Info("watching TLS key pair", "cert_file", w.certFile, "key_file", w.keyFile)
	return nil
}

func (w *KeyPairWatcher) loop() {
	defer w.wg.Done()
	certBase, keyBase := filepath.Base(w.certFile), filepath.Base(w.keyFile)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			base := filepath.Base(event.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("key pair file changed", "file", event.Name, "op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("key pair watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *KeyPairWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.Reload(); err != nil {
			w.logger.Error("key pair reload failed, keeping previous certificate",
				"error", err,
				"cert_file", w.certFile)
		}
	})
}

// Reload reads the key pair from disk and swaps it in.
func (w *KeyPairWatcher) Reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	w.cert.Store(&cert)
	w.logger.Info("TLS key pair loaded", "cert_file", w.certFile)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *KeyPairWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if w.fsw != nil {
			err = w.fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}

// GetCertificate returns the current key pair. It fits
// tls.Config.GetCertificate.
func (w *KeyPairWatcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return w.cert.Load(), nil
}

// ServerTLSConfig returns a server config that always presents the current
// key pair.
func (w *KeyPairWatcher) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: w.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}
