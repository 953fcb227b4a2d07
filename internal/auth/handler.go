package auth

import (
	"log/slog"
	"sync"
)

// FailureHandler is the single global side effect for the auth error class:
// record where the user was, clear the persisted session, and set the
// one-shot expired flag. Concurrent in-flight requests can all hit a 401 at
// once, so Handle is idempotent per process; only the first call does work.
type FailureHandler struct {
	store       *Store
	currentPath func() string
	log         *slog.Logger

	mu    sync.Mutex
	fired bool
}

// NewFailureHandler wires the handler to the session store. currentPath
// supplies the command path to resume after re-login; nil means none.
func NewFailureHandler(store *Store, currentPath func() string, log *slog.Logger) *FailureHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FailureHandler{store: store, currentPath: currentPath, log: log}
}

// Handle performs the teardown. Safe to call from any goroutine; calls after
// the first are no-ops.
func (h *FailureHandler) Handle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fired {
		return
	}
	h.fired = true

	path := ""
	if h.currentPath != nil {
		path = h.currentPath()
	}
	if err := h.store.SetAuthExpired(path); err != nil {
		h.log.Warn("failed to record auth expiry", "error", err)
	}
	if err := h.store.Clear(); err != nil {
		h.log.Warn("failed to clear session", "error", err)
	}
	h.log.Info("session expired, cleared credentials", "return_path", path)
}

// Fired reports whether the teardown has run in this process.
func (h *FailureHandler) Fired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired
}
