// Package dashboard serves the browser front end: upload a batch of
// documents, process it, then ask questions over a websocket.
package dashboard

import (
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docqa/internal/session"
)

// SessionFactory returns a fresh session for a new browser client.
type SessionFactory func() *session.Session

// client is the state behind one browser session id.
type client struct {
	sess     *session.Session
	batchDir string // uploads backing the active index
}

// Dashboard provides the upload form and question interface.
type Dashboard struct {
	newSession SessionFactory
	uploadRoot string
	logger     *zap.Logger

	mu      sync.Mutex
	clients map[string]*client
}

// New creates a new Dashboard. Uploaded batches are stored below uploadRoot;
// an empty uploadRoot selects the system temp directory.
func New(newSession SessionFactory, uploadRoot string, logger *zap.Logger) *Dashboard {
	if uploadRoot == "" {
		uploadRoot = os.TempDir()
	}
	return &Dashboard{
		newSession: newSession,
		uploadRoot: uploadRoot,
		logger:     logger,
		clients:    make(map[string]*client),
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Post("/api/process", d.handleProcess)
	r.Get("/api/status", d.handleStatus)
	r.Get("/ws/ask", d.handleWebSocket)
}

// lookup returns the client for id, or nil.
func (d *Dashboard) lookup(id string) *client {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[id]
}

// clientFor returns the client for id, creating one when id is unknown.
func (d *Dashboard) clientFor(id string) *client {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clients[id]
	if !ok {
		c = &client{sess: d.newSession()}
		d.clients[id] = c
	}
	return c
}

// setBatch records dir as the client's active batch and returns the one it
// replaces.
func (d *Dashboard) setBatch(c *client, dir string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := c.batchDir
	c.batchDir = dir
	return prev
}

// Close removes every stored upload batch.
func (d *Dashboard) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for id, c := range d.clients {
		if c.batchDir != "" {
			if err := os.RemoveAll(c.batchDir); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(d.clients, id)
	}
	return firstErr
}
