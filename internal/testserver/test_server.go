// Package testserver spins up a full persistence service over a
// temporary data file for integration-style tests.
package testserver

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/protrackhq/protrack/internal/server"
)

type TestServer struct {
	Server   *httptest.Server
	Store    *server.FileStore
	DataPath string
}

// New starts a service backed by a file under t.TempDir. generator
// may be nil to leave the AI endpoints unconfigured.
func New(t *testing.T, generator server.Generator) *TestServer {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "protrack.json")
	store := server.NewFileStore(dataPath, nil)

	svc := server.NewServer(server.Config{
		Store:     store,
		Generator: generator,
	})
	t.Cleanup(svc.Close)

	httpServer := httptest.NewServer(svc)
	t.Cleanup(httpServer.Close)

	return &TestServer{
		Server:   httpServer,
		Store:    store,
		DataPath: dataPath,
	}
}
