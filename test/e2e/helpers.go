package e2e

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kairix/todo/internal/api"
	"github.com/kairix/todo/internal/auth"
	"github.com/kairix/todo/internal/store"
	"github.com/kairix/todo/pkg/client"
)

const testAPIKey = "e2e-test-api-key"

// testServer is an in-process server over a real SQLite file.
type testServer struct {
	url    string
	dbPath string
	store  *store.SQLStore
}

// startServer runs the full router behind httptest. When withGate is set
// the access gate admits testAPIKey only.
func startServer(t *testing.T, withGate bool) *testServer {
	t.Helper()

	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(new(bytes.Buffer), nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kairix.db")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	var keys *auth.KeyFile
	if withGate {
		keysPath := filepath.Join(dir, "api_keys.txt")
		if err := os.WriteFile(keysPath, []byte(testAPIKey+"\n"), 0600); err != nil {
			t.Fatalf("write key file: %v", err)
		}
		keys = auth.NewKeyFile(keysPath)
	}

	handler := api.NewHandler(s, keys, "e2e", api.DefaultSearchLimits())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})

	return &testServer{url: srv.URL, dbPath: dbPath, store: s}
}

func (s *testServer) client(t *testing.T, apiKey string) *client.Client {
	t.Helper()
	c, err := client.New(s.url, apiKey)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func tagNames(tags []client.Tag) []string {
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	return names
}

// storeAt opens the database file directly, bypassing HTTP.
func storeAt(t *testing.T, path string) (*store.SQLStore, error) {
	t.Helper()
	s, err := store.NewSQLiteStore(path)
	if err == nil {
		t.Cleanup(func() { s.Close() })
	}
	return s, err
}
