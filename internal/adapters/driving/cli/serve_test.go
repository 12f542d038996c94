package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("flightdeck_runs_total 0\n"))
	})
	srv := newMetricsServer("127.0.0.1:0", metrics)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "ok"},
		{"/metrics", "flightdeck_runs_total 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, string(body))
		})
	}
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
}

func TestConfigWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	c := &configWatcher{path: filepath.Clean(path)}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.toml"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.handleEvent(tt.ev))
		})
	}
}

func TestConfigWatcher_MissingDirectory(t *testing.T) {
	_, err := newConfigWatcher(filepath.Join(t.TempDir(), "missing", "config.toml"), func() {})
	assert.Error(t, err)
}

func TestConfigWatcher_NotifiesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[serve]\n"), 0o600))

	changed := make(chan struct{}, 8)
	w, err := newConfigWatcher(path, func() { changed <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	ctx := t.Context()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("[serve]\ninterval_minutes = 5\n"), 0o600))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
