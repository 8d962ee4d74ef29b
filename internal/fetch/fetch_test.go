package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// buildZip returns a zip archive containing the given name->content entries.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestFetch - plain byte retrieval
// ---------------------------------------------------------------------------

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("asset bytes"))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	c := New()

	t.Run("success returns body", func(t *testing.T) {
		body, err := c.Fetch(context.Background(), srv.URL+"/ok")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(body) != "asset bytes" {
			t.Errorf("Fetch() body = %q, want %q", body, "asset bytes")
		}
	})

	t.Run("non-2xx wraps ErrBadStatus with url", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), srv.URL+"/missing")
		if !errors.Is(err, ErrBadStatus) {
			t.Fatalf("Fetch() error = %v, want ErrBadStatus", err)
		}
		if got := err.Error(); !bytes.Contains([]byte(got), []byte("/missing")) {
			t.Errorf("error %q does not carry the offending URL", got)
		}
	})

	t.Run("unreachable host wraps ErrRequest", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), "http://127.0.0.1:0/nope")
		if !errors.Is(err, ErrRequest) {
			t.Errorf("Fetch() error = %v, want ErrRequest", err)
		}
	})

	t.Run("canceled context fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Fetch(ctx, srv.URL+"/ok"); err == nil {
			t.Error("Fetch() with canceled context succeeded")
		}
	})
}

// ---------------------------------------------------------------------------
// TestFetchToFile - download to disk
// ---------------------------------------------------------------------------

func TestFetchToFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("file content"))
	}))
	t.Cleanup(srv.Close)

	c := New()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "a", "b", "asset.js")
		if err := c.FetchToFile(context.Background(), srv.URL, path); err != nil {
			t.Fatalf("FetchToFile() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading result: %v", err)
		}
		if string(data) != "file content" {
			t.Errorf("file content = %q, want %q", data, "file content")
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "asset.js")
		err := c.FetchToFile(context.Background(), "http://127.0.0.1:0/nope", path)
		if !errors.Is(err, ErrRequest) {
			t.Fatalf("FetchToFile() error = %v, want ErrRequest", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("failed fetch left a file behind")
		}
	})
}

// ---------------------------------------------------------------------------
// TestFetchArchive - zip download, extraction, caching
// ---------------------------------------------------------------------------

func TestFetchArchive(t *testing.T) {
	t.Parallel()

	archive := func(t *testing.T) []byte {
		return buildZip(t, map[string]string{
			"font-awesome-4.7.0/css/font-awesome.min.css": ".fa{}",
			"font-awesome-4.7.0/fonts/fontawesome.woff2":  "woff",
		})
	}

	t.Run("extracts and keeps matching top-level name", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(archive(t))
		}))
		t.Cleanup(srv.Close)

		dir := t.TempDir()
		got, err := New().FetchArchive(context.Background(), srv.URL, dir, "font-awesome-4.7.0")
		if err != nil {
			t.Fatalf("FetchArchive() error = %v", err)
		}
		if want := filepath.Join(dir, "font-awesome-4.7.0"); got != want {
			t.Errorf("FetchArchive() = %q, want %q", got, want)
		}
		css := filepath.Join(dir, "font-awesome-4.7.0", "css", "font-awesome.min.css")
		if _, err := os.Stat(css); err != nil {
			t.Errorf("extracted css missing: %v", err)
		}
	})

	t.Run("renames top-level directory", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(buildZip(t, map[string]string{"upstream-name/readme.txt": "hi"}))
		}))
		t.Cleanup(srv.Close)

		dir := t.TempDir()
		if _, err := New().FetchArchive(context.Background(), srv.URL, dir, "renamed-1.0"); err != nil {
			t.Fatalf("FetchArchive() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "renamed-1.0", "readme.txt")); err != nil {
			t.Errorf("renamed tree missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "upstream-name")); !os.IsNotExist(err) {
			t.Error("original top-level directory still present after rename")
		}
	})

	t.Run("existing destination skips the network", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write(archive(t))
		}))
		t.Cleanup(srv.Close)

		dir := t.TempDir()
		c := New()
		if _, err := c.FetchArchive(context.Background(), srv.URL, dir, "font-awesome-4.7.0"); err != nil {
			t.Fatalf("first FetchArchive() error = %v", err)
		}
		if _, err := c.FetchArchive(context.Background(), srv.URL, dir, "font-awesome-4.7.0"); err != nil {
			t.Fatalf("second FetchArchive() error = %v", err)
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("server hits = %d, want 1 (second call must be cached)", got)
		}
	})

	t.Run("corrupt archive wraps ErrExtract with url", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("this is not a zip"))
		}))
		t.Cleanup(srv.Close)

		_, err := New().FetchArchive(context.Background(), srv.URL, t.TempDir(), "pkg-1.0")
		if !errors.Is(err, ErrExtract) {
			t.Fatalf("FetchArchive() error = %v, want ErrExtract", err)
		}
		if !bytes.Contains([]byte(err.Error()), []byte(srv.URL)) {
			t.Errorf("error %q does not carry the offending URL", err)
		}
	})

	t.Run("entry escaping destination is rejected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(buildZip(t, map[string]string{"../evil.txt": "pwn"}))
		}))
		t.Cleanup(srv.Close)

		dir := t.TempDir()
		_, err := New().FetchArchive(context.Background(), srv.URL, dir, "pkg-1.0")
		if !errors.Is(err, ErrExtract) {
			t.Fatalf("FetchArchive() error = %v, want ErrExtract", err)
		}
		if _, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "evil.txt")); !os.IsNotExist(statErr) {
			t.Error("zip-slip entry was written outside the destination")
		}
	})
}
