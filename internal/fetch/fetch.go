// Package fetch retrieves static assets over HTTP and places them on disk.
// A single GET per asset: no retries, no parallelism, no partial-failure
// cleanup. Archive assets are extracted in place and cached by directory
// existence.
package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for fetch operations.
var (
	ErrRequest   = errors.New("fetch: request failed")
	ErrBadStatus = errors.New("fetch: unexpected response status")
	ErrExtract   = errors.New("fetch: archive extraction failed")
	ErrZipPath   = errors.New("fetch: archive entry escapes destination")
	ErrEmptyZip  = errors.New("fetch: archive has no entries")
)

// maxAssetSize caps a single downloaded asset (64MB). The bundled
// dependencies are all well under this.
const maxAssetSize = 64 << 20

// Client performs HTTP GETs for static assets.
type Client struct {
	http   *http.Client
	ua     string
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Client) { f.http = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Client) { f.ua = ua }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Client) { f.logger = l }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Client) { f.http.Timeout = d }
}

// New creates a Client with sensible defaults.
func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		ua:     "ipyvolume-embed/1.0",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch GETs a URL and returns the body. Transport failures and non-2xx
// responses surface as wrapped errors carrying the URL; the caller does not
// retry.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequest, url, err)
	}
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequest, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrBadStatus, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrRequest, url, err)
	}

	c.logger.Debug("fetch: downloaded", "url", url, "size", len(body))
	return body, nil
}

// FetchToFile GETs a URL and writes the body to path, creating parent
// directories as needed.
func (c *Client) FetchToFile(ctx context.Context, url, path string) error {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil { // #nosec G306 -- web asset, world-readable
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FetchArchive downloads a zip archive, extracts it under destDir, and
// renames the top-level extracted directory to dirName. If destDir/dirName
// already exists the call returns immediately without touching the network:
// the cache key is directory existence, not content.
func (c *Client) FetchArchive(ctx context.Context, url, destDir, dirName string) (string, error) {
	target := filepath.Join(destDir, dirName)
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		c.logger.Debug("fetch: archive cached", "dir", target)
		return target, nil
	}

	body, err := c.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	topLevel, err := c.extractZip(body, destDir)
	if err != nil {
		// Re-surface as a local I/O failure carrying the offending URL.
		return "", fmt.Errorf("%w: %s: %v", ErrExtract, url, err)
	}

	if topLevel != dirName {
		if err := os.Rename(filepath.Join(destDir, topLevel), target); err != nil {
			return "", fmt.Errorf("%w: %s: renaming %s: %v", ErrExtract, url, topLevel, err)
		}
	}
	return target, nil
}

// extractZip unpacks every archive entry under destDir and returns the name
// of the top-level directory. Entry paths are containment-checked before any
// write.
func (c *Client) extractZip(data []byte, destDir string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if len(zr.File) == 0 {
		return "", ErrEmptyZip
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", err
	}

	cleanDest := filepath.Clean(destDir)
	topLevel := topLevelName(zr.File[0].Name)

	for _, f := range zr.File {
		target := filepath.Join(destDir, f.Name) // #nosec G305 -- containment checked below
		if !strings.HasPrefix(filepath.Clean(target), cleanDest+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrZipPath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return "", err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return "", err
		}
		if err := writeZipEntry(f, target); err != nil {
			return "", err
		}
	}

	c.logger.Debug("fetch: extracted archive", "dir", filepath.Join(destDir, topLevel), "entries", len(zr.File))
	return topLevel, nil
}

// writeZipEntry copies a single archive entry to disk, capped to guard
// against decompression bombs.
func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target) // #nosec G304 -- path containment checked by caller
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, io.LimitReader(rc, maxAssetSize)); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// topLevelName returns the first path element of an archive entry name.
func topLevelName(entry string) string {
	entry = strings.TrimPrefix(entry, "./")
	if i := strings.IndexByte(entry, '/'); i >= 0 {
		return entry[:i]
	}
	return entry
}
