package ipyvolume

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/batermj/ipyvolume/internal/assets"
	"github.com/batermj/ipyvolume/internal/fetch"
	"github.com/batermj/ipyvolume/internal/fileutil"
)

// Fixed asset names and URL patterns. Each downloadable dependency has one
// URL pattern parameterized by a version string and a deterministic
// destination filename: plain for the unversioned widget runtime,
// version-suffixed for the rest.
const (
	widgetJSName    = "ipyvolume.js"
	graphicsJSName  = "three.js"
	widgetJSPattern = "https://unpkg.com/ipyvolume@%s/dist/index.js"

	requireJSPattern  = "https://cdnjs.cloudflare.com/ajax/libs/require.js/%s/require.min.js"
	requireJSNameTmpl = "require.min.v%s.js"

	embedJSPattern  = "https://unpkg.com/@jupyter-widgets/html-manager@%s/dist/embed-amd.js"
	embedJSNameTmpl = "embed-amd_v%s.js"

	fontAwesomePattern  = "https://fontawesome.io/assets/font-awesome-%s.zip"
	fontAwesomeNameTmpl = "font-awesome-%s"
)

// assetFetcher abstracts the HTTP download layer so tests can run without a
// network.
type assetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchToFile(ctx context.Context, url, path string) error
	FetchArchive(ctx context.Context, url, destDir, dirName string) (string, error)
}

// Compile-time interface check.
var _ assetFetcher = (*fetch.Client)(nil)

// assetDescriptor pairs a remote URL with its local placement. Computed per
// dependency, never persisted.
type assetDescriptor struct {
	url      string
	dir      string
	filename string
}

func (d assetDescriptor) path() string {
	return filepath.Join(d.dir, d.filename)
}

// WriteGraphicsRuntime copies the bundled three.js graphics runtime into
// dir. The runtime ships inside the module itself and is never downloaded.
// Returns the placed filename.
func WriteGraphicsRuntime(dir string) (string, error) {
	path := filepath.Join(dir, graphicsJSName)
	if err := fileutil.WriteFile(path, assets.ThreeJS()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetCopy, err)
	}
	return graphicsJSName, nil
}

// SaveWidgetJS places the widget runtime script into dir as ipyvolume.js.
// With devmode, a developer build at devPath is copied instead of fetching
// the versioned release from the CDN; the download only happens when no such
// build exists.
func (s *Service) SaveWidgetJS(ctx context.Context, dir, version string, devmode bool, devPath string) (string, error) {
	d := assetDescriptor{
		url:      fmt.Sprintf(widgetJSPattern, version),
		dir:      dir,
		filename: widgetJSName,
	}

	if devmode && fileutil.FileExists(devPath) {
		if err := fileutil.CopyFile(devPath, d.path()); err != nil {
			return "", fmt.Errorf("%w: %v", ErrAssetCopy, err)
		}
		return d.filename, nil
	}

	if err := s.fetcher.FetchToFile(ctx, d.url, d.path()); err != nil {
		return "", wrapFetchErr(err)
	}
	return d.filename, nil
}

// SaveRequireJS downloads the module-loader script into dir under a
// version-qualified filename.
func (s *Service) SaveRequireJS(ctx context.Context, dir, version string) (string, error) {
	d := assetDescriptor{
		url:      fmt.Sprintf(requireJSPattern, version),
		dir:      dir,
		filename: fmt.Sprintf(requireJSNameTmpl, version),
	}
	if err := s.fetcher.FetchToFile(ctx, d.url, d.path()); err != nil {
		return "", wrapFetchErr(err)
	}
	return d.filename, nil
}

// SaveEmbedJS downloads the widget-embedding script into dir under a
// version-qualified filename. The version may carry a ^/~ semver range
// marker, which the CDN resolves; the marker is stripped from the filename.
func (s *Service) SaveEmbedJS(ctx context.Context, dir, version string) (string, error) {
	d := assetDescriptor{
		url:      fmt.Sprintf(embedJSPattern, version),
		dir:      dir,
		filename: fmt.Sprintf(embedJSNameTmpl, Versions{HTMLManager: version}.bareHTMLManager()),
	}
	if err := s.fetcher.FetchToFile(ctx, d.url, d.path()); err != nil {
		return "", wrapFetchErr(err)
	}
	return d.filename, nil
}

// SaveFontAwesome downloads and extracts the icon-font package into dir,
// renaming the extracted tree to font-awesome-<version>. If that directory
// already exists the call performs no network request. Returns the folder
// name.
func (s *Service) SaveFontAwesome(ctx context.Context, dir, version string) (string, error) {
	folder := fmt.Sprintf(fontAwesomeNameTmpl, version)
	url := fmt.Sprintf(fontAwesomePattern, version)

	if _, err := s.fetcher.FetchArchive(ctx, url, dir, folder); err != nil {
		return "", wrapFetchErr(err)
	}
	return folder, nil
}

// wrapFetchErr maps internal fetch errors onto the public sentinels while
// preserving the underlying cause (URL included) for errors.Is and display.
func wrapFetchErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fetch.ErrExtract) || errors.Is(err, fetch.ErrZipPath) || errors.Is(err, fetch.ErrEmptyZip) {
		return fmt.Errorf("%w: %v", ErrArchiveExtract, err)
	}
	return fmt.Errorf("%w: %v", ErrAssetDownload, err)
}
