package ipyvolume

import "errors"

// Sentinel errors for library operations.
var (
	// Orchestrator errors.
	ErrScriptsPathEscape      = errors.New("scripts path must stay under the output directory")
	ErrOfflineScriptsRequired = errors.New("offline mode requires bundling the script dependencies")
	ErrWriteOutput            = errors.New("failed to write output file")

	// Asset retrieval errors.
	ErrAssetDownload  = errors.New("asset download failed")
	ErrArchiveExtract = errors.New("archive extraction failed")
	ErrAssetCopy      = errors.New("asset copy failed")

	// Template errors.
	ErrMissingPlaceholder = errors.New("template placeholder has no value")
	ErrEmptyTemplate      = errors.New("template cannot be empty")

	// Serialization errors.
	ErrStateSerialize = errors.New("widget state serialization failed")

	// Caption rendering errors.
	ErrCaptionRender = errors.New("markdown caption rendering failed")

	// Preview errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("screenshot capture failed")
)
