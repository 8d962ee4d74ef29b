package main

import (
	"errors"
	"os"

	"github.com/batermj/ipyvolume"
)

// Exit codes for the embedhtml CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful export
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitNetwork = 4 // Asset download or extraction failure
	ExitBrowser = 5 // Browser errors during preview
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 5)
	if errors.Is(err, ipyvolume.ErrBrowserConnect) ||
		errors.Is(err, ipyvolume.ErrPageCreate) ||
		errors.Is(err, ipyvolume.ErrPageLoad) ||
		errors.Is(err, ipyvolume.ErrScreenshot) {
		return ExitBrowser
	}

	// Network/archive errors (exit 4)
	if errors.Is(err, ipyvolume.ErrAssetDownload) ||
		errors.Is(err, ipyvolume.ErrArchiveExtract) {
		return ExitNetwork
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadState) ||
		errors.Is(err, ErrReadTemplate) ||
		errors.Is(err, ErrReadCaption) ||
		errors.Is(err, ErrWritePreview) ||
		errors.Is(err, ipyvolume.ErrWriteOutput) ||
		errors.Is(err, ipyvolume.ErrAssetCopy) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrEmptyConfigName) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, ipyvolume.ErrScriptsPathEscape) ||
		errors.Is(err, ipyvolume.ErrOfflineScriptsRequired) ||
		errors.Is(err, ipyvolume.ErrMissingPlaceholder) ||
		errors.Is(err, ipyvolume.ErrEmptyTemplate) ||
		errors.Is(err, ipyvolume.ErrStateFileParse) ||
		errors.Is(err, ipyvolume.ErrStateFileVersion) ||
		errors.Is(err, ipyvolume.ErrUnknownView) {
		return ExitUsage
	}

	return ExitGeneral
}
