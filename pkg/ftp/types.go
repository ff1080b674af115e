// Package ftp implements the FTP Transport (C2): a reconnectable control
// client used for directory listing and single-connection downloads, a sized
// connection pool for parallel downloads, and the lazy year/month/line/ship
// listing traversal described in spec.md §4.2.
package ftp

import "time"

// FileInfo describes one discovered vendor JSON file.
type FileInfo struct {
	Path       string
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// PathIDs holds the provider identifiers encoded into a file's path, which
// override any identifiers found inside the JSON payload (§4.2, §9).
type PathIDs struct {
	CruiseLineID   string
	ShipID         string
	CodeToCruiseID string
}

// Config holds the FTP server connection parameters.
type Config struct {
	Host     string
	User     string
	Password string
	Secure   bool
	Verbose  bool
}

// DownloadOptions controls single-file download behavior (§4.2).
type DownloadOptions struct {
	MaxFileSizeBytes int64
	FileTimeoutMs    int
	RetryAttempts    int
	RetryDelayMs     int
}

// DefaultDownloadOptions returns the default download tuning.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		MaxFileSizeBytes: 500_000,
		FileTimeoutMs:    30_000,
		RetryAttempts:    3,
		RetryDelayMs:     1_000,
	}
}

// ListOptions filters and bounds the listing traversal (§4.2 step 1-5).
type ListOptions struct {
	Year              int // 0 means "discover years"
	Month             int // 0 means "all months"
	LineID            string
	ShipID            string
	MaxFiles          int // 0 means unbounded
	IncludeHistorical bool
	// Cancel is polled between directory-traversal levels; when it returns
	// true, the listing stops yielding further entries.
	Cancel func() bool
}

// DownloadResult is the outcome of a single-file download attempt.
type DownloadResult struct {
	Data      []byte
	Oversized bool
	Err       error
}

// Item is one element of the lazy listing sequence. A non-nil Err reports a
// listing failure. A failure to list the feed root ends the sequence; a
// failure to list one year, month, line or ship directory is reported and
// the traversal goes on with the next directory.
type Item struct {
	Info FileInfo
	Err  error
}
