/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// ScanOptions configures how engines page through a cache.
type ScanOptions struct {
	PageSize        int32              // Records per page (default: 100)
	MaxRetries      int                // Retry attempts for transient errors (default: 3)
	RetryBackoff    time.Duration      // Backoff between retries, multiplied by the attempt (default: 1s)
	ProgressHandler func(ScanProgress) // Optional progress callback, invoked after each page
}

// ScanProgress tracks scan progress.
type ScanProgress struct {
	ItemsProcessed int64     // Total records read
	PagesProcessed int       // Total pages read
	StartTime      time.Time // When the scan started
	CurrentRate    float64   // Records per second
}

// ScanOption is a functional option for configuring scans
type ScanOption func(*ScanOptions)

// DefaultScanOptions returns default scan options
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		PageSize:     100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// ApplyScanOptions returns the defaults with opts applied.
func ApplyScanOptions(opts ...ScanOption) ScanOptions {
	options := DefaultScanOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithPageSize sets the page size
func WithPageSize(size int32) ScanOption {
	return func(opts *ScanOptions) {
		if size > 0 {
			opts.PageSize = size
		}
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) ScanOption {
	return func(opts *ScanOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) ScanOption {
	return func(opts *ScanOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(ScanProgress)) ScanOption {
	return func(opts *ScanOptions) {
		opts.ProgressHandler = handler
	}
}

// Progress builds a progress snapshot for the given counters.
func Progress(items int64, pages int, start time.Time) ScanProgress {
	p := ScanProgress{ItemsProcessed: items, PagesProcessed: pages, StartTime: start}
	if elapsed := time.Since(start).Seconds(); elapsed > 0 {
		p.CurrentRate = float64(items) / elapsed
	}
	return p
}
