/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"
	"time"
)

func TestApplyScanOptions(t *testing.T) {
	var called bool
	opts := ApplyScanOptions(
		WithPageSize(25),
		WithMaxRetries(5),
		WithRetryBackoff(time.Millisecond),
		WithProgressHandler(func(ScanProgress) { called = true }),
	)

	if opts.PageSize != 25 || opts.MaxRetries != 5 || opts.RetryBackoff != time.Millisecond {
		t.Errorf("options not applied: %+v", opts)
	}
	opts.ProgressHandler(ScanProgress{})
	if !called {
		t.Error("progress handler not set")
	}

	defaults := ApplyScanOptions(WithPageSize(0))
	if defaults.PageSize != 100 {
		t.Errorf("non-positive page size should keep the default, got %d", defaults.PageSize)
	}
}

func TestProgress(t *testing.T) {
	p := Progress(50, 2, time.Now().Add(-time.Second))
	if p.ItemsProcessed != 50 || p.PagesProcessed != 2 {
		t.Errorf("unexpected counters: %+v", p)
	}
	if p.CurrentRate <= 0 || p.CurrentRate > 50 {
		t.Errorf("unexpected rate %f", p.CurrentRate)
	}
}
