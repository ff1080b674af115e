package delta

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/cruiseops/cruisesync/pkg/catalog"
)

func newTestTracker() *Tracker {
	tr := New(nil, slog.Default())
	return tr
}

func TestUnchangedRequiresTrackedRow(t *testing.T) {
	tr := newTestTracker()
	if tr.Unchanged("/2026/03/15/9876/1.json", 100, nil) {
		t.Error("expected false for untracked file")
	}
}

func TestUnchangedRequiresSuccessStatus(t *testing.T) {
	tr := newTestTracker()
	tr.tracked["/a.json"] = catalog.FtpFileSync{FilePath: "/a.json", FileSize: 100, SyncStatus: "failed"}
	if tr.Unchanged("/a.json", 100, nil) {
		t.Error("expected false for a previously failed file")
	}
}

func TestUnchangedRequiresMatchingSize(t *testing.T) {
	tr := newTestTracker()
	tr.tracked["/a.json"] = catalog.FtpFileSync{FilePath: "/a.json", FileSize: 100, SyncStatus: "success"}
	if tr.Unchanged("/a.json", 200, nil) {
		t.Error("expected false when size differs")
	}
}

func TestUnchangedWhenModifiedAtAbsentOnEitherSide(t *testing.T) {
	tr := newTestTracker()
	tr.tracked["/a.json"] = catalog.FtpFileSync{FilePath: "/a.json", FileSize: 100, SyncStatus: "success"}
	if !tr.Unchanged("/a.json", 100, nil) {
		t.Error("expected true when modifiedAt is absent on both sides")
	}

	now := time.Now()
	if !tr.Unchanged("/a.json", 100, &now) {
		t.Error("expected true when modifiedAt is absent on the tracked side only")
	}
}

func TestUnchangedWhenModifiedAtMatches(t *testing.T) {
	tr := newTestTracker()
	modAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tr.tracked["/a.json"] = catalog.FtpFileSync{FilePath: "/a.json", FileSize: 100, SyncStatus: "success", FtpModifiedAt: &modAt}

	same := modAt
	if !tr.Unchanged("/a.json", 100, &same) {
		t.Error("expected true when modifiedAt matches exactly")
	}

	different := modAt.Add(time.Hour)
	if tr.Unchanged("/a.json", 100, &different) {
		t.Error("expected false when modifiedAt differs")
	}
}

func TestHashContentNilOnNoData(t *testing.T) {
	if HashContent(nil) != nil {
		t.Error("expected nil hash for nil data")
	}
	h := HashContent([]byte("hello"))
	if h == nil || *h != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("HashContent = %v, want md5 of 'hello'", h)
	}
}

func TestErrorSnippetTruncatesAndStripsNewlines(t *testing.T) {
	err := errors.New("line one\nline two")
	got := ErrorSnippet(err)
	if got == nil {
		t.Fatal("expected non-nil snippet")
	}
	if *got != "line one line two" {
		t.Errorf("ErrorSnippet = %q", *got)
	}
	if ErrorSnippet(nil) != nil {
		t.Error("expected nil for nil error")
	}
}
