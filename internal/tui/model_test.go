package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/readlog/internal/model"
)

type fakeRecorder struct {
	entries  []model.ReadingLogEntry
	progress []float64
	err      error
}

func (f *fakeRecorder) InsertLog(_ context.Context, entry model.ReadingLogEntry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func (f *fakeRecorder) UpdateBookProgress(_ context.Context, _ string, progress float64, _ time.Time) error {
	f.progress = append(f.progress, progress)
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func numberedTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return out
}

func newTestModel(t *testing.T, book model.BookProgress, tokens []string, rec Recorder, clock *fakeClock) *Model {
	t.Helper()
	m := NewModel(book, tokens, rec, nil, Options{WPMMinSeconds: 30, Now: clock.now}, nil)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 8})
	if len(m.pages) < 3 {
		t.Fatalf("expected several pages, got %d", len(m.pages))
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReadingSessionRecordsWordsAndProgress(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	rec := &fakeRecorder{}
	tokens := numberedTokens(200)
	m := newTestModel(t, model.BookProgress{ID: "b1", Path: "/books/a.txt"}, tokens, rec, clock)

	m.Update(key("l"))
	m.Update(key("l"))
	m.Update(key("h"))
	wantWords := m.pages[1].end
	clock.t = clock.t.Add(2 * time.Minute)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 recorded session, got %d", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry.WordsRead != wantWords || entry.Duration != 2*time.Minute || entry.BookID != "b1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.WordsPerMinute != float64(wantWords)/2 {
		t.Fatalf("unexpected wpm %f", entry.WordsPerMinute)
	}
	if len(rec.progress) != 1 || rec.progress[0] != float64(wantWords)/200 {
		t.Fatalf("unexpected progress updates: %v", rec.progress)
	}
	if got, ok := m.Result(); !ok || got.WordsRead != wantWords {
		t.Fatalf("unexpected result: %+v %v", got, ok)
	}
}

func TestShortSessionSkipsSpeed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	rec := &fakeRecorder{}
	m := newTestModel(t, model.BookProgress{ID: "b1"}, numberedTokens(200), rec, clock)
	m.Update(key("l"))
	clock.t = clock.t.Add(10 * time.Second)
	m.Update(key("q"))
	if len(rec.entries) != 1 || rec.entries[0].WordsPerMinute != 0 || rec.entries[0].WordsRead == 0 {
		t.Fatalf("expected unmeasured session with words, got %+v", rec.entries)
	}
}

func TestIdleSessionNotRecorded(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	rec := &fakeRecorder{}
	m := newTestModel(t, model.BookProgress{ID: "b1"}, numberedTokens(200), rec, clock)
	clock.t = clock.t.Add(5 * time.Second)
	m.Update(key("q"))
	if len(rec.entries) != 0 {
		t.Fatalf("expected no session, got %d", len(rec.entries))
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("expected no result")
	}
}

func TestResumeFromStoredProgress(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	m := newTestModel(t, model.BookProgress{ID: "b1", Progress: 0.5}, numberedTokens(200), &fakeRecorder{}, clock)
	if m.page == 0 {
		t.Fatalf("expected to resume past the first page")
	}
	p := m.pages[m.page]
	if 100 < p.first || 100 >= p.end {
		t.Fatalf("resumed page %+v does not contain token 100", p)
	}
	if m.Progress() != 0.5 {
		t.Fatalf("progress must not drop below stored value, got %f", m.Progress())
	}
}

func TestFinishingBookSetsFullProgress(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	rec := &fakeRecorder{}
	m := newTestModel(t, model.BookProgress{ID: "b1"}, numberedTokens(60), rec, clock)
	for i := 0; i < len(m.pages)+2; i++ {
		m.Update(key("l"))
	}
	clock.t = clock.t.Add(3 * time.Minute)
	m.Update(key("q"))
	if len(rec.progress) != 1 || rec.progress[0] != 1 {
		t.Fatalf("expected full progress, got %v", rec.progress)
	}
	if rec.entries[0].WordsRead != 60 {
		t.Fatalf("expected 60 words, got %d", rec.entries[0].WordsRead)
	}
}

func TestSaveErrorIsReported(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := newTestModel(t, model.BookProgress{ID: "b1"}, numberedTokens(200), rec, clock)
	m.Update(key("l"))
	m.Update(key("q"))
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "disk full") {
		t.Fatalf("expected save error, got %v", m.Err())
	}
	if len(rec.progress) != 0 {
		t.Fatalf("progress must not be saved after a failed insert")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)}
	m := newTestModel(t, model.BookProgress{ID: "b1"}, numberedTokens(200), &fakeRecorder{}, clock)
	m.Update(footerStatsMsg{stats: model.ReadingStats{CurrentStreak: 4, AverageReadingSpeed: 231.3}})
	clock.t = clock.t.Add(90 * time.Second)
	out := m.renderFooter()
	if !containsAll(out, []string{fmt.Sprintf("Page 1/%d", len(m.pages)), "Book 0%", "Session 2m", "Streak 4d", "Avg 231.3 WPM"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
