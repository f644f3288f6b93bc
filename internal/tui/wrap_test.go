package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTokensRespectsWidth(t *testing.T) {
	tokens := strings.Fields("the quick brown fox jumps over the lazy dog")
	lines := wrapTokens(tokens, 10)
	want := []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(lines), lines)
	}
	for i, ln := range lines {
		if ln.text != want[i] {
			t.Fatalf("line %d: got %q want %q", i, ln.text, want[i])
		}
	}
	if lines[0].first != 0 || lines[0].end != 2 || lines[4].first != 8 || lines[4].end != 9 {
		t.Fatalf("unexpected token ranges: %+v", lines)
	}
}

func TestWrapTokensParagraphBreak(t *testing.T) {
	lines := wrapTokens([]string{"one", "two", "", "three"}, 20)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].text != "one two" || lines[1].text != "" || lines[2].text != "three" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestWrapTokensSplitsLongWords(t *testing.T) {
	lines := wrapTokens([]string{"a", "abcdefghij", "b"}, 4)
	got := make([]string, len(lines))
	for i, ln := range lines {
		got[i] = ln.text
	}
	want := "a|abcd|efgh|ij|b"
	if strings.Join(got, "|") != want {
		t.Fatalf("got %q want %q", strings.Join(got, "|"), want)
	}
	for _, ln := range lines[1:4] {
		if ln.first != 1 || ln.end != 2 {
			t.Fatalf("split chunk must map to token 1: %+v", ln)
		}
	}
}

func TestWrapTokensWideRunes(t *testing.T) {
	lines := wrapTokens([]string{"日本語", "テキスト"}, 8)
	for _, ln := range lines {
		if runewidth.StringWidth(ln.text) > 8 {
			t.Fatalf("line %q exceeds width", ln.text)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestPaginate(t *testing.T) {
	tokens := strings.Fields("a b c d e f g")
	lines := wrapTokens(tokens, 1)
	pages := paginate(lines, 3)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].first != 0 || pages[0].end != 3 || pages[2].first != 6 || pages[2].end != 7 {
		t.Fatalf("unexpected page ranges: %+v", pages)
	}
	if pageFor(pages, 4) != 1 || pageFor(pages, 6) != 2 || pageFor(pages, 99) != 2 {
		t.Fatalf("unexpected pageFor results")
	}
	if pages[1].text() != "d\ne\nf" {
		t.Fatalf("unexpected page text %q", pages[1].text())
	}
}

func TestPaginateDropsLeadingBlankLines(t *testing.T) {
	lines := wrapTokens([]string{"a", "b", "", "c"}, 1)
	pages := paginate(lines, 2)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].lines[0].text != "c" {
		t.Fatalf("expected page to start with text, got %+v", pages[1].lines)
	}
	if pages[0].end != 3 {
		t.Fatalf("dropped blank line should extend previous page, got end %d", pages[0].end)
	}
}
