package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/readlog/internal/booktext"
)

// line is one wrapped display line covering tokens [first, end).
type line struct {
	text  string
	first int
	end   int
}

// page is a screenful of lines covering tokens [first, end).
type page struct {
	lines []line
	first int
	end   int
}

// wrapTokens greedily fills lines up to width display cells. Tokens wider
// than a line are split across lines.
func wrapTokens(tokens []string, width int) []line {
	if width < 1 {
		width = 1
	}
	var out []line
	var b strings.Builder
	cur := line{first: -1}
	curWidth := 0
	flush := func() {
		if cur.first < 0 {
			return
		}
		cur.text = b.String()
		out = append(out, cur)
		b.Reset()
		cur = line{first: -1}
		curWidth = 0
	}

	for i, token := range tokens {
		if token == booktext.ParagraphBreak {
			flush()
			out = append(out, line{first: i, end: i + 1})
			continue
		}
		w := runewidth.StringWidth(token)
		if w > width {
			flush()
			for _, chunk := range splitWidth(token, width) {
				out = append(out, line{text: chunk, first: i, end: i + 1})
			}
			continue
		}
		if cur.first >= 0 && curWidth+1+w > width {
			flush()
		}
		if cur.first < 0 {
			cur.first = i
		} else {
			b.WriteByte(' ')
			curWidth++
		}
		b.WriteString(token)
		curWidth += w
		cur.end = i + 1
	}
	flush()
	return out
}

func splitWidth(token string, width int) []string {
	var chunks []string
	var b strings.Builder
	w := 0
	for _, r := range token {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && w > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
			w = 0
		}
		b.WriteRune(r)
		w += rw
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// paginate groups lines into pages of height lines. Blank lines at the top
// of a page are dropped.
func paginate(lines []line, height int) []page {
	if height < 1 {
		height = 1
	}
	var pages []page
	var cur []line
	for _, ln := range lines {
		if len(cur) == 0 && ln.text == "" {
			if len(pages) > 0 {
				pages[len(pages)-1].end = ln.end
			}
			continue
		}
		cur = append(cur, ln)
		if len(cur) == height {
			pages = append(pages, newPage(cur))
			cur = nil
		}
	}
	if len(cur) > 0 {
		pages = append(pages, newPage(cur))
	}
	return pages
}

func newPage(lines []line) page {
	return page{lines: lines, first: lines[0].first, end: lines[len(lines)-1].end}
}

// pageFor returns the page holding token, or the last page.
func pageFor(pages []page, token int) int {
	for i, p := range pages {
		if token < p.end {
			return i
		}
	}
	if len(pages) == 0 {
		return 0
	}
	return len(pages) - 1
}

func (p page) text() string {
	parts := make([]string, len(p.lines))
	for i, ln := range p.lines {
		parts[i] = ln.text
	}
	return strings.Join(parts, "\n")
}
