// Package booktext loads plain-text books for the reader.
package booktext

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxLineBytes bounds a single line of book text.
const maxLineBytes = 1 << 20

// Book is a loaded plain-text book split into display tokens.
type Book struct {
	Title  string
	Tokens []string
}

// Load reads a book from path. Paragraph breaks are kept as empty tokens.
func Load(path string) (Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return Book{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only book file.
			_ = cerr
		}
	}()

	var tokens []string
	var title string
	blank := false
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			blank = len(tokens) > 0
			continue
		}
		if title == "" {
			title = line
		}
		if blank {
			tokens = append(tokens, ParagraphBreak)
			blank = false
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return Book{}, err
	}
	if CountWords(tokens) == 0 {
		return Book{}, fmt.Errorf("book has no words: %s", path)
	}
	if title == "" || len(title) > 80 {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Book{Title: title, Tokens: tokens}, nil
}
