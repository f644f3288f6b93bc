// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/readlog/internal/booktext"
	"github.com/verte-zerg/readlog/internal/model"
	statsPkg "github.com/verte-zerg/readlog/internal/stats"
)

// Sessions shorter than this with no words read are discarded.
const minSessionDuration = time.Minute

// Recorder persists a finished reading session.
type Recorder interface {
	InsertLog(ctx context.Context, entry model.ReadingLogEntry) (int64, error)
	UpdateBookProgress(ctx context.Context, id string, progress float64, readAt time.Time) error
}

// Options tunes a reading session. Zero values select defaults.
type Options struct {
	// WPMMinSeconds is the shortest session whose speed is recorded.
	WPMMinSeconds int
	Now           func() time.Time
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	book   model.BookProgress
	tokens []string
	rec    Recorder
	eng    *statsPkg.Engine
	log    *zap.SugaredLogger
	now    func() time.Time
	minWPM time.Duration

	width  int
	height int
	pages  []page
	page   int
	anchor int

	startToken int
	reached    int
	startedAt  time.Time
	laidOut    bool

	streak   int
	avgWPM   float64
	hasStats bool

	finished bool
	result   *model.ReadingLogEntry
	err      error
}

type footerStatsMsg struct {
	stats model.ReadingStats
	err   error
}

var (
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a reading TUI model. Reading resumes at the book's
// stored progress, or from the start once a book is finished.
func NewModel(book model.BookProgress, tokens []string, rec Recorder, eng *statsPkg.Engine, opts Options, log *zap.SugaredLogger) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Model{
		book:   book,
		tokens: tokens,
		rec:    rec,
		eng:    eng,
		log:    log,
		now:    opts.Now,
		minWPM: time.Duration(opts.WPMMinSeconds) * time.Second,
	}
	if book.Progress > 0 && book.Progress < 1 {
		m.anchor = int(book.Progress * float64(len(tokens)))
	}
	m.startToken = m.anchor
	m.reached = m.anchor
	m.startedAt = m.now()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.eng == nil {
		return nil
	}
	eng := m.eng
	return func() tea.Msg {
		stats, err := eng.FetchOverallStats(context.Background())
		return footerStatsMsg{stats: stats, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case footerStatsMsg:
		if msg.err != nil {
			m.log.Warnw("failed to load footer stats", "error", msg.err)
			return m, nil
		}
		m.streak = msg.stats.CurrentStreak
		m.avgWPM = msg.stats.AverageReadingSpeed
		m.hasStats = true
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.finishSession()
			return m, tea.Quit
		case "right", "l", " ", "pgdown", "n", "enter":
			m.nextPage()
			return m, nil
		case "left", "h", "pgup", "p", "b":
			m.prevPage()
			return m, nil
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 || len(m.pages) == 0 {
		return ""
	}
	contentWidth := m.contentWidth()
	content := textStyle.Width(contentWidth).Render(m.pages[m.page].text())
	title := titleStyle.Render(truncate(m.book.Title, m.width))
	footer := m.renderFooter()
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
	}
	bodyHeight := m.height - 2
	header := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, title)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return header + "\n" + body + "\n" + footerLine
}

// Result returns the recorded session, if any.
func (m *Model) Result() (model.ReadingLogEntry, bool) {
	if m.result == nil {
		return model.ReadingLogEntry{}, false
	}
	return *m.result, true
}

// Err returns the error that prevented the session from being saved.
func (m *Model) Err() error {
	return m.err
}

// Progress returns the fraction of the book read so far.
func (m *Model) Progress() float64 {
	if len(m.tokens) == 0 {
		return 0
	}
	progress := float64(m.reached) / float64(len(m.tokens))
	if progress < m.book.Progress {
		return m.book.Progress
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		return 1
	}
	return w
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	pageHeight := m.height - 4
	if pageHeight < 1 {
		pageHeight = 1
	}
	m.pages = paginate(wrapTokens(m.tokens, m.contentWidth()), pageHeight)
	m.page = pageFor(m.pages, m.anchor)
	if !m.laidOut && len(m.pages) > 0 {
		// Count words from the top of the resumed page.
		m.startToken = m.pages[m.page].first
		m.reached = m.startToken
		m.laidOut = true
	}
}

func (m *Model) nextPage() {
	if len(m.pages) == 0 {
		return
	}
	current := m.pages[m.page]
	if current.end > m.reached {
		m.reached = current.end
	}
	if m.page < len(m.pages)-1 {
		m.page++
		m.anchor = m.pages[m.page].first
	}
}

func (m *Model) prevPage() {
	if m.page == 0 {
		return
	}
	m.page--
	m.anchor = m.pages[m.page].first
}

func (m *Model) wordsRead() int {
	if m.reached <= m.startToken {
		return 0
	}
	return booktext.CountWords(m.tokens[m.startToken:m.reached])
}

func (m *Model) finishSession() {
	if m.finished {
		return
	}
	m.finished = true
	endedAt := m.now()
	duration := endedAt.Sub(m.startedAt)
	words := m.wordsRead()
	if words == 0 && duration < minSessionDuration {
		return
	}
	entry := model.ReadingLogEntry{
		Date:      m.startedAt,
		Duration:  duration,
		WordsRead: words,
		BookID:    m.book.ID,
	}
	if duration >= m.minWPM {
		entry.WordsPerMinute = statsPkg.SessionWPM(words, duration)
	}

	ctx := context.Background()
	if _, err := m.rec.InsertLog(ctx, entry); err != nil {
		m.err = fmt.Errorf("failed to save session: %w", err)
		m.log.Errorw("failed to save session", "book", m.book.Path, "error", err)
		return
	}
	if m.book.ID != "" {
		if err := m.rec.UpdateBookProgress(ctx, m.book.ID, m.Progress(), endedAt); err != nil {
			m.err = fmt.Errorf("failed to save book progress: %w", err)
			m.log.Errorw("failed to save book progress", "book", m.book.Path, "error", err)
		}
	}
	m.log.Infow("session recorded",
		"book", m.book.Path,
		"duration", duration,
		"words", words,
		"wpm", entry.WordsPerMinute,
	)
	m.result = &entry
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Page %d/%d", m.page+1, len(m.pages)),
		fmt.Sprintf("Book %d%%", int(m.Progress()*100)),
		fmt.Sprintf("Session %s", statsPkg.FormatDuration(m.now().Sub(m.startedAt))),
	}
	if m.hasStats {
		segments = append(segments,
			fmt.Sprintf("Streak %dd", m.streak),
			fmt.Sprintf("Avg %.1f WPM", m.avgWPM),
		)
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
