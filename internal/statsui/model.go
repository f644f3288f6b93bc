// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/readlog/internal/config"
	"github.com/verte-zerg/readlog/internal/model"
	"github.com/verte-zerg/readlog/internal/stats"
)

const (
	tabOverview = iota
	tabProgress
	tabChallenges
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src  stats.Source
	opts stats.Options
	cfg  model.StatsConfig
	eng  *stats.Engine
	log  *zap.SugaredLogger

	report  stats.Report
	loaded  bool
	loading bool
	errMsg  string
	// gen identifies the newest report request; older responses are dropped.
	gen int

	tabs           []string
	activeTab      int
	viewports      []viewport.Model
	challengeTable table.Model
	tableLayout    tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

type reportMsg struct {
	gen    int
	report stats.Report
	err    error
}

// NewModel constructs a stats UI model reading from src.
func NewModel(src stats.Source, opts stats.Options, cfg model.StatsConfig, log *zap.SugaredLogger) *Model {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	opts.Policy = cfg.Policy
	opts.WeekStart = cfg.WeekStart
	m := &Model{
		src:  src,
		opts: opts,
		cfg:  cfg,
		log:  log,
		tabs: []string{"Overview", "Progress", "Challenges"},
	}
	m.eng = stats.NewEngine(src, opts, log)
	m.initInputs()
	m.challengeTable = buildChallengeTable(nil, 0, 1)
	m.initViewports()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.refreshReport()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case reportMsg:
		m.applyReport(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.activeTab == tabChallenges {
			m.challengeTable.Focus()
		} else {
			m.challengeTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.Days = nextDays(m.cfg.Days)
			return m, m.refreshReport()
		case "-":
			m.cfg.Days = prevDays(m.cfg.Days)
			return m, m.refreshReport()
		case "r":
			return m, m.refreshReport()
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabChallenges {
				m.challengeTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabChallenges {
				m.challengeTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabChallenges {
				var cmd tea.Cmd
				m.challengeTable, cmd = m.challengeTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// refreshReport starts a new report request. Only the newest request's
// response is applied.
func (m *Model) refreshReport() tea.Cmd {
	m.gen++
	m.loading = true
	gen := m.gen
	eng := m.eng
	cfg := m.cfg
	return func() tea.Msg {
		report, err := stats.BuildReport(context.Background(), eng, cfg)
		return reportMsg{gen: gen, report: report, err: err}
	}
}

func (m *Model) applyReport(msg reportMsg) {
	if msg.gen != m.gen {
		m.log.Debugw("dropping stale report", "gen", msg.gen, "current", m.gen)
		return
	}
	m.loading = false
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		m.log.Warnw("failed to load report", "error", msg.err)
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = msg.report
	m.loaded = true
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyChallengeTable(m, m.report.Challenges.Challenges, width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Days: "),
		newFilterInput("Weeks: "),
		newFilterInput("Months: "),
		newFilterInput("Streak policy (strict/lenient): "),
	}
	m.setInputsFromConfig()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(strconv.Itoa(m.cfg.Days))
	m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Weeks))
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Months))
	m.filterInputs[3].SetValue(string(m.cfg.Policy))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setChallengeTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabChallenges {
		m.challengeTable.Focus()
	} else {
		m.challengeTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	summary := fmt.Sprintf("Settings: days=%d  weeks=%d  months=%d  streak=%s  week-start=%s",
		m.cfg.Days, m.cfg.Weeks, m.cfg.Months, m.cfg.Policy, strings.ToLower(m.cfg.WeekStart.String()))
	if m.loading {
		summary += "  (loading...)"
	}
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Days: -/=  Refresh: r  Settings: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabChallenges && m.loaded && m.errMsg == "" {
		header := renderChallengeHeader(m.report.Challenges)
		view := tableMutedStyle.Render(m.challengeTable.View())
		return fitLines(header+"\n"+view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	switch {
	case m.errMsg != "":
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	case !m.loaded:
		for i := range m.viewports {
			m.viewports[i].SetContent("Loading...")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabProgress].SetContent(renderProgress(m.report))
}

func renderOverview(report stats.Report, width int) string {
	if report.Stats.TotalSessions == 0 {
		return "No reading sessions found."
	}
	summary := renderSummaryCards(report.Stats, report.Challenges, width)
	var buf bytes.Buffer
	if err := stats.RenderActivity(&buf, report.Daily, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render activity: %v", err)
	}
	if err := stats.RenderSpeedTrend(&buf, report.Speed, 5, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render speed trend: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(rs model.ReadingStats, cs model.ChallengeStats, width int) string {
	cards := []string{
		metricCard("Streak", fmt.Sprintf("%d days", rs.CurrentStreak)),
		metricCard("Longest", fmt.Sprintf("%d days", rs.LongestStreak)),
		metricCard("Reading time", stats.FormatDuration(rs.TotalReadingTime)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", rs.AverageReadingSpeed)),
		metricCard("Sessions", fmt.Sprintf("%d", rs.TotalSessions)),
		metricCard("Words", fmt.Sprintf("%d", rs.TotalWordsRead)),
		metricCard("Books", fmt.Sprintf("%d", rs.TotalBooksRead)),
		metricCard("Level", fmt.Sprintf("%s · %d pts", cs.Level, cs.TotalPoints)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:4]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[4:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderProgress(report stats.Report) string {
	if report.Stats.TotalSessions == 0 {
		return "No reading sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderPeriods(&buf, "Weekly", "2006-01-02", report.Weekly); err != nil {
		return fmt.Sprintf("Failed to render weekly progress: %v", err)
	}
	if err := stats.RenderPeriods(&buf, "Monthly", "2006-01", report.Monthly); err != nil {
		return fmt.Sprintf("Failed to render monthly progress: %v", err)
	}
	if err := stats.RenderHours(&buf, report.Hours); err != nil {
		return fmt.Sprintf("Failed to render time of day: %v", err)
	}
	if peaks := stats.PeakHours(report.Hours, 3); len(peaks) > 0 {
		labels := make([]string, len(peaks))
		for i, h := range peaks {
			labels[i] = fmt.Sprintf("%02d:00", h)
		}
		buf.WriteString("Peak hours: " + strings.Join(labels, ", ") + "\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderChallengeHeader(cs model.ChallengeStats) string {
	line := fmt.Sprintf("Level %s  Points %d  Completed %d/%d", cs.Level, cs.TotalPoints, cs.CompletedCount, cs.TotalChallenges)
	if len(cs.Upcoming) > 0 {
		names := make([]string, len(cs.Upcoming))
		for i, ch := range cs.Upcoming {
			names[i] = ch.Title
		}
		line += "  Next: " + strings.Join(names, ", ")
	}
	return headerStyle.Render(line)
}

func buildChallengeTable(challenges []model.Challenge, width, height int) table.Model {
	cols, rows := buildChallengeTableData(challenges)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(challengeTableStyles())
	return t
}

func applyChallengeTable(m *Model, challenges []model.Challenge, width, height int) {
	cols, rows := buildChallengeTableData(challenges)
	m.challengeTable.SetColumns(cols)
	m.challengeTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.tableLayout.width = 0
	m.setChallengeTableSize(width, height)
}

// setChallengeTableSize leaves one line for the level header.
func (m *Model) setChallengeTableSize(width, height int) {
	viewportHeight := maxInt(1, height-2)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.challengeTable.SetWidth(width)
	m.challengeTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTableHeight(height - 1)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.challengeTable.SetHeight(viewportHeight)
	}
}

func challengeTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.challengeTable.Height()
	viewHeight := lipgloss.Height(m.challengeTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.challengeTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.challengeTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func buildChallengeTableData(challenges []model.Challenge) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Challenge", Width: 18},
		{Title: "Status", Width: 11},
		{Title: "Level", Width: 9},
		{Title: "Progress", Width: 16},
		{Title: "Points", Width: 6},
		{Title: "Completed", Width: 10},
	}
	rows := make([]table.Row, 0, len(challenges))
	for _, ch := range challenges {
		completed := ""
		if ch.CompletedDate != nil {
			completed = ch.CompletedDate.Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			ch.Title,
			statusLabel(ch.Status),
			ch.Level.String(),
			fmt.Sprintf("%d/%d", ch.CurrentProgress, ch.TargetProgress),
			fmt.Sprintf("%d", ch.Points),
			completed,
		})
	}
	return columns, rows
}

func statusLabel(status model.ChallengeStatus) string {
	switch status {
	case model.StatusCompleted:
		return "completed"
	case model.StatusInProgress:
		return "in progress"
	default:
		return "locked"
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.updateLayout()
		return m, m.refreshReport()
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	days, err := parsePositive(m.filterInputs[0].Value(), "days")
	if err != nil {
		return err
	}
	weeks, err := parsePositive(m.filterInputs[1].Value(), "weeks")
	if err != nil {
		return err
	}
	months, err := parsePositive(m.filterInputs[2].Value(), "months")
	if err != nil {
		return err
	}
	policy, err := config.ParsePolicy(m.filterInputs[3].Value())
	if err != nil {
		return err
	}

	m.cfg.Days = days
	m.cfg.Weeks = weeks
	m.cfg.Months = months
	if policy != m.cfg.Policy {
		m.cfg.Policy = policy
		m.opts.Policy = policy
		m.eng = stats.NewEngine(m.src, m.opts, m.log)
	}
	return nil
}

func parsePositive(input, name string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("invalid %s (use integer >= 1)", name)
	}
	return parsed, nil
}

func nextDays(n int) int {
	if n < 7 {
		return 7
	}
	if n%7 == 0 {
		return n + 7
	}
	return ((n / 7) + 1) * 7
}

func prevDays(n int) int {
	if n <= 7 {
		return 1
	}
	if n%7 == 0 {
		return n - 7
	}
	return (n / 7) * 7
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
