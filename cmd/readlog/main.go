// Package main provides the CLI entrypoint for readlog.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/readlog/internal/booktext"
	"github.com/verte-zerg/readlog/internal/config"
	"github.com/verte-zerg/readlog/internal/generator"
	"github.com/verte-zerg/readlog/internal/logging"
	"github.com/verte-zerg/readlog/internal/model"
	"github.com/verte-zerg/readlog/internal/stats"
	"github.com/verte-zerg/readlog/internal/statsui"
	"github.com/verte-zerg/readlog/internal/store"
	"github.com/verte-zerg/readlog/internal/tui"
)

const (
	defaultPolicy        = string(model.StreakStrict)
	defaultWeekStart     = "sunday"
	defaultDays          = 30
	defaultWeeks         = 12
	defaultMonths        = 6
	defaultWPMMinSeconds = 30
	defaultLogLevel      = "info"
	defaultSeedDays      = 60
	defaultSeedBooks     = 3
	seedWordsPerBook     = 90000
)

var (
	globalPolicy   string
	globalDB       string
	globalLogLevel string

	statsWeekStart string
	statsDays      int
	statsWeeks     int
	statsMonths    int

	readWPMMinSeconds int

	logDuration time.Duration
	logWords    int
	logWPM      float64
	logDate     string
	logBook     string
	logProgress float64

	booksAll bool

	reportFormat string

	seedDays  int
	seedBooks int
	seedSkip  float64
	seedValue int64

	resetYes bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "readlog",
		Short:         "Reading tracker with streaks, stats and challenges",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&globalPolicy, "policy", defaultPolicy, "streak policy: strict or lenient")
	rootCmd.PersistentFlags().StringVar(&globalDB, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")
	addWindowFlags(rootCmd)

	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newBooksCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsWeekStart, "week-start", defaultWeekStart, "first day of the week")
	cmd.Flags().IntVar(&statsDays, "days", defaultDays, "days of daily activity and speed trend")
	cmd.Flags().IntVar(&statsWeeks, "weeks", defaultWeeks, "weeks of weekly progress")
	cmd.Flags().IntVar(&statsMonths, "months", defaultMonths, "months of monthly progress")
}

// app bundles what every command needs once flags and config are resolved.
type app struct {
	statsCfg model.StatsConfig
	store    *store.Store
	log      *zap.SugaredLogger
	cleanup  func()
}

// newApp loads config, applies it under explicit flags, builds the logger
// and opens the store. Full-screen commands log to a file only.
func newApp(cmd *cobra.Command, fullScreen bool) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "policy", &globalPolicy, fileCfg.Stats.StreakPolicy)
	applyStringConfig(cmd, "week-start", &statsWeekStart, fileCfg.Stats.WeekStart)
	applyIntConfig(cmd, "days", &statsDays, fileCfg.Stats.Days)
	applyIntConfig(cmd, "weeks", &statsWeeks, fileCfg.Stats.Weeks)
	applyIntConfig(cmd, "months", &statsMonths, fileCfg.Stats.Months)
	applyIntConfig(cmd, "wpm-min-seconds", &readWPMMinSeconds, fileCfg.Read.WPMMinSeconds)
	applyStringConfig(cmd, "log-level", &globalLogLevel, fileCfg.Log.Level)

	statsCfg, err := buildStatsConfig()
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: globalLogLevel}
	if fullScreen {
		logOpts.File = config.DefaultLogPath()
		if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
			logOpts.File = *fileCfg.Log.File
		}
	} else {
		logOpts.Console = os.Stderr
	}
	log, cleanup, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	dbPath := globalDB
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	st, err := store.Open(dbPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	log.Debugw("store opened", "path", dbPath)

	return &app{
		statsCfg: statsCfg,
		store:    st,
		log:      log,
		cleanup:  cleanup,
	}, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		a.log.Warnw("failed to close db", "error", cerr)
	}
	a.cleanup()
}

func (a *app) engine() *stats.Engine {
	return stats.NewEngine(a.store, stats.Options{
		Policy:    a.statsCfg.Policy,
		WeekStart: a.statsCfg.WeekStart,
	}, a.log)
}

func buildStatsConfig() (model.StatsConfig, error) {
	policy, err := config.ParsePolicy(globalPolicy)
	if err != nil {
		return model.StatsConfig{}, err
	}
	weekStart, err := config.ParseWeekday(statsWeekStart)
	if err != nil {
		return model.StatsConfig{}, err
	}
	cfg := model.StatsConfig{
		Policy:    policy,
		WeekStart: weekStart,
		Days:      statsDays,
		Weeks:     statsWeeks,
		Months:    statsMonths,
	}
	if err := validateStatsConfig(cfg); err != nil {
		return model.StatsConfig{}, err
	}
	return cfg, nil
}

func validateStatsConfig(cfg model.StatsConfig) error {
	if cfg.Days <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if cfg.Weeks <= 0 {
		return fmt.Errorf("--weeks must be > 0")
	}
	if cfg.Months <= 0 {
		return fmt.Errorf("--months must be > 0")
	}
	return nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	m := statsui.NewModel(a.store, stats.Options{}, a.statsCfg, a.log)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read a plain-text book and record the session",
		Args:  cobra.ExactArgs(1),
		RunE:  runReadCmd,
	}
	cmd.Flags().IntVar(&readWPMMinSeconds, "wpm-min-seconds", defaultWPMMinSeconds, "shortest session whose speed is recorded")
	return cmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid book path: %w", err)
	}
	book, err := booktext.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()
	if readWPMMinSeconds < 0 {
		return fmt.Errorf("wpm-min-seconds must be >= 0")
	}

	progress, err := a.store.UpsertBook(cmd.Context(), path, book.Title)
	if err != nil {
		return fmt.Errorf("failed to register book: %w", err)
	}
	if progress.IsArchived {
		logErrf("%s is archived and will not appear in stats\n", progress.Title)
	}

	m := tui.NewModel(progress, book.Tokens, a.store, a.engine(), tui.Options{WPMMinSeconds: readWPMMinSeconds}, a.log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run reader: %w", err)
	}
	if err := m.Err(); err != nil {
		return err
	}
	if entry, ok := m.Result(); ok {
		printf(cmd.OutOrStdout(), "Recorded %s: %s\n", progress.Title, describeEntry(entry))
		printf(cmd.OutOrStdout(), "Book progress: %.0f%%\n", m.Progress()*100)
	}
	return nil
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a reading session manually",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
	cmd.Flags().DurationVar(&logDuration, "duration", 0, "session length, e.g. 25m")
	cmd.Flags().IntVar(&logWords, "words", 0, "words read")
	cmd.Flags().Float64Var(&logWPM, "wpm", 0, "measured speed (default: words per minute of the session)")
	cmd.Flags().StringVar(&logDate, "date", "", "session date, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\" (default: now)")
	cmd.Flags().StringVar(&logBook, "book", "", "path of the book read")
	cmd.Flags().Float64Var(&logProgress, "progress", -1, "book progress after the session (0-1)")
	return cmd
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	if err := validateLogFlags(cmd); err != nil {
		return err
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	date := time.Now()
	if logDate != "" {
		date, err = parseSessionDate(logDate, time.Local)
		if err != nil {
			return err
		}
	}
	entry := model.ReadingLogEntry{
		Date:      date,
		Duration:  logDuration,
		WordsRead: logWords,
	}
	if cmd.Flags().Changed("wpm") {
		entry.WordsPerMinute = logWPM
	} else {
		entry.WordsPerMinute = stats.SessionWPM(logWords, logDuration)
	}

	ctx := cmd.Context()
	var book *model.BookProgress
	if logBook != "" {
		path, err := filepath.Abs(logBook)
		if err != nil {
			return fmt.Errorf("invalid book path: %w", err)
		}
		b, err := a.store.UpsertBook(ctx, path, "")
		if err != nil {
			return fmt.Errorf("failed to register book: %w", err)
		}
		entry.BookID = b.ID
		book = &b
	}

	if _, err := a.store.InsertLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if book != nil {
		progress := book.Progress
		if cmd.Flags().Changed("progress") {
			progress = logProgress
		}
		if err := a.store.UpdateBookProgress(ctx, book.ID, progress, date); err != nil {
			return fmt.Errorf("failed to save book progress: %w", err)
		}
	}
	a.log.Debugw("session logged", "date", date, "duration", logDuration, "words", logWords)
	printf(cmd.OutOrStdout(), "Logged %s on %s\n", describeEntry(entry), date.Format("2006-01-02"))
	return nil
}

func validateLogFlags(cmd *cobra.Command) error {
	if logDuration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if logWords < 0 {
		return fmt.Errorf("--words must be >= 0")
	}
	if cmd.Flags().Changed("wpm") && (math.IsNaN(logWPM) || math.IsInf(logWPM, 0) || logWPM < 0) {
		return fmt.Errorf("--wpm must be a finite number >= 0")
	}
	if cmd.Flags().Changed("progress") && (math.IsNaN(logProgress) || logProgress < 0 || logProgress > 1) {
		return fmt.Errorf("--progress must be between 0 and 1")
	}
	return nil
}

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE:  runBooksCmd,
	}
	cmd.Flags().BoolVar(&booksAll, "all", false, "include archived and unread books")
	return cmd
}

func runBooksCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	var books []model.BookProgress
	if booksAll {
		books, err = a.store.ListBooks(cmd.Context())
	} else {
		books, err = a.store.ListActiveBooks(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	return stats.RenderBooks(cmd.OutOrStdout(), books)
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <file>",
		Short: "Archive a book so it no longer counts in stats",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveCmd,
	}
}

func runArchiveCmd(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid book path: %w", err)
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	book, err := a.store.GetBookByPath(cmd.Context(), path)
	if errors.Is(err, store.ErrBookNotFound) {
		return fmt.Errorf("no book registered for %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to look up book: %w", err)
	}
	if err := a.store.ArchiveBook(cmd.Context(), book.ID); err != nil {
		return fmt.Errorf("failed to archive book: %w", err)
	}
	printf(cmd.OutOrStdout(), "Archived %s\n", book.Title)
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print stats, activity and challenges",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addWindowFlags(cmd)
	cmd.Flags().StringVar(&reportFormat, "format", "text", "output format: text, json or yaml")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(reportFormat))
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid --format %q (use text, json or yaml)", reportFormat)
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := stats.BuildReport(cmd.Context(), a.engine(), a.statsCfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

func writeReport(w io.Writer, report stats.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return stats.RenderReport(w, report, 0, 8, false)
	}
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with synthetic reading history",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().IntVar(&seedDays, "days", defaultSeedDays, "days of history ending today")
	cmd.Flags().IntVar(&seedBooks, "books", defaultSeedBooks, "number of synthetic books")
	cmd.Flags().Float64Var(&seedSkip, "skip", 0.2, "probability of skipping a day (0-1)")
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (default: time based)")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	if seedDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if seedBooks < 0 {
		return fmt.Errorf("--books must be >= 0")
	}
	if seedSkip < 0 || seedSkip >= 1 {
		return fmt.Errorf("--skip must be in [0, 1)")
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	ids := make([]string, 0, seedBooks)
	for i := 1; i <= seedBooks; i++ {
		path := filepath.Join("seed", fmt.Sprintf("book-%d.txt", i))
		book, err := a.store.UpsertBook(ctx, path, fmt.Sprintf("Sample Book %d", i))
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		ids = append(ids, book.ID)
	}

	gen := generator.New()
	if cmd.Flags().Changed("seed") {
		gen = generator.NewSeeded(seedValue)
	}
	entries := gen.History(generator.Options{Days: seedDays, SkipPct: seedSkip}, time.Now(), ids)
	if _, err := a.store.InsertLogs(ctx, entries); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	for id, state := range generator.Progress(entries, seedWordsPerBook) {
		if err := a.store.UpdateBookProgress(ctx, id, state.Progress, state.LastRead); err != nil {
			return fmt.Errorf("failed to save book progress: %w", err)
		}
	}
	a.log.Infow("seeded history", "days", seedDays, "sessions", len(entries), "books", len(ids))
	printf(cmd.OutOrStdout(), "Seeded %d sessions over %d days\n", len(entries), seedDays)
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all sessions and books",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to delete data without --yes")
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset data: %w", err)
	}
	a.log.Infow("data reset")
	printf(cmd.OutOrStdout(), "All reading data deleted\n")
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# readlog configuration
# Uncomment a value to enable it. CLI flags override config values.

[stats]
# streak-policy = %q    # strict: today must be active; lenient: yesterday keeps the streak
# week-start = %q       # First day of the week
# days = %d                 # Days of daily activity and speed trend
# weeks = %d                # Weeks of weekly progress
# months = %d                # Months of monthly progress

[read]
# wpm-min-seconds = %d      # Shortest session whose speed is recorded

[log]
# level = %q             # debug, info, warn or error
# file = %q              # Log file used while a full-screen view runs
`,
		defaultPolicy,
		defaultWeekStart,
		defaultDays,
		defaultWeeks,
		defaultMonths,
		defaultWPMMinSeconds,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func parseSessionDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, loc); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date value %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", value)
	}
	// Date-only sessions land at noon so DST shifts cannot move their day.
	return day.Add(12 * time.Hour), nil
}

func describeEntry(entry model.ReadingLogEntry) string {
	out := fmt.Sprintf("%s, %d words", stats.FormatDuration(entry.Duration), entry.WordsRead)
	if entry.WordsPerMinute > 0 {
		out += fmt.Sprintf(" (%.1f WPM)", entry.WordsPerMinute)
	}
	return out
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		// Best-effort output.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
