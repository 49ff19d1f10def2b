// Package main provides the CLI entrypoint for speedtype.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/stats"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/tui"
	"github.com/verte-zerg/speedtype/internal/version"
	"github.com/verte-zerg/speedtype/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultWeakTop     = 5
	defaultCurveWindow = 1
	defaultBackend     = backendFile

	backendFile   = "file"
	backendSQLite = "sqlite"
)

var (
	verbose bool

	practiceLang     string
	practiceWordList string
	practiceMethod   string
	practiceWords    int
	practiceChars    int
	practiceText     string
	practiceWeakTop  int
	practiceMaxLen   int

	storeBackend string
	storePath    string
	storePretty  bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsWeakTop     int
	statsFrequentTop int
	statsNoColor     bool

	clearYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "speedtype",
		Short:         "Typing speed trainer",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "backend", defaultBackend, `save backend ("file" or "sqlite")`)
	rootCmd.PersistentFlags().StringVar(&storePath, "save-path", "", "save location (default under $XDG_DATA_HOME/speedtype)")
	rootCmd.PersistentFlags().BoolVar(&storePretty, "pretty", false, "indent the JSON save document")

	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "word list language")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", "", "path to a word list, one word per line")
	rootCmd.Flags().StringVar(&practiceMethod, "method", model.MethodWordCount.String(), `exercise size method ("words" or "chars")`)
	rootCmd.Flags().IntVar(&practiceWords, "words", generator.DefaultWordCount,
		fmt.Sprintf("words per exercise (%d-%d)", generator.MinWordCount, generator.MaxWordCount))
	rootCmd.Flags().IntVar(&practiceChars, "chars", generator.DefaultCharacterCount,
		fmt.Sprintf("characters per exercise (%d-%d)", generator.MinCharacterCount, generator.MaxCharacterCount))
	rootCmd.Flags().StringVar(&practiceText, "text", "", "fixed practice text instead of random words")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "weak characters highlighted while typing (0 = off)")
	rootCmd.Flags().IntVar(&practiceMaxLen, "max-word-length", 0, "skip dictionary words longer than this (0 = no limit)")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLogFile returns a logger writing to the state log file. The TUI
// owns the terminal, so nothing may go to stderr while it runs.
func openLogFile() (*slog.Logger, func(), error) {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	closeFn := func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
	return newLogger(file), closeFn, nil
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &storeBackend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "save-path", &storePath, fileCfg.Store.Path)
	applyBoolConfig(cmd, "pretty", &storePretty, fileCfg.Store.Pretty)
	return fileCfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyStringConfig(cmd, "wordlist", &practiceWordList, fileCfg.Practice.WordList)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyIntConfig(cmd, "max-word-length", &practiceMaxLen, fileCfg.Practice.MaxWordLength)
	applyStringConfig(cmd, "method", &practiceMethod, fileCfg.Generator.Method)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Generator.Words)
	applyIntConfig(cmd, "chars", &practiceChars, fileCfg.Generator.Chars)
	applyStringConfig(cmd, "text", &practiceText, fileCfg.Generator.Text)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogFile()
	if err != nil {
		return err
	}
	defer closeLog()

	dict, err := loadDictionary(cfg.Lang, practiceWordList, practiceMaxLen)
	if err != nil {
		return err
	}
	logger.Info("loaded dictionary", "lang", cfg.Lang, "words", dict.Size())

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close store", "err", cerr)
		}
	}()

	gen := generator.New(dict, logger)
	gen.Apply(cfg)
	sess, err := session.New(gen, st, session.Options{Logger: logger})
	if err != nil {
		return err
	}

	ui := tui.NewModel(ctx, sess, st, tui.Options{Logger: logger, WeakTop: practiceWeakTop})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	_, runErr := program.Run()
	if err := sess.Close(ctx); err != nil {
		switch {
		case errors.Is(err, store.ErrUnreadSave):
			logger.Warn("skipped save on exit", "err", err)
		case runErr == nil:
			logger.Error("failed to save on exit", "err", err)
			return err
		default:
			logger.Error("failed to save on exit", "err", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	if last, ok := sess.Last(); ok {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d exercises, last %.1f WPM at %.0f%% accuracy\n",
			sess.Completed(), last.WordsPerMinute, last.Accuracy)
		return err
	}
	return nil
}

func buildConfig() (model.Config, error) {
	method, ok := model.ParseGeneratorMethod(strings.TrimSpace(strings.ToLower(practiceMethod)))
	if !ok {
		return model.Config{}, fmt.Errorf(`--method must be "words" or "chars", got %q`, practiceMethod)
	}
	if practiceWeakTop < 0 {
		return model.Config{}, fmt.Errorf("--weak-top must be >= 0")
	}
	if practiceMaxLen < 0 {
		return model.Config{}, fmt.Errorf("--max-word-length must be >= 0")
	}
	backend := strings.TrimSpace(strings.ToLower(storeBackend))
	if backend != backendFile && backend != backendSQLite {
		return model.Config{}, fmt.Errorf(`--backend must be "file" or "sqlite", got %q`, storeBackend)
	}
	return model.Config{
		Lang:           strings.TrimSpace(strings.ToLower(practiceLang)),
		Method:         method,
		WordCount:      practiceWords,
		CharacterCount: practiceChars,
		CustomText:     practiceText,
		Backend:        backend,
		Pretty:         storePretty,
	}, nil
}

// loadDictionary reads an explicit word list, then a user list for lang
// under the config directory, then the bundled list. Words longer than
// maxLen are dropped when maxLen is positive.
func loadDictionary(lang, path string, maxLen int) (*wordlist.Dictionary, error) {
	var (
		dict *wordlist.Dictionary
		err  error
	)
	switch {
	case path != "":
		dict, err = wordlist.LoadFile(path)
	default:
		userPath := filepath.Join(config.DefaultWordListDir(), lang+".txt")
		if _, statErr := os.Stat(userPath); statErr == nil {
			dict, err = wordlist.LoadFile(userPath)
		} else {
			dict, err = wordlist.Bundled(lang)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	filtered, err := dict.Filter(wordlist.All(wordlist.FilterForLang(lang), wordlist.MaxLength(maxLen)))
	if err != nil {
		return nil, fmt.Errorf("no usable words for %q: %w", lang, err)
	}
	return filtered, nil
}

func resolveStorePath(backend string) string {
	if storePath != "" {
		return storePath
	}
	if backend == backendSQLite {
		return config.DefaultDBPath()
	}
	return config.DefaultSavePath()
}

// openStore opens the configured backend and loads the save. A corrupt or
// unreadable save is reported on warn and the store starts empty. An
// unreadable save also keeps the store from writing until cleared.
func openStore(ctx context.Context, cfg model.Config, logger *slog.Logger, warn io.Writer) (*store.Store, error) {
	path := resolveStorePath(cfg.Backend)
	var backend store.Backend
	if cfg.Backend == backendSQLite {
		sqliteBackend, err := store.OpenSQLite(path, store.DefaultKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		backend = sqliteBackend
	} else {
		backend = store.NewFileBackend(path)
	}

	st := store.New(backend, store.Options{
		Version: version.Version,
		Pretty:  cfg.Pretty,
		Logger:  logger,
	})
	if err := st.Load(ctx); err != nil {
		var corrupt *store.CorruptSaveError
		if errors.As(err, &corrupt) && corrupt.Preserved != "" {
			logWarnf(warn, "warning: unusable save data moved to %s (%v); starting with empty statistics\n",
				corrupt.Preserved, corrupt.Err)
		} else {
			logWarnf(warn, "warning: %v; starting with empty statistics that will not be saved\n", err)
		}
	}
	return st, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N exercises")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the curves")
	cmd.Flags().IntVar(&statsWeakTop, "weak-top", 10, "rows in the weakest characters table (0 = all)")
	cmd.Flags().IntVar(&statsFrequentTop, "frequent-top", 0, "rows in the most typed characters table (0 = hide)")
	cmd.Flags().BoolVar(&statsNoColor, "no-color", false, "disable colored output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsFrequentTop < 0 {
		return fmt.Errorf("--frequent-top must be >= 0")
	}

	out := cmd.OutOrStdout()
	width, useColor := terminalInfo(out)
	statsCfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Width:       width,
		WeakTop:     statsWeakTop,
		FrequentTop: statsFrequentTop,
	}

	st, err := openStoreForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logWarnf(cmd.ErrOrStderr(), "failed to close store: %v\n", cerr)
		}
	}()

	writer := bufio.NewWriter(out)
	if err := stats.Render(writer, stats.BuildReport(st, statsCfg), useColor && !statsNoColor); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return writer.Flush()
}

func terminalInfo(w io.Writer) (int, bool) {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		width = 0
	}
	return width, os.Getenv("NO_COLOR") == ""
}

func openStoreForCommand(cmd *cobra.Command) (*store.Store, error) {
	backend := strings.TrimSpace(strings.ToLower(storeBackend))
	if backend != backendFile && backend != backendSQLite {
		return nil, fmt.Errorf(`--backend must be "file" or "sqlite", got %q`, storeBackend)
	}
	cfg := model.Config{Backend: backend, Pretty: storePretty}
	return openStore(cmd.Context(), cfg, newLogger(cmd.ErrOrStderr()), cmd.ErrOrStderr())
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all statistics",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStoreForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logWarnf(cmd.ErrOrStderr(), "failed to close store: %v\n", cerr)
		}
	}()

	if !clearYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
			fmt.Sprintf("Delete %d exercises and all character stats in %s? [y/N] ", st.ExerciseCount(), st.Location()))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if err := st.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear statistics: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Statistics cleared.")
	return err
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
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
	return config.Template(config.Defaults{
		Lang:     defaultLang,
		WeakTop:  defaultWeakTop,
		Method:   model.MethodWordCount.String(),
		Words:    generator.DefaultWordCount,
		MinWords: generator.MinWordCount,
		MaxWords: generator.MaxWordCount,
		Chars:    generator.DefaultCharacterCount,
		MinChars: generator.MinCharacterCount,
		MaxChars: generator.MaxCharacterCount,
		Backend:  defaultBackend,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "speedtype %s\n", version.Version)
			return err
		},
	}
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logWarnf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		// Best-effort warning output.
		_ = err
	}
}
