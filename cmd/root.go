// cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/analysis"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/config"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/discover"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/report"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/ttl"
)

// NewestArg in place of file names processes recently recorded sessions.
const NewestArg = "newest"

var rootCmd = &cobra.Command{
	Use:   "ttltiming [flags] FILE... | newest",
	Short: "Check trigger timing in EEG recordings",
	Long: `Reads the Status channel of BDF/EDF recordings, picks the task from each
file name, and reports the spread of the time between paired trigger codes.

Use "newest" instead of file names to check every recording in session
directories modified within newest_max_age under newest_root.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runTiming,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log event code counts and every measured gap")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")
	rootCmd.PersistentFlags().StringP("format", "o", config.FormatTSV, "output format: tsv or table")
	rootCmd.PersistentFlags().String("stim-channel", "Status", "label of the trigger channel")
	rootCmd.PersistentFlags().Int("shortest-event", 2, "minimum event length in samples")
	rootCmd.PersistentFlags().StringSlice("task-file", nil, "TOML task definition, checked before built-in tasks (repeatable)")
	rootCmd.PersistentFlags().String("newest-root", "/Volumes/Hera/Raw/EEG", "directory searched by \"newest\"")
}

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"verbose":        "verbose",
	"debug":          "debug",
	"format":         "format",
	"stim-channel":   "stim_channel",
	"shortest-event": "shortest_event",
	"task-file":      "task_files",
	"newest-root":    "newest_root",
}

func bindFlags() {
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	bindFlags()
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

func runTiming(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), settings)

	registry, err := buildRegistry(settings.TaskFiles, logger)
	if err != nil {
		return err
	}

	files, err := expandArgs(args, settings, logger)
	if err != nil {
		return err
	}

	analyzer, err := analysis.New(afero.NewOsFs(), analysis.Options{
		StimChannel:   settings.StimChannel,
		ShortestEvent: settings.ShortestEvent,
	}, registry, logger)
	if err != nil {
		return err
	}

	out := newReportWriter(cmd.OutOrStdout(), settings.Format)
	if err := out.WriteHeader(); err != nil {
		return err
	}

	for _, file := range files {
		logger.Info("# " + file)
		rows, err := analyzer.AnalyzeFile(file)
		switch {
		case err == nil:
			for _, row := range rows {
				if err := out.Write(row); err != nil {
					return err
				}
			}
		case errors.Is(err, ttl.ErrUnknownTask), errors.Is(err, analysis.ErrNoEvents):
			if err := out.Diagnostic(err); err != nil {
				return err
			}
		default:
			_ = out.Flush()
			return err
		}
	}
	return out.Flush()
}

func newLogger(w io.Writer, settings *config.Settings) *slog.Logger {
	level := slog.LevelError
	switch {
	case settings.Debug:
		level = slog.LevelDebug
	case settings.Verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildRegistry puts task files ahead of the built-in routes, earlier files
// first.
func buildRegistry(taskFiles []string, logger *slog.Logger) (*ttl.Registry, error) {
	registry := ttl.NewRegistry(logger, ttl.DefaultRoutes()...)
	for i := len(taskFiles) - 1; i >= 0; i-- {
		route, err := ttl.LoadTaskFile(taskFiles[i])
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded task file", "path", taskFiles[i], "route", route.Name)
		registry.Prepend(route)
	}
	return registry, nil
}

func expandArgs(args []string, settings *config.Settings, logger *slog.Logger) ([]string, error) {
	if len(args) != 1 || args[0] != NewestArg {
		return args, nil
	}
	finder := discover.Finder{
		Fs:     afero.NewOsFs(),
		Root:   settings.NewestRoot,
		MaxAge: settings.NewestMaxAge,
		Depth:  settings.NewestDepth,
		Now:    time.Now,
		Log:    logger,
	}
	files, err := finder.Newest()
	if err != nil {
		return nil, fmt.Errorf("find newest recordings: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no recordings modified within %v under %s", settings.NewestMaxAge, settings.NewestRoot)
	}
	return files, nil
}

func newReportWriter(w io.Writer, format string) report.Writer {
	if format == config.FormatTable {
		return report.NewTable(w, report.TerminalWidth(w))
	}
	return report.NewTSV(w)
}
