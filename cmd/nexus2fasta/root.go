package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nexus2fasta/internal/config"
	"nexus2fasta/internal/treebase"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nexus2fasta",
	Short: "Convert TreeBASE NEXUS exports to FASTA",
	Long: "nexus2fasta extracts the TAXLABELS and MATRIX blocks from NEXUS files,\n" +
		"as exported by TreeBASE, and writes the alignment as FASTA. It can also\n" +
		"download study exports straight from the TreeBASE PhyloWS API.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Version = version

	rootCmd.PersistentFlags().String("config", "", "path to config.json (optional)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose (debug) logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file as well as stderr")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	viper.SetEnvPrefix("NEXUS2FASTA")
	viper.AutomaticEnv()
}

// setup loads the optional config file, merges flag and env overrides on
// top, builds the logger and applies the TreeBASE cache settings. It runs
// before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetString("log_file"); v != "" {
		cfg.LogFile = v
	}

	logger = newLogger(cfg, viper.GetBool("verbose"))
	logger.Debug("loaded config", "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "wrap_columns", cfg.WrapColumns, "treebase_cache_path", cfg.TreebaseCachePath, "treebase_cache_ttl_secs", cfg.TreebaseCacheTTLSecs)

	if cfg.TreebaseCachePath != "" {
		if abs, aerr := filepath.Abs(cfg.TreebaseCachePath); aerr == nil {
			treebase.SetCacheFilePath(abs)
		} else {
			treebase.SetCacheFilePath(cfg.TreebaseCachePath)
		}
	}
	if cfg.TreebaseCacheTTLSecs > 0 {
		treebase.SetCacheTTLSeconds(cfg.TreebaseCacheTTLSecs)
	}
	return nil
}

// newLogger builds the charm logger used by every subcommand. Logs always
// go to stderr so stdout stays clean for piped FASTA output; a configured
// log file receives a copy.
func newLogger(cfg *config.Config, verbose bool) *log.Logger {
	var loggerOut io.Writer = os.Stderr
	logFileFailed := false
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
		} else {
			logFileFailed = true
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	// back the logger with the timestamping writer and expose Fd so charm.log can detect TTY
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	l := log.New(termW)
	if logFileFailed {
		l.Warn("log file could not be opened; logging to stderr only", "path", cfg.LogFile)
	}

	if verbose {
		l.SetLevel(log.DebugLevel)
		return l
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		l.SetLevel(log.DebugLevel)
	case "info", "":
		l.SetLevel(log.InfoLevel)
	case "warn", "warning":
		l.SetLevel(log.WarnLevel)
	case "error":
		l.SetLevel(log.ErrorLevel)
	default:
		l.SetLevel(log.InfoLevel)
		l.Warn("unknown log level, defaulting to info", "provided", cfg.LogLevel)
	}
	return l
}

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }
