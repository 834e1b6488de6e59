package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/acm19/waexif/apps/cli/completion"
	"github.com/acm19/waexif/internal/config"
	"github.com/acm19/waexif/internal/logger"
	"github.com/acm19/waexif/internal/pics"
	"github.com/acm19/waexif/internal/report"
	"github.com/barasher/go-exiftool"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "waexif PATH",
	Short: "Restore capture dates to exported WhatsApp media",
	Long: `Restore discarded EXIF date information in WhatsApp media based on the file name.
For images DateTimeOriginal is written; for videos only the access and modification
times are set. A log of every decision is written into PATH.`,
	Version:       version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRestore,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())

	// Add autocomplete commands
	rootCmd.AddCommand(completion.NewInstallCmd(rootCmd))
	rootCmd.AddCommand(completion.NewUninstallCmd(rootCmd))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("waexif failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return run(cmd.Context(), args[0], cfg, cmd.OutOrStdout())
}

// run restores the media in root and reports to stdout.
func run(ctx context.Context, root string, cfg *config.Config, stdout io.Writer) error {
	opts, err := cfg.RestoreOptions()
	if err != nil {
		return err
	}

	// The run log lives inside root, so root must be valid before it is created
	if err := pics.NewFileStats().ValidateDirectory(root); err != nil {
		return err
	}

	var console io.Writer
	if cfg.Console {
		console = stdout
	}
	runLog, err := logger.NewRunLog(root, time.Now(), console)
	if err != nil {
		return err
	}
	defer runLog.Close()

	tagger, err := pics.NewDateTagger(cfg.Engine)
	if err != nil {
		return err
	}
	defer tagger.Close()

	var et *exiftool.Exiftool
	if cfg.Verify && cfg.Engine == pics.EngineExiftool {
		if et, err = exiftool.NewExiftool(); err != nil {
			return fmt.Errorf("failed to initialise exiftool: %w", err)
		}
		defer et.Close()
	}

	restorer := pics.NewRestorer(tagger, pics.NewCaptureDateReader(et), runLog)
	summary, err := restorer.Restore(ctx, root, opts)
	if err != nil {
		runLog.Error("Restore aborted", "error", err)
		return err
	}

	logger.Info("Restore finished", "run", runLog.ID(), "summary", report.SummaryLine(summary), "log", runLog.Path())
	if isTerminal(stdout) {
		fmt.Fprint(stdout, report.ExcludedTree(root, summary))
	}

	if err := runLog.Close(); err != nil {
		logger.Warn("Failed to close run log", "error", err)
	}
	if cfg.Archive.Bucket != "" {
		archiveRunLog(ctx, runLog.Path(), cfg.Archive)
	}
	return nil
}

// archiveRunLog uploads the run log. Failures are logged and never fail the run.
func archiveRunLog(ctx context.Context, logPath string, archive config.ArchiveConfig) {
	archiver, err := pics.NewLogArchiver(ctx)
	if err != nil {
		logger.Error("Failed to initialise log archival", "error", err)
		return
	}
	key, err := archiver.Archive(ctx, logPath, archive.Bucket, archive.Prefix)
	if err != nil {
		logger.Error("Failed to archive run log", "bucket", archive.Bucket, "error", err)
		return
	}
	logger.Info("Run log archived", "bucket", archive.Bucket, "key", key)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
