package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunLogLayout names the per-run log file written into the media directory.
const RunLogLayout = "_log_2006_01_02_15_04_05.log"

var log *slog.Logger

func init() {
	log = New(os.Stdout)
}

// New creates a text logger writing to w. The level is debug when DEBUG is set.
func New(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(w, opts)
	return slog.New(handler)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RunLog is the log of a single batch run, stored as a file inside the processed directory.
type RunLog struct {
	*slog.Logger
	id   string
	path string
	file *os.File
}

// NewRunLog creates dir/_log_YYYY_MM_DD_HH_MM_SS.log for the run started at now.
// When console is not nil every record is mirrored to it. Every record carries
// the run ID.
func NewRunLog(dir string, now time.Time, console io.Writer) (*RunLog, error) {
	path := filepath.Join(dir, now.Format(RunLogLayout))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}

	var w io.Writer = file
	if console != nil {
		w = io.MultiWriter(file, console)
	}

	id := uuid.New().String()
	return &RunLog{
		Logger: New(w).With("logger", "restore-exif", "run", id),
		id:     id,
		path:   path,
		file:   file,
	}, nil
}

// ID returns the unique identifier of the run.
func (l *RunLog) ID() string {
	return l.id
}

// Path returns the location of the log file.
func (l *RunLog) Path() string {
	return l.path
}

// Close flushes and closes the log file. Calling it again is a no-op.
func (l *RunLog) Close() error {
	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Info logs at info level.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}
