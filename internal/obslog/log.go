// Package obslog is the pipeline-event observer's logging sink: structured
// logging via charmbracelet/log with optional rotation to a file via
// lumberjack, wired as a concrete capability.Observer implementation for
// the ambient logging concern this module treats as an external
// collaborator.
package obslog

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/n0call/aprsmodem/internal/ax25"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where log output goes and how it rotates when a file
// path is given.
type Config struct {
	// FilePath, if non-empty, routes output through a rotating file
	// (lumberjack) instead of stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      charmlog.Level
}

// DefaultConfig logs to stderr at info level with no rotation.
func DefaultConfig() Config {
	return Config{Level: charmlog.InfoLevel}
}

// Logger wraps a *charmlog.Logger and implements capability.Observer,
// emitting one structured log line per pipeline event.
type Logger struct {
	*charmlog.Logger
	closer io.Closer
}

// New constructs a Logger per cfg. Call Close when done if FilePath was
// set, to flush and release the rotation handle.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    nonZero(cfg.MaxSizeMB, 50),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = lj
		closer = lj
	}

	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           cfg.Level,
		ReportTimestamp: true,
	})
	return &Logger{Logger: l, closer: closer}
}

func nonZero(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Close releases the rotating file handle, if one is in use.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// The following methods implement capability.Observer.

func (l *Logger) OnPacketReceived(clientID string, frame ax25.Frame) {
	l.Info("packet received", "client", clientID, "packet", frame.String())
}

func (l *Logger) OnTransmitStarted(frame ax25.Frame) {
	l.Info("transmit started", "packet", frame.String())
}

func (l *Logger) OnTransmitCompleted(frame ax25.Frame) {
	l.Info("transmit completed", "packet", frame.String())
}

func (l *Logger) OnClientConnected(clientID string) {
	l.Info("client connected", "client", clientID)
}

func (l *Logger) OnClientDisconnected(clientID string) {
	l.Info("client disconnected", "client", clientID)
}

func (l *Logger) OnCommand(clientID string, cmd int, data []byte) {
	l.Debug("kiss command frame", "client", clientID, "cmd", cmd, "len", len(data))
}

func (l *Logger) OnFault(stage string, err error) {
	l.Error("fault", "stage", stage, "error", err)
}

func (l *Logger) OnRecovered(stage string) {
	l.Warn("recovered", "stage", stage)
}
