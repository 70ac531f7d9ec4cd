package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"projectbasis/config"

	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.uber.org/fx"
)

// Params defines the parameters required for the logger
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

// New creates and initializes slog.Logger. Console output honours the
// configured level; the optional log file always receives debug records.
func New(params Params) (*slog.Logger, error) {
	logCfg := params.Config.Env.Log

	level, err := parseLogLevel(logCfg.Level)
	if err != nil {
		return nil, err
	}

	console := newHandler(os.Stdout, logCfg.Pretty, level)
	if logCfg.File == "" {
		return slog.New(console), nil
	}

	file, err := openLogFile(logCfg.File)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return file.Close()
		},
	})

	fileHandler := newHandler(file, false, slog.LevelDebug)

	return slog.New(slogmulti.Fanout(console, fileHandler)), nil
}

// newHandler builds a text handler for humans or a JSON handler for collectors.
func newHandler(w io.Writer, pretty bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if pretty {
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewJSONHandler(w, opts)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	return file, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
