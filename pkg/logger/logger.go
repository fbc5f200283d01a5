package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Printf bridges printf-style library logging (goose and similar) onto slog.
type Printf struct {
	l *slog.Logger
}

// New tags every record with component. A nil base falls back to slog.Default.
func New(component string, base *slog.Logger) *Printf {
	if base == nil {
		base = slog.Default()
	}
	return &Printf{l: base.With("component", component)}
}

func (p *Printf) Printf(format string, v ...any) {
	p.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level and exits, matching log.Fatalf.
func (p *Printf) Fatalf(format string, v ...any) {
	p.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
