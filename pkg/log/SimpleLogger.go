// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/navwar/gomirror/pkg/ts"
)

const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

type Options struct {
	Format   string // text or jsonl
	Layout   ts.Layout
	Location *time.Location
	NoColor  bool
}

// SimpleLogger writes one line per message, with fields sorted by key.
type SimpleLogger struct {
	logger *slog.Logger
}

func (s *SimpleLogger) Log(msg string, fields ...map[string]interface{}) error {
	attrs := []slog.Attr{}
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.Any(k, f[k]))
		}
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return NewSimpleLoggerWithOptions(w, &Options{
		Format: FormatJSONL,
	})
}

func NewSimpleLoggerWithOptions(w io.Writer, options *Options) *SimpleLogger {
	layout := options.Layout
	if len(layout) == 0 {
		layout = ts.Layout(time.RFC3339)
	}
	location := options.Location
	if location == nil {
		location = time.Local
	}

	var handler slog.Handler
	switch options.Format {
	case FormatText:
		handler = tint.NewHandler(w, &tint.Options{
			TimeFormat: string(layout),
			NoColor:    options.NoColor || !IsTerminal(w),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 && a.Value.Kind() == slog.KindTime {
					a.Value = slog.TimeValue(a.Value.Time().In(location))
				}
				return a
			},
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 && a.Value.Kind() == slog.KindTime {
					return slog.String(slog.TimeKey, layout.Format(a.Value.Time().In(location)))
				}
				return a
			},
		})
	}

	return &SimpleLogger{logger: slog.New(handler)}
}

// IsTerminal returns true if w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
