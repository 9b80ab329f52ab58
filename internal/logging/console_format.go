package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// consoleTimeLayout keeps milliseconds so consecutive poll cycles stay apart.
const consoleTimeLayout = "2006-01-02 15:04:05.000"

func appendTimestamp(buf *bytes.Buffer, ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(ts.Local().Format(consoleTimeLayout))
}

// plainText renders v without quoting, for use in the bracketed component.
func plainText(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		// Numeric, bool and duration kinds all render through Value.String.
		return v.String()
	}
}

// appendValue writes v in key=value form, quoting anything a reader could
// mistake for a separator.
func appendValue(buf *bytes.Buffer, v slog.Value) {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		buf.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case slog.KindDuration:
		buf.WriteString(v.Duration().String())
	default:
		text := plainText(v)
		if needsQuoting(text) {
			buf.WriteString(strconv.Quote(text))
			return
		}
		buf.WriteString(text)
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch {
		case r <= ' ', r == '=', r == '"', r == 0x7f:
			return true
		}
	}
	return false
}
