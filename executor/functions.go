package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/value"
)

const canonicalLayout = "2006-01-02T15:04:05"

// dateFallbackLayouts are tried in order when no explicit format is given.
var dateFallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// callDATE implements DATE(str [, format]).
func callDATE(args []value.Value) (value.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return value.NewNull(), fmt.Errorf("%w: DATE expects 1 or 2 arguments, got %d", mdqlerr.ErrArgument, len(args))
	}
	str, ok := args[0].AsString()
	if !ok {
		return value.NewNull(), fmt.Errorf("%w: DATE expects a string as its first argument", mdqlerr.ErrArgument)
	}

	if len(args) == 2 {
		format, ok := args[1].AsString()
		if !ok {
			return value.NewNull(), fmt.Errorf("%w: DATE expects a string format", mdqlerr.ErrArgument)
		}
		t, err := parseWithFormat(str, format)
		if err != nil {
			return value.NewNull(), fmt.Errorf("%w: %v", mdqlerr.ErrArgument, err)
		}
		return value.NewString(t.Format(canonicalLayout)), nil
	}

	t, err := parseWithFallbacks(str)
	if err != nil {
		return value.NewNull(), fmt.Errorf("%w: %v", mdqlerr.ErrArgument, err)
	}
	return value.NewString(t.Format(canonicalLayout)), nil
}

// callDATEADD implements DATEADD(interval, n, date [, format]).
func callDATEADD(args []value.Value) (value.Value, error) {
	if len(args) != 3 && len(args) != 4 {
		return value.NewNull(), fmt.Errorf("%w: DATEADD expects 3 or 4 arguments, got %d", mdqlerr.ErrArgument, len(args))
	}
	interval, ok := args[0].AsString()
	if !ok {
		return value.NewNull(), fmt.Errorf("%w: DATEADD expects a string interval", mdqlerr.ErrArgument)
	}
	n, ok := args[1].AsInt()
	if !ok {
		return value.NewNull(), fmt.Errorf("%w: DATEADD expects an integer count", mdqlerr.ErrArgument)
	}
	dateStr, ok := args[2].AsString()
	if !ok {
		return value.NewNull(), fmt.Errorf("%w: DATEADD expects a string date", mdqlerr.ErrArgument)
	}

	var t time.Time
	var err error
	if len(args) == 4 {
		format, ok := args[3].AsString()
		if !ok {
			return value.NewNull(), fmt.Errorf("%w: DATEADD expects a string format", mdqlerr.ErrArgument)
		}
		t, err = parseWithFormat(dateStr, format)
	} else {
		t, err = parseWithFallbacks(dateStr)
	}
	if err != nil {
		return value.NewNull(), fmt.Errorf("%w: %v", mdqlerr.ErrArgument, err)
	}

	result, err := addInterval(t, interval, n)
	if err != nil {
		return value.NewNull(), fmt.Errorf("%w: %v", mdqlerr.ErrArgument, err)
	}
	return value.NewString(result.Format(canonicalLayout)), nil
}

func parseWithFallbacks(str string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateFallbackLayouts {
		t, err := time.Parse(layout, str)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("could not parse %q as a date: %v", str, lastErr)
}

// parseWithFormat tries the caller's strptime-flavored format (translated
// to Go's reference-time layout) on its own first, so a date-only format
// yields an implicit midnight time, then the same layout followed by a
// "T15:04:05" time part.
func parseWithFormat(str, format string) (time.Time, error) {
	layout := strftimeToGoLayout(format)
	if t, err := time.Parse(layout, str); err == nil {
		return t, nil
	}
	if t, err := time.Parse(layout+"T15:04:05", str); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("could not parse %q with format %q", str, format)
}

// strftimeToGoLayout translates the small set of strftime directives the
// query language exposes into Go's reference-time layout syntax.
func strftimeToGoLayout(format string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006",
		"%m", "01",
		"%d", "02",
		"%H", "15",
		"%M", "04",
		"%S", "05",
	)
	return replacer.Replace(format)
}

// addInterval adds n units of interval to t. MONTH arithmetic rolls over
// years on overflow via time.AddDate's own normalization.
func addInterval(t time.Time, interval string, n int64) (time.Time, error) {
	switch strings.ToUpper(interval) {
	case "YEAR":
		return t.AddDate(int(n), 0, 0), nil
	case "MONTH":
		return t.AddDate(0, int(n), 0), nil
	case "WEEK":
		return t.AddDate(0, 0, int(n)*7), nil
	case "DAY":
		return t.AddDate(0, 0, int(n)), nil
	case "HOUR":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "MINUTE":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "SECOND":
		return t.Add(time.Duration(n) * time.Second), nil
	case "MILLISECOND":
		return t.Add(time.Duration(n) * time.Millisecond), nil
	case "MICROSECOND":
		return t.Add(time.Duration(n) * time.Microsecond), nil
	case "NANOSECOND":
		return t.Add(time.Duration(n) * time.Nanosecond), nil
	default:
		return time.Time{}, fmt.Errorf("unknown interval %q", interval)
	}
}
