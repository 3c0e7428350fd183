package gamelog

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	prefixLogin    = "LogNet: Join succeeded: "
	prefixLogoff   = "LogNet: UNetConnection::Close: "
	prefixInterval = `LogServerConnection: FG.AutosaveInterval = "`
	prefixSave     = "LogGame: World Serialization (save): "
	prefixSaveDone = "LogGame: Total Save Time took "

	secondsSuffix   = " seconds"
	timestampLayout = "2006.01.02-15.04.05"
)

// headerPattern splits "[2024.03.01-12.00.00:123][ 45]LogGame: ..." into the
// timestamp, its milliseconds and the body after the frame counter.
var headerPattern = regexp.MustCompile(`^\[([0-9]{4}\.[0-9]{2}\.[0-9]{2}-[0-9]{2}\.[0-9]{2}\.[0-9]{2}):([0-9]{3})\]\[\s*[0-9]+\](.*)$`)

var (
	errNoSecondsSuffix = errors.New("missing seconds suffix")
	errNegative        = errors.New("negative value")
	errNotFinite       = errors.New("value is not finite")
	errNoQuotedValue   = errors.New("no quoted value")
)

// Classify recognizes the handful of line shapes that matter for save
// prediction. Unrelated lines return ok=false with a nil error; lines with a
// recognized prefix but an unparsable payload return a *ParseError.
func Classify(line string) (Event, bool, error) {
	match := headerPattern.FindStringSubmatch(NormalizeLogLine(line))
	if match == nil {
		return Event{}, false, nil
	}
	body := match[3]

	var ev Event
	var rest string
	switch {
	case strings.HasPrefix(body, prefixLogin):
		ev.Kind, rest = KindPlayerLogin, body[len(prefixLogin):]
	case strings.HasPrefix(body, prefixLogoff):
		ev.Kind, rest = KindPlayerLogoff, body[len(prefixLogoff):]
	case strings.HasPrefix(body, prefixInterval):
		ev.Kind, rest = KindIntervalReconfigured, body[len(prefixInterval)-1:]
	case strings.HasPrefix(body, prefixSave):
		ev.Kind, rest = KindSaveStarted, body[len(prefixSave):]
	case strings.HasPrefix(body, prefixSaveDone):
		ev.Kind, rest = KindSaveCompleted, body[len(prefixSaveDone):]
	default:
		return Event{}, false, nil
	}

	ts, err := parseTimestamp(match[1], match[2])
	if err != nil {
		return Event{}, false, &ParseError{Kind: ev.Kind, Field: "timestamp", Value: match[1] + ":" + match[2], Err: err}
	}
	ev.Time = ts

	switch ev.Kind {
	case KindPlayerLogin:
		ev.Player = strings.TrimSpace(rest)
	case KindIntervalReconfigured:
		quoted, ok := lastQuoted(rest)
		if !ok {
			return Event{}, false, &ParseError{Kind: ev.Kind, Field: "interval", Value: rest, Err: errNoQuotedValue}
		}
		value, err := parseNonNegative(quoted)
		if err != nil {
			return Event{}, false, &ParseError{Kind: ev.Kind, Field: "interval", Value: quoted, Err: err}
		}
		ev.NewIntervalSeconds = value
	case KindSaveStarted, KindSaveCompleted:
		value, err := parseSeconds(rest)
		if err != nil {
			return Event{}, false, &ParseError{Kind: ev.Kind, Field: "seconds", Value: strings.TrimSpace(rest), Err: err}
		}
		if ev.Kind == KindSaveStarted {
			ev.ElapsedSeconds = value
		} else {
			ev.TotalSeconds = value
		}
	}
	return ev, true, nil
}

func NormalizeLogLine(line string) string {
	line = strings.TrimPrefix(line, "\ufeff")
	return strings.TrimRight(line, "\r\n")
}

func parseTimestamp(stamp, millis string) (time.Time, error) {
	base, err := time.ParseInLocation(timestampLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return time.Time{}, err
	}
	return base.Add(time.Duration(ms) * time.Millisecond), nil
}

func parseSeconds(rest string) (float64, error) {
	rest = strings.TrimSpace(rest)
	number, ok := strings.CutSuffix(rest, secondsSuffix)
	if !ok {
		return 0, errNoSecondsSuffix
	}
	return parseNonNegative(number)
}

func parseNonNegative(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNotFinite
	}
	if value < 0 {
		return 0, errNegative
	}
	return value, nil
}

// lastQuoted returns the contents of the last "..." pair in s.
func lastQuoted(s string) (string, bool) {
	end := strings.LastIndexByte(s, '"')
	if end <= 0 {
		return "", false
	}
	start := strings.LastIndexByte(s[:end], '"')
	if start < 0 {
		return "", false
	}
	return s[start+1 : end], true
}
