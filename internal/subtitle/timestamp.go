package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// converts HH:MM:SS.mmm, MM:SS.mmm or bare seconds to seconds.
// a comma decimal separator (SRT) is accepted.
func ParseTimestamp(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		h, err := parseWhole(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w %q: hours: %v", ErrInvalidTimestamp, s, err)
		}
		m, err := parseWhole(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w %q: minutes: %v", ErrInvalidTimestamp, s, err)
		}
		sec, err := parseSeconds(parts[2])
		if err != nil {
			return 0, fmt.Errorf("%w %q: seconds: %v", ErrInvalidTimestamp, s, err)
		}
		return float64(h*3600+m*60) + sec, nil
	case 2:
		m, err := parseWhole(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w %q: minutes: %v", ErrInvalidTimestamp, s, err)
		}
		sec, err := parseSeconds(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w %q: seconds: %v", ErrInvalidTimestamp, s, err)
		}
		return float64(m*60) + sec, nil
	case 1:
		sec, err := parseSeconds(s)
		if err != nil {
			return 0, fmt.Errorf("%w %q: %v", ErrInvalidTimestamp, s, err)
		}
		return sec, nil
	default:
		return 0, fmt.Errorf("%w %q: too many fields", ErrInvalidTimestamp, s)
	}
}

func parseWhole(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative")
	}
	return n, nil
}

func parseSeconds(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, errors.New("out of range")
	}
	return f, nil
}

// formats seconds as zero padded HH:MM:SS.mmm
func FormatTimestamp(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// formats seconds as HH:MM:SS,mmm
func FormatSRTTimestamp(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// rounds to whole milliseconds before splitting so 59.9996 carries into the minute
func splitMillis(seconds float64) (h, m, s, ms int64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	h = total / 3_600_000
	m = total % 3_600_000 / 60_000
	s = total % 60_000 / 1000
	ms = total % 1000
	return h, m, s, ms
}
