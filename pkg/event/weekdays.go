package event

import (
	"strings"
	"time"
)

// Weekdays is a set of days of the week.
type Weekdays uint8

// weekdayCodes lists the single letter codes in Monday-first order.
var weekdayCodes = []struct {
	code rune
	day  time.Weekday
}{
	{'M', time.Monday},
	{'T', time.Tuesday},
	{'W', time.Wednesday},
	{'R', time.Thursday},
	{'F', time.Friday},
	{'S', time.Saturday},
	{'U', time.Sunday},
}

func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// ParseWeekdays reads codes such as "MWF" or "TR". Codes are M T W R F S U for Monday to Sunday.
func ParseWeekdays(codes string) (Weekdays, error) {
	codes = strings.TrimSpace(codes)
	if codes == "" {
		return 0, invalid("weekdays", "at least one weekday is required")
	}
	var w Weekdays
	for _, c := range strings.ToUpper(codes) {
		found := false
		for _, wc := range weekdayCodes {
			if wc.code == c {
				w |= 1 << uint(wc.day)
				found = true
				break
			}
		}
		if !found {
			return 0, invalid("weekdays", "unknown weekday code %q in %q", c, codes)
		}
	}
	return w, nil
}

func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

func (w Weekdays) IsEmpty() bool {
	return w == 0
}

// Rotate shifts every day of the set forward by n days (n may be negative).
func (w Weekdays) Rotate(n int) Weekdays {
	shift := ((n % 7) + 7) % 7
	var rotated Weekdays
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			rotated |= 1 << uint((int(d)+shift)%7)
		}
	}
	return rotated
}

// Days returns the set in Monday-first order.
func (w Weekdays) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for _, wc := range weekdayCodes {
		if w.Contains(wc.day) {
			days = append(days, wc.day)
		}
	}
	return days
}

func (w Weekdays) String() string {
	var b strings.Builder
	for _, wc := range weekdayCodes {
		if w.Contains(wc.day) {
			b.WriteRune(wc.code)
		}
	}
	return b.String()
}
