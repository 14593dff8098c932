package format

import (
	"strconv"
	"strings"
)

// Duration component separator
const (
	ComponentSeparator = ", "
)

// Duration renders milliseconds as "1d, 2h, 3m, 4s". Zero components are
// omitted; zero input yields an empty string.
func Duration(milliseconds int64) string {
	if milliseconds <= 0 {
		return ""
	}

	seconds := milliseconds / 1000
	minutes, seconds := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60
	days, hours := hours/24, hours%24

	parts := make([]string, 0, 4)
	for _, c := range []struct {
		value  int64
		suffix string
	}{
		{days, "d"},
		{hours, "h"},
		{minutes, "m"},
		{seconds, "s"},
	} {
		if c.value != 0 {
			parts = append(parts, strconv.FormatInt(c.value, 10)+c.suffix)
		}
	}

	return strings.Join(parts, ComponentSeparator)
}
