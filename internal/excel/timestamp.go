package excel

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var chineseDateTimePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日\s+(\d{1,2}):(\d{1,2})`)

var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01-02",
	"2006/1/2",
	"1/2/2006",
	"01-02-06",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseSubmissionTime reads the survey's "2024年3月5日 14:30" timestamps in loc,
// falling back to common date layouts. It returns nil for anything else.
func ParseSubmissionTime(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if m := chineseDateTimePattern.FindStringSubmatch(value); m != nil {
		parts := make([]int, 5)
		for i := range parts {
			parts[i], _ = strconv.Atoi(m[i+1])
		}
		t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, loc)
		return &t
	}

	return ParseDate(value, loc)
}

// ParseDate tries the generic layouts only.
func ParseDate(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	return nil
}
