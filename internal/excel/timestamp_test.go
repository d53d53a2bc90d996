package excel

import (
	"testing"
	"time"
)

func TestParseSubmissionTimeChineseLiteral(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	got := ParseSubmissionTime("2024年3月5日 14:30", loc)
	if got == nil {
		t.Fatalf("expected timestamp")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 || got.Hour() != 14 || got.Minute() != 30 {
		t.Fatalf("unexpected timestamp %s", got)
	}
	if got.Location() != loc {
		t.Fatalf("expected location %s, got %s", loc, got.Location())
	}
}

func TestParseSubmissionTimeFallbacks(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2024/3/5 08:01", time.Date(2024, 3, 5, 8, 1, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := ParseSubmissionTime(tt.input, time.UTC)
		if got == nil || !got.Equal(tt.want) {
			t.Fatalf("ParseSubmissionTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseSubmissionTimeGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2024年13", "昨天下午"} {
		if got := ParseSubmissionTime(input, time.UTC); got != nil {
			t.Fatalf("ParseSubmissionTime(%q) = %v, want nil", input, got)
		}
	}
}
