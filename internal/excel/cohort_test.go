package excel

import (
	"strconv"
	"testing"
)

func TestParseCohort(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"arabic", "3", intPtr(3)},
		{"arabic with text", "第12期", intPtr(12)},
		{"arabic wins over chinese", "第二期 (2)", intPtr(2)},
		{"ten", "十", intPtr(10)},
		{"twenty three", "二十三", intPtr(23)},
		{"fifteen", "十五", intPtr(15)},
		{"thirty", "三十", intPtr(30)},
		{"nine", "九", intPtr(9)},
		{"wrapped glyphs", "第二十三期", intPtr(23)},
		{"empty", "", nil},
		{"no numerals", "未知", nil},
		{"ambiguous digit run", "二三", nil},
		{"double ten", "十十", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCohort(tt.input)
			if got == nil && tt.want == nil {
				return
			}
			if got == nil || tt.want == nil || *got != *tt.want {
				t.Fatalf("ParseCohort(%q) = %v, want %v", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestParseCohortArabicRoundTrip(t *testing.T) {
	for i := 0; i <= 500; i++ {
		got := ParseCohort(strconv.Itoa(i))
		if got == nil || *got != i {
			t.Fatalf("ParseCohort(%d) = %v", i, deref(got))
		}
	}
}

func intPtr(v int) *int { return &v }

func deref(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
