package excel

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsPattern = regexp.MustCompile(`\d+`)

var chineseDigits = map[rune]int{
	'零': 0,
	'一': 1,
	'二': 2,
	'三': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
	'十': 10,
}

const ten = '十'

// ParseCohort reads a cohort number written either with Arabic digits ("第3期")
// or Chinese numerals ("第二十三期"). It returns nil when nothing parses or when
// the numeral sequence has no single reading.
func ParseCohort(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if match := digitsPattern.FindString(value); match != "" {
		n, err := strconv.Atoi(match)
		if err != nil {
			return nil
		}
		return &n
	}

	var glyphs []rune
	for _, r := range value {
		if _, ok := chineseDigits[r]; ok {
			glyphs = append(glyphs, r)
		}
	}
	return parseChineseNumber(glyphs)
}

func parseChineseNumber(glyphs []rune) *int {
	n, ok := chineseNumberValue(glyphs)
	if !ok {
		return nil
	}
	return &n
}

// chineseNumberValue accepts the readings of numbers below 100: "九", "十",
// "十五", "三十" and "二十三". Other shapes are ambiguous and rejected.
func chineseNumberValue(glyphs []rune) (int, bool) {
	isDigit := func(r rune) bool { return r != ten }

	switch len(glyphs) {
	case 1:
		return chineseDigits[glyphs[0]], true
	case 2:
		switch {
		case glyphs[0] == ten && isDigit(glyphs[1]):
			return 10 + chineseDigits[glyphs[1]], true
		case isDigit(glyphs[0]) && glyphs[1] == ten:
			return chineseDigits[glyphs[0]] * 10, true
		}
	case 3:
		if isDigit(glyphs[0]) && glyphs[1] == ten && isDigit(glyphs[2]) {
			return chineseDigits[glyphs[0]]*10 + chineseDigits[glyphs[2]], true
		}
	}
	return 0, false
}
