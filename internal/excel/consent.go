package excel

import "strings"

// AffirmativeToken is the only answer text that grants display permission.
const AffirmativeToken = "愿意"

// HasConsent reports whether a free-text consent answer contains the affirmative
// token. Matching is an exact substring test.
func HasConsent(answer string) bool {
	return strings.Contains(answer, AffirmativeToken)
}

// Consents reports whether the row grants both biography and photo display.
func Consents(row Row) bool {
	return HasConsent(row.Get(HeaderAllowBio)) && HasConsent(row.Get(HeaderAllowPhoto))
}

// ConsentFilter keeps the rows that grant both permissions, in source order.
func ConsentFilter(rows []Row) []Row {
	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if Consents(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
