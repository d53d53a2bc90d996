package excel

import "testing"

func consentRow(bio, photo string) Row {
	return Row{Cells: map[string]string{HeaderAllowBio: bio, HeaderAllowPhoto: photo}}
}

func TestHasConsent(t *testing.T) {
	if !HasConsent("愿意") || !HasConsent("我愿意展示") {
		t.Fatalf("affirmative answers should consent")
	}
	for _, answer := range []string{"", "否", "yes", "同意"} {
		if HasConsent(answer) {
			t.Fatalf("%q should not consent", answer)
		}
	}
}

func TestConsentFilter(t *testing.T) {
	rows := []Row{
		consentRow("愿意", "愿意"),
		consentRow("愿意", "否"),
		consentRow("", "愿意"),
		consentRow("愿意展示", "愿意"),
	}
	filtered := ConsentFilter(rows)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 consenting rows, got %d", len(filtered))
	}

	again := ConsentFilter(filtered)
	if len(again) != len(filtered) {
		t.Fatalf("filter is not idempotent: %d -> %d", len(filtered), len(again))
	}
}
