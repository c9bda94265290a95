package extract

import "regexp"

var (
	countryCodePrefix = regexp.MustCompile(`\+\s*55|\b0055`)
	areaCodedPhone    = regexp.MustCompile(`(?:55[\s.-]*)?(?:\(?\d{2}\)?[\s.-]*)?\d{4,5}[\s.-]?\d{4}`)
	digitRun          = regexp.MustCompile(`\d+`)
)

// Phone extracts a Brazilian phone number with area code as 10 or 11 digits.
// Numbers without an area code are discarded, never guessed.
func Phone(v any) (string, bool) {
	raw, ok := String(v)
	if !ok {
		return "", false
	}
	text := countryCodePrefix.ReplaceAllString(raw, " ")

	for _, match := range areaCodedPhone.FindAllString(text, -1) {
		if phone, ok := normalizePhoneDigits(Digits(match)); ok {
			return phone, true
		}
	}

	for _, run := range digitRun.FindAllString(text, -1) {
		if len(run) == 10 || len(run) == 11 {
			return run, true
		}
	}
	return "", false
}

func normalizePhoneDigits(digits string) (string, bool) {
	for len(digits) > 11 && digits[:2] == "55" {
		digits = digits[2:]
	}
	if len(digits) != 10 && len(digits) != 11 {
		return "", false
	}
	return digits, true
}
