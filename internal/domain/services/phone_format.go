package services

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	nonDigitPattern   = regexp.MustCompile(`\D`)
	unsafeCharPattern = regexp.MustCompile("[<>'\";&|`$]")
)

// FormatPhoneNumber renders a number for display. North American lengths use
// the (xxx) xxx-xxxx layout, other valid international numbers use the
// international format, and anything else is returned unchanged.
func FormatPhoneNumber(phone string) string {
	digits := nonDigitPattern.ReplaceAllString(phone, "")
	switch len(digits) {
	case 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case 11:
		return "+" + digits[:1] + " (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}

	if num, ok := parseInternational(phone); ok {
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	}
	return phone
}

// PhoneRegion returns the ISO region code of an international number, or ""
func PhoneRegion(phone string) string {
	num, ok := parseInternational(phone)
	if !ok {
		return ""
	}
	region := phonenumbers.GetRegionCodeForNumber(num)
	if region == "ZZ" {
		return ""
	}
	return region
}

func parseInternational(phone string) (*phonenumbers.PhoneNumber, bool) {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	if !strings.HasPrefix(phone, "+") {
		return nil, false
	}
	num, err := phonenumbers.Parse(phone, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return nil, false
	}
	return num, true
}

// SanitizeText strips characters commonly used for markup or shell injection
func SanitizeText(text string) string {
	return strings.TrimSpace(unsafeCharPattern.ReplaceAllString(text, ""))
}
