package services

import "scamshield-lab/internal/domain/models"

// Safety tip categories
const (
	TipsGeneral = "general"
	TipsCall    = "call"
	TipsSMS     = "sms"
)

var safetyTips = map[string][]string{
	TipsGeneral: {
		"Never share personal information over the phone unless you initiated the call",
		"Be suspicious of urgent requests for money or information",
		"Verify caller identity through official channels",
		"Don't click on links from unknown sources",
		"Enable two-factor authentication on all accounts",
	},
	TipsCall: {
		"Legitimate organizations won't ask for passwords over the phone",
		"Government agencies don't demand immediate payment by gift cards or wire transfer",
		"If a caller claims to be from a company, hang up and call the official number",
		"Be wary of robocalls claiming you've won a prize",
	},
	TipsSMS: {
		"Don't click on shortened URLs from unknown numbers",
		"Banks will never ask you to verify account details via SMS link",
		"Check the sender's number - legitimate companies use consistent numbers",
		"Look for spelling errors and grammatical mistakes in messages",
	},
}

// SafetyTips returns a copy of the tips for a category. Unknown categories
// get the general tips.
func SafetyTips(category string) []string {
	tips, ok := safetyTips[category]
	if !ok {
		tips = safetyTips[TipsGeneral]
	}
	return append([]string(nil), tips...)
}

// AllSafetyTips returns every tip group keyed by category
func AllSafetyTips() map[string][]string {
	out := make(map[string][]string, len(safetyTips))
	for category := range safetyTips {
		out[category] = SafetyTips(category)
	}
	return out
}

type alertCopy struct {
	title   string
	message string
	icon    string
	action  string
}

var alertCopies = map[models.RiskLevel]alertCopy{
	models.RiskLevelCritical: {
		title:   "🚨 CRITICAL THREAT DETECTED",
		message: "This communication shows strong indicators of a scam. DO NOT ENGAGE.",
		icon:    "⛔",
		action:  "BLOCK AND REPORT",
	},
	models.RiskLevelHigh: {
		title:   "⚠️ HIGH RISK WARNING",
		message: "Multiple scam indicators detected. Exercise extreme caution.",
		icon:    "🛑",
		action:  "DO NOT RESPOND",
	},
	models.RiskLevelMedium: {
		title:   "⚡ MEDIUM RISK ALERT",
		message: "Some suspicious patterns detected. Verify before taking action.",
		icon:    "⚠️",
		action:  "VERIFY SOURCE",
	},
	models.RiskLevelLow: {
		title:   "✅ LOW RISK",
		message: "No significant threats detected, but remain vigilant.",
		icon:    "🛡️",
		action:  "PROCEED WITH CAUTION",
	},
}

var visualStyles = map[models.RiskLevel]models.VisualIndicators{
	models.RiskLevelCritical: {
		Color:       "#dc3545",
		Background:  "#f8d7da",
		Border:      "#f5c6cb",
		TextColor:   "#721c24",
		ProgressBar: "danger",
	},
	models.RiskLevelHigh: {
		Color:       "#fd7e14",
		Background:  "#ffe5d0",
		Border:      "#ffd3b8",
		TextColor:   "#8b4513",
		ProgressBar: "warning",
	},
	models.RiskLevelMedium: {
		Color:       "#ffc107",
		Background:  "#fff3cd",
		Border:      "#ffeaa7",
		TextColor:   "#856404",
		ProgressBar: "warning",
	},
	models.RiskLevelLow: {
		Color:       "#28a745",
		Background:  "#d4edda",
		Border:      "#c3e6cb",
		TextColor:   "#155724",
		ProgressBar: "success",
	},
}

var whyItsRisky = []string{
	"Scammers use psychological tricks to bypass critical thinking",
	"Clicking malicious links can install malware or steal credentials",
	"Sharing personal info can lead to identity theft",
	"Financial losses can occur through fraudulent transactions",
}

var howScamsWork = []string{
	"1. CREATE URGENCY: Scammers use time pressure to prevent verification",
	"2. IMPERSONATE AUTHORITY: Pretend to be banks, government, or companies",
	"3. REQUEST INFORMATION: Ask for passwords, PINs, or account details",
	"4. MANIPULATE EMOTIONS: Use fear, greed, or excitement to cloud judgment",
	"5. HIDE TRACKS: Use spoofed numbers, shortened URLs, or disposable accounts",
}

// unknown levels fall back to the MEDIUM bundle
func alertCopyFor(level models.RiskLevel) alertCopy {
	if c, ok := alertCopies[level]; ok {
		return c
	}
	return alertCopies[models.RiskLevelMedium]
}

func visualStyleFor(level models.RiskLevel) models.VisualIndicators {
	if v, ok := visualStyles[level]; ok {
		return v
	}
	return visualStyles[models.RiskLevelMedium]
}
