package classifier

import (
	"regexp"
	"strings"
)

// Result is the outcome of classifying one post's text.
type Result struct {
	Score       int    `json:"score"` // 0..10
	Label       string `json:"label"` // "High", "Medium" or "Low"
	ContactInfo string `json:"contact_info"`
}

// Intent labels
const (
	LabelHigh   = "High"
	LabelMedium = "Medium"
	LabelLow    = "Low"
)

// NoContact is returned when no email or DM request was found in the text.
const NoContact = "None"

// boosterKeywords raise the score by 2 each when present.
var boosterKeywords = []string{
	"urgently", "budget", "looking to hire", "pay", "quote", "startup", "launching",
}

// negativeKeywords mark recruitment/job posts; any match zeroes the score.
var negativeKeywords = []string{
	"hiring", "job", "vacancy", "career", "join our team", "salary", "recruit", "looking for a job",
}

var emailPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)

// Analyze scores text for commercial intent and extracts contact hints.
// It is deterministic and has no failure modes: any input, including the
// empty string, yields a well-formed result.
func Analyze(text string) Result {
	score := Score(text)
	return Result{
		Score:       score,
		Label:       Label(score),
		ContactInfo: ExtractContactInfo(text),
	}
}

// Score rates text from 0 to 10. Recruitment language zeroes the score
// outright; otherwise the text already matched a search keyword to get
// here, so scoring starts from a base of 3 and boosters add on top.
func Score(text string) int {
	lowered := strings.ToLower(text)

	for _, bad := range negativeKeywords {
		if strings.Contains(lowered, bad) {
			return 0
		}
	}

	score := 3

	for _, booster := range boosterKeywords {
		if strings.Contains(lowered, booster) {
			score += 2
		}
	}

	// "I need a ..." / "we are looking for a ..." is a strong signal
	if strings.Contains(lowered, "need a") || strings.Contains(lowered, "looking for a") {
		score += 2
	}

	if score > 10 {
		score = 10
	}
	return score
}

// Label maps a score to its intent label. It depends on the score alone.
func Label(score int) string {
	switch {
	case score >= 8:
		return LabelHigh
	case score >= 5:
		return LabelMedium
	default:
		return LabelLow
	}
}

// ExtractContactInfo collects email addresses and DM/inbox requests from
// the text. Both signals may co-occur; they are joined with " | ". When
// neither is present it returns the NoContact sentinel.
func ExtractContactInfo(text string) string {
	var info []string

	if emails := emailPattern.FindAllString(text, -1); len(emails) > 0 {
		info = append(info, "Emails: "+strings.Join(emails, ", "))
	}

	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "dm") || strings.Contains(lowered, "inbox") || strings.Contains(lowered, "message me") {
		info = append(info, "Request: DM/Inbox")
	}

	if len(info) == 0 {
		return NoContact
	}
	return strings.Join(info, " | ")
}
