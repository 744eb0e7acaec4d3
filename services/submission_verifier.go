package services

import (
	"log"
	"strings"

	"autoapply/models"
)

// SubmissionOutcome is what the page looks like after a submit attempt.
type SubmissionOutcome string

const (
	OutcomeConfirmed SubmissionOutcome = "confirmed"
	OutcomeAmbiguous SubmissionOutcome = "ambiguous"
	OutcomeNone      SubmissionOutcome = "none"
)

// Status maps an outcome onto the result status reported to the user.
func (o SubmissionOutcome) Status() models.ApplicationStatus {
	switch o {
	case OutcomeConfirmed:
		return models.StatusSuccess
	case OutcomeAmbiguous:
		return models.StatusPartial
	default:
		return models.StatusFailed
	}
}

// Checked in order, each bounded by VerifyTimeout.
var confirmationSelectors = []string{
	"text=/thank you|success|submitted|received|confirmation/i",
	"h1:has-text('Thank you')",
	"h2:has-text('Thank you')",
	"[class*='success']",
	"[class*='confirmation']",
	"[class*='complete']",
	"[data-testid*='confirmation']",
}

var confirmationURLKeywords = []string{"success", "thank", "confirmation"}

// VerifySubmission looks for positive evidence that the application went
// through. Without it the outcome is ambiguous if a submit was attempted and
// none otherwise.
func VerifySubmission(page Page, submitAttempted bool) SubmissionOutcome {
	for _, selector := range confirmationSelectors {
		if _, ok := page.FirstVisible(selector, VerifyTimeout); ok {
			log.Printf("Found success indicator: %s", selector)
			return OutcomeConfirmed
		}
	}

	if checkURLForSuccess(page.URL()) {
		log.Printf("Found success keyword in URL: %s", page.URL())
		return OutcomeConfirmed
	}

	if submitAttempted {
		log.Printf("No success indicators found after submit")
		return OutcomeAmbiguous
	}
	return OutcomeNone
}

func checkURLForSuccess(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, keyword := range confirmationURLKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
