package services

import (
	"log"
	"strings"
)

var submitSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button:has-text("Submit")`,
	`button:has-text("Apply")`,
	`button:has-text("Send")`,
	`button:has-text("Continue")`,
}

const buttonScanSelector = `button:visible, a[role="button"]:visible`

var submitTextKeywords = []string{"submit", "apply", "send"}

type submitStrategy struct {
	name string
	try  func(page Page) bool
}

// submitStrategies is tried in order until one reports success. Each
// strategy swallows its own errors.
var submitStrategies = []submitStrategy{
	{name: "selector", try: submitBySelector},
	{name: "enter", try: submitByEnter},
	{name: "button-scan", try: submitByButtonScan},
}

// SmartSubmit tries every submit strategy in turn and reports the one that
// worked.
func SmartSubmit(page Page) (string, bool) {
	for _, strategy := range submitStrategies {
		if strategy.try(page) {
			log.Printf("Submitted using %s strategy", strategy.name)
			return strategy.name, true
		}
	}
	log.Printf("No submit strategy succeeded")
	return "", false
}

func submitBySelector(page Page) bool {
	for _, selector := range submitSelectors {
		el, ok := page.FirstVisible(selector, ProbeTimeout)
		if !ok || !el.Enabled() {
			continue
		}
		if err := el.Click(true); err != nil {
			log.Printf("Submit click failed on %s: %v", selector, err)
			continue
		}
		return true
	}
	return false
}

// submitByEnter counts as success whenever the key press is delivered. The
// verifier decides whether anything actually happened.
func submitByEnter(page Page) bool {
	if err := page.PressEnter(); err != nil {
		log.Printf("Enter key submit failed: %v", err)
		return false
	}
	return true
}

func submitByButtonScan(page Page) bool {
	buttons, err := page.Query(buttonScanSelector)
	if err != nil {
		return false
	}
	for _, el := range buttons {
		text := strings.ToLower(strings.TrimSpace(el.Text()))
		if !containsAny(text, submitTextKeywords) {
			continue
		}
		if err := el.Click(false); err != nil {
			continue
		}
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
