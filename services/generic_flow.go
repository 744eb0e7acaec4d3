package services

import (
	"log"
	"strings"
)

var genericApplySelectors = []string{
	`button:has-text("Apply")`,
	`a:has-text("Apply")`,
	`button:has-text("Submit Application")`,
	`[class*="apply"][role="button"]`,
	`a[href*="apply"]`,
}

// applyGeneric handles unknown career sites: ask for a strategy, open the
// form if needed, fill heuristically and try every submit strategy.
func applyGeneric(in flowInput, t *flowTracker) flowOutcome {
	page := in.page
	t.enter(stateSearching)

	body, err := page.BodyText()
	if err != nil {
		t.note("could not read page text: " + err.Error())
	}
	analysis := DefaultPageAnalysis()
	if in.content != nil {
		analysis = in.content.AnalyzePage(in.ctx, excerpt(body, PageExcerptLimit), in.profile)
	}
	log.Printf("Page strategy: %s", analysis.Strategy)
	if analysis.HasLoginRequired {
		t.note("page appears to require login")
	}

	if analysis.NeedsApplyClick {
		if clickFirstVisible(page, genericApplySelectors) {
			t.enter(stateApplying)
			page.Pause(SettleDelay)
		}
	}

	t.enter(stateFilling)
	t.absorb(InferAndFill(page, in.profile, in.coverLetter))

	strategy, ok := SmartSubmit(page)
	if !ok {
		return t.fail("Could not find submit button")
	}
	t.markSubmitted(strategy)
	page.Pause(PostSubmitDelay)
	return t.verify(page)
}

// clickFirstVisible clicks the first selector that shows up within
// ProbeTimeout.
func clickFirstVisible(page Page, selectors []string) bool {
	for _, selector := range selectors {
		el, ok := page.FirstVisible(selector, ProbeTimeout)
		if !ok {
			continue
		}
		if err := el.Click(false); err != nil {
			continue
		}
		log.Printf("Clicked apply control %s", selector)
		return true
	}
	return false
}

func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
