package services

import (
	"fmt"
	"log"
)

const easyApplyMaxSteps = 10

const (
	easyApplySelector       = `button.jobs-apply-button, button:has-text("Easy Apply")`
	easyApplySubmitSelector = `button:has-text("Submit application"), button[aria-label*="Submit"]`
	easyApplyNextSelector   = `button:has-text("Next"), button:has-text("Continue"), button:has-text("Review")`
)

// applyLinkedIn walks the Easy Apply modal one step at a time. Each step is
// filled, then either submitted or advanced. A step with neither control is
// given another settle period.
func applyLinkedIn(in flowInput, t *flowTracker) flowOutcome {
	page := in.page
	t.enter(stateSearching)

	easyApply, ok := page.FirstVisible(easyApplySelector, ClickTimeout)
	if !ok {
		return t.fail("LinkedIn job requires external application - please apply on the company website")
	}
	if err := easyApply.Click(false); err != nil {
		return t.fail(fmt.Sprintf("Failed to open Easy Apply: %v", err))
	}
	page.Pause(SettleDelay)
	t.enter(stateApplying)

	for step := 0; step < easyApplyMaxSteps; step++ {
		t.enter(stateFilling)
		t.absorb(InferAndFill(page, in.profile, in.coverLetter))

		if submit, ok := page.FirstVisible(easyApplySubmitSelector, ProbeTimeout); ok {
			if err := submit.Click(false); err != nil {
				return t.fail(fmt.Sprintf("Failed to click submit: %v", err))
			}
			t.markSubmitted("easy-apply")
			page.Pause(PostSubmitDelay)
			return t.verify(page)
		}

		if next, ok := page.FirstVisible(easyApplyNextSelector, ProbeTimeout); ok {
			if err := next.Click(false); err != nil {
				t.note(fmt.Sprintf("step %d: next click failed: %v", step+1, err))
			}
			page.Pause(StepDelay)
			continue
		}

		log.Printf("Easy Apply step %d: no submit or next control, waiting", step+1)
		page.Pause(StepDelay)
	}

	return t.fail(fmt.Sprintf("Easy Apply did not reach a submit step within %d steps", easyApplyMaxSteps))
}
