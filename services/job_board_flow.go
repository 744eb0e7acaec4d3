package services

import "fmt"

const (
	jobBoardApplySelector  = `button:has-text("Apply now"), a:has-text("Apply now")`
	jobBoardSubmitSelector = `button:has-text("Submit"), button[type="submit"], button:has-text("Continue")`
)

// applyJobBoard handles hosted job boards such as Indeed: open the apply
// form, fill it heuristically and submit once.
func applyJobBoard(in flowInput, t *flowTracker) flowOutcome {
	page := in.page
	t.enter(stateSearching)

	apply, ok := page.FirstVisible(jobBoardApplySelector, ClickTimeout)
	if !ok {
		return t.fail("Apply button not found")
	}
	if err := apply.Click(false); err != nil {
		return t.fail(fmt.Sprintf("Failed to click apply: %v", err))
	}
	page.Pause(SettleDelay)

	t.enter(stateFilling)
	t.absorb(InferAndFill(page, in.profile, in.coverLetter))

	submit, ok := page.FirstVisible(jobBoardSubmitSelector, ControlTimeout)
	if !ok {
		return t.fail("Submit button not found")
	}
	if err := submit.Click(false); err != nil {
		return t.fail(fmt.Sprintf("Failed to click submit: %v", err))
	}
	t.markSubmitted("job-board")
	page.Pause(PostSubmitDelay)
	return t.verify(page)
}
