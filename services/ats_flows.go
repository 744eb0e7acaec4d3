package services

import "fmt"

// namedField binds a platform's known input name to a profile role.
type namedField struct {
	selector string
	role     FieldRole
}

var greenhouseFields = []namedField{
	{`input[name="job_application[first_name]"]`, RoleFirstName},
	{`input[name="job_application[last_name]"]`, RoleLastName},
	{`input[name="job_application[email]"]`, RoleEmail},
	{`input[name="job_application[phone]"]`, RolePhone},
}

var leverFields = []namedField{
	{`input[name="name"]`, RoleFullName},
	{`input[name="email"]`, RoleEmail},
	{`input[name="phone"]`, RolePhone},
	{`input[name="org"]`, RoleCompany},
	{`input[name="urls[LinkedIn]"]`, RoleLinkedIn},
	{`input[name="urls[GitHub]"]`, RoleGitHub},
	{`input[name="urls[Portfolio]"]`, RolePortfolio},
}

const (
	greenhouseSubmitSelector = `#submit_app, button[type="submit"], input[type="submit"]`
	leverSubmitSelector      = `button[type="submit"]`
	workdayApplySelector     = `a:has-text("Apply"), button:has-text("Apply")`
	workdayNextSelector      = `button:has-text("Next"), button:has-text("Continue")`
	workdaySubmitSelector    = `button:has-text("Submit")`
	fileInputSelector        = `input[type="file"]`

	workdayMaxPages = 5
)

func applyGreenhouse(in flowInput, t *flowTracker) flowOutcome {
	t.enter(stateFilling)
	fillNamedFields(in, t, greenhouseFields)
	return submitSingle(in, t, greenhouseSubmitSelector, "greenhouse")
}

func applyLever(in flowInput, t *flowTracker) flowOutcome {
	t.enter(stateFilling)
	fillNamedFields(in, t, leverFields)
	return submitSingle(in, t, leverSubmitSelector, "lever")
}

// applyWorkday fills what it can, clicks through at most workdayMaxPages
// pages and submits. Workday forms often need an account; those end up
// without a submit control and fail.
func applyWorkday(in flowInput, t *flowTracker) flowOutcome {
	page := in.page
	t.enter(stateSearching)
	if apply, ok := page.FirstVisible(workdayApplySelector, ControlTimeout); ok {
		if err := apply.Click(false); err == nil {
			t.enter(stateApplying)
			page.Pause(SettleDelay)
		}
	}

	t.enter(stateFilling)
	t.absorb(InferAndFill(page, in.profile, in.coverLetter))

	for i := 0; i < workdayMaxPages; i++ {
		next, ok := page.FirstVisible(workdayNextSelector, ControlTimeout)
		if !ok {
			break
		}
		if err := next.Click(false); err != nil {
			t.note(fmt.Sprintf("page %d: next click failed: %v", i+1, err))
			break
		}
		page.Pause(SettleDelay)
		t.absorb(InferAndFill(page, in.profile, in.coverLetter))
	}

	return submitSingle(in, t, workdaySubmitSelector, "workday")
}

func fillNamedFields(in flowInput, t *flowTracker, fields []namedField) {
	report := newFillReport()
	for _, f := range fields {
		fillNamed(in.page, f.selector, f.role, profileValue(f.role, in.profile, in.coverLetter), &report)
	}
	uploadResume(in.page, fileInputSelector, in.profile, &report)
	t.absorb(report)
}

// submitSingle clicks the one submit control of a linear form and verifies.
func submitSingle(in flowInput, t *flowTracker, selector, strategy string) flowOutcome {
	page := in.page
	submit, ok := page.FirstVisible(selector, ControlTimeout)
	if !ok {
		return t.fail("Submit button not found")
	}
	if err := submit.Click(false); err != nil {
		return t.fail(fmt.Sprintf("Failed to click submit: %v", err))
	}
	t.markSubmitted(strategy)
	page.Pause(PostSubmitDelay)
	return t.verify(page)
}
