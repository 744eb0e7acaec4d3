package services

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/cases"

	"autoapply/models"
)

// FieldRole is the semantic meaning inferred for a form control.
type FieldRole string

const (
	RoleFile        FieldRole = "file"
	RoleEmail       FieldRole = "email"
	RolePhone       FieldRole = "phone"
	RoleFirstName   FieldRole = "first_name"
	RoleLastName    FieldRole = "last_name"
	RoleFullName    FieldRole = "full_name"
	RoleLinkedIn    FieldRole = "linkedin"
	RoleGitHub      FieldRole = "github"
	RolePortfolio   FieldRole = "portfolio"
	RoleCoverLetter FieldRole = "cover_letter"
	RoleYears       FieldRole = "years_of_experience"
	RoleUnknown     FieldRole = "unknown"

	// RoleCompany is only bound by platform field names, never inferred.
	RoleCompany FieldRole = "current_company"
)

const (
	textFieldSelector = `input:not([type="checkbox"]):not([type="radio"]):not([type="submit"]):not([type="button"]):not([type="hidden"]):not([type="image"]):not([type="reset"]), textarea`
	selectSelector    = "select"
	checkboxSelector  = `input[type="checkbox"]`
)

type fieldRule struct {
	role      FieldRole
	inputType string

	// keywords match when any one appears in the signal.
	keywords []string

	// all matches when every group has at least one word in the signal.
	all [][]string

	// bare matches when every token of the signal is this word.
	bare string
}

func (r fieldRule) matches(signal, inputType string) bool {
	if r.inputType != "" && r.inputType == inputType {
		return true
	}
	for _, keyword := range r.keywords {
		if strings.Contains(signal, keyword) {
			return true
		}
	}
	if len(r.all) > 0 && containsEach(signal, r.all) {
		return true
	}
	if r.bare != "" {
		tokens := strings.Fields(signal)
		if len(tokens) == 0 {
			return false
		}
		for _, tok := range tokens {
			if tok != r.bare {
				return false
			}
		}
		return true
	}
	return false
}

func containsEach(signal string, groups [][]string) bool {
	for _, group := range groups {
		found := false
		for _, word := range group {
			if strings.Contains(signal, word) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fieldRules is walked in order and the first match wins, so "first name"
// never falls through to the full-name rule. Name roles need "name" next to
// a qualifier; "company name" or "username" stay unknown.
var fieldRules = []fieldRule{
	{role: RoleFile, inputType: "file"},
	{role: RoleEmail, inputType: "email", keywords: []string{"email", "e-mail"}},
	{role: RolePhone, inputType: "tel", keywords: []string{"phone", "mobile"}},
	{role: RoleFirstName, all: [][]string{{"first", "given"}, {"name"}}},
	{role: RoleLastName, keywords: []string{"surname"}, all: [][]string{{"last", "family"}, {"name"}}},
	{role: RoleFullName, all: [][]string{{"full"}, {"name"}}, bare: "name"},
	{role: RoleLinkedIn, keywords: []string{"linkedin"}},
	{role: RoleGitHub, keywords: []string{"github"}},
	{role: RolePortfolio, keywords: []string{"portfolio", "website", "personal site"}},
	{role: RoleCoverLetter, keywords: []string{"cover", "letter", "message", "motivation"}},
	{role: RoleYears, keywords: []string{"years", "experience"}},
}

var consentKeywords = []string{"agree", "terms", "privacy"}

// ClassifyField infers a role from the folded signal string of a control and
// its type attribute. It is total: anything unmatched is RoleUnknown.
func ClassifyField(signal, inputType string) FieldRole {
	inputType = strings.ToLower(strings.TrimSpace(inputType))
	for _, rule := range fieldRules {
		if rule.matches(signal, inputType) {
			return rule.role
		}
	}
	return RoleUnknown
}

// fieldSignal concatenates every descriptive attribute of an element,
// case-folded.
func fieldSignal(el Element) string {
	parts := []string{
		el.Attribute("name"),
		el.Attribute("id"),
		el.Attribute("placeholder"),
		el.LabelText(),
		el.Attribute("aria-label"),
	}
	return cases.Fold().String(strings.Join(parts, " "))
}

// CoverLetterSource yields the cover letter text on demand.
type CoverLetterSource func() string

// FieldFillError records one control that could not be filled.
type FieldFillError struct {
	Role  FieldRole
	Field string
	Op    string
	Err   error
}

func (e FieldFillError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Role, e.Field, e.Err)
}

func (e FieldFillError) Unwrap() error { return e.Err }

// FillReport summarizes one pass of heuristic filling.
type FillReport struct {
	Filled   map[FieldRole]int
	Selected int
	Checked  int
	Skipped  int
	Errors   []FieldFillError
}

func newFillReport() FillReport {
	return FillReport{Filled: map[FieldRole]int{}}
}

// Total is the number of controls that were set.
func (r FillReport) Total() int {
	n := r.Selected + r.Checked
	for _, c := range r.Filled {
		n += c
	}
	return n
}

// Diagnostics renders the per-field errors for the result record.
func (r FillReport) Diagnostics() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

func (r *FillReport) merge(other FillReport) {
	if r.Filled == nil {
		r.Filled = map[FieldRole]int{}
	}
	for role, n := range other.Filled {
		r.Filled[role] += n
	}
	r.Selected += other.Selected
	r.Checked += other.Checked
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *FillReport) fail(role FieldRole, field, op string, err error) {
	r.Errors = append(r.Errors, FieldFillError{Role: role, Field: field, Op: op, Err: err})
}

// InferAndFill fills every visible control it can attribute to a profile
// value. Errors on one control never stop the others.
func InferAndFill(page Page, profile models.UserProfile, coverLetter CoverLetterSource) FillReport {
	report := newFillReport()

	fields, err := page.Query(textFieldSelector)
	if err != nil {
		report.fail(RoleUnknown, textFieldSelector, "query", err)
	}
	for _, el := range fields {
		if !el.Visible() {
			continue
		}
		fillField(el, profile, coverLetter, &report)
	}

	selects, err := page.Query(selectSelector)
	if err != nil {
		report.fail(RoleUnknown, selectSelector, "query", err)
	}
	for _, el := range selects {
		if !el.Visible() || el.OptionCount() <= 1 {
			continue
		}
		// Index 1 skips the usual placeholder option. This is a guess and
		// may pick a wrong answer on demographic or yes/no questions.
		if err := el.SelectIndex(1); err != nil {
			report.fail(RoleUnknown, describe(el), "select", err)
			continue
		}
		report.Selected++
	}

	boxes, err := page.Query(checkboxSelector)
	if err != nil {
		report.fail(RoleUnknown, checkboxSelector, "query", err)
	}
	for _, el := range boxes {
		if !el.Visible() || !isConsentCheckbox(el) {
			continue
		}
		if err := el.Check(); err != nil {
			report.fail(RoleUnknown, describe(el), "check", err)
			continue
		}
		report.Checked++
	}

	log.Printf("Filled %d fields (%d errors)", report.Total(), len(report.Errors))
	return report
}

func fillField(el Element, profile models.UserProfile, coverLetter CoverLetterSource, report *FillReport) {
	role := ClassifyField(fieldSignal(el), el.Attribute("type"))
	if role == RoleUnknown {
		report.Skipped++
		return
	}

	if role == RoleFile {
		if profile.ResumePath == "" {
			report.Skipped++
			return
		}
		if err := el.SetFiles(profile.ResumePath); err != nil {
			report.fail(role, describe(el), "upload", err)
			return
		}
		report.Filled[role]++
		return
	}

	value := profileValue(role, profile, coverLetter)
	if value == "" {
		report.Skipped++
		return
	}
	if err := el.Fill(value); err != nil {
		report.fail(role, describe(el), "fill", err)
		return
	}
	report.Filled[role]++
}

func profileValue(role FieldRole, profile models.UserProfile, coverLetter CoverLetterSource) string {
	switch role {
	case RoleEmail:
		return profile.Email
	case RolePhone:
		return profile.Phone
	case RoleFirstName:
		return profile.FirstName()
	case RoleLastName:
		return profile.LastName()
	case RoleFullName:
		return profile.Name
	case RoleLinkedIn:
		return profile.LinkedInURL
	case RoleGitHub:
		return profile.GitHubURL
	case RolePortfolio:
		return profile.PortfolioURL
	case RoleCoverLetter:
		if profile.CoverLetter != "" {
			return profile.CoverLetter
		}
		if coverLetter != nil {
			return coverLetter()
		}
		return ""
	case RoleYears:
		return profile.YearsString()
	case RoleCompany:
		return profile.CurrentCompany
	}
	return ""
}

func isConsentCheckbox(el Element) bool {
	text := cases.Fold().String(el.LabelText() + " " + el.Attribute("aria-label"))
	for _, keyword := range consentKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func describe(el Element) string {
	for _, attr := range []string{"name", "id", "aria-label"} {
		if v := el.Attribute(attr); v != "" {
			return v
		}
	}
	return "unnamed"
}

// fillNamed fills every visible control matching selector with value.
// Used by flows that know the exact field names of a platform.
func fillNamed(page Page, selector string, role FieldRole, value string, report *FillReport) {
	if value == "" {
		report.Skipped++
		return
	}
	elements, err := page.Query(selector)
	if err != nil {
		report.fail(role, selector, "query", err)
		return
	}
	for _, el := range elements {
		if !el.Visible() {
			continue
		}
		if err := el.Fill(value); err != nil {
			report.fail(role, selector, "fill", err)
			continue
		}
		report.Filled[role]++
	}
}

// uploadResume attaches the résumé to the first matching file input.
func uploadResume(page Page, selector string, profile models.UserProfile, report *FillReport) {
	if profile.ResumePath == "" {
		return
	}
	elements, err := page.Query(selector)
	if err != nil {
		report.fail(RoleFile, selector, "query", err)
		return
	}
	for _, el := range elements {
		if err := el.SetFiles(profile.ResumePath); err != nil {
			report.fail(RoleFile, selector, "upload", err)
			continue
		}
		report.Filled[RoleFile]++
		page.Pause(UploadDelay)
		return
	}
}
