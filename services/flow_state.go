package services

import (
	"fmt"
	"log"

	"autoapply/models"
)

type flowState int

const (
	stateIdle flowState = iota
	stateSearching
	stateApplying
	stateFilling
	stateSubmitted
	stateVerifying
	stateTerminal
)

func (s flowState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSearching:
		return "searching"
	case stateApplying:
		return "applying"
	case stateFilling:
		return "filling"
	case stateSubmitted:
		return "submitted"
	case stateVerifying:
		return "verifying"
	case stateTerminal:
		return "terminal"
	}
	return fmt.Sprintf("flowState(%d)", int(s))
}

// flowOutcome is what a platform handler hands back to the engine, which
// turns it into the single ApplicationResult for the attempt.
type flowOutcome struct {
	status      models.ApplicationStatus
	err         string
	diagnostics []string
}

// flowTracker follows one handler through its states. submitAttempted only
// becomes true through markSubmitted.
type flowTracker struct {
	platform        PlatformKind
	state           flowState
	submitAttempted bool
	report          FillReport
	notes           []string
}

func newFlowTracker(platform PlatformKind) *flowTracker {
	return &flowTracker{platform: platform, state: stateIdle, report: newFillReport()}
}

func (t *flowTracker) enter(s flowState) {
	if s == t.state {
		return
	}
	log.Printf("[%s] %s -> %s", t.platform, t.state, s)
	t.state = s
}

func (t *flowTracker) markSubmitted(strategy string) {
	t.submitAttempted = true
	t.note("submitted via " + strategy)
	t.enter(stateSubmitted)
}

func (t *flowTracker) note(msg string) {
	t.notes = append(t.notes, msg)
}

func (t *flowTracker) absorb(r FillReport) {
	t.report.merge(r)
}

func (t *flowTracker) diagnostics() []string {
	out := append([]string{}, t.notes...)
	return append(out, t.report.Diagnostics()...)
}

// fail ends the flow without a confirmed submission.
func (t *flowTracker) fail(msg string) flowOutcome {
	t.enter(stateTerminal)
	return flowOutcome{status: models.StatusFailed, err: msg, diagnostics: t.diagnostics()}
}

// verify runs the submission verifier and ends the flow.
func (t *flowTracker) verify(page Page) flowOutcome {
	t.enter(stateVerifying)
	outcome := VerifySubmission(page, t.submitAttempted)
	t.enter(stateTerminal)

	result := flowOutcome{status: outcome.Status(), diagnostics: t.diagnostics()}
	switch outcome {
	case OutcomeAmbiguous:
		result.err = "Submitted but no confirmation"
	case OutcomeNone:
		result.err = "Application was not submitted"
	}
	return result
}
