package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"autoapply/models"
	"autoapply/utils"
)

const (
	jobTitleSelector = `h1, .job-title, [class*="job-title"]`
	companySelector  = `.company-name, [class*="company"], [class*="employer"]`
)

// flowInput is everything a platform handler may use during one attempt.
type flowInput struct {
	ctx         context.Context
	page        Page
	target      models.ApplicationTarget
	profile     models.UserProfile
	content     ContentGenerator
	coverLetter CoverLetterSource
}

type flowHandler func(in flowInput, t *flowTracker) flowOutcome

var platformHandlers = map[PlatformKind]flowHandler{
	PlatformLinkedIn:   applyLinkedIn,
	PlatformJobBoard:   applyJobBoard,
	PlatformGreenhouse: applyGreenhouse,
	PlatformLever:      applyLever,
	PlatformWorkday:    applyWorkday,
	PlatformGeneric:    applyGeneric,
}

// ApplicationEngine runs one application attempt end to end.
type ApplicationEngine struct {
	sessions SessionProvider
	content  ContentGenerator
	evidence EvidenceStore
	logger   *utils.Logger
	now      func() time.Time
}

type EngineOption func(*ApplicationEngine)

// WithEvidenceStore uploads a screenshot of every attempt that reached a page.
func WithEvidenceStore(store EvidenceStore) EngineOption {
	return func(e *ApplicationEngine) {
		e.evidence = store
	}
}

// WithLogger sends the engine's structured entries to logger, tagged with
// the engine component.
func WithLogger(logger *utils.Logger) EngineOption {
	return func(e *ApplicationEngine) {
		e.logger = logger.Named("application_engine")
	}
}

func NewApplicationEngine(sessions SessionProvider, content ContentGenerator, opts ...EngineOption) *ApplicationEngine {
	e := &ApplicationEngine{
		sessions: sessions,
		content:  content,
		logger:   utils.GlobalLogger.Named("application_engine"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyToJob always returns exactly one result. Unsupported targets are
// answered without opening a session; every other failure, including a
// panic inside a flow, becomes a failed result.
func (e *ApplicationEngine) ApplyToJob(ctx context.Context, target models.ApplicationTarget, profile models.UserProfile) models.ApplicationResult {
	url := target.ResolveURL()
	platform := ClassifyPlatform(url)
	params := models.ResultParams{
		JobID:    target.Identifier(),
		JobTitle: target.Title,
		Company:  target.Company,
		JobURL:   url,
		Platform: string(platform),
	}

	if platform == PlatformUnsupported {
		e.logger.Info("Skipping unsupported job", utils.Fields{"job_url": url})
		return failedResult(params, SkipReason(url))
	}
	if err := ctx.Err(); err != nil {
		return failedResult(params, "Cancelled before start")
	}

	page, err := e.sessions.OpenSession(ctx)
	if err != nil {
		e.logger.Error("Failed to open browser session", err, utils.Fields{"job_url": url})
		return failedResult(params, fmt.Sprintf("Failed to open browser session: %v", err))
	}
	defer func() {
		if err := e.sessions.CloseSession(page); err != nil {
			log.Printf("Failed to close session for %s: %v", url, err)
		}
	}()

	e.logger.Info("Applying to job", utils.Fields{"job_url": url, "platform": platform})
	tracker := newFlowTracker(platform)
	outcome := e.attempt(ctx, page, platform, target, profile, tracker)

	e.fillMetadata(page, &params)
	params.Status = outcome.status
	params.Error = outcome.err
	params.Diagnostics = outcome.diagnostics
	if outcome.status == models.StatusSuccess {
		submitted := e.now()
		params.SubmittedAt = &submitted
	}
	params.EvidencePath = e.captureEvidence(ctx, page, params.JobID)

	result := models.NewApplicationResult(params)
	e.logger.Info("Application finished", utils.Fields{
		"job_url":  url,
		"platform": platform,
		"status":   result.Status,
		"error":    result.Error,
	})
	return result
}

func (e *ApplicationEngine) attempt(ctx context.Context, page Page, platform PlatformKind, target models.ApplicationTarget,
	profile models.UserProfile, tracker *flowTracker) (out flowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while applying to %s: %v", target.ResolveURL(), r)
			out = tracker.fail(fmt.Sprintf("Unexpected error: %v", r))
		}
	}()

	if err := page.Goto(target.ResolveURL()); err != nil {
		return tracker.fail(err.Error())
	}
	page.Pause(SettleDelay)

	handler, ok := platformHandlers[platform]
	if !ok {
		handler = applyGeneric
	}
	return handler(flowInput{
		ctx:         ctx,
		page:        page,
		target:      target,
		profile:     profile,
		content:     e.content,
		coverLetter: e.coverLetterSource(ctx, profile),
	}, tracker)
}

// coverLetterSource generates the letter at most once per attempt, and only
// if a form actually asks for one.
func (e *ApplicationEngine) coverLetterSource(ctx context.Context, profile models.UserProfile) CoverLetterSource {
	var (
		once   sync.Once
		letter string
	)
	return func() string {
		once.Do(func() {
			if e.content == nil {
				letter = FallbackCoverLetter(profile)
				return
			}
			letter = e.content.GenerateCoverLetter(ctx, profile)
		})
		return letter
	}
}

// fillMetadata reads title and company off the page when the target did not
// carry them. Target metadata always wins.
func (e *ApplicationEngine) fillMetadata(page Page, params *models.ResultParams) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while reading job metadata: %v", r)
		}
	}()
	if params.JobTitle == "" {
		params.JobTitle = firstVisibleText(page, jobTitleSelector)
	}
	if params.Company == "" {
		params.Company = firstVisibleText(page, companySelector)
	}
}

func (e *ApplicationEngine) captureEvidence(ctx context.Context, page Page, jobID string) (location string) {
	if e.evidence == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while capturing evidence: %v", r)
			location = ""
		}
	}()

	png, err := page.Screenshot()
	if err != nil {
		log.Printf("Failed to take screenshot: %v", err)
		return ""
	}
	location, err = e.evidence.SaveScreenshot(ctx, jobID, png)
	if err != nil {
		e.logger.Warn("Failed to store evidence", utils.Fields{"job_id": jobID, "error": err.Error()})
		return ""
	}
	return location
}

func firstVisibleText(page Page, selector string) string {
	el, ok := page.FirstVisible(selector, ProbeTimeout)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(el.Text()), " ")
}

func failedResult(params models.ResultParams, msg string) models.ApplicationResult {
	params.Status = models.StatusFailed
	params.Error = msg
	return models.NewApplicationResult(params)
}
