package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoapply/middleware"
	"autoapply/models"
	"autoapply/services"
	"autoapply/utils"
)

// BatchRunner is the part of services.BatchOrchestrator the API uses.
type BatchRunner interface {
	Run(ctx context.Context, targets []models.ApplicationTarget, profile models.UserProfile) (*services.BatchRun, error)
	ApplyOne(ctx context.Context, target models.ApplicationTarget, profile models.UserProfile) (models.ApplicationResult, error)
}

// ResultStore persists results per user. models.ApplicationResultModel
// implements it.
type ResultStore interface {
	CreateBatch(userID int, runID string, results []models.ApplicationResult) error
	GetByUserID(userID int, limit, offset int) ([]models.StoredApplicationResult, error)
}

type AutoApplyController struct {
	runner  BatchRunner
	results ResultStore
	maxJobs int
}

// NewAutoApplyController wires the API. results may be nil, in which case
// nothing is persisted and history is unavailable.
func NewAutoApplyController(runner BatchRunner, results ResultStore, maxJobs int) *AutoApplyController {
	if maxJobs <= 0 {
		maxJobs = 10
	}
	return &AutoApplyController{runner: runner, results: results, maxJobs: maxJobs}
}

// JobRequest mirrors the job search payload the frontend already holds.
type JobRequest struct {
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	EmployerName  string `json:"employer_name"`
	JobURL        string `json:"job_url"`
	JobApplyLink  string `json:"job_apply_link"`
	JobGoogleLink string `json:"job_google_link"`
}

// Target prefers the direct apply link, then the Google link, then the
// listing URL.
func (j JobRequest) Target() models.ApplicationTarget {
	return models.ApplicationTarget{
		ID:         j.JobID,
		URL:        j.JobApplyLink,
		Title:      j.JobTitle,
		Company:    j.EmployerName,
		ApplyLinks: []string{j.JobGoogleLink, j.JobURL},
	}
}

type ApplyJobRequest struct {
	Profile models.UserProfile `json:"profile"`
	Job     JobRequest         `json:"job"`
}

type BatchApplyRequest struct {
	Profile models.UserProfile `json:"profile"`
	Jobs    []JobRequest       `json:"jobs" binding:"required,min=1"`
}

type BatchApplyResponse struct {
	RunID   string                     `json:"run_id"`
	Counts  services.ReportCounts      `json:"counts"`
	Results []models.ApplicationResult `json:"results"`
	Skipped int                        `json:"skipped,omitempty"`
}

func (ac *AutoApplyController) ApplyToJob(c *gin.Context) {
	var req ApplyJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	profile, ok := ac.profileFor(c, req.Profile)
	if !ok {
		return
	}
	target := req.Job.Target()
	if target.ResolveURL() == "" {
		utils.BadRequestError(c, "Job has no application URL", nil)
		return
	}

	result, err := ac.runner.ApplyOne(c.Request.Context(), target, profile)
	if err != nil {
		utils.LogError("Auto-apply failed to start", err)
		utils.InternalServerError(c, "Browser automation is unavailable", err)
		return
	}

	ac.persist(c, uuid.NewString(), []models.ApplicationResult{result})
	utils.SuccessResponse(c, http.StatusOK, "Application processed", result)
}

func (ac *AutoApplyController) ApplyBatch(c *gin.Context) {
	var req BatchApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	profile, ok := ac.profileFor(c, req.Profile)
	if !ok {
		return
	}

	jobs := req.Jobs
	skipped := 0
	if len(jobs) > ac.maxJobs {
		skipped = len(jobs) - ac.maxJobs
		jobs = jobs[:ac.maxJobs]
	}
	targets := make([]models.ApplicationTarget, 0, len(jobs))
	for _, j := range jobs {
		targets = append(targets, j.Target())
	}

	run, err := ac.runner.Run(c.Request.Context(), targets, profile)
	if err != nil {
		utils.LogError("Auto-apply batch failed to start", err)
		utils.InternalServerError(c, "Browser automation is unavailable", err)
		return
	}

	ac.persist(c, run.RunID, run.Results)
	message := fmt.Sprintf("Processed %d jobs", len(run.Results))
	if skipped > 0 {
		message += fmt.Sprintf(" (%d over the limit of %d were not attempted)", skipped, ac.maxJobs)
	}
	utils.SuccessResponse(c, http.StatusOK, message, BatchApplyResponse{
		RunID:   run.RunID,
		Counts:  run.Counts,
		Results: run.Results,
		Skipped: skipped,
	})
}

func (ac *AutoApplyController) GetHistory(c *gin.Context) {
	if ac.results == nil {
		utils.ErrorResponseWithCode(c, http.StatusServiceUnavailable, "Result history is not enabled", nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		utils.BadRequestError(c, "limit must be between 1 and 200", err)
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		utils.BadRequestError(c, "offset must be zero or positive", err)
		return
	}

	history, err := ac.results.GetByUserID(c.GetInt(middleware.ContextUserID), limit, offset)
	if err != nil {
		utils.InternalServerError(c, "Failed to load application history", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Application history", history)
}

// profileFor fills the email from the token when the request left it out,
// then checks the required identity fields.
func (ac *AutoApplyController) profileFor(c *gin.Context, profile models.UserProfile) (models.UserProfile, bool) {
	if profile.Email == "" {
		profile.Email = c.GetString(middleware.ContextUserEmail)
	}
	if missing := profile.MissingFields(); len(missing) > 0 {
		utils.BadRequestError(c, "Profile is incomplete", fmt.Errorf("missing fields: %v", missing))
		return profile, false
	}
	return profile, true
}

// persist stores results best-effort; the user still gets them in the response.
func (ac *AutoApplyController) persist(c *gin.Context, runID string, results []models.ApplicationResult) {
	if ac.results == nil {
		return
	}
	userID := c.GetInt(middleware.ContextUserID)
	if err := ac.results.CreateBatch(userID, runID, results); err != nil {
		utils.LogError("Failed to save application results", err, utils.Fields{"user_id": userID, "run_id": runID})
	}
}

// RegisterRoutes mounts the auto-apply API under /api/auto-apply.
func (ac *AutoApplyController) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc, applyLimit, generalLimit gin.HandlerFunc) {
	group := r.Group("/api/auto-apply", auth)
	group.POST("/job", applyLimit, middleware.ValidateJSON(), ac.ApplyToJob)
	group.POST("/batch", applyLimit, middleware.ValidateJSON(), ac.ApplyBatch)
	group.GET("/history", generalLimit, ac.GetHistory)
}
