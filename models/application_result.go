package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ApplicationStatus string

const (
	StatusSuccess ApplicationStatus = "success"
	StatusPartial ApplicationStatus = "partial"
	StatusFailed  ApplicationStatus = "failed"
)

// MaxErrorLength bounds result error messages so batch reports stay compact.
const MaxErrorLength = 100

const (
	UnknownPosition = "Unknown Position"
	UnknownCompany  = "Unknown Company"
)

// ApplicationResult is the outcome of one application attempt.
type ApplicationResult struct {
	JobID        string            `json:"job_id"`
	JobTitle     string            `json:"job_title"`
	Company      string            `json:"company"`
	JobURL       string            `json:"job_url,omitempty"`
	Platform     string            `json:"platform,omitempty"`
	Status       ApplicationStatus `json:"status"`
	SubmittedAt  *time.Time        `json:"submitted_at,omitempty"`
	Error        string            `json:"error,omitempty"`
	EvidencePath string            `json:"evidence_path,omitempty"`
	Diagnostics  []string          `json:"diagnostics,omitempty"`
}

// ResultParams collects everything known about an attempt before its
// result is built.
type ResultParams struct {
	JobID        string
	JobTitle     string
	Company      string
	JobURL       string
	Platform     string
	Status       ApplicationStatus
	SubmittedAt  *time.Time
	Error        string
	EvidencePath string
	Diagnostics  []string
}

// NewApplicationResult builds the immutable result of one attempt.
func NewApplicationResult(p ResultParams) ApplicationResult {
	status := p.Status
	switch status {
	case StatusSuccess, StatusPartial, StatusFailed:
	default:
		status = StatusFailed
	}

	title := p.JobTitle
	if title == "" {
		title = UnknownPosition
	}
	company := p.Company
	if company == "" {
		company = UnknownCompany
	}

	var diagnostics []string
	if len(p.Diagnostics) > 0 {
		diagnostics = append([]string(nil), p.Diagnostics...)
	}

	return ApplicationResult{
		JobID:        p.JobID,
		JobTitle:     title,
		Company:      company,
		JobURL:       p.JobURL,
		Platform:     p.Platform,
		Status:       status,
		SubmittedAt:  p.SubmittedAt,
		Error:        TruncateError(p.Error),
		EvidencePath: p.EvidencePath,
		Diagnostics:  diagnostics,
	}
}

// TruncateError cuts a message to MaxErrorLength runes.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxErrorLength {
		return msg
	}
	return string(runes[:MaxErrorLength])
}

// StoredApplicationResult is a persisted result row.
type StoredApplicationResult struct {
	ID        int               `json:"id"`
	UserID    int               `json:"user_id"`
	RunID     string            `json:"run_id"`
	Result    ApplicationResult `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

type ApplicationResultModel struct {
	DB *sql.DB
}

func NewApplicationResultModel(db *sql.DB) *ApplicationResultModel {
	return &ApplicationResultModel{DB: db}
}

// CreateTable creates the results table if it does not exist.
func (m *ApplicationResultModel) CreateTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS job_application_results (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			run_id VARCHAR(64) NOT NULL,
			job_id TEXT NOT NULL,
			job_title TEXT NOT NULL,
			company TEXT NOT NULL,
			job_url TEXT,
			platform VARCHAR(32),
			status VARCHAR(16) NOT NULL,
			submitted_at TIMESTAMP,
			error_message VARCHAR(100),
			evidence_path TEXT,
			diagnostics TEXT[],
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_job_application_results_user ON job_application_results(user_id, created_at DESC);
	`
	_, err := m.DB.Exec(query)
	return err
}

func (m *ApplicationResultModel) Create(userID int, runID string, r ApplicationResult) (*StoredApplicationResult, error) {
	stored := &StoredApplicationResult{UserID: userID, RunID: runID, Result: r}

	var submittedAt sql.NullTime
	if r.SubmittedAt != nil {
		submittedAt = sql.NullTime{Time: *r.SubmittedAt, Valid: true}
	}

	query := `
		INSERT INTO job_application_results (user_id, run_id, job_id, job_title, company, job_url, platform, status, submitted_at, error_message, evidence_path, diagnostics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	err := m.DB.QueryRow(query, userID, runID, r.JobID, r.JobTitle, r.Company, r.JobURL, r.Platform,
		string(r.Status), submittedAt, r.Error, r.EvidencePath, pq.StringArray(r.Diagnostics), time.Now()).
		Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// CreateBatch stores every result of one run.
func (m *ApplicationResultModel) CreateBatch(userID int, runID string, results []ApplicationResult) error {
	for _, r := range results {
		if _, err := m.Create(userID, runID, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *ApplicationResultModel) GetByUserID(userID int, limit, offset int) ([]StoredApplicationResult, error) {
	results := []StoredApplicationResult{}
	query := `
		SELECT id, user_id, run_id, job_id, job_title, company, COALESCE(job_url, ''), COALESCE(platform, ''),
		       status, submitted_at, COALESCE(error_message, ''), COALESCE(evidence_path, ''), diagnostics, created_at
		FROM job_application_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := m.DB.Query(query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s StoredApplicationResult
		var status string
		var submittedAt sql.NullTime
		var diagnostics pq.StringArray
		err := rows.Scan(
			&s.ID, &s.UserID, &s.RunID, &s.Result.JobID, &s.Result.JobTitle, &s.Result.Company,
			&s.Result.JobURL, &s.Result.Platform, &status, &submittedAt, &s.Result.Error,
			&s.Result.EvidencePath, &diagnostics, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Result.Status = ApplicationStatus(status)
		if submittedAt.Valid {
			t := submittedAt.Time
			s.Result.SubmittedAt = &t
		}
		if len(diagnostics) > 0 {
			s.Result.Diagnostics = []string(diagnostics)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
