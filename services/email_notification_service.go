package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"autoapply/config"
	"autoapply/models"
)

// Notifier delivers the summary of a finished batch.
type Notifier interface {
	SendBatchReport(ctx context.Context, to string, report BatchReport) error
}

// BatchReport groups the results of one batch by status.
type BatchReport struct {
	RunID      string
	Applicant  string
	StartedAt  time.Time
	FinishedAt time.Time
	Successful []models.ApplicationResult
	Partial    []models.ApplicationResult
	Failed     []models.ApplicationResult
}

type ReportCounts struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Partial    int `json:"partial"`
	Failed     int `json:"failed"`
}

func NewBatchReport(runID, applicant string, startedAt, finishedAt time.Time, results []models.ApplicationResult) BatchReport {
	report := BatchReport{
		RunID:      runID,
		Applicant:  applicant,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	for _, r := range results {
		switch r.Status {
		case models.StatusSuccess:
			report.Successful = append(report.Successful, r)
		case models.StatusPartial:
			report.Partial = append(report.Partial, r)
		default:
			report.Failed = append(report.Failed, r)
		}
	}
	return report
}

func (r BatchReport) Counts() ReportCounts {
	return ReportCounts{
		Total:      len(r.Successful) + len(r.Partial) + len(r.Failed),
		Successful: len(r.Successful),
		Partial:    len(r.Partial),
		Failed:     len(r.Failed),
	}
}

func (r BatchReport) Subject() string {
	return fmt.Sprintf("Auto-apply report: %d of %d applications submitted", len(r.Successful), r.Counts().Total)
}

// Text renders the plain-text body.
func (r BatchReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nHere is the result of your application batch.\n", r.Applicant)

	writeGroup := func(title string, results []models.ApplicationResult, withError bool) {
		fmt.Fprintf(&b, "\n%s: %d\n", title, len(results))
		for _, res := range results {
			fmt.Fprintf(&b, "  - %s at %s", res.JobTitle, res.Company)
			if withError && res.Error != "" {
				fmt.Fprintf(&b, " (%s)", res.Error)
			}
			if !withError && res.SubmittedAt != nil {
				fmt.Fprintf(&b, " (submitted %s)", res.SubmittedAt.Format("January 2, 2006 at 3:04 PM"))
			}
			b.WriteString("\n")
		}
	}
	writeGroup("Successfully applied", r.Successful, false)
	if len(r.Partial) > 0 {
		writeGroup("Partially completed", r.Partial, true)
	}
	if len(r.Failed) > 0 {
		writeGroup("Failed", r.Failed, true)
	}

	b.WriteString("\nNext steps:\n")
	b.WriteString("  - Check your inbox for confirmations from the companies\n")
	b.WriteString("  - Finish partially completed applications by hand\n")
	b.WriteString("  - Follow up on applications after 3-5 days\n")
	return b.String()
}

var reportTemplate = template.Must(template.New("report").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #6366f1;">Job Application Report</h2>
<div style="background: #f0fdf4; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #16a34a; margin: 0;">Successfully Applied: {{len .Successful}}</h3>
{{range .Successful}}<div style="margin: 10px 0; padding: 10px; background: white; border-radius: 4px;"><strong>{{.JobTitle}}</strong> at {{.Company}}{{if .SubmittedAt}}<br><small style="color: #666;">Submitted: {{.SubmittedAt.Format "Jan 2, 2006 3:04 PM"}}</small>{{end}}</div>
{{end}}</div>
{{if .Partial}}<div style="background: #fef3c7; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #d97706; margin: 0;">Partially Completed: {{len .Partial}}</h3>
{{range .Partial}}<div style="margin: 10px 0; padding: 10px; background: white; border-radius: 4px;"><strong>{{.JobTitle}}</strong> at {{.Company}}<br><small style="color: #666;">{{.Error}}</small></div>
{{end}}</div>
{{end}}{{if .Failed}}<div style="background: #fee2e2; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #dc2626; margin: 0;">Failed: {{len .Failed}}</h3>
{{range .Failed}}<div style="margin: 10px 0; padding: 10px; background: white; border-radius: 4px;"><strong>{{.JobTitle}}</strong> at {{.Company}}<br><small style="color: #666;">{{.Error}}</small></div>
{{end}}</div>
{{end}}<p style="margin-top: 30px; color: #666;"><strong>Next Steps:</strong><br>
&bull; Check your inbox for confirmations from the companies<br>
&bull; Finish partially completed applications by hand<br>
&bull; Follow up on applications after 3-5 days</p>
<p style="color: #999; font-size: 12px; margin-top: 30px;">This is an automated message. Do not reply to this email.</p>
</div>`))

// HTML renders the HTML body. Job titles and errors come from third-party
// pages and are escaped by html/template.
func (r BatchReport) HTML() (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailNotificationService struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewEmailNotificationService(cfg config.SMTPConfig) *EmailNotificationService {
	return &EmailNotificationService{cfg: cfg, send: smtp.SendMail}
}

// SendBatchReport mails the report to the applicant. Without SMTP settings
// the report is only logged.
func (s *EmailNotificationService) SendBatchReport(ctx context.Context, to string, report BatchReport) error {
	if to == "" {
		return fmt.Errorf("no recipient for batch report")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.cfg.Enabled() {
		log.Printf("EMAIL NOTIFICATION (SMTP not configured):")
		log.Printf("To: %s", to)
		log.Printf("Subject: %s", report.Subject())
		log.Printf("Body: %s", report.Text())
		return nil
	}

	msg, err := s.compose(to, report)
	if err != nil {
		return err
	}

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send batch report: %w", err)
	}

	log.Printf("Batch report sent to %s", to)
	return nil
}

// compose builds a multipart/alternative message with text and HTML parts.
func (s *EmailNotificationService) compose(to string, report BatchReport) ([]byte, error) {
	htmlBody, err := report.HTML()
	if err != nil {
		return nil, err
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: "Auto Apply", Address: s.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Name: report.Applicant, Address: to}})
	h.SetSubject(report.Subject())
	if report.RunID != "" {
		h.Set("X-Batch-Run-Id", report.RunID)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create message body: %w", err)
	}

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain", report.Text()},
		{"text/html", htmlBody},
	}
	for _, p := range parts {
		var ph mail.InlineHeader
		ph.SetContentType(p.contentType, map[string]string{"charset": "utf-8"})
		ph.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := tw.CreatePart(ph)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s part: %w", p.contentType, err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
