package models

import (
	"strconv"
	"strings"
)

// UserProfile is the applicant data the engine fills into forms.
// It is supplied once per batch and never modified by the engine.
type UserProfile struct {
	Name              string   `json:"name" yaml:"name"`
	Email             string   `json:"email" yaml:"email"`
	Phone             string   `json:"phone" yaml:"phone"`
	ResumePath        string   `json:"resume_path,omitempty" yaml:"resume_path"`
	LinkedInURL       string   `json:"linkedin_url,omitempty" yaml:"linkedin_url"`
	GitHubURL         string   `json:"github_url,omitempty" yaml:"github_url"`
	PortfolioURL      string   `json:"portfolio_url,omitempty" yaml:"portfolio_url"`
	YearsOfExperience int      `json:"years_of_experience,omitempty" yaml:"years_of_experience"`
	Skills            []string `json:"skills,omitempty" yaml:"skills"`
	CoverLetter       string   `json:"cover_letter,omitempty" yaml:"cover_letter"`
	CurrentCompany    string   `json:"current_company,omitempty" yaml:"current_company"`
	CurrentTitle      string   `json:"current_title,omitempty" yaml:"current_title"`
}

// FirstName returns the first token of the full name.
func (p UserProfile) FirstName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns everything after the first token. Single-token names
// are returned whole so a required last-name field is never left blank.
func (p UserProfile) LastName() string {
	parts := strings.Fields(p.Name)
	if len(parts) > 1 {
		return strings.Join(parts[1:], " ")
	}
	return strings.TrimSpace(p.Name)
}

// YearsString is empty when no experience was given.
func (p UserProfile) YearsString() string {
	if p.YearsOfExperience <= 0 {
		return ""
	}
	return strconv.Itoa(p.YearsOfExperience)
}

// MissingFields lists the identity fields a batch cannot run without.
func (p UserProfile) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}
