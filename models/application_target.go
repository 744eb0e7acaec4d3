package models

import "strings"

// ApplicationTarget is one job to apply to.
type ApplicationTarget struct {
	ID         string   `json:"job_id" yaml:"id"`
	URL        string   `json:"job_url" yaml:"url"`
	Title      string   `json:"job_title,omitempty" yaml:"title"`
	Company    string   `json:"employer_name,omitempty" yaml:"company"`
	ApplyLinks []string `json:"apply_links,omitempty" yaml:"apply_links"`
}

// ResolveURL picks the URL to open: the primary URL, otherwise the first
// non-empty alternate application link.
func (t ApplicationTarget) ResolveURL() string {
	if u := strings.TrimSpace(t.URL); u != "" {
		return u
	}
	for _, link := range t.ApplyLinks {
		if l := strings.TrimSpace(link); l != "" {
			return l
		}
	}
	return ""
}

// Identifier is the value reported as the result's job id.
func (t ApplicationTarget) Identifier() string {
	if t.ID != "" {
		return t.ID
	}
	return t.ResolveURL()
}
