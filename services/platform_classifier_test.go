package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPlatform(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want PlatformKind
	}{
		{name: "linkedin job", url: "https://www.linkedin.com/jobs/view/12345", want: PlatformLinkedIn},
		{name: "indeed", url: "https://www.indeed.com/viewjob?jk=abc", want: PlatformJobBoard},
		{name: "greenhouse board", url: "https://boards.greenhouse.io/acme/jobs/1", want: PlatformGreenhouse},
		{name: "lever", url: "https://jobs.lever.co/acme/uuid", want: PlatformLever},
		{name: "workday", url: "https://acme.wd5.myworkdayjobs.com/en-US/careers/job/1", want: PlatformWorkday},
		{name: "ziprecruiter", url: "https://www.ziprecruiter.com/job/123", want: PlatformUnsupported},
		{name: "dice", url: "https://www.dice.com/job-detail/xyz", want: PlatformUnsupported},
		{name: "jobgether", url: "https://jobgether.com/offer/1", want: PlatformUnsupported},
		{name: "listing page", url: "https://www.glassdoor.com/Jobs/q-company-jobs.htm", want: PlatformUnsupported},
		{name: "empty", url: "", want: PlatformUnsupported},
		{name: "company site", url: "https://careers.acme.com/apply/42", want: PlatformGeneric},
		{name: "uppercase host", url: "HTTPS://WWW.LINKEDIN.COM/jobs/view/1", want: PlatformLinkedIn},
		{name: "pattern only in fragment", url: "https://careers.acme.com/job#linkedin.com", want: PlatformGeneric},
		{name: "not a url", url: "linkedin.com/jobs/view/1", want: PlatformLinkedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPlatform(tt.url))
		})
	}
}

func TestClassifyPlatform_Deterministic(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/jobs/view/1",
		"https://www.ziprecruiter.com/job/123",
		"https://example.org/careers",
	}
	for _, u := range urls {
		first := ClassifyPlatform(u)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, ClassifyPlatform(u))
		}
	}
}

func TestSkipReason(t *testing.T) {
	assert.Contains(t, SkipReason("https://www.ziprecruiter.com/job/123"), "apply directly")
	assert.Contains(t, SkipReason("https://www.dice.com/job/1"), "aggregator")
	assert.Equal(t, missingURLReason, SkipReason("  "))
	assert.Empty(t, SkipReason("https://www.linkedin.com/jobs/view/1"))
	assert.Empty(t, SkipReason("https://careers.acme.com/job"))
}
