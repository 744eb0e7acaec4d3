package services

import (
	"net/url"
	"strings"
)

// PlatformKind names the submission strategy used for a target URL.
type PlatformKind string

const (
	PlatformLinkedIn    PlatformKind = "linkedin"
	PlatformJobBoard    PlatformKind = "job_board"
	PlatformGreenhouse  PlatformKind = "greenhouse"
	PlatformLever       PlatformKind = "lever"
	PlatformWorkday     PlatformKind = "workday"
	PlatformUnsupported PlatformKind = "unsupported"
	PlatformGeneric     PlatformKind = "generic"
)

const (
	aggregatorSkipReason = "Job aggregator site - please apply directly on the company website"
	listingSkipReason    = "Search or listing page, not a job posting - please apply directly"
	missingURLReason     = "No application URL"
)

type platformRule struct {
	kind   PlatformKind
	any    []string
	reason string
}

// platformRules is checked in order; first match wins. Patterns are matched
// against host+path, lowercased.
var platformRules = []platformRule{
	{kind: PlatformUnsupported, any: []string{"ziprecruiter.com", "dice.com", "jobgether.com"}, reason: aggregatorSkipReason},
	{kind: PlatformUnsupported, any: []string{"q-company", "/jobs.html"}, reason: listingSkipReason},
	{kind: PlatformLinkedIn, any: []string{"linkedin.com"}},
	{kind: PlatformJobBoard, any: []string{"indeed.com"}},
	{kind: PlatformGreenhouse, any: []string{"greenhouse.io"}},
	{kind: PlatformLever, any: []string{"lever.co"}},
	{kind: PlatformWorkday, any: []string{"myworkdayjobs.com", "workday.com"}},
}

// ClassifyPlatform maps a target URL to the strategy that handles it.
// It never fails: anything unrecognised is generic.
func ClassifyPlatform(rawURL string) PlatformKind {
	return resolvePlatform(rawURL).kind
}

// SkipReason explains why an unsupported URL is not attempted. It is empty
// for every other kind.
func SkipReason(rawURL string) string {
	return resolvePlatform(rawURL).reason
}

func resolvePlatform(rawURL string) platformRule {
	target := matchTarget(rawURL)
	if target == "" {
		return platformRule{kind: PlatformUnsupported, reason: missingURLReason}
	}
	for _, rule := range platformRules {
		for _, pattern := range rule.any {
			if strings.Contains(target, pattern) {
				return rule
			}
		}
	}
	return platformRule{kind: PlatformGeneric}
}

// matchTarget reduces a URL to host+path+query so patterns cannot match
// inside a fragment. Unparseable input is matched as given.
func matchTarget(rawURL string) string {
	raw := strings.ToLower(strings.TrimSpace(rawURL))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	target := u.Host + u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}
