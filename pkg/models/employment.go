package models

import (
	"regexp"
	"strings"
)

// Employment type codes used in documents and filters.
const (
	EmploymentFullTime   = "FULL_TIME"
	EmploymentPartTime   = "PART_TIME"
	EmploymentContract   = "CONTRACT"
	EmploymentInternship = "INTERNSHIP"
	EmploymentRemote     = "REMOTE"
	EmploymentHybrid     = "HYBRID"
	EmploymentOnSite     = "ON_SITE"
)

type employmentPattern struct {
	re   *regexp.Regexp
	code string
}

// Scrapers emit free-form employment strings; the order matters because the
// first matching pattern wins.
var employmentPatterns = []employmentPattern{
	{regexp.MustCompile(`full[\s-]?time|full|ft`), EmploymentFullTime},
	{regexp.MustCompile(`part[\s-]?time|pt`), EmploymentPartTime},
	{regexp.MustCompile(`contract|contractor|consulting`), EmploymentContract},
	{regexp.MustCompile(`internship|intern`), EmploymentInternship},
	{regexp.MustCompile(`remote|work from home|wfh`), EmploymentRemote},
	{regexp.MustCompile(`hybrid|flexible`), EmploymentHybrid},
	{regexp.MustCompile(`on[\s-]?site|onsite|in[\s-]?office`), EmploymentOnSite},
}

// NormalizeEmploymentType maps a raw scraped employment string onto the
// canonical codes. Unrecognized input returns "".
func NormalizeEmploymentType(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	for _, p := range employmentPatterns {
		if p.re.MatchString(raw) {
			return p.code
		}
	}
	return ""
}
