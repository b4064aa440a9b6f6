package index

import (
	"fmt"
	"strings"
	"time"

	"jobpulse/pkg/models"
)

// Accepted posted-date layouts, most common first. Output is always the
// ISO form the index mapping expects.
var postedDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

const postedDateFormat = "2006-01-02T15:04:05"

// BuildDocument projects a job and its completed analysis into a search
// document. It refuses jobs whose analysis has not completed, so partial
// results never leak into the index.
func BuildDocument(job *models.Job, analysis *models.Analysis) (*models.SearchDocument, error) {
	if analysis == nil {
		return nil, fmt.Errorf("job %s has no analysis", job.ID)
	}
	if analysis.Status != models.StatusCompleted {
		return nil, fmt.Errorf("job %s analysis is %s, not completed", job.ID, analysis.Status)
	}

	doc := &models.SearchDocument{
		ID:              job.ID,
		Title:           job.Title,
		FullDescription: job.FullDescription,
		URL:             job.URL,
		Location:        job.Location,
		Locations:       analysis.Locations,
		EmploymentType:  models.NormalizeEmploymentType(job.EmploymentType),
		PostedDate:      formatPostedDate(job.PostedDate),
		IsRemote:        job.IsRemote,
		Expired:         job.Expired,
		SkillTags:       splitSkillTags(analysis.SkillTags),
		Summary:         analysis.Summary,
		SalaryRange:     buildSalaryRange(analysis),
	}

	if job.Company != nil {
		doc.Company = models.CompanyBrief{
			ID:      job.Company.ID,
			Name:    job.Company.Name,
			IconURL: job.Company.IconURL,
		}
	} else {
		doc.Company = models.CompanyBrief{ID: job.CompanyID}
	}

	if analysis.ExperienceLevel != nil {
		doc.ExperienceLevel = string(*analysis.ExperienceLevel)
	}

	return doc, nil
}

// formatPostedDate normalizes a stored posted date to ISO. Unparseable
// dates are dropped rather than rejected, so one bad row cannot block a
// document.
func formatPostedDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(postedDateFormat)
		}
	}
	return ""
}

// splitSkillTags turns the comma-joined storage form back into a list.
// The result is never nil so the document always carries a JSON array.
func splitSkillTags(joined string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(joined, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// buildSalaryRange returns nil when the analysis produced no salary data
// at all, so documents without salary omit the object entirely.
func buildSalaryRange(analysis *models.Analysis) *models.SalaryRange {
	if analysis.SalaryMin == nil && analysis.SalaryMax == nil &&
		analysis.SalaryFixed == nil && analysis.SalaryCurrency == nil &&
		analysis.SalaryPeriod == nil {
		return nil
	}

	sr := &models.SalaryRange{
		Min:      analysis.SalaryMin,
		Max:      analysis.SalaryMax,
		Fixed:    analysis.SalaryFixed,
		Currency: analysis.SalaryCurrency,
	}
	if analysis.SalaryPeriod != nil {
		period := string(*analysis.SalaryPeriod)
		sr.Period = &period
	}
	return sr
}
