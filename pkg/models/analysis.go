package models

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisStatus tracks where a job sits in the enrichment lifecycle.
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// ExperienceLevel is the ordinal seniority vocabulary produced by enrichment.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "ENTRY"
	ExperienceMid       ExperienceLevel = "MID"
	ExperienceSenior    ExperienceLevel = "SENIOR"
	ExperienceLead      ExperienceLevel = "LEAD"
	ExperienceExecutive ExperienceLevel = "EXECUTIVE"
)

var experienceRanks = map[ExperienceLevel]int{
	ExperienceEntry:     0,
	ExperienceMid:       1,
	ExperienceSenior:    2,
	ExperienceLead:      3,
	ExperienceExecutive: 4,
}

// ParseExperienceLevel maps a raw string onto the experience vocabulary,
// case-insensitively. Values outside the vocabulary are an error.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	level := ExperienceLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := experienceRanks[level]; !ok {
		return "", fmt.Errorf("unknown experience level %q", s)
	}
	return level, nil
}

// Rank returns the ordinal position of the level (ENTRY < MID < SENIOR < LEAD < EXECUTIVE).
func (l ExperienceLevel) Rank() int {
	return experienceRanks[l]
}

// SalaryPeriod is the pay-period vocabulary produced by enrichment.
type SalaryPeriod string

const (
	PeriodHour  SalaryPeriod = "HOUR"
	PeriodDay   SalaryPeriod = "DAY"
	PeriodWeek  SalaryPeriod = "WEEK"
	PeriodMonth SalaryPeriod = "MONTH"
	PeriodYear  SalaryPeriod = "YEAR"
)

var salaryPeriods = map[SalaryPeriod]struct{}{
	PeriodHour:  {},
	PeriodDay:   {},
	PeriodWeek:  {},
	PeriodMonth: {},
	PeriodYear:  {},
}

// ParseSalaryPeriod maps a raw string onto the salary-period vocabulary,
// case-insensitively. Values outside the vocabulary are an error.
func ParseSalaryPeriod(s string) (SalaryPeriod, error) {
	period := SalaryPeriod(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := salaryPeriods[period]; !ok {
		return "", fmt.Errorf("unknown salary period %q", s)
	}
	return period, nil
}

// Location is a structured place extracted from a posting.
type Location struct {
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
}

// Analysis holds the AI-derived attributes for exactly one job. SkillTags is
// stored comma-joined; the document builder splits it back into a list.
type Analysis struct {
	ID                string           `json:"id"`
	JobID             string           `json:"job_id"`
	Status            AnalysisStatus   `json:"status"`
	SalaryMin         *float64         `json:"salary_min"`
	SalaryMax         *float64         `json:"salary_max"`
	SalaryFixed       *float64         `json:"salary_fixed"`
	SalaryCurrency    *string          `json:"salary_currency"`
	SalaryPeriod      *SalaryPeriod    `json:"salary_period"`
	IsSalaryEstimated bool             `json:"is_salary_estimated"`
	SkillTags         string           `json:"skill_tags"`
	ExperienceLevel   *ExperienceLevel `json:"experience_level"`
	Summary           string           `json:"summary"`
	Locations         []Location       `json:"locations,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
