package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobpulse/internal/logging"
	"jobpulse/pkg/models"
)

const systemPrompt = "You are a job analysis assistant. Extract or estimate structured information from job postings."

// ErrOutOfVocabulary marks a model reply whose enum values fall outside the
// fixed vocabularies. The job fails rather than storing a guess.
var ErrOutOfVocabulary = errors.New("value outside fixed vocabulary")

// Result carries the structured analysis produced for one job.
type Result struct {
	SalaryMin         *float64
	SalaryMax         *float64
	SalaryFixed       *float64
	SalaryCurrency    *string
	SalaryPeriod      *models.SalaryPeriod
	IsSalaryEstimated bool
	SkillTags         []string
	ExperienceLevel   *models.ExperienceLevel
	Summary           string
	Locations         []models.Location
}

// ToAnalysis converts the result into the analysis row shape for one job.
// Skill tags are joined into the stored comma-delimited form.
func (r *Result) ToAnalysis(jobID string) *models.Analysis {
	var period *models.SalaryPeriod
	if r.SalaryPeriod != nil {
		p := *r.SalaryPeriod
		period = &p
	}
	return &models.Analysis{
		JobID:             jobID,
		Status:            models.StatusCompleted,
		SalaryMin:         r.SalaryMin,
		SalaryMax:         r.SalaryMax,
		SalaryFixed:       r.SalaryFixed,
		SalaryCurrency:    r.SalaryCurrency,
		SalaryPeriod:      period,
		IsSalaryEstimated: r.IsSalaryEstimated,
		SkillTags:         strings.Join(r.SkillTags, ", "),
		ExperienceLevel:   r.ExperienceLevel,
		Summary:           r.Summary,
		Locations:         r.Locations,
	}
}

// completer is the slice of the call gate the analyzer needs.
type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analyzer turns one job record into an analysis result by prompting the
// enrichment capability through the call gate.
type Analyzer struct {
	gate   completer
	logger logging.Logger
}

// NewAnalyzer creates an analyzer backed by the given call gate.
func NewAnalyzer(gate completer) *Analyzer {
	return &Analyzer{
		gate:   gate,
		logger: logging.GetGlobalLogger(),
	}
}

// analysisPayload is the strict schema expected back from the model. Any
// enum value outside the fixed vocabularies fails the job rather than being
// guessed at.
type analysisPayload struct {
	SalaryMin         *float64          `json:"salary_min"`
	SalaryMax         *float64          `json:"salary_max"`
	SalaryFixed       *float64          `json:"salary_fixed"`
	SalaryCurrency    *string           `json:"salary_currency"`
	SalaryPeriod      *string           `json:"salary_period"`
	IsSalaryEstimated *bool             `json:"is_salary_estimated"`
	SkillTags         []string          `json:"skill_tags"`
	ExperienceLevel   *string           `json:"experience_level"`
	Summary           string            `json:"summary"`
	Locations         []locationPayload `json:"locations"`
}

type locationPayload struct {
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
}

// Analyze runs one enrichment call for the job and normalizes the response.
func (a *Analyzer) Analyze(ctx context.Context, job *models.Job) (*Result, error) {
	companyName := ""
	if job.Company != nil {
		companyName = job.Company.Name
	}

	prompt := buildAnalysisPrompt(job.Title, job.FullDescription, companyName, job.Location)

	raw, err := a.gate.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis for job %s: %w", job.ID, err)
	}

	a.logger.Info("Job analysis completed", map[string]interface{}{
		"job_id":     job.ID,
		"skill_tags": len(result.SkillTags),
		"estimated":  result.IsSalaryEstimated,
	})

	return result, nil
}

// parseAnalysis decodes the model reply and normalizes every enum against
// the fixed vocabularies.
func parseAnalysis(raw string) (*Result, error) {
	cleaned := stripMarkdownFences(raw)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}

	result := &Result{
		SalaryMin:      payload.SalaryMin,
		SalaryMax:      payload.SalaryMax,
		SalaryFixed:    payload.SalaryFixed,
		SalaryCurrency: payload.SalaryCurrency,
		SkillTags:      payload.SkillTags,
		Summary:        payload.Summary,
		// Estimation defaults to true unless the model explicitly found
		// salary figures in the text.
		IsSalaryEstimated: payload.IsSalaryEstimated == nil || *payload.IsSalaryEstimated,
	}

	if payload.ExperienceLevel != nil && *payload.ExperienceLevel != "" {
		level, err := models.ParseExperienceLevel(*payload.ExperienceLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutOfVocabulary, err)
		}
		result.ExperienceLevel = &level
	}

	if payload.SalaryPeriod != nil && *payload.SalaryPeriod != "" {
		period, err := models.ParseSalaryPeriod(*payload.SalaryPeriod)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutOfVocabulary, err)
		}
		result.SalaryPeriod = &period
	}

	for _, loc := range payload.Locations {
		result.Locations = append(result.Locations, NormalizeLocation(models.Location{
			City:    loc.City,
			State:   loc.State,
			Country: loc.Country,
		}))
	}

	return result, nil
}

var countryNames = map[string]string{
	"US":  "United States",
	"USA": "United States",
	"UK":  "United Kingdom",
}

// NormalizeLocation applies the location post-processing rules: a city that
// just says remote is cleared (the country, if stated, stays), and country
// codes are canonicalized to full names. Everything else passes through.
func NormalizeLocation(loc models.Location) models.Location {
	if loc.City != nil {
		city := strings.ToLower(strings.TrimSpace(*loc.City))
		if city == "remote" || city == "remotely" {
			loc.City = nil
		}
	}
	if loc.Country != nil {
		if full, ok := countryNames[strings.ToUpper(strings.TrimSpace(*loc.Country))]; ok {
			loc.Country = &full
		}
	}
	return loc
}

// stripMarkdownFences removes a ```json ... ``` wrapper if the model added one.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// buildAnalysisPrompt formats the extraction prompt for one posting.
func buildAnalysisPrompt(title, description, companyName, location string) string {
	return fmt.Sprintf(`Analyze the following job posting and extract or estimate key information in JSON format:

Title: %s
Description: %s
Company Name: %s
Location: %s

Please extract and return a JSON object with the following structure:
{
    "salary_min": number or null,      // Minimum salary amount
    "salary_max": number or null,      // Maximum salary amount
    "salary_fixed": number or null,    // Fixed/exact salary amount
    "salary_currency": string or null, // Currency code (e.g., "USD", "EUR", "GBP")
    "salary_period": string or null,   // One of: "HOUR", "DAY", "WEEK", "MONTH", "YEAR"
    "is_salary_estimated": boolean,    // IMPORTANT: Must be true if salary is estimated
    "skill_tags": [                    // List of 3-7 MOST important required skills
        string,                        // Focus on core technical skills and key technologies
        ...                            // e.g., ["Python", "AWS", "React"]
    ],
    "experience_level": string,        // One of: "ENTRY", "MID", "SENIOR", "LEAD", "EXECUTIVE"
    "summary": string,                 // 2-3 concise sentences summarizing key responsibilities
    "locations": [                     // Structured places mentioned for this role, may be empty
        {"city": string or null, "state": string or null, "country": string or null}
    ]
}

IMPORTANT SALARY GUIDELINES:
1. First, carefully search for EXPLICIT salary information in the job description:
   - Look for specific numbers with currency symbols ($, EUR, GBP, etc.)
   - Look for phrases like "salary range", "compensation", "pay", etc.
   - Only set is_salary_estimated = false if you find EXPLICIT salary information

2. If NO EXPLICIT salary information is found:
   - You MUST set is_salary_estimated = true
   - Estimate salary based on:
     * Job title and seniority level
     * Location and local market rates
     * Company size and industry
     * Required skills and experience
   - Use USD for estimates unless location suggests otherwise
   - Provide a reasonable range (min/max) rather than fixed amount

3. Double check before responding:
   - If you're providing estimated values, verify is_salary_estimated = true
   - If you found explicit salary in the text, verify is_salary_estimated = false

Return only the JSON object, no additional text.`, title, description, companyName, location)
}
