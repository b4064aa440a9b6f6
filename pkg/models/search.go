package models

// Sort modes accepted by the search endpoint.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
)

// SearchRequest is the structured query surface input. Query is required;
// everything else narrows or re-orders the result set.
type SearchRequest struct {
	Query            string   `query:"q" json:"q" validate:"required"`
	CompanyIDs       []string `query:"company_ids" json:"company_ids"`
	EmploymentTypes  []string `query:"employment_type" json:"employment_type"`
	ExperienceLevels []string `query:"experience_level" json:"experience_level"`
	Location         string   `query:"location" json:"location"`
	IsRemote         *bool    `query:"is_remote" json:"is_remote"`
	Sort             string   `query:"sort" json:"sort" validate:"omitempty,oneof=relevance date"`
	Page             int      `query:"page" json:"page" validate:"omitempty,min=1"`
	PerPage          int      `query:"per_page" json:"per_page" validate:"omitempty,min=1,max=100"`
}

// SalaryRange mirrors the salary sub-object of a search document. Fields the
// analysis did not produce stay null.
type SalaryRange struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Fixed    *float64 `json:"fixed"`
	Currency *string  `json:"currency"`
	Period   *string  `json:"period"`
}

// SearchDocument is the canonical shape written to the search index. It is a
// disposable projection of a job plus its completed analysis and is always
// rebuilt from that pair, never edited in place.
type SearchDocument struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	FullDescription string       `json:"full_description"`
	URL             string       `json:"url"`
	Company         CompanyBrief `json:"company"`
	Location        string       `json:"location"`
	Locations       []Location   `json:"locations,omitempty"`
	EmploymentType  string       `json:"employment_type,omitempty"`
	PostedDate      string       `json:"posted_date,omitempty"`
	IsRemote        bool         `json:"is_remote"`
	Expired         bool         `json:"expired"`
	SkillTags       []string     `json:"skill_tags"`
	Summary         string       `json:"summary,omitempty"`
	ExperienceLevel string       `json:"experience_level,omitempty"`
	SalaryRange     *SalaryRange `json:"salary_range,omitempty"`
}

// JobBrief is one decoded search hit.
type JobBrief struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Company         CompanyBrief `json:"company"`
	Location        string       `json:"location"`
	Locations       []Location   `json:"locations,omitempty"`
	EmploymentType  string       `json:"employment_type,omitempty"`
	PostedDate      string       `json:"posted_date,omitempty"`
	IsRemote        bool         `json:"is_remote"`
	URL             string       `json:"url"`
	SkillTags       []string     `json:"skill_tags"`
	Summary         string       `json:"summary,omitempty"`
	SalaryRange     *SalaryRange `json:"salary_range,omitempty"`
	ExperienceLevel string       `json:"experience_level,omitempty"`
	Expired         bool         `json:"expired"`
	Score           float64      `json:"score"`
}

// JobDetail is the full single-job view served from the index.
type JobDetail struct {
	JobBrief
	FullDescription string `json:"full_description"`
}

// SearchResponse is the paged result envelope.
type SearchResponse struct {
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Results []JobBrief `json:"results"`
}
