// Package intent classifies free-text job requirements into structured
// attributes used to condition response generation. Classification is best
// effort: it always yields a complete Intent, falling back to documented
// defaults when the provider or the parse fails.
package intent

// Intent is the structured classification of a job requirement. Every field
// has a default so a failed classification still produces a usable value.
type Intent struct {
	JobType            string   `json:"job_type"`
	ExperienceLevel    string   `json:"experience_level"`
	WorkType           string   `json:"work_type"`
	LocationPreference string   `json:"location_preference"`
	Urgency            string   `json:"urgency"`
	KeySkills          []string `json:"key_skills"`
	CompanyCulture     string   `json:"company_culture"`
	Confidence         float64  `json:"confidence"`
}

// Default returns the fallback classification used when analysis fails.
func Default() Intent {
	return Intent{
		JobType:            "other",
		ExperienceLevel:    "mid",
		WorkType:           "full_time",
		LocationPreference: "any",
		Urgency:            "medium",
		KeySkills:          []string{},
		CompanyCulture:     "traditional",
		Confidence:         0.5,
	}
}
