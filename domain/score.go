package domain

// ScoreBreakdown holds the four 0-100 sub-scores that combine into the
// overall ATS score.
type ScoreBreakdown struct {
	Skill      int `json:"skill"`
	Experience int `json:"experience"`
	Education  int `json:"education"`
	Format     int `json:"format"`
}

// ScoreResult is the output of the rule-based scorer.
type ScoreResult struct {
	Score         int            `json:"score"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	Skills        []string       `json:"skills"`
	MissingSkills []string       `json:"missing_skills"`
}
