package domain

// Confidence levels for an explanation, ordered weakest to strongest.
const (
	ConfidenceLow      = "LOW"
	ConfidenceMedium   = "MEDIUM"
	ConfidenceHigh     = "HIGH"
	ConfidenceVeryHigh = "VERY HIGH"
)

// ContributionScores breaks a recommendation down into per-feature shares,
// each in [0,1]. The shares are heuristic, not probabilities.
type ContributionScores struct {
	Genres              float64 `json:"genres"`
	DescriptionKeywords float64 `json:"description_keywords"`
	Authors             float64 `json:"authors"`
}

// Sum returns the total contribution mass.
func (c ContributionScores) Sum() float64 {
	return c.Genres + c.DescriptionKeywords + c.Authors
}

// ExplanationDetails exposes the contribution breakdown as integer percents.
type ExplanationDetails struct {
	GenresContribution              int `json:"genres_contribution"`
	DescriptionKeywordsContribution int `json:"description_keywords_contribution"`
	AuthorsContribution             int `json:"authors_contribution"`
}

// Explanation is a derived, stateless justification for one recommendation.
type Explanation struct {
	MatchScore       int                `json:"match_score"`
	Confidence       string             `json:"confidence"`
	Summary          string             `json:"summary"`
	MatchingFeatures []string           `json:"matching_features"`
	Details          ExplanationDetails `json:"details"`
}
