package schema

// RankedSimilarity adds presentation data to a SimilarityResult.
type RankedSimilarity struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	SimilarityResult
}

// RankedCombination adds presentation data to a CombinationSuggestion.
type RankedCombination struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	CombinationSuggestion
}

// GetPlainLabel returns a plain text label for a 0-100 health score,
// where higher is healthier.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Healthy"
	case score >= 60:
		return "Fair"
	case score >= 40:
		return "Weak"
	default:
		return "Critical"
	}
}

// GetMatchLabel returns a plain text label for a 0-1 match strength.
func GetMatchLabel(strength float64) string {
	switch {
	case strength >= 0.75:
		return "Strong"
	case strength >= 0.5:
		return "Good"
	case strength >= 0.25:
		return "Partial"
	default:
		return "Weak"
	}
}

// RankSimilar adds rank and label to a list of similarity results.
func RankSimilar(results []SimilarityResult) []RankedSimilarity {
	output := make([]RankedSimilarity, len(results))
	for i, r := range results {
		output[i] = RankedSimilarity{
			Rank:             i + 1,
			Label:            GetMatchLabel(r.Similarity),
			SimilarityResult: r,
		}
	}
	return output
}

// RankCombinations adds rank and label to a list of combination suggestions.
func RankCombinations(results []CombinationSuggestion) []RankedCombination {
	output := make([]RankedCombination, len(results))
	for i, r := range results {
		output[i] = RankedCombination{
			Rank:                  i + 1,
			Label:                 GetMatchLabel(r.Score),
			CombinationSuggestion: r,
		}
	}
	return output
}
