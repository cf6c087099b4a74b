package domain

import (
	"encoding/json"
	"strconv"
)

// RatingDistribution counts reviews per rating level.
type RatingDistribution map[Rating]int64

// MarshalJSON always emits all five levels, keyed "1".."5".
func (d RatingDistribution) MarshalJSON() ([]byte, error) {
	out := make(map[string]int64, len(RatingLevels))
	for _, level := range RatingLevels {
		out[strconv.Itoa(int(level))] = d[level]
	}
	return json.Marshal(out)
}

// ReviewsSummary is derived from the full review set of one target and never stored.
type ReviewsSummary struct {
	AverageRating      float64            `json:"averageRating"`
	TotalReviews       int64              `json:"totalReviews"`
	RatingDistribution RatingDistribution `json:"ratingDistribution"`
	VerifiedPurchases  int64              `json:"verifiedPurchases"`
}

// EmptySummary is the summary of a target with no reviews.
func EmptySummary() ReviewsSummary {
	dist := make(RatingDistribution, len(RatingLevels))
	for _, level := range RatingLevels {
		dist[level] = 0
	}
	return ReviewsSummary{RatingDistribution: dist}
}

// ComputeSummary aggregates reviews from scratch. The mean is not rounded.
func ComputeSummary(reviews []*Review) ReviewsSummary {
	summary := EmptySummary()
	if len(reviews) == 0 {
		return summary
	}

	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
		if r.Rating.IsValid() {
			summary.RatingDistribution[r.Rating]++
		}
		if r.IsVerifiedPurchase {
			summary.VerifiedPurchases++
		}
	}
	summary.TotalReviews = int64(len(reviews))
	summary.AverageRating = float64(sum) / float64(summary.TotalReviews)
	return summary
}
