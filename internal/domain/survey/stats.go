package survey

import "math"

const (
	MinRating = 1
	MaxRating = 5
)

type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Distribution struct {
	Total   int            `json:"total"`
	Buckets []RatingBucket `json:"buckets"`
}

// Count returns the number of answers with the given rating.
func (d Distribution) Count(rating int) int {
	for _, b := range d.Buckets {
		if b.Rating == rating {
			return b.Count
		}
	}
	return 0
}

func (d Distribution) Percentage(rating int) float64 {
	for _, b := range d.Buckets {
		if b.Rating == rating {
			return b.Percentage
		}
	}
	return 0
}

// CalculateDistribution counts ratings into every bucket 1..5. Out-of-range values are ignored.
// Percentages are rounded to one decimal and are 0 when there are no ratings.
func CalculateDistribution(ratings []int) Distribution {
	counts := make([]int, MaxRating+1)
	total := 0
	for _, r := range ratings {
		if r < MinRating || r > MaxRating {
			continue
		}
		counts[r]++
		total++
	}
	d := Distribution{Total: total, Buckets: make([]RatingBucket, 0, MaxRating)}
	for r := MinRating; r <= MaxRating; r++ {
		b := RatingBucket{Rating: r, Count: counts[r]}
		if total > 0 {
			b.Percentage = math.Round(float64(counts[r])/float64(total)*1000) / 10
		}
		d.Buckets = append(d.Buckets, b)
	}
	return d
}

// CalculateAverage is the mean of the in-range ratings rounded to two decimals, or 0 when none are in range.
// It skips the same values CalculateDistribution does, so the two always describe the same answers.
func CalculateAverage(ratings []int) float64 {
	sum, n := 0, 0
	for _, r := range ratings {
		if r < MinRating || r > MaxRating {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*100) / 100
}
