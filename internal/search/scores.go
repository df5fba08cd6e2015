package search

import (
	"math"

	"github.com/samber/lo"
)

// ScoreSummary describes the relevance score distribution of a result set
type ScoreSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// AnalyzeScores summarizes the scores of the given results.
// An empty result set yields the zero summary.
func AnalyzeScores(results []Result) ScoreSummary {
	if len(results) == 0 {
		return ScoreSummary{}
	}

	scores := lo.Map(results, func(r Result, _ int) float64 { return r.Score })

	s := ScoreSummary{
		Count: len(scores),
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
	}
	var sum float64
	for _, v := range scores {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(s.Count)

	var sq float64
	for _, v := range scores {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.Count))
	return s
}
