package exercise

import "gonum.org/v1/gonum/stat"

// Summary aggregates the quality scores of one exercise session.
type Summary struct {
	Reps      int     `json:"reps"`
	MeanScore float64 `json:"mean_score"`
	StdDev    float64 `json:"std_dev"`
	BestScore int     `json:"best_score"`
}

// Summarize computes session statistics from per-rep scores. An empty
// session yields the zero Summary.
func Summarize(scores []int) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	values := make([]float64, len(scores))
	best := scores[0]
	for i, s := range scores {
		values[i] = float64(s)
		if s > best {
			best = s
		}
	}

	summary := Summary{
		Reps:      len(scores),
		MeanScore: stat.Mean(values, nil),
		BestScore: best,
	}
	if len(values) > 1 {
		summary.StdDev = stat.StdDev(values, nil)
	}
	return summary
}
