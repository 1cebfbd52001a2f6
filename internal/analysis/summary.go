package analysis

import "math"

// Summary is a group-level digest of one detection pass.
type Summary struct {
	Count       int
	Min         float64
	Max         float64
	Mean        float64
	Threshold   float64
	CrisisCount int
	// CrisisShare is CrisisCount / Count.
	CrisisShare float64
}

// Summarize describes predictions and their detection result.
func Summarize(predictions []float64, res *CrisisResult) Summary {
	s := Summary{}
	if len(predictions) == 0 {
		return s
	}
	s.Count = len(predictions)

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	for _, v := range predictions {
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	s.Min = minv
	s.Max = maxv
	s.Mean = sum / float64(len(predictions))

	if res != nil {
		s.Threshold = res.Threshold
		s.CrisisCount = res.CrisisCount
		s.CrisisShare = float64(res.CrisisCount) / float64(s.Count)
	}
	return s
}
