package emotion

import (
	"math"

	"github.com/pkg/errors"
)

// Softmax converts logits into probabilities. The maximum is subtracted before
// exponentiating so large logits cannot overflow.
func Softmax(scores ScoreVector) Posterior {
	if len(scores) == 0 {
		return nil
	}
	maxScore := float64(scores[0])
	for _, s := range scores[1:] {
		maxScore = math.Max(maxScore, float64(s))
	}
	probs := make(Posterior, len(scores))
	sum := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(float64(s) - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax index of the largest value, first one on ties. -1 for an empty slice.
func Argmax(x []float64) int {
	res := -1
	max := math.Inf(-1)
	for i, y := range x {
		if res < 0 || y > max {
			max = y
			res = i
		}
	}
	return res
}

// DecisionEngine turns raw scores into a labelled decision.
type DecisionEngine struct {
	// MinConfidence marks decisions below it as Uncertain. Zero disables the check.
	MinConfidence float64
}

// Decide computes the posterior and picks the most likely label.
func (e DecisionEngine) Decide(scores ScoreVector, labels LabelSet, rect FaceRect) (Decision, error) {
	if len(scores) != len(labels) {
		return Decision{}, errors.Errorf("got %d scores for %d labels", len(scores), len(labels))
	}
	if len(scores) == 0 {
		return Decision{}, errors.New("empty score vector")
	}
	posterior := Softmax(scores)
	idx := Argmax(posterior)
	if math.IsNaN(posterior[idx]) {
		return Decision{}, errors.New("score vector contains NaN")
	}
	return Decision{
		Label:      labels[idx],
		Confidence: posterior[idx],
		Rect:       rect,
		Posterior:  posterior,
		Uncertain:  posterior[idx] < e.MinConfidence,
	}, nil
}
