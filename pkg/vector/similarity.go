package vector

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b in the
// range [-1, 1]. Degenerate inputs are defined, never a fault: vectors of
// different lengths and vectors with zero magnitude both score 0.0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	normProduct := math.Sqrt(normA) * math.Sqrt(normB)
	if normProduct == 0 {
		return 0.0
	}

	return dot / normProduct
}

// Rank scores every candidate against the query vector and returns the topK
// best matches in descending score order. Candidates that tie keep their
// input order. A topK of zero or below returns an empty result without
// scoring anything; so does an empty candidate set.
func Rank(query []float32, candidates []Candidate, topK int) []Match {
	if topK <= 0 || len(candidates) == 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		matches = append(matches, Match{
			PostID: candidate.PostID,
			Score:  CosineSimilarity(query, candidate.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}

	return matches
}
