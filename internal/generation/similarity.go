package generation

import (
	"math"
	"sort"

	"github.com/jonathan/cover-letter-studio/internal/store"
)

// Match is a stored document scored against a query.
type Match struct {
	Document store.Document
	Score    float64
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is empty, zero or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rank scores docs against query and returns the best limit matches.
func rank(query []float32, docs []store.Document, limit int) []Match {
	matches := make([]Match, 0, len(docs))
	for _, d := range docs {
		matches = append(matches, Match{Document: d, Score: CosineSimilarity(query, d.Embedding)})
	}
	sortMatches(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// sortMatches orders by score descending, then by ID for stable output.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Document.ID < matches[j].Document.ID
	})
}

func averageScore(matches []Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
