package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// BestMatch returns the index of the candidate most similar to query along
// with its score. Ties keep the earlier candidate, so when nothing overlaps
// the first candidate wins with a score of 0. Returns -1 for no candidates.
func BestMatch(query string, candidates []string) (int, float64) {
	if len(candidates) == 0 {
		return -1, 0
	}
	q := NewFingerprint(query)
	best, bestScore := 0, 0.0
	for i, candidate := range candidates {
		score := CosineSimilarity(q, NewFingerprint(candidate))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
