package insights

import "math"

// CosineSimilarity scores how closely the user's spending allocation aligns
// with the reference profile. It iterates the union of category keys, treating
// a missing key as weight 0, and returns dot / (|user| * |ideal|). Either
// vector having zero magnitude yields 0, guarding the empty-history case.
// For non-negative weight vectors the result is in [0, 1].
func CosineSimilarity(user, ideal CategoryVector) float64 {
	union := make(map[string]struct{}, len(user)+len(ideal))
	for cat := range user {
		union[cat] = struct{}{}
	}
	for cat := range ideal {
		union[cat] = struct{}{}
	}

	var dot, magUser, magIdeal float64
	for cat := range union {
		a := user[cat]
		b := ideal[cat]
		dot += a * b
		magUser += a * a
		magIdeal += b * b
	}
	if magUser == 0 || magIdeal == 0 {
		return 0
	}
	return dot / (math.Sqrt(magUser) * math.Sqrt(magIdeal))
}
