package match

// winklerPrefixScale is the standard Winkler prefix scaling factor.
const winklerPrefixScale = 0.1

// winklerMaxPrefix caps the common-prefix run considered by the boost.
const winklerMaxPrefix = 4

// JaroWinkler computes the Jaro-Winkler similarity of two strings in [0,1].
// Symmetric and deterministic; identical strings score 1.0. Inputs are
// expected to already be normalized (see Normalize).
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	jaro := jaroSimilarity(a, b)
	if jaro == 0 {
		return 0
	}

	prefix := commonPrefixLen(a, b, winklerMaxPrefix)
	score := jaro + float64(prefix)*winklerPrefixScale*(1.0-jaro)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func jaroSimilarity(a, b string) float64 {
	r1, r2 := []rune(a), []rune(b)
	len1, len2 := len(r1), len(r2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	// Characters match only within a sliding window around each position.
	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)
	matches := 0

	for i := 0; i < len1; i++ {
		start := max(0, i-window)
		end := min(len2, i+window+1)
		for j := start; j < end; j++ {
			if matched2[j] || r1[i] != r2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	// Transpositions: matched characters appearing in a different order.
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2.0)/m) / 3.0
}

func commonPrefixLen(a, b string, limit int) int {
	r1, r2 := []rune(a), []rune(b)
	n := min(len(r1), len(r2))
	if n > limit {
		n = limit
	}
	p := 0
	for i := 0; i < n; i++ {
		if r1[i] != r2[i] {
			break
		}
		p++
	}
	return p
}
