// Package keyword provides edit-distance utilities and typo-tolerant vocabulary matching.
package keyword

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string into another.
// Strings are compared rune by rune. Runs in O(n·m) time and O(m) space for
// inputs of n and m runes. This is a pure function with no side effects.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}

	// Convert to runes for proper Unicode handling
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// We only need two rows at a time
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

// MinFuzzyLength is the shortest token or keyword (in runes) eligible for typo matching.
const MinFuzzyLength = 3

// Tolerance returns the largest edit distance accepted for a keyword of
// keywordLen runes: floor(keywordLen/4) + 1.
func Tolerance(keywordLen int) int {
	return keywordLen/4 + 1
}

// WithinTolerance reports whether token is a typo of keyword. Both must be at
// least MinFuzzyLength runes long.
func WithinTolerance(token, keyword string) bool {
	tokenLen := len([]rune(token))
	keywordLen := len([]rune(keyword))
	if tokenLen < MinFuzzyLength || keywordLen < MinFuzzyLength {
		return false
	}
	tol := Tolerance(keywordLen)
	// Length difference is a lower bound on the distance.
	if abs(tokenLen-keywordLen) > tol {
		return false
	}
	return LevenshteinDistance(token, keyword) <= tol
}

func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
