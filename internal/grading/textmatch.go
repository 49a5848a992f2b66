package grading

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, collapses whitespace runs to a single space and
// trims both ends.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Fold is Normalize followed by removal of combining marks, so "sí" and
// "si" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, Normalize(s))
	if err != nil {
		return Normalize(s)
	}
	return out
}

// stripPunct replaces everything that is not a letter, digit or space with
// a space and normalizes the result. "(D, R)" and "(d,r)" both become "d r".
func stripPunct(s string) string {
	return Normalize(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s))
}

// TokenSetRatio scores two texts in [0,100] by word-set overlap. Reordered,
// repeated and extra words are tolerated: when one text's words are a
// subset of the other's the score is 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter = append(inter, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range tb {
		if _, ok := ta[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	sect := strings.Join(inter, " ")
	diffA := strings.Join(onlyA, " ")
	diffB := strings.Join(onlyB, " ")

	if sect == "" {
		return int(math.Round(ratio(diffA, diffB)))
	}

	// Compare sect with sect+" "+diffA, sect with sect+" "+diffB, and the two
	// combined strings. The shared prefix never adds to the indel distance.
	ar, br := []rune(diffA), []rune(diffB)
	sectLen := len([]rune(sect))
	sectA := sectLen + 1 + len(ar)
	sectB := sectLen + 1 + len(br)
	dist := len(ar) + len(br) - 2*lcs(ar, br)
	best := 100 * (1 - float64(dist)/float64(sectA+sectB))
	for _, n := range []int{sectA, sectB} {
		r := 100 * (1 - float64(n-sectLen)/float64(sectLen+n))
		best = math.Max(best, r)
	}
	return int(math.Round(best))
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(stripPunct(Fold(s))) {
		out[w] = struct{}{}
	}
	return out
}

// ratio is the normalized indel similarity of a and b in [0,100].
func ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 0
	}
	dist := total - 2*lcs(ar, br)
	return 100 * (1 - float64(dist)/float64(total))
}

// lcs computes the length of the longest common subsequence.
func lcs(a, b []rune) int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0
	}
	dp := make([]int, m+1)
	for i := 1; i <= n; i++ {
		prev := 0
		for j := 1; j <= m; j++ {
			tmp := dp[j]
			if a[i-1] == b[j-1] {
				dp[j] = prev + 1
			} else {
				dp[j] = max(dp[j], dp[j-1])
			}
			prev = tmp
		}
	}
	return dp[m]
}
