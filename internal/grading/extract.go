package grading

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketVecRe  = regexp.MustCompile(`\[([\d\s,]+)\]`)
	vecSplitRe    = regexp.MustCompile(`[,\s]+`)
	bareIntRe     = regexp.MustCompile(`\b\d+\b`)
	assignmentRe  = regexp.MustCompile(`([\pL\d_]+)\s*[=:]\s*([\pL\d_]+)`)
	letterDigitRe = regexp.MustCompile(`\b([a-z])\s*=\s*(\d+)\b`)
	signedIntRe   = regexp.MustCompile(`-?\d+`)
)

// minBareVector is how many loose integers a text needs before it is read
// as a vector without brackets.
const minBareVector = 3

// ExtractVector pulls an ordered list of integer tokens out of noisy text.
// A bracketed run such as "[1, 2, 3]" wins; otherwise every standalone
// integer is taken, but only when there are at least three of them.
func ExtractVector(text string) []string {
	if m := bracketVecRe.FindStringSubmatch(text); m != nil {
		var out []string
		for _, tok := range vecSplitRe.Split(m[1], -1) {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, tok)
			}
		}
		return out
	}
	if digits := bareIntRe.FindAllString(text, -1); len(digits) >= minBareVector {
		return digits
	}
	return nil
}

type pair struct{ key, value string }

// assignmentPairs returns the var=value pairs of text in order of first
// appearance of each variable; a repeated variable keeps its last value.
func assignmentPairs(re *regexp.Regexp, text string) []pair {
	var out []pair
	idx := map[string]int{}
	for _, m := range re.FindAllStringSubmatch(strings.ToLower(text), -1) {
		k, v := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if i, ok := idx[k]; ok {
			out[i].value = v
			continue
		}
		idx[k] = len(out)
		out = append(out, pair{key: k, value: v})
	}
	return out
}

// ExtractAssignments parses "SA=red, WA: green" style text into a
// lower-cased variable to value map.
func ExtractAssignments(text string) map[string]string {
	out := map[string]string{}
	for _, p := range assignmentPairs(assignmentRe, text) {
		out[p.key] = p.value
	}
	return out
}

// ExtractIntegers returns every integer in text in order of appearance.
// A minus sign counts only when it is not glued to a preceding word, so
// "3-5" yields 3 and 5 while "root is -2" yields -2.
func ExtractIntegers(text string) []int {
	var out []int
	for _, loc := range signedIntRe.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		if tok[0] == '-' && loc[0] > 0 && isWordByte(text[loc[0]-1]) {
			tok = tok[1:]
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
