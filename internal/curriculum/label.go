package curriculum

import (
	"regexp"
	"strconv"
	"strings"
)

// Column labels arrive in whatever shape a teacher typed: "Lesson 42",
// "L42", "UFLI L 42", "42". A number is only accepted when it lands in
// the catalog range; everything else is a named lesson and keeps its
// label as the key.
var (
	lessonTokenRe = regexp.MustCompile(`(?i)\b(?:lesson|l)[\s.#:]*(\d{1,3})\b`)
	bareNumberRe  = regexp.MustCompile(`\d{1,3}`)
)

// ExtractNumber resolves a lesson label to its numbered lesson. A number
// directly following a "Lesson"/"L" token wins over a bare number
// elsewhere in the label. Out-of-range numbers do not resolve.
func (c *Catalog) ExtractNumber(label string) (int, bool) {
	for _, m := range lessonTokenRe.FindAllStringSubmatch(label, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && c.Valid(n) {
			return n, true
		}
	}
	for _, m := range bareNumberRe.FindAllString(label, -1) {
		if n, err := strconv.Atoi(m); err == nil && c.Valid(n) {
			return n, true
		}
	}
	return 0, false
}

// OutOfRange reports a label that names a number the catalog does not
// have: a "Lesson N"/"L N" token, or a label that is nothing but digits,
// where N falls outside 1..Total. Labels without a numeric claim are
// named lessons, not errors.
func (c *Catalog) OutOfRange(label string) (int, bool) {
	if _, ok := c.ExtractNumber(label); ok {
		return 0, false
	}
	for _, m := range lessonTokenRe.FindAllStringSubmatch(label, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if n, err := strconv.Atoi(trimLabel(label)); err == nil {
		return n, true
	}
	return 0, false
}

func trimLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

// NormalizeName canonicalizes a student name for identity matching:
// interior whitespace collapsed, case folded. Display names keep their
// original spelling; this form is only the join key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
