// Package curriculum holds the immutable lesson catalog: the numbered
// lesson sequence, the review-lesson set, skill sections, and per-grade
// benchmark profiles. A Catalog is built once at startup and passed to
// every component that needs it; nothing in this package mutates after
// construction.
package curriculum

import "strconv"

// Catalog describes one curriculum configuration.
type Catalog struct {
	total    int
	names    map[int]string
	reviews  map[int]bool
	sections []Section
	primary  map[int]int
	profiles map[string]Profile
}

// Default returns the standard UFLI Foundations catalog: 128 numbered
// lessons, 23 review lessons, 17 skill sections and grade profiles
// PreK through G8.
func Default() *Catalog {
	c := &Catalog{
		total:    totalLessons,
		names:    lessonNames,
		reviews:  make(map[int]bool, len(reviewLessons)),
		sections: skillSections,
		primary:  make(map[int]int),
		profiles: gradeProfiles,
	}
	for _, n := range reviewLessons {
		c.reviews[n] = true
	}
	// First section to list a lesson owns it. The Blends section overlaps
	// Single Consonants & Short Vowels and is reporting-only, so it ends
	// up owning nothing.
	for _, s := range c.sections {
		for _, n := range s.Lessons {
			if _, claimed := c.primary[n]; !claimed {
				c.primary[n] = s.ID
			}
		}
	}
	return c
}

// Total returns the highest numbered lesson.
func (c *Catalog) Total() int { return c.total }

// Valid reports whether n is a numbered lesson in this catalog.
func (c *Catalog) Valid(n int) bool { return n >= 1 && n <= c.total }

// IsReview reports whether numbered lesson n is a review lesson.
func (c *Catalog) IsReview(n int) bool { return c.reviews[n] }

// LessonName returns the short curriculum name for lesson n ("ch", "a_e").
func (c *Catalog) LessonName(n int) string { return c.names[n] }

// ReviewLessons returns the review lesson numbers in ascending order.
// The returned slice is shared; treat it as read-only.
func (c *Catalog) ReviewLessons() []int { return reviewLessons }

// Sections returns the skill sections in curriculum order.
// The returned slice is shared; treat it as read-only.
func (c *Catalog) Sections() []Section { return c.sections }

// SectionByID returns the section with the given id.
func (c *Catalog) SectionByID(id int) (Section, bool) {
	for _, s := range c.sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// PrimarySection returns the section that owns numbered lesson n.
// Overlay sections never own lessons.
func (c *Catalog) PrimarySection(n int) (Section, bool) {
	id, ok := c.primary[n]
	if !ok {
		return Section{}, false
	}
	return c.SectionByID(id)
}

// Profile returns the benchmark profile for a grade label. Unknown
// grades fall back to the KG profile.
func (c *Catalog) Profile(grade string) Profile {
	if p, ok := c.profiles[grade]; ok {
		return p
	}
	return c.profiles[GradeKG]
}

// Grades returns the grade labels with a configured profile.
func (c *Catalog) Grades() []string { return gradeOrder }

// Key returns the canonical vector key for a lesson label: the decimal
// number for labels that resolve to a numbered lesson, the trimmed label
// itself for named lessons.
func (c *Catalog) Key(label string) string {
	if n, ok := c.ExtractNumber(label); ok {
		return strconv.Itoa(n)
	}
	return trimLabel(label)
}

// KeyForNumber returns the canonical vector key for a numbered lesson.
func KeyForNumber(n int) string { return strconv.Itoa(n) }

// NumberFromKey parses a canonical vector key back to a lesson number.
// Named-lesson keys return ok=false.
func (c *Catalog) NumberFromKey(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || !c.Valid(n) {
		return 0, false
	}
	return n, true
}

const totalLessons = 128

var reviewLessons = []int{
	35, 36, 37, 39, 40, 41, 49, 53, 57, 59, 62, 71, 76, 79, 83, 88, 92,
	97, 102, 104, 105, 106, 128,
}

var lessonNames = map[int]string{
	1:   "a/ā/",
	2:   "m",
	3:   "t",
	4:   "s",
	5:   "i/ī/",
	6:   "f",
	7:   "d",
	8:   "r",
	9:   "o/ō/",
	10:  "g",
	11:  "l",
	12:  "h",
	13:  "u/ū/",
	14:  "c",
	15:  "b",
	16:  "n",
	17:  "k",
	18:  "e/ē/",
	19:  "v",
	20:  "y",
	21:  "w",
	22:  "j",
	23:  "p",
	24:  "x",
	25:  "blends (initial)",
	26:  "z",
	27:  "blends (final)",
	28:  "qu",
	29:  "-ck",
	30:  "-ll, -ss",
	31:  "-zz, -ff",
	32:  "-ng",
	33:  "-nk",
	34:  "Review 1-33",
	35:  "Review a",
	36:  "Review i",
	37:  "Review o",
	38:  "Review u",
	39:  "Review e",
	40:  "Review 35-39",
	41:  "Review all vowels",
	42:  "ch",
	43:  "sh",
	44:  "th",
	45:  "wh",
	46:  "-tch",
	47:  "ph",
	48:  "wr",
	49:  "Review digraphs",
	50:  "kn",
	51:  "gn",
	52:  "mb",
	53:  "Review 50-52",
	54:  "a_e",
	55:  "i_e",
	56:  "o_e",
	57:  "Review 54-56",
	58:  "u_e",
	59:  "Review 54-58",
	60:  "e_e",
	61:  "Soft c",
	62:  "Soft g",
	63:  "Compound words",
	64:  "Syllable division (VC/CV)",
	65:  "Syllable division (V/CV)",
	66:  "Syllable division (VC/V)",
	67:  "Syllable division (review)",
	68:  "Open syllables",
	69:  "-ed (/ed/)",
	70:  "-ed (/d/)",
	71:  "-ed (/t/)",
	72:  "-ing",
	73:  "-er, -est",
	74:  "-s, -es",
	75:  "-ful, -less",
	76:  "Review suffixes",
	77:  "ar",
	78:  "or",
	79:  "Review ar, or",
	80:  "er",
	81:  "ir",
	82:  "ur",
	83:  "Review er, ir, ur",
	84:  "ai",
	85:  "ay",
	86:  "ee",
	87:  "ea",
	88:  "Review vowel teams",
	89:  "igh",
	90:  "ie",
	91:  "oa",
	92:  "ow (/ō/)",
	93:  "ew",
	94:  "ue",
	95:  "oi",
	96:  "oy",
	97:  "Review diphthongs",
	98:  "Silent letters",
	99:  "Prefixes un-, re-",
	100: "Prefixes pre-, mis-",
	101: "Prefixes dis-, non-",
	102: "Review prefixes",
	103: "Suffixes -ly, -y",
	104: "Suffixes -ment, -ness",
	105: "Suffixes -able, -ible",
	106: "Review suffixes 2",
	107: "Doubling rule",
	108: "Drop e rule",
	109: "Change y rule",
	110: "Review spelling rules",
	111: "oo (/o͞o/)",
	112: "oo (/o͝o/)",
	113: "ou",
	114: "ow (/ou/)",
	115: "au, aw",
	116: "al, all",
	117: "wa, qua",
	118: "Review 111-117",
	119: "-tion",
	120: "-sion",
	121: "-ture, -sure",
	122: "-cial, -tial",
	123: "-ous, -eous",
	124: "-ible, -able (advanced)",
	125: "Greek roots",
	126: "Latin roots",
	127: "Review affixes 1",
	128: "Review affixes 2",
}
