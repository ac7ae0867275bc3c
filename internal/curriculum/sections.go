package curriculum

// Section is a named span of the lesson sequence used for skill scoring.
type Section struct {
	ID      int
	Name    string
	Lessons []int
}

// NonReview returns the section's lesson numbers that are not review
// lessons in the given catalog.
func (s Section) NonReview(c *Catalog) []int {
	out := make([]int, 0, len(s.Lessons))
	for _, n := range s.Lessons {
		if !c.IsReview(n) {
			out = append(out, n)
		}
	}
	return out
}

// Reviews returns the section's lesson numbers that are review lessons
// in the given catalog.
func (s Section) Reviews(c *Catalog) []int {
	out := make([]int, 0, 4)
	for _, n := range s.Lessons {
		if c.IsReview(n) {
			out = append(out, n)
		}
	}
	return out
}

func span(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}

var skillSections = []Section{
	{ID: 1, Name: "Single Consonants & Short Vowels", Lessons: span(1, 34)},
	{ID: 2, Name: "Blends", Lessons: []int{25, 27}},
	{ID: 3, Name: "Alphabet Review", Lessons: span(35, 41)},
	{ID: 4, Name: "Digraphs", Lessons: span(42, 53)},
	{ID: 5, Name: "VCE (Vowel-Consonant-E)", Lessons: span(54, 62)},
	{ID: 6, Name: "Reading Longer Words", Lessons: span(63, 68)},
	{ID: 7, Name: "Ending Spelling Patterns", Lessons: span(69, 76)},
	{ID: 8, Name: "R-Controlled Vowels", Lessons: span(77, 83)},
	{ID: 9, Name: "Long Vowel Teams", Lessons: span(84, 88)},
	{ID: 10, Name: "Other Vowel Teams", Lessons: span(89, 94)},
	{ID: 11, Name: "Diphthongs", Lessons: span(95, 97)},
	{ID: 12, Name: "Silent Letters", Lessons: []int{98}},
	{ID: 13, Name: "Suffixes & Prefixes", Lessons: span(99, 106)},
	{ID: 14, Name: "Suffix Spelling Changes", Lessons: span(107, 110)},
	{ID: 15, Name: "Low Frequency Spellings", Lessons: span(111, 118)},
	{ID: 16, Name: "Additional Affixes", Lessons: span(119, 126)},
	{ID: 17, Name: "Affixes Review 2", Lessons: []int{127, 128}},
}
