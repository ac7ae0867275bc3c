package curriculum

// Grade labels with configured benchmark profiles.
const (
	GradePreK = "PreK"
	GradeKG   = "KG"
	GradeG1   = "G1"
	GradeG2   = "G2"
	GradeG3   = "G3"
	GradeG4   = "G4"
	GradeG5   = "G5"
	GradeG6   = "G6"
	GradeG7   = "G7"
	GradeG8   = "G8"
)

// Profile is the per-grade benchmark configuration: which lessons count
// toward the minimum-expectation metric, which belong to the current
// school year, and the fixed denominator benchmark percentages divide by.
type Profile struct {
	Grade       string
	MinLessons  []int
	CurrentYear []int
	Denominator int
	LetterBased bool
}

// Foundational returns the foundational lesson span for this profile.
// PreK stops at the letter lessons.
func (p Profile) Foundational() []int {
	if p.LetterBased {
		return span(1, 26)
	}
	return span(1, 34)
}

// FoundationalDenominator returns the fixed divisor for the foundational
// metric.
func (p Profile) FoundationalDenominator() int {
	if p.LetterBased {
		return 26
	}
	return 34
}

var gradeOrder = []string{
	GradePreK, GradeKG, GradeG1, GradeG2, GradeG3,
	GradeG4, GradeG5, GradeG6, GradeG7, GradeG8,
}

var gradeProfiles = map[string]Profile{
	GradePreK: {
		Grade:       GradePreK,
		MinLessons:  span(1, 26),
		Denominator: 26,
		LetterBased: true,
	},
	GradeKG: {
		Grade:       GradeKG,
		MinLessons:  span(1, 34),
		Denominator: 34,
	},
	GradeG1: {
		Grade:       GradeG1,
		MinLessons:  append(span(1, 34), span(42, 53)...),
		CurrentYear: span(42, 53),
		Denominator: 44,
	},
	GradeG2: {
		Grade:       GradeG2,
		MinLessons:  append(span(1, 34), span(42, 62)...),
		CurrentYear: span(54, 62),
		Denominator: 56,
	},
	GradeG3: {
		Grade:       GradeG3,
		MinLessons:  append(span(1, 34), span(42, 62)...),
		CurrentYear: span(63, 83),
		Denominator: 56,
	},
	GradeG4: {
		Grade:       GradeG4,
		MinLessons:  append(span(1, 34), span(42, 110)...),
		CurrentYear: span(84, 110),
		Denominator: 103,
	},
	GradeG5: {
		Grade:       GradeG5,
		MinLessons:  append(span(1, 34), span(42, 110)...),
		CurrentYear: span(84, 110),
		Denominator: 103,
	},
	GradeG6: {
		Grade:       GradeG6,
		MinLessons:  append(span(1, 34), span(42, 110)...),
		CurrentYear: span(84, 128),
		Denominator: 103,
	},
	GradeG7: {
		Grade:       GradeG7,
		MinLessons:  append(span(1, 34), span(42, 110)...),
		CurrentYear: span(84, 128),
		Denominator: 103,
	},
	GradeG8: {
		Grade:       GradeG8,
		MinLessons:  append(span(1, 34), span(42, 110)...),
		CurrentYear: span(84, 128),
		Denominator: 103,
	},
}
