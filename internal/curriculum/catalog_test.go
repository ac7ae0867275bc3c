package curriculum

import "testing"

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()

	if c.Total() != 128 {
		t.Fatalf("Total() = %d, want 128", c.Total())
	}
	if len(c.Sections()) != 17 {
		t.Fatalf("Sections() = %d sections, want 17", len(c.Sections()))
	}
	if got := c.LessonName(42); got != "ch" {
		t.Errorf("LessonName(42) = %q, want %q", got, "ch")
	}
	if got := c.LessonName(54); got != "a_e" {
		t.Errorf("LessonName(54) = %q, want %q", got, "a_e")
	}
}

func TestReviewMembership(t *testing.T) {
	c := Default()

	tests := []struct {
		lesson int
		want   bool
	}{
		{35, true},
		{36, true},
		{37, true},
		{38, false}, // named "Review u" but scored as a regular lesson
		{39, true},
		{40, true},
		{41, true},
		{42, false},
		{49, true},
		{128, true},
		{1, false},
	}
	for _, tt := range tests {
		if got := c.IsReview(tt.lesson); got != tt.want {
			t.Errorf("IsReview(%d) = %v, want %v", tt.lesson, got, tt.want)
		}
	}
}

func TestPrimarySectionOwnership(t *testing.T) {
	c := Default()

	// Blends overlays lessons already owned by section 1.
	for _, n := range []int{25, 27} {
		s, ok := c.PrimarySection(n)
		if !ok || s.ID != 1 {
			t.Errorf("PrimarySection(%d) = %v (ok=%v), want section 1", n, s.ID, ok)
		}
	}

	// Every numbered lesson has exactly one owner.
	for n := 1; n <= c.Total(); n++ {
		if _, ok := c.PrimarySection(n); !ok {
			t.Errorf("PrimarySection(%d) has no owner", n)
		}
	}

	s, _ := c.PrimarySection(45)
	if s.Name != "Digraphs" {
		t.Errorf("PrimarySection(45).Name = %q, want Digraphs", s.Name)
	}
}

func TestSectionNonReviewSplit(t *testing.T) {
	c := Default()
	s, _ := c.SectionByID(3) // Alphabet Review, lessons 35-41

	reviews := s.Reviews(c)
	nonReviews := s.NonReview(c)

	wantReviews := []int{35, 36, 37, 39, 40, 41}
	if len(reviews) != len(wantReviews) {
		t.Fatalf("Reviews() = %v, want %v", reviews, wantReviews)
	}
	for i, n := range wantReviews {
		if reviews[i] != n {
			t.Fatalf("Reviews() = %v, want %v", reviews, wantReviews)
		}
	}
	if len(nonReviews) != 1 || nonReviews[0] != 38 {
		t.Errorf("NonReview() = %v, want [38]", nonReviews)
	}
}

func TestProfileLookup(t *testing.T) {
	c := Default()

	tests := []struct {
		grade      string
		wantDenom  int
		wantMinLen int
	}{
		{GradePreK, 26, 26},
		{GradeKG, 34, 34},
		{GradeG1, 44, 46},   // 1-34 plus 42-53
		{GradeG3, 56, 55},   // 1-34 plus 42-62
		{GradeG6, 103, 103}, // 1-34 plus 42-110
		{"unknown", 34, 34}, // falls back to KG
	}
	for _, tt := range tests {
		p := c.Profile(tt.grade)
		if p.Denominator != tt.wantDenom {
			t.Errorf("Profile(%q).Denominator = %d, want %d", tt.grade, p.Denominator, tt.wantDenom)
		}
		if len(p.MinLessons) != tt.wantMinLen {
			t.Errorf("Profile(%q) has %d min lessons, want %d", tt.grade, len(p.MinLessons), tt.wantMinLen)
		}
	}

	if !c.Profile(GradePreK).LetterBased {
		t.Error("PreK profile should be letter based")
	}
	if got := c.Profile(GradePreK).FoundationalDenominator(); got != 26 {
		t.Errorf("PreK FoundationalDenominator() = %d, want 26", got)
	}
	if got := c.Profile(GradeG4).FoundationalDenominator(); got != 34 {
		t.Errorf("G4 FoundationalDenominator() = %d, want 34", got)
	}
}
