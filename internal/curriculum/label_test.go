package curriculum

import "testing"

func TestExtractNumber(t *testing.T) {
	c := Default()

	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"Lesson 42", 42, true},
		{"lesson 7", 7, true},
		{"L42", 42, true},
		{"L 19", 19, true},
		{"l.103", 103, true},
		{"UFLI L42", 42, true},
		{"Unit 9 Lesson 42", 42, true}, // lesson token wins over bare 9
		{"42", 42, true},
		{"  128 ", 128, true},
		{"Lesson 129", 0, false}, // out of range
		{"Lesson 0", 0, false},
		{"Comprehension", 0, false},
		{"Sight Words", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.ExtractNumber(tt.label)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractNumber(%q) = (%d, %v), want (%d, %v)",
				tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	c := Default()

	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"Lesson 129", 129, true},
		{"L 200", 200, true},
		{"Lesson 0", 0, true},
		{"999", 999, true},
		{"Lesson 42", 0, false},
		{"42", 0, false},
		{"Comprehension", 0, false},
		{"Sight Words", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.OutOfRange(tt.label)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("OutOfRange(%q) = (%d, %v), want (%d, %v)",
				tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKey(t *testing.T) {
	c := Default()

	tests := []struct {
		label string
		want  string
	}{
		{"Lesson 42", "42"},
		{"L7", "7"},
		{"Comprehension", "Comprehension"},
		{"  Sight   Words ", "Sight Words"},
	}
	for _, tt := range tests {
		if got := c.Key(tt.label); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana Torres", "ana torres"},
		{"  ana   TORRES ", "ana torres"},
		{"Li Wei", "li wei"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
