package model

import "fmt"

// Status is a single lesson outcome letter.
type Status string

const (
	StatusPassed     Status = "Y"
	StatusNotPassed  Status = "N"
	StatusAbsent     Status = "A"
	StatusUnenrolled Status = "U"
)

// Valid reports whether s is one of the four recognized letters.
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusNotPassed, StatusAbsent, StatusUnenrolled:
		return true
	}
	return false
}

// Recordable reports whether s may be written into a status vector.
// U never enters a vector; it routes to unenrollment instead.
func (s Status) Recordable() bool {
	switch s {
	case StatusPassed, StatusNotPassed, StatusAbsent:
		return true
	}
	return false
}

// ParseStatus validates a raw status letter.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status letter %q", raw)
	}
	return s, nil
}

// StatusVector maps canonical lesson keys to recorded outcomes.
// Keys are decimal strings for numbered lessons and verbatim labels for
// named lessons. Stored as jsonb.
type StatusVector map[string]Status

// Clone returns a copy of the vector.
func (v StatusVector) Clone() StatusVector {
	out := make(StatusVector, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// EnrollmentStatus tracks whether a student is active in the program.
type EnrollmentStatus string

const (
	EnrollmentActive     EnrollmentStatus = "active"
	EnrollmentUnenrolled EnrollmentStatus = "unenrolled"
)
