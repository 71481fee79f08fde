package models

import (
	"fmt"
	"strings"
)

// Kind names one of the three record collections
type Kind string

const (
	KindStudent    Kind = "student"
	KindInstructor Kind = "instructor"
	KindCourse     Kind = "course"
)

// Kinds lists every collection in file order.
var Kinds = []Kind{KindStudent, KindInstructor, KindCourse}

// ParseKind accepts singular or plural collection names, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "students":
		return KindStudent, nil
	case "instructor", "instructors":
		return KindInstructor, nil
	case "course", "courses":
		return KindCourse, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Plural returns the collection name used for JSON keys, file names and sheets.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Title returns the capitalised plural for headings.
func (k Kind) Title() string {
	p := k.Plural()
	return strings.ToUpper(p[:1]) + p[1:]
}

// Dataset is the complete repository state, as persisted and restored.
type Dataset struct {
	Students    []Student    `json:"students"`
	Instructors []Instructor `json:"instructors"`
	Courses     []Course     `json:"courses"`
}

// Stats summarises the collection sizes.
type Stats struct {
	Students      int `json:"students"`
	Instructors   int `json:"instructors"`
	Courses       int `json:"courses"`
	Registrations int `json:"registrations"`
}
