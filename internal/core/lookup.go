package core

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/goodpoints/goodpoints/internal/model"
)

// LookupByID finds a good point by its ID.
// Returns nil if not found.
func LookupByID(points []model.GoodPoint, id string) *model.GoodPoint {
	for i := range points {
		if points[i].ID == id {
			return &points[i]
		}
	}
	return nil
}

// LookupByIndex finds a good point by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(points []model.GoodPoint, index int) *model.GoodPoint {
	idx := index - 1
	if idx < 0 || idx >= len(points) {
		return nil
	}
	return &points[idx]
}

// searchSource adapts good points to fuzzy.Source.
type searchSource []model.GoodPoint

func (s searchSource) String(i int) string {
	return s[i].StudentName + " " + s[i].Text
}

func (s searchSource) Len() int { return len(s) }

// Search fuzzy-matches term against student name and text.
// Results are ordered best match first.
func Search(points []model.GoodPoint, term string) []model.GoodPoint {
	term = strings.TrimSpace(term)
	if term == "" {
		return points
	}

	matches := fuzzy.FindFrom(term, searchSource(points))
	result := make([]model.GoodPoint, 0, len(matches))
	for _, m := range matches {
		result = append(result, points[m.Index])
	}
	return result
}

// StudentRef is a student as seen in the good points history.
type StudentRef struct {
	ID   string
	Name string
}

// UniqueStudents returns the students that appear in points, sorted by name.
func UniqueStudents(points []model.GoodPoint) []StudentRef {
	seen := make(map[string]bool)
	var students []StudentRef

	for _, g := range points {
		if g.StudentID != "" && !seen[g.StudentID] {
			seen[g.StudentID] = true
			students = append(students, StudentRef{ID: g.StudentID, Name: g.StudentName})
		}
	}

	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].Name) < strings.ToLower(students[j].Name)
	})
	return students
}

// studentSource adapts roster students to fuzzy.Source.
type studentSource []model.Student

func (s studentSource) String(i int) string { return s[i].FullName() }
func (s studentSource) Len() int            { return len(s) }

// SearchStudents fuzzy-matches term against student full names.
func SearchStudents(students []model.Student, term string) []model.Student {
	term = strings.TrimSpace(term)
	if term == "" {
		return students
	}

	matches := fuzzy.FindFrom(term, studentSource(students))
	result := make([]model.Student, 0, len(matches))
	for _, m := range matches {
		result = append(result, students[m.Index])
	}
	return result
}
