package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goodpoints/goodpoints/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByTime    SortField = "time"
	SortByStudent SortField = "student"
	SortByClass   SortField = "class"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options (newest first).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByTime,
		Order: SortDesc,
	}
}

// Sort sorts good points in place. Ties keep their current order.
func Sort(points []model.GoodPoint, opts SortOptions) {
	if len(points) == 0 {
		return
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if opts.Order == SortDesc {
			a, b = b, a
		}

		switch opts.Field {
		case SortByStudent:
			return strings.ToLower(a.StudentName) < strings.ToLower(b.StudentName)
		case SortByClass:
			return strings.ToLower(a.ClassID) < strings.ToLower(b.ClassID)
		default:
			return a.CreatedAt < b.CreatedAt
		}
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "created", "t", "":
		return SortByTime, nil
	case "student", "name", "s":
		return SortByStudent, nil
	case "class", "c":
		return SortByClass, nil
	default:
		return "", fmt.Errorf("invalid sort field: %s (use time, student, or class)", s)
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d", "":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (use asc or desc)", s)
	}
}
