// Package core provides filtering, sorting, and lookup logic.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goodpoints/goodpoints/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Newer than
	FilterOpLess      FilterOp = "<"  // Older than
	FilterOpGreaterEq FilterOp = ">="
	FilterOpLessEq    FilterOp = "<="
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // student, student_id, class, teacher, text, preset, source, time
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex  *regexp.Regexp
	cutoff time.Time
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies criteria for filtering good points.
type FilterOptions struct {
	Since     time.Duration // Only good points newer than now-since (0=all)
	StudentID string        // Exact match on student
	ClassID   string        // Exact match on class
	Limit     int           // Maximum results (0=unlimited)
}

// Filter filters good points based on the provided options.
func Filter(points []model.GoodPoint, opts FilterOptions) []model.GoodPoint {
	now := time.Now()
	result := make([]model.GoodPoint, 0, len(points))

	for _, g := range points {
		if opts.Since > 0 {
			cutoff := now.Add(-opts.Since)
			if g.CreatedTime().Before(cutoff) {
				continue
			}
		}
		if opts.StudentID != "" && g.StudentID != opts.StudentID {
			continue
		}
		if opts.ClassID != "" && g.ClassID != opts.ClassID {
			continue
		}
		result = append(result, g)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 2w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: student, student_id, class, teacher, text, preset, source, time
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "class=7b" - good points for class 7b
//   - "text~homework" - text mentions homework
//   - "student~noa,time>7d" - Noa's good points from the last week
//   - "text~=(?i)kind(ness)?" - text matches a regex
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "class=7b" or "text~great".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init normalizes the field name and pre-parses the value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "student", "name", "student_name":
		c.Field = "student"
	case "student_id", "sid":
		c.Field = "student_id"
	case "class", "class_id":
		c.Field = "class"
	case "teacher", "from":
		c.Field = "teacher"
	case "text", "message", "body":
		c.Field = "text"
	case "preset", "preset_id":
		c.Field = "preset"
	case "source":
	case "time", "created", "created_at":
		c.Field = "time"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid time value: %w", err)
		}
		c.cutoff = time.Now().Add(-dur)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if a good point matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(g model.GoodPoint) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(g) {
			return false
		}
	}
	return true
}

// Match tests if a good point matches this single condition.
func (c *FilterCondition) Match(g model.GoodPoint) bool {
	switch c.Field {
	case "student":
		return c.matchString(g.StudentName)
	case "student_id":
		return c.matchString(g.StudentID)
	case "class":
		return c.matchString(g.ClassID)
	case "teacher":
		return c.matchString(g.Teacher)
	case "text":
		return c.matchString(g.Text)
	case "preset":
		return c.matchString(g.PresetID)
	case "source":
		return c.matchString(g.Source)
	case "time":
		return c.matchTime(g.CreatedTime())
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchTime compares against now minus the parsed duration:
// "time>1h" means newer than one hour.
func (c *FilterCondition) matchTime(t time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return t.After(c.cutoff)
	case FilterOpLess:
		return t.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !t.Before(c.cutoff)
	case FilterOpLessEq:
		return !t.After(c.cutoff)
	default:
		return false
	}
}

// FilterWithExpr filters good points using a filter expression.
func FilterWithExpr(points []model.GoodPoint, expr *FilterExpr) []model.GoodPoint {
	if expr == nil || len(expr.Conditions) == 0 {
		return points
	}

	result := make([]model.GoodPoint, 0, len(points))
	for _, g := range points {
		if expr.Match(g) {
			result = append(result, g)
		}
	}
	return result
}
