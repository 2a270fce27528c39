package model

import (
	"sort"
	"strings"
)

// Student is a member of a class.
type Student struct {
	ID        string `yaml:"id" json:"id" validate:"required"`
	FirstName string `yaml:"first_name" json:"first_name" validate:"required"`
	LastName  string `yaml:"last_name" json:"last_name"`
}

// FullName returns "First Last", or just the first name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Class is a group of students taught together.
type Class struct {
	ID       string    `yaml:"id" json:"id" validate:"required"`
	Name     string    `yaml:"name" json:"name" validate:"required"`
	Grade    int       `yaml:"grade,omitempty" json:"grade,omitempty" validate:"gte=0,lte=12"`
	Starred  bool      `yaml:"starred,omitempty" json:"starred"`
	Students []Student `yaml:"students,omitempty" json:"students,omitempty" validate:"dive"`
}

// Student returns the student with the given ID, or nil.
func (c *Class) Student(id string) *Student {
	for i := range c.Students {
		if c.Students[i].ID == id {
			return &c.Students[i]
		}
	}
	return nil
}

// ClassLess orders classes by name (case-insensitive), then ID.
func ClassLess(a, b Class) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

// SortClasses sorts classes in place with ClassLess.
func SortClasses(classes []Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		return ClassLess(classes[i], classes[j])
	})
}
