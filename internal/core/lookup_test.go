package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/model"
)

func TestLookupByID(t *testing.T) {
	points := []model.GoodPoint{
		{ID: "abc123", StudentName: "Noa"},
		{ID: "def456", StudentName: "Omer"},
	}

	t.Run("found", func(t *testing.T) {
		result := LookupByID(points, "def456")
		require.NotNil(t, result)
		assert.Equal(t, "Omer", result.StudentName)
	})

	t.Run("not found", func(t *testing.T) {
		assert.Nil(t, LookupByID(points, "notexist"))
	})

	t.Run("empty slice", func(t *testing.T) {
		assert.Nil(t, LookupByID(nil, "abc123"))
	})
}

func TestLookupByIndex(t *testing.T) {
	points := []model.GoodPoint{
		{ID: "1", StudentName: "Noa"},
		{ID: "2", StudentName: "Omer"},
		{ID: "3", StudentName: "Avi"},
	}

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first", 1, "Noa"},
		{"last", 3, "Avi"},
		{"zero", 0, ""},
		{"negative", -1, ""},
		{"too high", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LookupByIndex(points, tt.index)
			if tt.want == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.want, result.StudentName)
		})
	}
}

func TestSearch(t *testing.T) {
	points := []model.GoodPoint{
		{ID: "1", StudentName: "Noa Levi", Text: "Great homework"},
		{ID: "2", StudentName: "Omer Katz", Text: "Helped clean up"},
		{ID: "3", StudentName: "Avi Cohen", Text: "Kind to others"},
	}

	t.Run("empty term returns all", func(t *testing.T) {
		assert.Len(t, Search(points, "  "), 3)
	})

	t.Run("matches student name", func(t *testing.T) {
		result := Search(points, "omer")
		require.NotEmpty(t, result)
		assert.Equal(t, "2", result[0].ID)
	})

	t.Run("matches text", func(t *testing.T) {
		result := Search(points, "homework")
		require.NotEmpty(t, result)
		assert.Equal(t, "1", result[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Search(points, "zzzz"))
	})
}

func TestUniqueStudents(t *testing.T) {
	points := []model.GoodPoint{
		{StudentID: "s2", StudentName: "omer"},
		{StudentID: "s1", StudentName: "Avi"},
		{StudentID: "s2", StudentName: "omer"},
		{StudentID: ""},
	}

	got := UniqueStudents(points)
	assert.Equal(t, []StudentRef{{ID: "s1", Name: "Avi"}, {ID: "s2", Name: "omer"}}, got)
}

func TestSearchStudents(t *testing.T) {
	students := []model.Student{
		{ID: "1", FirstName: "Noa", LastName: "Levi"},
		{ID: "2", FirstName: "Omer", LastName: "Katz"},
	}

	assert.Len(t, SearchStudents(students, ""), 2)

	result := SearchStudents(students, "levi")
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
}
