package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationWindow(t *testing.T) {
	tests := []struct {
		name             string
		page, per, total int
		start, end       int
	}{
		{"first page", 1, 20, 25, 0, 20},
		{"last partial page", 2, 20, 25, 20, 25},
		{"past the end", 3, 20, 25, 25, 25},
		{"empty", 1, 20, 0, 0, 0},
		{"huge page", math.MaxInt / 10, 20, 1, 1, 1},
		{"max int page", math.MaxInt, 50, 3, 3, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := NewPagination(tc.page, tc.per, tc.total).Window()
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
}
