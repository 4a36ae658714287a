package shoppinglist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	testCases := []struct {
		name     string
		items    []Item
		expected []Line
	}{
		{
			name: "sums repeated ingredient",
			items: []Item{
				{Name: "eggs", Unit: "pcs", Amount: 2},
				{Name: "eggs", Unit: "pcs", Amount: 3},
				{Name: "flour", Unit: "g", Amount: 100},
			},
			expected: []Line{
				{Name: "eggs", Unit: "pcs", Amount: 5},
				{Name: "flour", Unit: "g", Amount: 100},
			},
		},
		{
			name:     "empty cart yields empty report",
			items:    nil,
			expected: []Line{},
		},
		{
			name: "same name different unit stays separate",
			items: []Item{
				{Name: "milk", Unit: "ml", Amount: 200},
				{Name: "milk", Unit: "cup", Amount: 1},
				{Name: "milk", Unit: "ml", Amount: 50},
			},
			expected: []Line{
				{Name: "milk", Unit: "ml", Amount: 250},
				{Name: "milk", Unit: "cup", Amount: 1},
			},
		},
		{
			name: "keeps first encounter order",
			items: []Item{
				{Name: "sugar", Unit: "g", Amount: 10},
				{Name: "butter", Unit: "g", Amount: 20},
				{Name: "apple", Unit: "pcs", Amount: 1},
				{Name: "butter", Unit: "g", Amount: 5},
			},
			expected: []Line{
				{Name: "sugar", Unit: "g", Amount: 10},
				{Name: "butter", Unit: "g", Amount: 25},
				{Name: "apple", Unit: "pcs", Amount: 1},
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aggregate(tt.items))
		})
	}
}
