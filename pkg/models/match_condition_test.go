package models_test

import (
	"testing"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestMatchCondition_Matches(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"status": "paid",
		"amount": float64(199),
		"order": map[string]any{
			"id":       "o-42",
			"priority": float64(2),
		},
	}

	tests := []struct {
		name      string
		condition models.MatchCondition
		payload   map[string]any
		want      bool
	}{
		{
			name:      "nil condition matches anything",
			condition: nil,
			payload:   payload,
			want:      true,
		},
		{
			name:      "empty condition matches anything",
			condition: models.MatchCondition{},
			payload:   payload,
			want:      true,
		},
		{
			name:      "plain equality on top-level field",
			condition: models.MatchCondition{"status": "paid"},
			payload:   payload,
			want:      true,
		},
		{
			name:      "plain equality mismatch",
			condition: models.MatchCondition{"status": "refunded"},
			payload:   payload,
			want:      false,
		},
		{
			name:      "dotted path into nested object",
			condition: models.MatchCondition{"order.id": "o-42"},
			payload:   payload,
			want:      true,
		},
		{
			name:      "missing path does not match plain equality",
			condition: models.MatchCondition{"order.missing": "x"},
			payload:   payload,
			want:      false,
		},
		{
			name:      "numeric equality across int and float",
			condition: models.MatchCondition{"order.priority": 2},
			payload:   payload,
			want:      true,
		},
		{
			name:      "all fields must match",
			condition: models.MatchCondition{"status": "paid", "amount": float64(5)},
			payload:   payload,
			want:      false,
		},
		{
			name:      "eq operator",
			condition: models.MatchCondition{"status": map[string]any{"$eq": "paid"}},
			payload:   payload,
			want:      true,
		},
		{
			name:      "ne operator on differing value",
			condition: models.MatchCondition{"status": map[string]any{"$ne": "refunded"}},
			payload:   payload,
			want:      true,
		},
		{
			name:      "ne operator on equal value",
			condition: models.MatchCondition{"status": map[string]any{"$ne": "paid"}},
			payload:   payload,
			want:      false,
		},
		{
			name:      "ne operator matches when path absent",
			condition: models.MatchCondition{"ghost": map[string]any{"$ne": "x"}},
			payload:   payload,
			want:      true,
		},
		{
			name:      "exists true on present path",
			condition: models.MatchCondition{"order.id": map[string]any{"$exists": true}},
			payload:   payload,
			want:      true,
		},
		{
			name:      "exists false on present path",
			condition: models.MatchCondition{"order.id": map[string]any{"$exists": false}},
			payload:   payload,
			want:      false,
		},
		{
			name:      "exists false on absent path",
			condition: models.MatchCondition{"ghost": map[string]any{"$exists": false}},
			payload:   payload,
			want:      true,
		},
		{
			name:      "unknown operator never matches",
			condition: models.MatchCondition{"amount": map[string]any{"$gt": float64(10)}},
			payload:   payload,
			want:      false,
		},
		{
			name:      "nil payload only matches empty condition",
			condition: models.MatchCondition{"status": "paid"},
			payload:   nil,
			want:      false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.condition.Matches(testCase.payload))
		})
	}
}
