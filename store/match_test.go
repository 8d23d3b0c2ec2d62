package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMatches(t *testing.T) {
	stateID := primitive.NewObjectID()
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	doc := map[string]any{
		"_id":       primitive.NewObjectID(),
		"name":      "Blue Shirt",
		"price":     499.0,
		"stock":     int64(3),
		"stateId":   stateID,
		"tags":      []any{"summer", "cotton"},
		"createdAt": created,
		"items": []any{
			map[string]any{"productId": stateID, "quantity": 2.0},
		},
		"isDeleted": false,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"equality", Filter{"name": "Blue Shirt"}, true},
		{"numeric kinds compare", Filter{"stock": 3.0}, true},
		{"object id", Filter{"stateId": stateID}, true},
		{"array membership", Filter{"tags": "cotton"}, true},
		{"missing equals nil", Filter{"deletedAt": nil}, true},
		{"missing is not false", Filter{"archived": false}, false},
		{"$in", Filter{"name": map[string]any{"$in": []any{"x", "Blue Shirt"}}}, true},
		{"$nin", Filter{"tags": map[string]any{"$nin": []any{"winter"}}}, true},
		{"$ne", Filter{"isDeleted": map[string]any{"$ne": true}}, true},
		{"range", Filter{"price": map[string]any{"$gte": 100.0, "$lt": 500.0}}, true},
		{"range miss", Filter{"price": map[string]any{"$gt": 499.0}}, false},
		{"date range", Filter{"createdAt": map[string]any{"$lt": created.Add(time.Hour)}}, true},
		{"$exists", Filter{"tags": map[string]any{"$exists": true}}, true},
		{"$exists false", Filter{"ghost": map[string]any{"$exists": false}}, true},
		{"$regex", Filter{"name": map[string]any{"$regex": "^blue", "$options": "i"}}, true},
		{"$size", Filter{"tags": map[string]any{"$size": 2.0}}, true},
		{"dotted path into array", Filter{"items.quantity": 2.0}, true},
		{"$or", Filter{"$or": []any{map[string]any{"name": "x"}, map[string]any{"price": 499.0}}}, true},
		{"$and", Filter{"$and": []any{map[string]any{"name": "x"}, map[string]any{"price": 499.0}}}, false},
		{"$nor", Filter{"$nor": []any{map[string]any{"name": "x"}}}, true},
		{"all keys must match", Filter{"name": "Blue Shirt", "price": 1.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Matches(doc, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesRejectsUnknownOperators(t *testing.T) {
	_, err := Matches(map[string]any{"a": 1.0}, Filter{"a": map[string]any{"$near": 1.0}})
	assert.Error(t, err)

	_, err = Matches(map[string]any{"a": 1.0}, Filter{"$where": "true"})
	assert.Error(t, err)
}

func TestParseOptions(t *testing.T) {
	opts := ParseOptions(map[string]any{
		"page":       2.0,
		"limit":      5000.0,
		"pagination": false,
		"sort":       map[string]any{"createdAt": -1.0, "name": 1.0},
		"select":     "name price",
		"populate":   []any{"categoryId"},
	})

	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, MaxLimit, opts.Limit)
	assert.False(t, opts.Pagination)
	assert.Equal(t, []SortField{{Field: "createdAt", Desc: true}, {Field: "name"}}, opts.Sort)
	assert.Equal(t, []string{"name", "price"}, opts.Select)
	assert.Equal(t, []string{"categoryId"}, opts.Populate)

	def := ParseOptions(map[string]any{"page": -3.0})
	assert.Equal(t, DefaultOptions(), def)
}

func TestParseSortString(t *testing.T) {
	assert.Equal(t, []SortField{{Field: "createdAt", Desc: true}, {Field: "name"}}, ParseSort("-createdAt +name"))
	assert.Nil(t, ParseSort(nil))
}
