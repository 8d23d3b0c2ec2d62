package store

import (
	"context"
	"testing"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx    context.Context
	store  *MemoryStore
	cities Collection
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
	s.cities = s.store.Collection("city")
}

func (s *MemoryStoreSuite) seedCities(names ...string) []models.Record {
	out := make([]models.Record, 0, len(names))
	for i, n := range names {
		rec, err := s.cities.Create(s.ctx, models.Record{"cityName": n, "rank": float64(i)})
		s.Require().NoError(err)
		out = append(out, rec)
	}
	return out
}

func (s *MemoryStoreSuite) TestCreateAssignsID() {
	rec, err := s.cities.Create(s.ctx, models.Record{"cityName": "Pune"})
	s.NoError(err)
	id, ok := rec.ID()
	s.True(ok)
	s.False(id.IsZero())

	found, err := s.cities.FindOne(s.ctx, Filter{"_id": id})
	s.NoError(err)
	s.Equal("Pune", found["cityName"])
}

func (s *MemoryStoreSuite) TestCreateKeepsGivenID() {
	id := primitive.NewObjectID()
	rec, err := s.cities.Create(s.ctx, models.Record{"_id": id, "cityName": "Goa"})
	s.NoError(err)
	s.Equal(id, rec["_id"])

	_, err = s.cities.Create(s.ctx, models.Record{"_id": id})
	s.True(ierr.IsBadRequest(err))
}

func (s *MemoryStoreSuite) TestStoredDocumentsAreIsolated() {
	in := models.Record{"cityName": "Delhi", "tags": []any{"north"}}
	rec, err := s.cities.Create(s.ctx, in)
	s.NoError(err)

	in["cityName"] = "changed"
	rec["tags"].([]any)[0] = "changed"

	found, err := s.cities.FindOne(s.ctx, Filter{"_id": rec["_id"]})
	s.NoError(err)
	s.Equal("Delhi", found["cityName"])
	s.Equal([]any{"north"}, found["tags"])
}

func (s *MemoryStoreSuite) TestCreateMany() {
	n, err := s.cities.CreateMany(s.ctx, []models.Record{{"cityName": "A"}, {"cityName": "B"}})
	s.NoError(err)
	s.Equal(int64(2), n)

	count, err := s.cities.Count(s.ctx, Filter{})
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *MemoryStoreSuite) TestCreateManyRejectsWholeBatchOnDuplicate() {
	id := primitive.NewObjectID()
	_, err := s.cities.CreateMany(s.ctx, []models.Record{{"_id": id}, {"_id": id}})
	s.Error(err)

	count, err := s.cities.Count(s.ctx, Filter{})
	s.NoError(err)
	s.Zero(count)
}

func (s *MemoryStoreSuite) TestFindOneNotFound() {
	_, err := s.cities.FindOne(s.ctx, Filter{"cityName": "Nowhere"})
	s.True(ierr.IsNotFound(err))
}

func (s *MemoryStoreSuite) TestPaginate() {
	s.seedCities("a", "b", "c", "d", "e")

	opts := &Options{Page: 2, Limit: 2, Pagination: true, Sort: []SortField{{Field: "rank", Desc: true}}}
	page, err := s.cities.Paginate(s.ctx, Filter{}, opts)
	s.NoError(err)
	s.Equal(int64(5), page.Total)
	s.Equal(3, page.TotalPages)
	s.Len(page.Docs, 2)
	s.Equal("c", page.Docs[0]["cityName"])
	s.Equal("b", page.Docs[1]["cityName"])

	meta := page.Meta()
	s.True(meta.HasPrevPage)
	s.True(meta.HasNextPage)
}

func (s *MemoryStoreSuite) TestPaginateWithoutPagination() {
	s.seedCities("a", "b", "c")

	page, err := s.cities.Paginate(s.ctx, Filter{}, &Options{Page: 3, Limit: 1, Pagination: false})
	s.NoError(err)
	s.Len(page.Docs, 3)
	s.Equal(1, page.Page)
	s.Equal(1, page.TotalPages)
}

func (s *MemoryStoreSuite) TestPaginateZeroMatchesIsNotFound() {
	s.seedCities("a")
	_, err := s.cities.Paginate(s.ctx, Filter{"cityName": "zzz"}, nil)
	s.True(ierr.IsNotFound(err))
}

func (s *MemoryStoreSuite) TestPaginateSelect() {
	s.seedCities("a")
	page, err := s.cities.Paginate(s.ctx, Filter{}, &Options{Page: 1, Limit: 10, Pagination: true, Select: []string{"cityName"}})
	s.NoError(err)
	s.Contains(page.Docs[0], "_id")
	s.Contains(page.Docs[0], "cityName")
	s.NotContains(page.Docs[0], "rank")
}

func (s *MemoryStoreSuite) TestUpdateOneMerges() {
	recs := s.seedCities("a")
	id := recs[0]["_id"]

	updated, err := s.cities.UpdateOne(s.ctx, Filter{"_id": id}, models.Record{"pincode": "411001", "_id": primitive.NewObjectID()})
	s.NoError(err)
	s.Equal(id, updated["_id"])
	s.Equal("a", updated["cityName"])
	s.Equal("411001", updated["pincode"])

	_, err = s.cities.UpdateOne(s.ctx, Filter{"_id": primitive.NewObjectID()}, models.Record{"x": 1})
	s.True(ierr.IsNotFound(err))
}

func (s *MemoryStoreSuite) TestUpdateManyCountsMatches() {
	s.seedCities("a", "b", "c")
	n, err := s.cities.UpdateMany(s.ctx, Filter{"cityName": map[string]any{"$in": []any{"a", "c"}}}, models.Record{"isDeleted": true})
	s.NoError(err)
	s.Equal(int64(2), n)

	n, err = s.cities.Count(s.ctx, Filter{"isDeleted": true})
	s.NoError(err)
	s.Equal(int64(2), n)

	n, err = s.cities.UpdateMany(s.ctx, Filter{"cityName": "zzz"}, models.Record{"isDeleted": true})
	s.NoError(err)
	s.Zero(n)
}

func (s *MemoryStoreSuite) TestDelete() {
	recs := s.seedCities("a", "b", "c")

	removed, err := s.cities.DeleteOne(s.ctx, Filter{"_id": recs[0]["_id"]})
	s.NoError(err)
	s.Equal("a", removed["cityName"])

	_, err = s.cities.DeleteOne(s.ctx, Filter{"_id": recs[0]["_id"]})
	s.True(ierr.IsNotFound(err))

	n, err := s.cities.DeleteMany(s.ctx, Filter{})
	s.NoError(err)
	s.Equal(int64(2), n)
}

func (s *MemoryStoreSuite) TestPopulate() {
	states := s.store.Collection("state")
	state, err := states.Create(s.ctx, models.Record{"stateName": "Goa"})
	s.Require().NoError(err)

	_, err = s.cities.Create(s.ctx, models.Record{"cityName": "Panaji", "stateId": state["_id"]})
	s.Require().NoError(err)
	_, err = s.cities.Create(s.ctx, models.Record{"cityName": "Orphan", "stateId": primitive.NewObjectID()})
	s.Require().NoError(err)

	docs, err := s.cities.Find(s.ctx, Filter{}, &FindOptions{Sort: []SortField{{Field: "cityName"}}})
	s.Require().NoError(err)

	err = Populate(s.ctx, s.store, docs, []PopulateSpec{{Field: "stateId", Collection: "state"}})
	s.NoError(err)
	s.Nil(docs[0]["stateId"])
	populated, ok := docs[1]["stateId"].(models.Record)
	s.Require().True(ok)
	s.Equal("Goa", populated["stateName"])
}
