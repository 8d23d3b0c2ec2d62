package services

import (
	"context"
	"testing"
	"time"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResourceServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.MemoryStore
	registry *resources.Registry
	resolver *DependentResolver
	admin    models.Principal
	states   *ResourceService
	cities   *ResourceService
	category *ResourceService
}

func TestResourceService(t *testing.T) {
	suite.Run(t, new(ResourceServiceSuite))
}

func (s *ResourceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemoryStore()
	s.registry = resources.Default()
	log := logger.NewNop()
	s.resolver = NewDependentResolver(s.store, s.registry, log)
	s.admin = models.Principal{ID: primitive.NewObjectID().Hex(), Platform: models.PlatformAdmin, Role: "admin"}
	s.states = s.service(resources.State)
	s.cities = s.service(resources.City)
	s.category = s.service(resources.Category)
}

func (s *ResourceServiceSuite) service(name string) *ResourceService {
	return NewResourceService(s.store, s.registry.MustGet(name), s.resolver, logger.NewNop())
}

func (s *ResourceServiceSuite) createState(name string) models.Record {
	rec, err := s.states.Create(s.ctx, s.admin, map[string]any{"stateName": name})
	s.Require().NoError(err)
	return rec
}

func (s *ResourceServiceSuite) createCity(name string, state models.Record) models.Record {
	id, _ := state.ID()
	rec, err := s.cities.Create(s.ctx, s.admin, map[string]any{"cityName": name, "stateId": id.Hex()})
	s.Require().NoError(err)
	return rec
}

func (s *ResourceServiceSuite) TestCreateStampsOwnership() {
	other := primitive.NewObjectID().Hex()
	rec, err := s.states.Create(s.ctx, s.admin, map[string]any{
		"stateName": "Goa",
		"addedBy":   other,
		"region":    "west",
	})
	s.Require().NoError(err)

	s.Equal(s.admin.Value(), rec[models.FieldAddedBy])
	s.Equal(true, rec[models.FieldIsActive])
	s.Equal(false, rec[models.FieldIsDeleted])
	s.IsType(time.Time{}, rec[models.FieldCreatedAt])
	s.Equal("west", rec["region"], "unknown fields pass through")

	id, _ := rec.ID()
	got, err := s.states.Get(s.ctx, id.Hex(), nil)
	s.Require().NoError(err)
	s.Equal("Goa", got["stateName"])
	s.Equal(s.admin.Value(), got[models.FieldAddedBy])
}

func (s *ResourceServiceSuite) TestCreateValidation() {
	_, err := s.states.Create(s.ctx, s.admin, map[string]any{})
	s.True(ierr.IsValidation(err))
	s.EqualError(err, `"stateName" is required`)

	_, err = s.states.Create(s.ctx, s.admin, map[string]any{"stateName": 12})
	s.True(ierr.IsValidation(err))
	s.EqualError(err, `"stateName" must be a string`)

	_, err = s.cities.Create(s.ctx, s.admin, map[string]any{"cityName": "Pune", "stateId": "nope"})
	s.EqualError(err, `"stateId" must be a valid ObjectId`)
}

func (s *ResourceServiceSuite) TestCreateCastsReferences() {
	state := s.createState("Kerala")
	city := s.createCity("Kochi", state)
	s.Equal(state[models.FieldID], city["stateId"])
}

func (s *ResourceServiceSuite) TestCreateAssignsFreshID() {
	foreign := primitive.NewObjectID()
	for _, given := range []any{"abc", foreign.Hex()} {
		rec, err := s.states.Create(s.ctx, s.admin, map[string]any{
			"stateName": "Goa",
			"_id":       given,
			"id":        given,
		})
		s.Require().NoError(err)

		id, ok := rec.ID()
		s.Require().True(ok, "stored _id must be an ObjectId")
		s.NotEqual(foreign, id)
		s.NotContains(rec, "id")

		got, err := s.states.Get(s.ctx, id.Hex(), nil)
		s.Require().NoError(err)
		s.Equal("Goa", got["stateName"])
	}

	n, err := s.states.CreateMany(s.ctx, s.admin, []any{
		map[string]any{"stateName": "Kerala", "_id": "abc"},
		map[string]any{"stateName": "Assam", "_id": foreign.Hex()},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	docs, err := s.states.Collection().Find(s.ctx, store.Filter{}, nil)
	s.Require().NoError(err)
	s.Len(docs, 4)
	for _, d := range docs {
		id, ok := d.ID()
		s.Require().True(ok)
		s.NotEqual(foreign, id)
	}
}

func (s *ResourceServiceSuite) TestCreateMany() {
	_, err := s.states.CreateMany(s.ctx, s.admin, nil)
	s.True(ierr.IsBadRequest(err))

	_, err = s.states.CreateMany(s.ctx, s.admin, []any{
		map[string]any{"stateName": "A"},
		map[string]any{"stateName": 3},
	})
	s.True(ierr.IsValidation(err))
	s.EqualError(err, `data[1]: "stateName" must be a string`)
	n, _ := s.states.Collection().Count(s.ctx, store.Filter{})
	s.Zero(n, "an invalid item rejects the whole batch")

	_, err = s.states.CreateMany(s.ctx, s.admin, []any{"not an object"})
	s.EqualError(err, `"data[0]" must be an object`)

	n, err = s.states.CreateMany(s.ctx, s.admin, []any{
		map[string]any{"stateName": "A", "addedBy": primitive.NewObjectID().Hex()},
		map[string]any{"stateName": "B"},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	docs, err := s.states.Collection().Find(s.ctx, store.Filter{}, nil)
	s.Require().NoError(err)
	for _, d := range docs {
		s.Equal(s.admin.Value(), d[models.FieldAddedBy])
	}
}

func (s *ResourceServiceSuite) TestListCountOnlyNeverPaginates() {
	s.createState("A")
	s.createState("B")

	res, err := s.states.List(s.ctx, ListRequest{IsCountOnly: true})
	s.Require().NoError(err)
	s.True(res.CountOnly)
	s.Nil(res.Page)
	s.Equal(int64(2), res.TotalRecords)
}

func (s *ResourceServiceSuite) TestListPaginates() {
	for _, n := range []string{"C", "A", "B"} {
		s.createState(n)
	}

	res, err := s.states.List(s.ctx, ListRequest{
		Options: map[string]any{"page": 2, "limit": 2, "sort": "stateName"},
	})
	s.Require().NoError(err)
	s.Equal(int64(3), res.TotalRecords)
	s.Require().Len(res.Page.Docs, 1)
	s.Equal("C", res.Page.Docs[0]["stateName"])
	s.Equal(2, res.Page.TotalPages)

	res, err = s.states.List(s.ctx, ListRequest{Query: map[string]any{"stateName": []any{"A", "B"}}})
	s.Require().NoError(err)
	s.Equal(int64(2), res.TotalRecords)
}

func (s *ResourceServiceSuite) TestListNotFoundAndValidation() {
	_, err := s.states.List(s.ctx, ListRequest{})
	s.True(ierr.IsNotFound(err))

	_, err = s.states.List(s.ctx, ListRequest{Query: map[string]any{"isActive": "yes"}})
	s.True(ierr.IsValidation(err))
}

func (s *ResourceServiceSuite) TestListPopulate() {
	state := s.createState("Goa")
	s.createCity("Panaji", state)

	res, err := s.cities.List(s.ctx, ListRequest{Options: map[string]any{"populate": "stateId"}})
	s.Require().NoError(err)
	ref, ok := res.Page.Docs[0]["stateId"].(models.Record)
	s.Require().True(ok)
	s.Equal("Goa", ref["stateName"])

	_, err = s.cities.List(s.ctx, ListRequest{Options: map[string]any{"populate": "cityName"}})
	s.True(ierr.IsValidation(err))
}

func (s *ResourceServiceSuite) TestAuditFieldsAreNotPopulatable() {
	rec := s.createState("Goa")
	id, _ := rec.ID()

	for _, field := range []string{models.FieldAddedBy, models.FieldUpdatedBy} {
		_, err := s.states.List(s.ctx, ListRequest{Options: map[string]any{"populate": field}})
		s.True(ierr.IsValidation(err), field)
		_, err = s.states.Get(s.ctx, id.Hex(), []string{field})
		s.True(ierr.IsValidation(err), field)
	}
}

func (s *ResourceServiceSuite) TestGetRejectsMalformedID() {
	_, err := s.states.Get(s.ctx, "123", nil)
	s.True(ierr.IsValidation(err))

	_, err = s.states.Get(s.ctx, "", nil)
	s.True(ierr.IsBadRequest(err))

	_, err = s.states.Get(s.ctx, primitive.NewObjectID().Hex(), nil)
	s.True(ierr.IsNotFound(err))
}

func (s *ResourceServiceSuite) TestCount() {
	s.createState("A")
	s.createState("B")

	n, err := s.states.Count(s.ctx, map[string]any{"stateName": "A"})
	s.NoError(err)
	s.Equal(int64(1), n)

	_, err = s.states.Count(s.ctx, map[string]any{"isDeleted": 1})
	s.True(ierr.IsValidation(err))
}

func (s *ResourceServiceSuite) TestUpdate() {
	rec := s.createState("Goa")
	id, _ := rec.ID()
	editor := models.Principal{ID: primitive.NewObjectID().Hex(), Platform: models.PlatformAdmin}

	_, err := s.states.Update(s.ctx, editor, id.Hex(), map[string]any{"isActive": false}, false)
	s.True(ierr.IsValidation(err), "full update enforces required fields")

	updated, err := s.states.Update(s.ctx, editor, id.Hex(), map[string]any{
		"isActive": false,
		"addedBy":  editor.ID,
		"_id":      primitive.NewObjectID().Hex(),
	}, true)
	s.Require().NoError(err)
	s.Equal(false, updated[models.FieldIsActive])
	s.Equal(editor.Value(), updated[models.FieldUpdatedBy])
	s.Equal(s.admin.Value(), updated[models.FieldAddedBy])
	s.Equal(id, updated[models.FieldID])

	_, err = s.states.Update(s.ctx, editor, primitive.NewObjectID().Hex(), map[string]any{"stateName": "x"}, false)
	s.True(ierr.IsNotFound(err))
}

func (s *ResourceServiceSuite) TestUpdateMany() {
	s.createState("A")
	s.createState("B")

	_, err := s.states.UpdateMany(s.ctx, s.admin, BulkUpdateRequest{Data: map[string]any{"isActive": false}})
	s.True(ierr.IsBadRequest(err))

	n, err := s.states.UpdateMany(s.ctx, s.admin, BulkUpdateRequest{
		Filter: map[string]any{"isActive": true},
		Data:   map[string]any{"isActive": false},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.states.UpdateMany(s.ctx, s.admin, BulkUpdateRequest{
		Filter: map[string]any{"stateName": "missing"},
		Data:   map[string]any{"isActive": true},
	})
	s.True(ierr.IsNotFound(err))
}

func (s *ResourceServiceSuite) TestSoftDeleteCascades() {
	state := s.createState("Goa")
	city := s.createCity("Panaji", state)
	sid, _ := state.ID()
	cid, _ := city.ID()

	deleted, err := s.states.SoftDelete(s.ctx, s.admin, sid.Hex())
	s.Require().NoError(err)
	s.Equal(true, deleted[models.FieldIsDeleted])
	s.Equal(sid, deleted[models.FieldID])

	got, err := s.states.Get(s.ctx, sid.Hex(), nil)
	s.Require().NoError(err, "soft deleted records stay retrievable")
	s.Equal(true, got[models.FieldIsDeleted])
	s.Equal(s.admin.Value(), got[models.FieldUpdatedBy])

	child, err := s.cities.Get(s.ctx, cid.Hex(), nil)
	s.Require().NoError(err)
	s.Equal(true, child[models.FieldIsDeleted])

	_, err = s.states.SoftDelete(s.ctx, s.admin, primitive.NewObjectID().Hex())
	s.True(ierr.IsNotFound(err))
}

func (s *ResourceServiceSuite) TestSoftDeleteMany() {
	a, _ := s.createState("A").ID()
	b, _ := s.createState("B").ID()

	_, err := s.states.SoftDeleteMany(s.ctx, s.admin, nil)
	s.True(ierr.IsBadRequest(err))

	_, err = s.states.SoftDeleteMany(s.ctx, s.admin, []any{a.Hex(), "bad"})
	s.EqualError(err, `"ids[1]" must be a valid ObjectId`)

	n, err := s.states.SoftDeleteMany(s.ctx, s.admin, []any{a.Hex(), b.Hex(), a.Hex()})
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func (s *ResourceServiceSuite) TestDeleteWarningDoesNotMutate() {
	state := s.createState("Goa")
	s.createCity("Panaji", state)
	s.createCity("Margao", state)
	sid, _ := state.ID()

	res, err := s.states.Delete(s.ctx, sid.Hex(), true)
	s.Require().NoError(err)
	s.True(res.Warning)
	s.Equal(map[string]int64{resources.State: 1, resources.City: 2}, res.Affected)

	n, _ := s.cities.Collection().Count(s.ctx, store.Filter{})
	s.Equal(int64(2), n)
}

func (s *ResourceServiceSuite) TestDeleteCascades() {
	state := s.createState("Goa")
	s.createCity("Panaji", state)
	other := s.createState("Kerala")
	sid, _ := state.ID()

	res, err := s.states.Delete(s.ctx, sid.Hex(), false)
	s.Require().NoError(err)
	s.Require().Len(res.Deleted, 1)
	s.Equal("Goa", res.Deleted[0]["stateName"])

	n, _ := s.cities.Collection().Count(s.ctx, store.Filter{})
	s.Zero(n)
	oid, _ := other.ID()
	_, err = s.states.Get(s.ctx, oid.Hex(), nil)
	s.NoError(err)

	_, err = s.states.Delete(s.ctx, sid.Hex(), false)
	s.True(ierr.IsNotFound(err))
}

func (s *ResourceServiceSuite) TestDeleteSelfReferencingCategories() {
	root, err := s.category.Create(s.ctx, s.admin, map[string]any{"name": "Clothing"})
	s.Require().NoError(err)
	rid, _ := root.ID()
	child, err := s.category.Create(s.ctx, s.admin, map[string]any{"name": "Shirts", "parentCategoryId": rid.Hex()})
	s.Require().NoError(err)
	cid, _ := child.ID()

	// Close the loop so the walk has to stop on its own.
	_, err = s.category.Update(s.ctx, s.admin, rid.Hex(), map[string]any{"parentCategoryId": cid.Hex()}, true)
	s.Require().NoError(err)

	res, err := s.category.Delete(s.ctx, rid.Hex(), true)
	s.Require().NoError(err)
	s.Equal(int64(2), res.Affected[resources.Category])

	res, err = s.category.DeleteMany(s.ctx, []any{rid.Hex()}, false)
	s.Require().NoError(err)
	s.Len(res.Deleted, 1)
	n, _ := s.category.Collection().Count(s.ctx, store.Filter{})
	s.Zero(n)
}
