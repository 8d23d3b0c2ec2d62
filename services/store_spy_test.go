package services

import (
	"context"
	"testing"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// countingStore records every collection call as "<collection>.<op>".
type countingStore struct {
	store.Store
	calls map[string]int
	// afterUpdateMany runs once UpdateMany has returned, if set.
	afterUpdateMany func(ctx context.Context, coll store.Collection, filter store.Filter)
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemoryStore(), calls: map[string]int{}}
}

func (s *countingStore) Collection(name string) store.Collection {
	return &countingCollection{Collection: s.Store.Collection(name), store: s}
}

func (s *countingStore) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *countingStore) reset() { s.calls = map[string]int{} }

type countingCollection struct {
	store.Collection
	store *countingStore
}

func (c *countingCollection) hit(op string) { c.store.calls[c.Name()+"."+op]++ }

func (c *countingCollection) Create(ctx context.Context, doc models.Record) (models.Record, error) {
	c.hit("Create")
	return c.Collection.Create(ctx, doc)
}

func (c *countingCollection) CreateMany(ctx context.Context, docs []models.Record) (int64, error) {
	c.hit("CreateMany")
	return c.Collection.CreateMany(ctx, docs)
}

func (c *countingCollection) FindOne(ctx context.Context, filter store.Filter) (models.Record, error) {
	c.hit("FindOne")
	return c.Collection.FindOne(ctx, filter)
}

func (c *countingCollection) Find(ctx context.Context, filter store.Filter, opts *store.FindOptions) ([]models.Record, error) {
	c.hit("Find")
	return c.Collection.Find(ctx, filter, opts)
}

func (c *countingCollection) Paginate(ctx context.Context, filter store.Filter, opts *store.Options) (*store.Page, error) {
	c.hit("Paginate")
	return c.Collection.Paginate(ctx, filter, opts)
}

func (c *countingCollection) Count(ctx context.Context, filter store.Filter) (int64, error) {
	c.hit("Count")
	return c.Collection.Count(ctx, filter)
}

func (c *countingCollection) UpdateOne(ctx context.Context, filter store.Filter, patch models.Record) (models.Record, error) {
	c.hit("UpdateOne")
	return c.Collection.UpdateOne(ctx, filter, patch)
}

func (c *countingCollection) UpdateMany(ctx context.Context, filter store.Filter, patch models.Record) (int64, error) {
	c.hit("UpdateMany")
	n, err := c.Collection.UpdateMany(ctx, filter, patch)
	if err == nil && c.store.afterUpdateMany != nil {
		c.store.afterUpdateMany(ctx, c.Collection, filter)
	}
	return n, err
}

func (c *countingCollection) DeleteOne(ctx context.Context, filter store.Filter) (models.Record, error) {
	c.hit("DeleteOne")
	return c.Collection.DeleteOne(ctx, filter)
}

func (c *countingCollection) DeleteMany(ctx context.Context, filter store.Filter) (int64, error) {
	c.hit("DeleteMany")
	return c.Collection.DeleteMany(ctx, filter)
}

func newCountedStates(t *testing.T) (*ResourceService, *countingStore, models.Principal) {
	t.Helper()
	st := newCountingStore()
	registry := resources.Default()
	log := logger.NewNop()
	svc := NewResourceService(st, registry.MustGet(resources.State), NewDependentResolver(st, registry, log), log)
	admin := models.Principal{ID: primitive.NewObjectID().Hex(), Platform: models.PlatformAdmin}
	return svc, st, admin
}

func TestCountOnlyLeavesPaginateUntouched(t *testing.T) {
	svc, st, admin := newCountedStates(t)
	ctx := context.Background()
	for _, name := range []string{"Goa", "Kerala"} {
		_, err := svc.Create(ctx, admin, map[string]any{"stateName": name})
		require.NoError(t, err)
	}
	st.reset()

	res, err := svc.List(ctx, ListRequest{IsCountOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalRecords)
	assert.Zero(t, st.calls["state.Paginate"])
	assert.Zero(t, st.calls["state.Find"])
	assert.Equal(t, 1, st.calls["state.Count"])
}

func TestMalformedIDNeverReachesStore(t *testing.T) {
	svc, st, admin := newCountedStates(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "123", nil)
	assert.True(t, ierr.IsValidation(err))
	_, err = svc.Update(ctx, admin, "xyz", map[string]any{"stateName": "Goa"}, true)
	assert.True(t, ierr.IsValidation(err))
	_, err = svc.SoftDelete(ctx, admin, "not-an-id")
	assert.True(t, ierr.IsValidation(err))
	_, err = svc.Delete(ctx, "", false)
	assert.True(t, ierr.IsBadRequest(err))
	_, err = svc.DeleteMany(ctx, []any{"abc"}, true)
	assert.True(t, ierr.IsValidation(err))

	assert.Zero(t, st.total(), "calls: %v", st.calls)
}

func TestSoftDeleteRecordRemovedMeanwhile(t *testing.T) {
	svc, st, admin := newCountedStates(t)
	ctx := context.Background()
	rec, err := svc.Create(ctx, admin, map[string]any{"stateName": "Goa"})
	require.NoError(t, err)
	id, _ := rec.ID()

	st.afterUpdateMany = func(ctx context.Context, coll store.Collection, filter store.Filter) {
		_, err := coll.DeleteMany(ctx, filter)
		require.NoError(t, err)
	}

	_, err = svc.SoftDelete(ctx, admin, id.Hex())
	assert.True(t, ierr.IsNotFound(err))
}
