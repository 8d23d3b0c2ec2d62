package services

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/schema"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// serverOwnedFields are never taken from a create payload.
var serverOwnedFields = []string{models.FieldID, "id", models.FieldAddedBy, models.FieldUpdatedBy}

// ResourceService runs the validate, persist and cascade pipeline for one
// resource. One instance exists per descriptor.
type ResourceService struct {
	desc     *resources.Descriptor
	store    store.Store
	coll     store.Collection
	resolver *DependentResolver
	log      *logger.Logger
	now      func() time.Time
}

func NewResourceService(st store.Store, desc *resources.Descriptor, resolver *DependentResolver, log *logger.Logger) *ResourceService {
	return &ResourceService{
		desc:     desc,
		store:    st,
		coll:     st.Collection(desc.Name),
		resolver: resolver,
		log:      log.Named(desc.Name),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Name is the resource this service serves.
func (s *ResourceService) Name() string { return s.desc.Name }

// Collection exposes the underlying collection to read-only collaborators.
func (s *ResourceService) Collection() store.Collection { return s.coll }

// ListRequest is the body of a list call.
type ListRequest struct {
	Query       map[string]any `json:"query"`
	Options     map[string]any `json:"options"`
	IsCountOnly bool           `json:"isCountOnly"`
}

// ListResult carries either a page or, for count-only requests, just the total.
type ListResult struct {
	Page         *store.Page
	TotalRecords int64
	CountOnly    bool
}

// BulkUpdateRequest is the body of an updateBulk call.
type BulkUpdateRequest struct {
	Filter map[string]any `json:"filter"`
	Data   map[string]any `json:"data"`
}

// DeleteResult is either the removed record(s) or, when a warning was
// requested, the per-resource count of what would have been removed.
type DeleteResult struct {
	Deleted  []models.Record
	Affected map[string]int64
	Warning  bool
}

// Create validates payload, stamps ownership and stores one record. Client
// supplied ids and addedBy are discarded; the store assigns _id.
func (s *ResourceService) Create(ctx context.Context, p models.Principal, payload map[string]any) (models.Record, error) {
	payload = models.Record(payload).Without(serverOwnedFields...)
	if err := s.desc.Schema.Validate(payload, schema.ModeCreate).Err(); err != nil {
		return nil, err
	}

	doc := s.stampCreate(p, s.desc.Schema.Cast(payload))
	created, err := s.coll.Create(ctx, doc)
	if err != nil {
		s.log.Errorw("create failed", "error", err)
		return nil, err
	}
	return created, nil
}

// CreateMany validates every item before writing any of them; one invalid
// item rejects the whole batch.
func (s *ResourceService) CreateMany(ctx context.Context, p models.Principal, items []any) (int64, error) {
	if len(items) == 0 {
		return 0, ierr.NewBadRequest("data must be a non-empty array")
	}

	docs := make([]models.Record, 0, len(items))
	for i, item := range items {
		m, ok := schema.ToMap(item)
		if !ok {
			return 0, ierr.NewValidation(fmt.Sprintf(`"data[%d]" must be an object`, i))
		}
		m = models.Record(m).Without(serverOwnedFields...)
		if res := s.desc.Schema.Validate(m, schema.ModeCreate); !res.Valid {
			return 0, ierr.NewValidation(fmt.Sprintf("data[%d]: %s", i, res.Message))
		}
		docs = append(docs, s.stampCreate(p, s.desc.Schema.Cast(m)))
	}

	n, err := s.coll.CreateMany(ctx, docs)
	if err != nil {
		s.log.Errorw("bulk create failed", "error", err, "items", len(docs))
		return 0, err
	}
	return n, nil
}

// List validates the query, then either counts or paginates. Zero matches on
// a paginated read is a not-found error.
func (s *ResourceService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	check := models.Record(req.Query).Clone()
	if req.Options != nil {
		check[schema.KeyOptions] = req.Options
	}
	check[schema.KeyIsCountOnly] = req.IsCountOnly
	if err := s.desc.Schema.Validate(check, schema.ModeFilter).Err(); err != nil {
		return nil, err
	}

	filter := s.filterFrom(req.Query)
	if req.IsCountOnly {
		n, err := s.coll.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &ListResult{TotalRecords: n, CountOnly: true}, nil
	}

	opts := store.ParseOptions(req.Options)
	specs, err := s.populateSpecs(opts.Populate)
	if err != nil {
		return nil, err
	}
	page, err := s.coll.Paginate(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if err := store.Populate(ctx, s.store, page.Docs, specs); err != nil {
		return nil, err
	}
	return &ListResult{Page: page, TotalRecords: page.Total}, nil
}

// Get loads one record. A malformed id fails before the store is touched.
func (s *ResourceService) Get(ctx context.Context, id string, populate []string) (models.Record, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	specs, err := s.populateSpecs(populate)
	if err != nil {
		return nil, err
	}
	rec, err := s.coll.FindOne(ctx, store.Filter{models.FieldID: oid})
	if err != nil {
		return nil, err
	}
	if err := store.Populate(ctx, s.store, []models.Record{rec}, specs); err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns how many records match where.
func (s *ResourceService) Count(ctx context.Context, where map[string]any) (int64, error) {
	if err := s.desc.Schema.Validate(where, schema.ModeFilter).Err(); err != nil {
		return 0, err
	}
	return s.coll.Count(ctx, s.filterFrom(where))
}

// Update merges payload into the record with the given id. A full update
// enforces required fields; a partial one does not. _id and addedBy can
// never be changed this way.
func (s *ResourceService) Update(ctx context.Context, p models.Principal, id string, payload map[string]any, partial bool) (models.Record, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	patch := s.stampUpdate(p, models.Record(payload).Without(models.FieldAddedBy, models.FieldCreatedAt))
	mode := schema.ModeUpdate
	if partial {
		mode = schema.ModePatch
	}
	if err := s.desc.Schema.Validate(patch, mode).Err(); err != nil {
		return nil, err
	}

	patch = models.Record(s.desc.Schema.Cast(patch)).Without(models.FieldID, "id")
	updated, err := s.coll.UpdateOne(ctx, store.Filter{models.FieldID: oid}, patch)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateMany applies data to every record matching filter and returns the
// matched count. An empty filter is refused rather than touching everything.
func (s *ResourceService) UpdateMany(ctx context.Context, p models.Principal, req BulkUpdateRequest) (int64, error) {
	if len(req.Filter) == 0 {
		return 0, ierr.NewBadRequest("filter is required")
	}
	if len(req.Data) == 0 {
		return 0, ierr.NewBadRequest("data is required")
	}
	if err := s.desc.Schema.Validate(req.Filter, schema.ModeFilter).Err(); err != nil {
		return 0, err
	}

	patch := s.stampUpdate(p, models.Record(req.Data).Without(models.FieldAddedBy, models.FieldCreatedAt))
	if err := s.desc.Schema.Validate(patch, schema.ModePatch).Err(); err != nil {
		return 0, err
	}
	patch = models.Record(s.desc.Schema.Cast(patch)).Without(models.FieldID, "id")

	n, err := s.coll.UpdateMany(ctx, s.filterFrom(req.Filter), patch)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ierr.NewNotFound(s.desc.Name + " not found")
	}
	return n, nil
}

// SoftDelete flags the record and its dependents as deleted. The record stays
// retrievable by id.
func (s *ResourceService) SoftDelete(ctx context.Context, p models.Principal, id string) (models.Record, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	updated, err := s.resolver.CascadeSoftDelete(ctx, s.desc.Name, store.Filter{models.FieldID: oid}, s.softDeletePatch(p))
	if err != nil {
		return nil, err
	}
	// Removed between the update and the re-read.
	if len(updated) == 0 {
		return nil, ierr.NewNotFound(s.desc.Name + " not found")
	}
	return updated[0], nil
}

// SoftDeleteMany flags every listed record and its dependents as deleted.
func (s *ResourceService) SoftDeleteMany(ctx context.Context, p models.Principal, ids []any) (int64, error) {
	oids, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}
	updated, err := s.resolver.CascadeSoftDelete(ctx, s.desc.Name, idFilter(oids), s.softDeletePatch(p))
	if err != nil {
		return 0, err
	}
	return int64(len(updated)), nil
}

// Delete removes the record and its dependents, or only counts them when
// warning is set.
func (s *ResourceService) Delete(ctx context.Context, id string, warning bool) (*DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.delete(ctx, store.Filter{models.FieldID: oid}, warning)
}

// DeleteMany is Delete for a list of ids.
func (s *ResourceService) DeleteMany(ctx context.Context, ids []any, warning bool) (*DeleteResult, error) {
	oids, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	return s.delete(ctx, idFilter(oids), warning)
}

func (s *ResourceService) delete(ctx context.Context, filter store.Filter, warning bool) (*DeleteResult, error) {
	if warning {
		counts, err := s.resolver.CountAffected(ctx, s.desc.Name, filter)
		if err != nil {
			return nil, err
		}
		return &DeleteResult{Affected: counts, Warning: true}, nil
	}

	deleted, err := s.resolver.CascadeHardDelete(ctx, s.desc.Name, filter)
	if err != nil {
		return nil, err
	}
	s.log.Infow("deleted", "count", len(deleted))
	return &DeleteResult{Deleted: deleted}, nil
}

func (s *ResourceService) stampCreate(p models.Principal, doc map[string]any) models.Record {
	now := s.now()
	rec := models.Record(doc)
	rec[models.FieldAddedBy] = p.Value()
	rec[models.FieldCreatedAt] = now
	rec[models.FieldUpdatedAt] = now
	if _, ok := rec[models.FieldIsActive]; !ok {
		rec[models.FieldIsActive] = true
	}
	if _, ok := rec[models.FieldIsDeleted]; !ok {
		rec[models.FieldIsDeleted] = false
	}
	return rec
}

func (s *ResourceService) stampUpdate(p models.Principal, patch models.Record) models.Record {
	patch[models.FieldUpdatedBy] = p.Value()
	patch[models.FieldUpdatedAt] = s.now()
	return patch
}

func (s *ResourceService) softDeletePatch(p models.Principal) models.Record {
	return s.stampUpdate(p, models.Record{models.FieldIsDeleted: true})
}

// filterFrom strips the reserved list keys and casts the rest.
func (s *ResourceService) filterFrom(query map[string]any) store.Filter {
	q := models.Record(query).Without(schema.KeyOptions, schema.KeyIsCountOnly, schema.KeyPopulate, schema.KeySelect)
	return store.Filter(s.desc.Schema.CastFilter(q))
}

// populateSpecs resolves requested field names against the schema references.
func (s *ResourceService) populateSpecs(fields []string) ([]store.PopulateSpec, error) {
	specs := make([]store.PopulateSpec, 0, len(fields))
	for _, name := range lo.Uniq(fields) {
		f, ok := s.desc.Schema.Field(name)
		if !ok || f.Ref == "" {
			return nil, ierr.NewValidation(fmt.Sprintf("%q cannot be populated", name))
		}
		specs = append(specs, store.PopulateSpec{Field: name, Collection: f.Ref})
	}
	return specs, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, ierr.NewBadRequest("id is required")
	}
	if !schema.IsObjectID(id) {
		return primitive.NilObjectID, ierr.NewValidation(`"id" must be a valid ObjectId`)
	}
	return primitive.ObjectIDFromHex(id)
}

func parseIDs(ids []any) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, ierr.NewBadRequest("ids are required")
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for i, raw := range ids {
		str, ok := raw.(string)
		if !ok || !schema.IsObjectID(str) {
			return nil, ierr.NewValidation(fmt.Sprintf(`"ids[%d]" must be a valid ObjectId`, i))
		}
		oid, _ := primitive.ObjectIDFromHex(str)
		out = append(out, oid)
	}
	return lo.Uniq(out), nil
}
