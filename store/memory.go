package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. Documents are copied on
// the way in and out so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{name: name}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection struct {
	name string
	mu   sync.RWMutex
	docs []models.Record
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Create(_ context.Context, doc models.Record) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := prepareInsert(doc)
	if c.indexOfID(stored[models.FieldID]) >= 0 {
		return nil, ierr.NewBadRequest("duplicate _id")
	}
	c.docs = append(c.docs, stored)
	return deepCopy(stored), nil
}

func (c *memoryCollection) CreateMany(_ context.Context, docs []models.Record) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prepared := make([]models.Record, 0, len(docs))
	seen := make(map[any]struct{}, len(docs))
	for _, d := range docs {
		stored := prepareInsert(d)
		id := stored[models.FieldID]
		if _, dup := seen[id]; dup || c.indexOfID(id) >= 0 {
			return 0, ierr.NewBadRequest("duplicate _id")
		}
		seen[id] = struct{}{}
		prepared = append(prepared, stored)
	}
	c.docs = append(c.docs, prepared...)
	return int64(len(prepared)), nil
}

func (c *memoryCollection) FindOne(_ context.Context, filter Filter) (models.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return nil, ierr.NewBadRequest(err.Error())
		}
		if ok {
			return deepCopy(d), nil
		}
	}
	return nil, ierr.NewNotFound(c.name + " not found")
}

func (c *memoryCollection) Find(_ context.Context, filter Filter, opts *FindOptions) ([]models.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if opts == nil {
		opts = &FindOptions{}
	}
	matched, err := c.match(filter)
	if err != nil {
		return nil, err
	}
	sortRecords(matched, opts.Sort)
	matched = window(matched, opts.Skip, opts.Limit)
	return project(matched, opts.Select), nil
}

func (c *memoryCollection) Paginate(_ context.Context, filter Filter, opts *Options) (*Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if opts == nil {
		opts = DefaultOptions()
	}
	matched, err := c.match(filter)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, ierr.NewNotFound(c.name + " not found")
	}
	total := int64(len(matched))
	sortRecords(matched, opts.Sort)
	matched = window(matched, opts.skip(), opts.limit())
	return newPage(project(matched, opts.Select), total, opts), nil
}

func (c *memoryCollection) Count(_ context.Context, filter Filter) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched, err := c.match(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, filter Filter, patch models.Record) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return nil, ierr.NewBadRequest(err.Error())
		}
		if ok {
			c.docs[i] = applyPatch(d, patch)
			return deepCopy(c.docs[i]), nil
		}
	}
	return nil, ierr.NewNotFound(c.name + " not found")
}

func (c *memoryCollection) UpdateMany(_ context.Context, filter Filter, patch models.Record) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for i, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return n, ierr.NewBadRequest(err.Error())
		}
		if ok {
			c.docs[i] = applyPatch(d, patch)
			n++
		}
	}
	return n, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter Filter) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return nil, ierr.NewBadRequest(err.Error())
		}
		if ok {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return d, nil
		}
	}
	return nil, ierr.NewNotFound(c.name + " not found")
}

func (c *memoryCollection) DeleteMany(_ context.Context, filter Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.docs[:0:0]
	var n int64
	for _, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return 0, ierr.NewBadRequest(err.Error())
		}
		if ok {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return n, nil
}

// match returns copies of the matching documents in insertion order.
func (c *memoryCollection) match(filter Filter) ([]models.Record, error) {
	var out []models.Record
	for _, d := range c.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return nil, ierr.NewBadRequest(err.Error())
		}
		if ok {
			out = append(out, deepCopy(d))
		}
	}
	return out, nil
}

func (c *memoryCollection) indexOfID(id any) int {
	for i, d := range c.docs {
		if equalValues(d[models.FieldID], id) {
			return i
		}
	}
	return -1
}

func prepareInsert(doc models.Record) models.Record {
	stored := deepCopy(doc)
	if stored == nil {
		stored = models.Record{}
	}
	if _, ok := stored[models.FieldID]; !ok {
		stored[models.FieldID] = primitive.NewObjectID()
	}
	return stored
}

// applyPatch merges patch into a copy of doc. Dotted keys address nested objects.
func applyPatch(doc, patch models.Record) models.Record {
	out := deepCopy(doc)
	for k, v := range patch {
		if k == models.FieldID {
			continue
		}
		setPath(out, k, deepCopyValue(v))
	}
	return out
}

func setPath(doc map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func sortRecords(docs []models.Record, fields []SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			a, aok := lookupPath(docs[i], f.Field)
			b, bok := lookupPath(docs[j], f.Field)
			var cmp int
			switch {
			case !aok && !bok:
				cmp = 0
			case !aok:
				cmp = -1
			case !bok:
				cmp = 1
			default:
				cmp, _ = compareValues(a[0], b[0])
			}
			if cmp == 0 {
				continue
			}
			if f.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func window(docs []models.Record, skip, limit int64) []models.Record {
	if skip >= int64(len(docs)) {
		return []models.Record{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// project keeps only the selected top-level fields plus _id. A leading "-"
// excludes a field instead.
func project(docs []models.Record, fields []string) []models.Record {
	if len(fields) == 0 {
		return docs
	}
	var include, exclude []string
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			exclude = append(exclude, f[1:])
			continue
		}
		include = append(include, f)
	}
	out := make([]models.Record, len(docs))
	for i, d := range docs {
		if len(include) > 0 {
			p := models.Record{models.FieldID: d[models.FieldID]}
			for _, f := range include {
				if v, ok := d[f]; ok {
					p[f] = v
				}
			}
			out[i] = p
			continue
		}
		out[i] = d.Without(exclude...)
	}
	return out
}

func deepCopy(doc models.Record) models.Record {
	if doc == nil {
		return nil
	}
	out := make(models.Record, len(doc))
	for k, v := range doc {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case models.Record:
		return deepCopy(t)
	case map[string]any:
		return map[string]any(deepCopy(t))
	case primitive.M:
		return map[string]any(deepCopy(models.Record(t)))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	default:
		return v
	}
}
