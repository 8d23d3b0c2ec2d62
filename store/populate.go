package store

import (
	"context"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Populate replaces reference identifiers in docs with the referenced
// documents, one query per spec. A reference that no longer resolves becomes
// null; dangling entries of an identifier list are dropped.
func Populate(ctx context.Context, s Store, docs []models.Record, specs []PopulateSpec) error {
	for _, spec := range specs {
		ids := collectIDs(docs, spec.Field)
		if len(ids) == 0 {
			continue
		}

		refs, err := s.Collection(spec.Collection).Find(ctx,
			Filter{models.FieldID: map[string]any{"$in": ids}},
			&FindOptions{Select: spec.Select},
		)
		if err != nil {
			return err
		}
		byID := lo.SliceToMap(refs, func(r models.Record) (primitive.ObjectID, models.Record) {
			id, _ := r.ID()
			return id, r
		})

		for _, d := range docs {
			v, ok := d[spec.Field]
			if !ok || v == nil {
				continue
			}
			if items, ok := asSlice(v); ok {
				resolved := make([]any, 0, len(items))
				for _, item := range items {
					if id, ok := item.(primitive.ObjectID); ok {
						if ref, ok := byID[id]; ok {
							resolved = append(resolved, ref)
						}
					}
				}
				d[spec.Field] = resolved
				continue
			}
			if id, ok := v.(primitive.ObjectID); ok {
				if ref, ok := byID[id]; ok {
					d[spec.Field] = ref
				} else {
					d[spec.Field] = nil
				}
			}
		}
	}
	return nil
}

func collectIDs(docs []models.Record, field string) []any {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []any
	add := func(v any) {
		id, ok := v.(primitive.ObjectID)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, d := range docs {
		v := d[field]
		if items, ok := asSlice(v); ok {
			for _, item := range items {
				add(item)
			}
			continue
		}
		add(v)
	}
	return ids
}
