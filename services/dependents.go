package services

import (
	"context"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DependentResolver decides what a delete touches. It walks the dependency
// graph breadth first from the targeted records, visiting each record at
// most once so self references and cycles terminate.
type DependentResolver struct {
	store    store.Store
	registry *resources.Registry
	log      *logger.Logger
}

func NewDependentResolver(st store.Store, registry *resources.Registry, log *logger.Logger) *DependentResolver {
	return &DependentResolver{store: st, registry: registry, log: log.Named("dependents")}
}

// affected is one resource's share of a cascade.
type affected struct {
	resource string
	ids      []primitive.ObjectID
}

// walk returns the root documents matching filter and every record that
// transitively references them, grouped per resource in discovery order.
// The first entry is always the root resource.
func (r *DependentResolver) walk(ctx context.Context, resource string, filter store.Filter) ([]models.Record, []affected, error) {
	roots, err := r.store.Collection(resource).Find(ctx, filter, nil)
	if err != nil {
		return nil, nil, err
	}
	rootIDs := recordIDs(roots)

	visited := map[string]map[primitive.ObjectID]struct{}{}
	markVisited := func(res string, ids []primitive.ObjectID) {
		if visited[res] == nil {
			visited[res] = map[primitive.ObjectID]struct{}{}
		}
		for _, id := range ids {
			visited[res][id] = struct{}{}
		}
	}
	markVisited(resource, rootIDs)

	plan := []affected{{resource: resource, ids: rootIDs}}
	queue := []affected{plan[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.ids) == 0 {
			continue
		}
		for _, dep := range r.registry.DependentsOf(cur.resource) {
			docs, err := r.store.Collection(dep.Resource).Find(ctx,
				store.Filter{dep.Field: map[string]any{"$in": toAny(cur.ids)}},
				&store.FindOptions{Select: []string{models.FieldID}},
			)
			if err != nil {
				return nil, nil, err
			}
			fresh := lo.Filter(recordIDs(docs), func(id primitive.ObjectID, _ int) bool {
				_, seen := visited[dep.Resource][id]
				return !seen
			})
			if len(fresh) == 0 {
				continue
			}
			markVisited(dep.Resource, fresh)
			next := affected{resource: dep.Resource, ids: fresh}
			plan = append(plan, next)
			queue = append(queue, next)
		}
	}
	return roots, plan, nil
}

// CountAffected reports, per resource, how many records a cascade from
// filter would touch, the targeted records included. Nothing is modified.
func (r *DependentResolver) CountAffected(ctx context.Context, resource string, filter store.Filter) (map[string]int64, error) {
	_, plan, err := r.walk(ctx, resource, filter)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{resource: 0}
	for _, a := range plan {
		counts[a.resource] += int64(len(a.ids))
	}
	return counts, nil
}

// CascadeSoftDelete applies patch (at least isDeleted and updatedBy) to the
// targeted records and to everything that depends on them, then returns the
// updated targets.
func (r *DependentResolver) CascadeSoftDelete(ctx context.Context, resource string, filter store.Filter, patch models.Record) ([]models.Record, error) {
	roots, plan, err := r.walk(ctx, resource, filter)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ierr.NewNotFound(resource + " not found")
	}

	for _, a := range plan {
		n, err := r.store.Collection(a.resource).UpdateMany(ctx, idFilter(a.ids), patch)
		if err != nil {
			return nil, err
		}
		r.log.Debugw("soft deleted", "resource", a.resource, "count", n)
	}

	return r.store.Collection(resource).Find(ctx, idFilter(plan[0].ids), nil)
}

// CascadeHardDelete removes the targeted records and everything that depends
// on them, dependents first, and returns the removed targets.
func (r *DependentResolver) CascadeHardDelete(ctx context.Context, resource string, filter store.Filter) ([]models.Record, error) {
	roots, plan, err := r.walk(ctx, resource, filter)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ierr.NewNotFound(resource + " not found")
	}

	for i := len(plan) - 1; i >= 0; i-- {
		a := plan[i]
		n, err := r.store.Collection(a.resource).DeleteMany(ctx, idFilter(a.ids))
		if err != nil {
			return nil, err
		}
		r.log.Debugw("deleted", "resource", a.resource, "count", n)
	}
	return roots, nil
}

func recordIDs(docs []models.Record) []primitive.ObjectID {
	return lo.FilterMap(docs, func(d models.Record, _ int) (primitive.ObjectID, bool) {
		return d.ID()
	})
}

func toAny(ids []primitive.ObjectID) []any {
	return lo.Map(ids, func(id primitive.ObjectID, _ int) any { return id })
}

func idFilter(ids []primitive.ObjectID) store.Filter {
	return store.Filter{models.FieldID: map[string]any{"$in": toAny(ids)}}
}
