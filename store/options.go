package store

import (
	"math"
	"sort"
	"strings"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/samber/lo"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 1000
)

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions shape an unpaginated read.
type FindOptions struct {
	Sort   []SortField
	Select []string
	Skip   int64
	Limit  int64
}

// PopulateSpec replaces the identifier stored at Field with the referenced
// document from Collection.
type PopulateSpec struct {
	Field      string
	Collection string
	Select     []string
}

// Options shape a paginated read.
type Options struct {
	Page  int
	Limit int
	// Pagination false returns every match in one page.
	Pagination bool
	Sort       []SortField
	Select     []string
	// Populate lists the raw field names requested; the caller resolves them
	// into PopulateSpecs because only it knows the references.
	Populate []string
}

// DefaultOptions returns page 1 of 10, paginated.
func DefaultOptions() *Options {
	return &Options{Page: DefaultPage, Limit: DefaultLimit, Pagination: true}
}

// ParseOptions reads the "options" object of a list request:
//
//	{"page": 2, "limit": 20, "pagination": false, "sort": {"createdAt": -1},
//	 "select": "name price", "populate": ["categoryId"]}
//
// Unrecognised keys are ignored and bad values fall back to defaults.
func ParseOptions(raw map[string]any) *Options {
	opts := DefaultOptions()
	if raw == nil {
		return opts
	}
	if page, ok := toInt(raw["page"]); ok && page > 0 {
		opts.Page = page
	}
	if limit, ok := toInt(raw["limit"]); ok && limit > 0 {
		opts.Limit = min(limit, MaxLimit)
	}
	if p, ok := raw["pagination"].(bool); ok {
		opts.Pagination = p
	}
	opts.Sort = ParseSort(raw["sort"])
	opts.Select = ParseFieldList(raw["select"])
	opts.Populate = ParseFieldList(raw["populate"])
	return opts
}

// ParseSort accepts "-createdAt name" or {"createdAt": -1, "name": 1}.
// Object keys are applied in lexical order.
func ParseSort(v any) []SortField {
	switch s := v.(type) {
	case string:
		var out []SortField
		for _, part := range strings.Fields(s) {
			if strings.HasPrefix(part, "-") {
				out = append(out, SortField{Field: part[1:], Desc: true})
				continue
			}
			out = append(out, SortField{Field: strings.TrimPrefix(part, "+")})
		}
		return out
	case map[string]any:
		keys := lo.Keys(s)
		sort.Strings(keys)
		out := make([]SortField, 0, len(keys))
		for _, k := range keys {
			desc := false
			switch dir := s[k].(type) {
			case string:
				desc = strings.EqualFold(dir, "desc") || dir == "-1"
			default:
				if n, ok := toInt(dir); ok {
					desc = n < 0
				}
			}
			out = append(out, SortField{Field: k, Desc: desc})
		}
		return out
	}
	return nil
}

// ParseFieldList accepts "a b", "a,b", ["a", "b"] or {"a": 1, "b": 1}.
func ParseFieldList(v any) []string {
	switch s := v.(type) {
	case string:
		return lo.Compact(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }))
	case []string:
		return lo.Compact(s)
	case []any:
		return lo.Compact(lo.FilterMap(s, func(item any, _ int) (string, bool) {
			str, ok := item.(string)
			return str, ok
		}))
	case map[string]any:
		keys := lo.Keys(s)
		keys = lo.Filter(keys, func(k string, _ int) bool {
			if n, ok := toInt(s[k]); ok {
				return n != 0
			}
			b, ok := s[k].(bool)
			return !ok || b
		})
		sort.Strings(keys)
		return keys
	}
	return nil
}

// Page is one slice of a paginated read.
type Page struct {
	Docs       []models.Record
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

func newPage(docs []models.Record, total int64, opts *Options) *Page {
	p := &Page{Docs: docs, Total: total, Page: opts.Page, Limit: opts.Limit}
	if !opts.Pagination {
		p.Page = 1
		p.Limit = int(total)
	}
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return p
}

// Meta converts the page into the response pagination block.
func (p *Page) Meta() *models.Pagination {
	return &models.Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       int(p.Total),
		TotalPages:  p.TotalPages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < p.TotalPages,
	}
}

func (o *Options) skip() int64 {
	if !o.Pagination {
		return 0
	}
	return int64((o.Page - 1) * o.Limit)
}

func (o *Options) limit() int64 {
	if !o.Pagination {
		return 0
	}
	return int64(o.Limit)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
