package schema

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var idField = Field{Name: "_id", Kind: KindObjectID}

// lookup resolves a possibly dotted path ("items.productId") to its field.
func (s *Schema) lookup(path string) (Field, bool) {
	if path == idField.Name {
		return idField, true
	}
	parts := strings.Split(path, ".")
	f, ok := s.Field(parts[0])
	if !ok {
		return Field{}, false
	}
	for _, part := range parts[1:] {
		found := false
		for _, child := range f.Fields {
			if child.Name == part {
				f, found = child, true
				break
			}
		}
		if !found {
			return Field{}, false
		}
	}
	return f, true
}

// Cast converts wire values of known fields to their stored form: hex
// identifiers become ObjectIDs and date strings become times. Values that do
// not convert are left unchanged. The input map is not modified.
func (s *Schema) Cast(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if f, ok := s.lookup(k); ok {
			out[k] = castValue(f, v)
			continue
		}
		out[k] = v
	}
	return out
}

func castFields(fields []Field, doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
		for _, f := range fields {
			if f.Name == k {
				out[k] = castValue(f, v)
				break
			}
		}
	}
	return out
}

func castValue(f Field, v any) any {
	if v == nil {
		return nil
	}
	switch f.Kind {
	case KindObjectID:
		if str, ok := v.(string); ok {
			if oid, err := primitive.ObjectIDFromHex(str); err == nil {
				return oid
			}
		}
	case KindDate:
		if _, isStr := v.(string); isStr {
			if t, ok := toTime(v); ok {
				return t
			}
		}
	case KindArray:
		items, ok := toSlice(v)
		if !ok {
			return v
		}
		elem := Field{Kind: f.Elem, Fields: f.Fields}
		if elem.Kind == KindAny {
			return v
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = castValue(elem, item)
		}
		return out
	case KindObject:
		if m, ok := toMap(v); ok && len(f.Fields) > 0 {
			return castFields(f.Fields, m)
		}
	}
	return v
}

// CastFilter casts the values of a filter for known fields. A list given for
// a non-array field becomes an "$in" match, so {"stateId": [a, b]} selects
// documents whose stateId is either a or b. "$and"/"$or" branches are cast
// recursively.
func (s *Schema) CastFilter(filter map[string]any) map[string]any {
	if filter == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		switch k {
		case "$and", "$or", "$nor":
			if branches, ok := toSlice(v); ok {
				cast := make([]any, len(branches))
				for i, b := range branches {
					if m, ok := toMap(b); ok {
						cast[i] = s.CastFilter(m)
					} else {
						cast[i] = b
					}
				}
				out[k] = cast
				continue
			}
			out[k] = v
			continue
		}

		f, known := s.lookup(k)
		if !known {
			out[k] = v
			continue
		}
		out[k] = castCondition(f, v)
	}
	return out
}

func castCondition(f Field, v any) any {
	if v == nil {
		return nil
	}
	if ops, ok := toMap(v); ok && isOperatorMap(ops) {
		out := make(map[string]any, len(ops))
		for op, arg := range ops {
			switch op {
			case "$in", "$nin", "$all":
				if items, ok := toSlice(arg); ok {
					out[op] = castScalars(f, items)
					continue
				}
				out[op] = arg
			case "$eq", "$ne", "$gt", "$gte", "$lt", "$lte":
				out[op] = castScalar(f, arg)
			default:
				out[op] = arg
			}
		}
		return out
	}
	if items, ok := toSlice(v); ok && f.Kind != KindArray {
		return map[string]any{"$in": castScalars(f, items)}
	}
	if f.Kind == KindArray {
		// A scalar against an array field matches any element.
		if _, isSlice := toSlice(v); !isSlice {
			return castValue(Field{Kind: f.Elem, Fields: f.Fields}, v)
		}
	}
	return castValue(f, v)
}

func castScalar(f Field, v any) any {
	if f.Kind == KindArray {
		return castValue(Field{Kind: f.Elem, Fields: f.Fields}, v)
	}
	return castValue(f, v)
}

func castScalars(f Field, items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = castScalar(f, item)
	}
	return out
}

func isOperatorMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}
