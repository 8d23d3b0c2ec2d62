package store

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Matches reports whether doc satisfies filter using the subset of MongoDB
// query semantics the memory store supports: equality (including array
// membership), dotted paths, $and/$or/$nor, and the operators
// $eq $ne $gt $gte $lt $lte $in $nin $exists $regex $size.
func Matches(doc map[string]any, filter Filter) (bool, error) {
	for key, cond := range filter {
		ok, err := matchKey(doc, key, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(doc map[string]any, key string, cond any) (bool, error) {
	switch key {
	case "$and", "$or", "$nor":
		branches, ok := asSlice(cond)
		if !ok {
			return false, fmt.Errorf("%s expects an array", key)
		}
		results := make([]bool, 0, len(branches))
		for _, b := range branches {
			sub, ok := asMap(b)
			if !ok {
				return false, fmt.Errorf("%s entries must be objects", key)
			}
			r, err := Matches(doc, sub)
			if err != nil {
				return false, err
			}
			results = append(results, r)
		}
		switch key {
		case "$and":
			return !lo.Contains(results, false), nil
		case "$or":
			return lo.Contains(results, true), nil
		default:
			return !lo.Contains(results, true), nil
		}
	}

	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("unsupported top-level operator %s", key)
	}

	values, found := lookupPath(doc, key)
	if ops, ok := asMap(cond); ok && isOperatorObject(ops) {
		return matchOperators(values, found, ops)
	}
	return matchEquals(values, found, cond), nil
}

func matchOperators(values []any, found bool, ops map[string]any) (bool, error) {
	var regexOpts string
	if o, ok := ops["$options"].(string); ok {
		regexOpts = o
	}
	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq":
			ok = matchEquals(values, found, arg)
		case "$ne":
			ok = !matchEquals(values, found, arg)
		case "$gt", "$gte", "$lt", "$lte":
			ok = matchCompare(values, op, arg)
		case "$in":
			items, isSlice := asSlice(arg)
			if !isSlice {
				return false, fmt.Errorf("$in expects an array")
			}
			for _, item := range items {
				if matchEquals(values, found, item) {
					ok = true
					break
				}
			}
		case "$nin":
			items, isSlice := asSlice(arg)
			if !isSlice {
				return false, fmt.Errorf("$nin expects an array")
			}
			ok = true
			for _, item := range items {
				if matchEquals(values, found, item) {
					ok = false
					break
				}
			}
		case "$exists":
			want, _ := arg.(bool)
			ok = found == want
		case "$regex":
			pattern, isStr := arg.(string)
			if !isStr {
				return false, fmt.Errorf("$regex expects a string")
			}
			if strings.Contains(regexOpts, "i") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, fmt.Errorf("invalid $regex: %w", err)
			}
			for _, v := range values {
				if s, isStr := v.(string); isStr && re.MatchString(s) {
					ok = true
					break
				}
			}
		case "$options":
			ok = true
		case "$size":
			n, isNum := toFloat(arg)
			if !isNum {
				return false, fmt.Errorf("$size expects a number")
			}
			for _, v := range values {
				if items, isSlice := asSlice(v); isSlice && float64(len(items)) == n {
					ok = true
					break
				}
			}
		default:
			return false, fmt.Errorf("unsupported operator %s", op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// matchEquals treats a missing field as null and an array field as matching
// when either the whole array or any element equals want.
func matchEquals(values []any, found bool, want any) bool {
	if !found {
		return want == nil
	}
	for _, v := range values {
		if equalValues(v, want) {
			return true
		}
		if items, ok := asSlice(v); ok {
			for _, item := range items {
				if equalValues(item, want) {
					return true
				}
			}
		}
	}
	return false
}

func matchCompare(values []any, op string, arg any) bool {
	for _, v := range values {
		candidates := []any{v}
		if items, ok := asSlice(v); ok {
			candidates = items
		}
		for _, c := range candidates {
			cmp, ok := compareValues(c, arg)
			if !ok {
				continue
			}
			switch op {
			case "$gt":
				if cmp > 0 {
					return true
				}
			case "$gte":
				if cmp >= 0 {
					return true
				}
			case "$lt":
				if cmp < 0 {
					return true
				}
			case "$lte":
				if cmp <= 0 {
					return true
				}
			}
		}
	}
	return false
}

// lookupPath resolves a dotted path, fanning out across arrays of objects.
func lookupPath(doc map[string]any, path string) ([]any, bool) {
	current := []any{doc}
	for _, part := range strings.Split(path, ".") {
		var next []any
		for _, c := range current {
			if m, ok := asMap(c); ok {
				if v, ok := m[part]; ok {
					next = append(next, v)
				}
				continue
			}
			if items, ok := asSlice(c); ok {
				for _, item := range items {
					if m, ok := asMap(item); ok {
						if v, ok := m[part]; ok {
							next = append(next, v)
						}
					}
				}
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		current = next
	}
	return current, true
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two scalars of a comparable family. ok is false when
// the values cannot be ordered against each other.
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	if oa, ok := a.(primitive.ObjectID); ok {
		if ob, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(oa.Hex(), ob.Hex()), true
		}
		return 0, false
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), true
		}
		return 0, false
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0, true
			case !ba:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []primitive.ObjectID:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return m, true
	case Filter:
		return m, true
	case models.Record:
		return m, true
	default:
		return nil, false
	}
}

func isOperatorObject(m map[string]any) bool {
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
