// Package schema holds the declarative per-resource rule sets that every
// payload is checked against before it reaches the store.
//
// A Schema pins the type of each known field and lets anything else through,
// so documents keep unrecognised keys while the common surface stays checked.
package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the value type a field is pinned to.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindObjectID
	KindDate
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "a string"
	case KindNumber:
		return "a number"
	case KindBool:
		return "a boolean"
	case KindObjectID:
		return "a valid ObjectId"
	case KindDate:
		return "a valid date"
	case KindArray:
		return "an array"
	case KindObject:
		return "an object"
	default:
		return "any value"
	}
}

// Field describes one recognised key of a resource document.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Nullable allows null, and the empty string for string-like kinds.
	Nullable bool
	// Rule is a validator tag applied to non-null values, e.g. "min=0".
	Rule string
	// Ref names the resource an ObjectId field points at; used by populate.
	Ref string
	// Elem pins array elements; Fields describes nested object members.
	Elem   Kind
	Fields []Field
}

// Mode selects which rule-set variant a payload is checked with.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
	ModePatch
	ModeFilter
)

// Reserved keys accepted next to the field filters of a list/count request.
const (
	KeyOptions     = "options"
	KeyIsCountOnly = "isCountOnly"
	KeyPopulate    = "populate"
	KeySelect      = "select"
)

// Result is the verdict of a validation. It never carries a panic or a fatal error.
type Result struct {
	Valid   bool
	Message string
}

// Err converts an invalid result into a validation error, nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return ierr.NewValidation(r.Message)
}

var (
	objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	validate        = newValidator()
)

// newValidator registers the "objectid" tag. The stock "mongodb" tag only
// accepts lower-case hex.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Schema is an ordered, closed set of fields. Order decides which violation is reported first.
type Schema struct {
	fields []Field
	index  map[string]int
}

func New(fields ...Field) *Schema {
	s := &Schema{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field looks up a declared field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Validate checks payload against the rule set selected by mode. Unknown keys pass.
func (s *Schema) Validate(payload map[string]any, mode Mode) Result {
	if payload == nil {
		payload = map[string]any{}
	}

	if mode == ModeFilter {
		if msg := s.checkFilter(payload); msg != "" {
			return Result{Message: msg}
		}
		return Result{Valid: true}
	}

	if mode == ModeUpdate || mode == ModePatch {
		for _, key := range []string{"_id", "id"} {
			if v, ok := payload[key]; ok && v != nil && !isObjectIDValue(v) {
				return Result{Message: fmt.Sprintf("%q must be %s", key, KindObjectID)}
			}
		}
	}

	if msg := checkFields(s.fields, payload, "", mode); msg != "" {
		return Result{Message: msg}
	}
	return Result{Valid: true}
}

func checkFields(fields []Field, payload map[string]any, prefix string, mode Mode) string {
	for _, f := range fields {
		name := prefix + f.Name
		v, present := payload[f.Name]
		if !present {
			if f.Required && mode != ModePatch {
				return fmt.Sprintf("%q is required", name)
			}
			continue
		}
		if msg := checkValue(f, name, v, mode); msg != "" {
			return msg
		}
	}
	return ""
}

func checkValue(f Field, name string, v any, mode Mode) string {
	if v == nil {
		if f.Nullable {
			return ""
		}
		return fmt.Sprintf("%q must be %s", name, f.Kind)
	}

	switch f.Kind {
	case KindAny:
		return ""

	case KindString:
		str, ok := v.(string)
		if !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		if str == "" {
			if f.Nullable {
				return ""
			}
			if f.Required {
				return fmt.Sprintf("%q is not allowed to be empty", name)
			}
		}
		return checkRule(f, name, str)

	case KindNumber:
		n, ok := toFloat(v)
		if !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		return checkRule(f, name, n)

	case KindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		return ""

	case KindObjectID:
		if str, ok := v.(string); ok && str == "" && f.Nullable {
			return ""
		}
		if !isObjectIDValue(v) {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		return ""

	case KindDate:
		if _, ok := toTime(v); !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		return ""

	case KindArray:
		items, ok := toSlice(v)
		if !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		if f.Elem == KindAny {
			return ""
		}
		elem := Field{Kind: f.Elem, Fields: f.Fields}
		for i, item := range items {
			if msg := checkValue(elem, fmt.Sprintf("%s[%d]", name, i), item, mode); msg != "" {
				return msg
			}
		}
		return ""

	case KindObject:
		m, ok := toMap(v)
		if !ok {
			return fmt.Sprintf("%q must be %s", name, f.Kind)
		}
		if len(f.Fields) == 0 {
			return ""
		}
		return checkFields(f.Fields, m, name+".", mode)
	}
	return ""
}

func checkRule(f Field, name string, v any) string {
	if f.Rule == "" {
		return ""
	}
	if err := validate.Var(v, f.Rule); err != nil {
		var fieldErrs validator.ValidationErrors
		if ierr.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			return fmt.Sprintf("%q must satisfy %s", name, rule)
		}
		return fmt.Sprintf("%q is invalid", name)
	}
	return ""
}

// checkFilter applies the filter variant: each known field may be a single
// value of its kind, a list of such values, or an operator sub-object.
func (s *Schema) checkFilter(payload map[string]any) string {
	for _, f := range s.fields {
		v, present := payload[f.Name]
		if !present || v == nil {
			continue
		}
		if _, ok := toMap(v); ok {
			continue
		}
		if items, ok := toSlice(v); ok && f.Kind != KindArray {
			scalar := Field{Kind: f.Kind, Nullable: true, Fields: f.Fields, Elem: f.Elem}
			for i, item := range items {
				if msg := checkValue(scalar, fmt.Sprintf("%s[%d]", f.Name, i), item, ModeFilter); msg != "" {
					return msg
				}
			}
			continue
		}
		// Rules are not enforced on filter values; only the type is pinned.
		loose := Field{Kind: f.Kind, Nullable: true, Fields: f.Fields, Elem: f.Elem}
		if _, isSlice := toSlice(v); f.Kind == KindArray && !isSlice {
			// A scalar against an array field matches any element.
			loose = Field{Kind: f.Elem, Nullable: true, Fields: f.Fields}
		}
		if msg := checkValue(loose, f.Name, v, ModeFilter); msg != "" {
			return msg
		}
	}

	if v, ok := payload[KeyOptions]; ok && v != nil {
		if _, isMap := toMap(v); !isMap {
			return fmt.Sprintf("%q must be %s", KeyOptions, KindObject)
		}
	}
	if v, ok := payload[KeyIsCountOnly]; ok && v != nil {
		if _, isBool := v.(bool); !isBool {
			return fmt.Sprintf("%q must be %s", KeyIsCountOnly, KindBool)
		}
	}
	for _, key := range []string{KeyPopulate, KeySelect} {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		_, isStr := v.(string)
		_, isSlice := toSlice(v)
		_, isMap := toMap(v)
		if !isStr && !isSlice && !isMap {
			return fmt.Sprintf("%q must be a string, an array or an object", key)
		}
	}
	return ""
}

// IsObjectID reports whether s is a well-formed 24 hex character identifier.
func IsObjectID(s string) bool {
	return validate.Var(s, "required,objectid") == nil
}

func isObjectIDValue(v any) bool {
	switch id := v.(type) {
	case primitive.ObjectID:
		return !id.IsZero()
	case string:
		return IsObjectID(id)
	default:
		return false
	}
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

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		if ms, ok := toFloat(v); ok {
			return time.UnixMilli(int64(ms)).UTC(), true
		}
		return time.Time{}, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// ToSlice exposes the slice coercion used by validation to callers that parse
// request bodies (primitive.A, []any and typed slices are all accepted).
func ToSlice(v any) ([]any, bool) {
	return toSlice(v)
}

// ToMap exposes the map coercion used by validation.
func ToMap(v any) (map[string]any, bool) {
	return toMap(v)
}
