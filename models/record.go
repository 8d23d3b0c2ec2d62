package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names shared by every resource document.
const (
	FieldID        = "_id"
	FieldIsActive  = "isActive"
	FieldIsDeleted = "isDeleted"
	FieldAddedBy   = "addedBy"
	FieldUpdatedBy = "updatedBy"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Record is a stored resource document. Known fields are type-checked by the
// resource schema; unrecognised fields are carried through untouched.
type Record map[string]any

// ID returns the document identifier when it is an ObjectID.
func (r Record) ID() (primitive.ObjectID, bool) {
	id, ok := r[FieldID].(primitive.ObjectID)
	return id, ok
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Without returns a shallow copy minus the given keys.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Principal is the authenticated caller a mutation is attributed to.
type Principal struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Role     string `json:"role"`
}

// Value returns the principal id in the form stored on documents: an ObjectID
// when the id is a 24-hex string, the raw string otherwise.
func (p Principal) Value() any {
	if oid, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		return oid
	}
	return p.ID
}

// Platforms a principal can authenticate against.
const (
	PlatformAdmin  = "admin"
	PlatformClient = "client"
)
