package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation(`"stateName" must be a string`), http.StatusUnprocessableEntity},
		{"bad request", NewBadRequest("ids are required"), http.StatusBadRequest},
		{"not found", NewNotFound("Record not found with specified criteria."), http.StatusNotFound},
		{"database", Database(fmt.Errorf("connection reset")), http.StatusInternalServerError},
		{"unmarked", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("lookup: %w", NewNotFound("gone")), http.StatusNotFound},
		{"permission denied", NewPermissionDenied("client platform not allowed"), http.StatusForbidden},
		{"validation wins over database", Mark(NewValidation("bad id"), ErrDatabase), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestDatabaseKeepsMessageAndNotFound(t *testing.T) {
	err := Database(fmt.Errorf("E11000 duplicate key"))
	assert.Equal(t, "E11000 duplicate key", err.Error())
	assert.True(t, Is(err, ErrDatabase))

	nf := NewNotFound("missing")
	assert.True(t, IsNotFound(Database(nf)))
	assert.False(t, Is(Database(nf), ErrDatabase))
	assert.Nil(t, Database(nil))
}

func TestPermissionDenied(t *testing.T) {
	err := NewPermissionDenied("admin only")
	assert.True(t, IsPermissionDenied(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "admin only", err.Error())
}
