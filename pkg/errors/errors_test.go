package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("apply: %w", ErrAlreadyApplied)
	got := FromError(wrapped)
	assert.Equal(t, ErrAlreadyApplied.Code, got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, "boom", got.Unwrap().Error())
}

func TestCloneAndDetailsDoNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrForbidden, "admins only")
	detailed := WithDetails(clone, map[string]string{"redirect": "/login"})

	assert.Equal(t, "forbidden", ErrForbidden.Message)
	assert.Nil(t, ErrForbidden.Details)
	assert.Equal(t, "admins only", detailed.Message)
	assert.Equal(t, "/login", detailed.Details["redirect"])
}
