package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(KindDuplicate, "category %q already exists", "produce")
	assert.Equal(t, KindDuplicate, KindOf(err))
	assert.True(t, Is(err, KindDuplicate))
	assert.False(t, Is(err, KindNotFound))

	wrapped := errors.Wrap(err, "create category")
	assert.Equal(t, KindDuplicate, KindOf(wrapped), "kind survives wrapping")

	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWithQuery(t *testing.T) {
	err := WithQuery(New(KindParse, "invalid operator"), "cows weight 200")
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "cows weight 200", e.Query)
	assert.Contains(t, err.Error(), "cows weight 200")

	plain := WithQuery(fmt.Errorf("disk on fire"), "cows")
	assert.Equal(t, KindInternal, KindOf(plain))
	e, ok = As(plain)
	require.True(t, ok)
	assert.Equal(t, "cows", e.Query)

	assert.NoError(t, WithQuery(nil, "cows"))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("context deadline exceeded")
	err := Wrap(cause, KindUpstreamTranslation, "translation failed")
	assert.Equal(t, KindUpstreamTranslation, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, Message(err), "context deadline exceeded")
	assert.NoError(t, Wrap(nil, KindInternal, "nothing"))
}

func TestMessageHidesInternal(t *testing.T) {
	assert.Equal(t, "internal error", Message(fmt.Errorf("pq: password authentication failed")))
	assert.Equal(t, `group "cows" not found`, Message(NotFound("group", "cows")))
}

func TestHint(t *testing.T) {
	err := errors.WithHint(New(KindParse, "invalid field reference"), "use group.field")
	assert.Equal(t, "use group.field", Hint(err))
	assert.Equal(t, KindParse, KindOf(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:            http.StatusNotFound,
		KindNoResults:           http.StatusNotFound,
		KindDuplicate:           http.StatusConflict,
		KindInvalidType:         http.StatusBadRequest,
		KindInvalidEnum:         http.StatusBadRequest,
		KindInvalidEnumValue:    http.StatusBadRequest,
		KindCoercion:            http.StatusBadRequest,
		KindParse:               http.StatusBadRequest,
		KindBatchFailed:         http.StatusBadRequest,
		KindUpstreamTranslation: http.StatusBadGateway,
		KindInternal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
