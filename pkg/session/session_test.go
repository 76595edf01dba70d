// pkg/session/session_test.go
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(zap.NewNop())

	sess := store.Create()
	require.NotEmpty(t, sess.ID)
	assert.False(t, sess.CreatedAt.IsZero())

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())
}

func TestStore_GetUnknown(t *testing.T) {
	store := NewStore(zap.NewNop())

	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(zap.NewNop())
	sess := store.Create()

	store.Delete(sess.ID)

	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := NewStore(zap.NewNop())
	a := store.Create()
	b := store.Create()

	a.SetNSLDS(model.NewTable(model.SourceNSLDS))

	assert.NotNil(t, a.NSLDS())
	assert.Nil(t, b.NSLDS())
}

func TestSession_ReingestInvalidatesMerge(t *testing.T) {
	store := NewStore(zap.NewNop())
	sess := store.Create()

	sess.SetNSLDS(model.NewTable(model.SourceNSLDS))
	sess.SetSIS(model.NewTable(model.SourceSIS))
	sess.SetMerged(model.NewTable(model.SourceMerged))
	require.NotNil(t, sess.Merged())

	// A fresh upload on either side drops the stale merge.
	sess.SetNSLDS(model.NewTable(model.SourceNSLDS))
	assert.Nil(t, sess.Merged())

	sess.SetMerged(model.NewTable(model.SourceMerged))
	sess.SetSIS(model.NewTable(model.SourceSIS))
	assert.Nil(t, sess.Merged())
}
