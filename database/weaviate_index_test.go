package database

import (
	"context"
	"testing"

	"github.com/baotran/ragchat-be/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The client is nil, so any remote call would panic: Add and Abort must stay
// local so a failed build never disturbs the serving class.
func TestWeaviateBuilderStagesLocallyUntilCommit(t *testing.T) {
	builder := &WeaviateIndexBuilder{
		index: &WeaviateIndex{dimension: 3},
		seen:  make(map[string]struct{}),
	}

	require.NoError(t, builder.Add(context.Background(),
		testEntry("a", []float32{1, 0, 0}, types.SingleTag(types.DepartmentHR)),
		testEntry("b", []float32{0, 1, 0}, types.BroadcastTag()),
	))
	assert.Len(t, builder.entries, 2)

	err := builder.Add(context.Background(), testEntry("a", []float32{0, 0, 1}, types.BroadcastTag()))
	assert.ErrorContains(t, err, "duplicate chunk id")

	err = builder.Add(context.Background(), testEntry("c", []float32{1, 0}, types.BroadcastTag()))
	assert.ErrorContains(t, err, "dimension mismatch")

	require.NoError(t, builder.Abort())
	assert.Empty(t, builder.entries)
}
