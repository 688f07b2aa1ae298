package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tunego/codec"
)

type payload struct {
	Cursor []int  `json:"cursor"`
	Metric string `json:"metric"`
}

func TestCheckpoint(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		cp, err := New("variant", 1, payload{Cursor: []int{1, 0, 2}, Metric: "loss"})
		require.NoError(t, err)
		assert.Equal(t, "variant", cp.Class)
		assert.Equal(t, uint32(1), cp.Version)

		var got payload
		require.NoError(t, cp.Decode("variant", 1, &got))
		assert.Equal(t, []int{1, 0, 2}, got.Cursor)
		assert.Equal(t, "loss", got.Metric)
	})

	t.Run("ClassMismatch", func(t *testing.T) {
		cp, err := New("variant", 1, payload{})
		require.NoError(t, err)

		var mismatch *ErrClassMismatch
		err = cp.Decode("repeater", 1, &payload{})
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "repeater", mismatch.Expected)
		assert.Equal(t, "variant", mismatch.Actual)
	})

	t.Run("VersionMismatch", func(t *testing.T) {
		cp, err := New("variant", 2, payload{})
		require.NoError(t, err)

		var mismatch *ErrVersionMismatch
		err = cp.Decode("variant", 1, &payload{})
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, uint32(1), mismatch.Expected)
		assert.Equal(t, uint32(2), mismatch.Actual)
	})

	t.Run("NestedEnvelope", func(t *testing.T) {
		inner, err := New("variant", 1, payload{Metric: "loss"})
		require.NoError(t, err)

		type wrapper struct {
			Limit    int         `json:"limit"`
			Delegate *Checkpoint `json:"delegate"`
		}
		outer, err := New("concurrency-limiter", 1, wrapper{Limit: 4, Delegate: inner})
		require.NoError(t, err)

		var got wrapper
		require.NoError(t, outer.Decode("concurrency-limiter", 1, &got))
		require.NotNil(t, got.Delegate)
		assert.Equal(t, "variant", got.Delegate.Class)

		var innerGot payload
		require.NoError(t, got.Delegate.Decode("variant", 1, &innerGot))
		assert.Equal(t, "loss", innerGot.Metric)
	})

	t.Run("ExplicitCodec", func(t *testing.T) {
		cp, err := NewWithCodec("variant", 1, payload{Metric: "acc"}, codec.JSON{})
		require.NoError(t, err)

		var got payload
		require.NoError(t, cp.DecodeWithCodec("variant", 1, &got, codec.JSON{}))
		assert.Equal(t, "acc", got.Metric)
	})
}
