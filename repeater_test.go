package tunego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeater(t *testing.T) {
	t.Run("MeanOverNonFailedMembers", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.01))
		r, err := NewRepeater(stub, 3)
		require.NoError(t, err)

		c0, err := r.Suggest("t0")
		require.NoError(t, err)
		require.NotNil(t, c0)
		c1, err := r.Suggest("t1")
		require.NoError(t, err)
		c2, err := r.Suggest("t2")
		require.NoError(t, err)

		assert.Equal(t, c0.Key(), c1.Key(), "repeats share the configuration")
		assert.Equal(t, c0.Key(), c2.Key())
		assert.Equal(t, []string{"t0"}, stub.suggested, "delegate asked once per group")

		require.NoError(t, r.OnTrialComplete("t0", Metrics{"loss": 0.2}, false))
		require.NoError(t, r.OnTrialComplete("t1", Metrics{"loss": 0.4}, false))
		assert.Empty(t, stub.completions, "delegate untouched before the last member")

		require.NoError(t, r.OnTrialComplete("t2", nil, true))

		require.Len(t, stub.completions, 1)
		fwd := stub.completions[0]
		assert.Equal(t, "t0", fwd.trialID, "aggregate tagged with the base id")
		assert.False(t, fwd.failed)
		assert.InDelta(t, 0.3, fwd.metrics["loss"], 1e-12, "mean of non-failed members")

		// The group is discarded: its members are unknown afterwards.
		var unknown *ErrUnknownTrial
		assert.ErrorAs(t, r.OnTrialComplete("t1", Metrics{"loss": 1}, false), &unknown)
	})

	t.Run("AllMembersFailed", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.01))
		r, err := NewRepeater(stub, 2)
		require.NoError(t, err)

		_, err = r.Suggest("t0")
		require.NoError(t, err)
		_, err = r.Suggest("t1")
		require.NoError(t, err)

		require.NoError(t, r.OnTrialComplete("t0", nil, true))
		require.NoError(t, r.OnTrialComplete("t1", nil, true))

		require.Len(t, stub.completions, 1)
		assert.True(t, stub.completions[0].failed)
		assert.Nil(t, stub.completions[0].metrics)
	})

	t.Run("RepeatOnePassthrough", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.1), cfg("lr", 0.2))
		r, err := NewRepeater(stub, 1)
		require.NoError(t, err)

		c0, err := r.Suggest("t0")
		require.NoError(t, err)
		c1, err := r.Suggest("t1")
		require.NoError(t, err)
		assert.NotEqual(t, c0.Key(), c1.Key(), "every suggestion is a fresh delegate config")

		require.NoError(t, r.OnTrialComplete("t0", Metrics{"loss": 0.5}, false))
		require.Len(t, stub.completions, 1)
		assert.InDelta(t, 0.5, stub.completions[0].metrics["loss"], 1e-12)
	})

	t.Run("GroupIsolation", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.1), cfg("lr", 0.2))
		r, err := NewRepeater(stub, 2)
		require.NoError(t, err)

		_, err = r.Suggest("g1a")
		require.NoError(t, err)
		_, err = r.Suggest("g1b")
		require.NoError(t, err)
		_, err = r.Suggest("g2a")
		require.NoError(t, err)
		_, err = r.Suggest("g2b")
		require.NoError(t, err)

		// Finish the second group while the first stays open.
		require.NoError(t, r.OnTrialComplete("g2a", Metrics{"loss": 1.0}, false))
		require.NoError(t, r.OnTrialComplete("g2b", Metrics{"loss": 3.0}, false))

		require.Len(t, stub.completions, 1)
		assert.Equal(t, "g2a", stub.completions[0].trialID)
		assert.InDelta(t, 2.0, stub.completions[0].metrics["loss"], 1e-12)

		// First group still aggregates independently.
		require.NoError(t, r.OnTrialComplete("g1a", Metrics{"loss": 0.5}, false))
		require.NoError(t, r.OnTrialComplete("g1b", Metrics{"loss": 0.7}, false))
		require.Len(t, stub.completions, 2)
		assert.Equal(t, "g1a", stub.completions[1].trialID)
		assert.InDelta(t, 0.6, stub.completions[1].metrics["loss"], 1e-12)
	})

	t.Run("DelegateEmptyPropagates", func(t *testing.T) {
		stub := newStubSearcher()
		r, err := NewRepeater(stub, 3)
		require.NoError(t, err)

		c, err := r.Suggest("t0")
		require.NoError(t, err)
		assert.Nil(t, c)

		var unknown *ErrUnknownTrial
		assert.ErrorAs(t, r.OnTrialComplete("t0", nil, true), &unknown, "no group was opened")
	})

	t.Run("ResultRetaggedWithBaseID", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.1))
		r, err := NewRepeater(stub, 2)
		require.NoError(t, err)

		_, err = r.Suggest("t0")
		require.NoError(t, err)
		_, err = r.Suggest("t1")
		require.NoError(t, err)

		require.NoError(t, r.OnTrialResult("t1", Metrics{"loss": 0.9}))
		require.Len(t, stub.results, 1)
		assert.Equal(t, "t0", stub.results[0].trialID)
	})

	t.Run("MissingTargetMetric", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.1))
		r, err := NewRepeater(stub, 2)
		require.NoError(t, err)

		_, err = r.Suggest("t0")
		require.NoError(t, err)
		_, err = r.Suggest("t1")
		require.NoError(t, err)

		var missing *ErrMissingMetric
		require.ErrorAs(t, r.OnTrialComplete("t0", Metrics{"accuracy": 0.9}, false), &missing)

		// The member counts as failed; the group still finalizes.
		require.NoError(t, r.OnTrialComplete("t1", Metrics{"loss": 0.4}, false))
		require.Len(t, stub.completions, 1)
		assert.InDelta(t, 0.4, stub.completions[0].metrics["loss"], 1e-12)
	})

	t.Run("CheckpointRoundTrip", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.25))
		r, err := NewRepeater(stub, 3)
		require.NoError(t, err)

		_, err = r.Suggest("t0")
		require.NoError(t, err)
		_, err = r.Suggest("t1")
		require.NoError(t, err)
		require.NoError(t, r.OnTrialComplete("t0", Metrics{"loss": 0.1}, false))

		cp, err := r.Save()
		require.NoError(t, err)

		stub2 := newStubSearcher(cfg("lr", 0.25))
		restored, err := NewRepeater(stub2, 3)
		require.NoError(t, err)
		require.NoError(t, restored.Restore(cp))

		// The third member is still assignable and shares the group config.
		c2, err := restored.Suggest("t2")
		require.NoError(t, err)
		require.NotNil(t, c2)
		assert.Equal(t, cfg("lr", 0.25).Key(), c2.Key())
		assert.Empty(t, stub2.suggested, "open group served without consulting the delegate")

		require.NoError(t, restored.OnTrialComplete("t1", Metrics{"loss": 0.3}, false))
		require.NoError(t, restored.OnTrialComplete("t2", Metrics{"loss": 0.5}, false))

		require.Len(t, stub2.completions, 1)
		assert.Equal(t, "t0", stub2.completions[0].trialID)
		assert.InDelta(t, 0.3, stub2.completions[0].metrics["loss"], 1e-12, "partial metrics survived the restart")
	})

	t.Run("RestoreRepeatMismatch", func(t *testing.T) {
		stub := newStubSearcher(cfg("lr", 0.1))
		r, err := NewRepeater(stub, 2)
		require.NoError(t, err)
		cp, err := r.Save()
		require.NoError(t, err)

		other, err := NewRepeater(newStubSearcher(), 3)
		require.NoError(t, err)
		assert.Error(t, other.Restore(cp))
	})

	t.Run("InvalidRepeat", func(t *testing.T) {
		_, err := NewRepeater(newStubSearcher(), 0)
		assert.ErrorIs(t, err, ErrInvalidRepeat)
	})
}
