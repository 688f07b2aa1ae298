package tunego

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tunego/param"
)

func TestBuilder(t *testing.T) {
	space := param.NewSpace().
		Uniform("lr", 0.0, 1.0).
		Grid("depth", param.Int(2), param.Int(4))

	t.Run("BareGenerator", func(t *testing.T) {
		s, err := Random(space).Metric("val_loss").Maximize().Seed(1).Build()
		require.NoError(t, err)

		_, ok := s.(*VariantGenerator)
		assert.True(t, ok, "no wrappers requested")
		assert.Equal(t, "val_loss", s.Metric())
		assert.Equal(t, ModeMax, s.Mode())
	})

	t.Run("FullStack", func(t *testing.T) {
		s, err := Random(space).
			Seed(7).
			MaxConcurrent(2).
			Repeat(3).
			Build()
		require.NoError(t, err)

		r, ok := s.(*Repeater)
		require.True(t, ok, "Repeater is outermost")
		assert.Equal(t, 3, r.Repeat())

		// The limiter caps distinct configurations: with limit 2 and
		// repeat 3, six trials fit (two groups of three), the seventh does
		// not.
		opened := 0
		for i := 0; i < 7; i++ {
			c, err := s.Suggest(fmt.Sprintf("t%d", i))
			require.NoError(t, err)
			if c != nil {
				opened++
			}
		}
		assert.Equal(t, 6, opened)
	})

	t.Run("ImmutableChaining", func(t *testing.T) {
		base := Random(space).Seed(3)
		withCap := base.MaxConcurrent(1)

		s1, err := base.Build()
		require.NoError(t, err)
		_, isGenerator := s1.(*VariantGenerator)
		assert.True(t, isGenerator, "base builder unaffected by derived configuration")

		s2, err := withCap.Build()
		require.NoError(t, err)
		_, isLimiter := s2.(*ConcurrencyLimiter)
		assert.True(t, isLimiter)
	})

	t.Run("UnknownAlgorithm", func(t *testing.T) {
		_, err := Algorithm("hyperband", nil).Space(space).Build()
		var unknown *ErrUnknownAlgorithm
		assert.ErrorAs(t, err, &unknown)

		assert.Panics(t, func() {
			Algorithm("hyperband", nil).Space(space).MustBuild()
		})
	})

	t.Run("CustomFactory", func(t *testing.T) {
		f := NewFactory()
		require.NoError(t, f.Register("scripted", func(AlgorithmOptions) (Searcher, error) {
			return newStubSearcher(cfg("lr", 0.5)), nil
		}))

		s, err := Algorithm("scripted", nil).Factory(f).Repeat(2).Build()
		require.NoError(t, err)
		_, ok := s.(*Repeater)
		assert.True(t, ok)
	})
}
