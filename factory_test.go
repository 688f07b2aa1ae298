package tunego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tunego/param"
)

func TestFactory(t *testing.T) {
	space := param.NewSpace().Uniform("lr", 0.0, 1.0)

	t.Run("Builtins", func(t *testing.T) {
		f := NewFactory()
		assert.Equal(t, []string{"grid", "random", "variant"}, f.Names())

		s, err := f.New("random", AlgorithmOptions{Metric: "val_loss", Mode: ModeMax, Space: space})
		require.NoError(t, err)
		assert.Equal(t, "val_loss", s.Metric())
		assert.Equal(t, ModeMax, s.Mode())
	})

	t.Run("UnknownAlgorithm", func(t *testing.T) {
		f := NewFactory()
		_, err := f.New("bohb", AlgorithmOptions{Space: space})

		var unknown *ErrUnknownAlgorithm
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "bohb", unknown.Name)
		assert.Contains(t, err.Error(), "grid, random, variant", "error lists the registered names")
	})

	t.Run("RegisterAdapter", func(t *testing.T) {
		f := NewFactory()
		require.NoError(t, f.Register("scripted", func(opts AlgorithmOptions) (Searcher, error) {
			return newStubSearcher(cfg("lr", 0.5)), nil
		}))

		s, err := f.New("scripted", AlgorithmOptions{})
		require.NoError(t, err)

		c, err := s.Suggest("t0")
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		f := NewFactory()
		assert.Error(t, f.Register("variant", func(AlgorithmOptions) (Searcher, error) { return nil, nil }))
	})

	t.Run("MissingSpace", func(t *testing.T) {
		f := NewFactory()
		_, err := f.New("variant", AlgorithmOptions{})
		assert.Error(t, err)
	})
}
