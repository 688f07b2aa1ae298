package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("Equal", func(t *testing.T) {
		assert.True(t, Int(3).Equal(Int(3)))
		assert.False(t, Int(3).Equal(Int(4)))
		assert.False(t, Int(3).Equal(Float(3)), "kinds must match")
		assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
		assert.True(t, String("relu").Equal(String("relu")))
		assert.True(t, Bool(true).Equal(Bool(true)))

		a := Nested(Configuration{"lr": Float(0.1)})
		b := Nested(Configuration{"lr": Float(0.1)})
		c := Nested(Configuration{"lr": Float(0.2)})
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})

	t.Run("Float64", func(t *testing.T) {
		assert.Equal(t, 3.0, Int(3).Float64())
		assert.Equal(t, 0.5, Float(0.5).Float64())
		assert.Zero(t, String("x").Float64())
	})

	t.Run("Key", func(t *testing.T) {
		assert.Equal(t, Int(7).Key(), Int(7).Key())
		assert.NotEqual(t, Int(7).Key(), Float(7).Key(), "kinds keep distinct keys")
		assert.NotEqual(t, Float(0.1).Key(), Float(0.2).Key())
		assert.Equal(t, "b:1", Bool(true).Key())
	})
}

func TestConfiguration(t *testing.T) {
	cfg := Configuration{
		"lr":  Float(0.01),
		"opt": Nested(Configuration{"beta": Float(0.9)}),
	}

	t.Run("KeyIsOrderIndependent", func(t *testing.T) {
		other := Configuration{
			"opt": Nested(Configuration{"beta": Float(0.9)}),
			"lr":  Float(0.01),
		}
		assert.Equal(t, cfg.Key(), other.Key())
	})

	t.Run("CloneIsDeep", func(t *testing.T) {
		clone := cfg.Clone()
		require.True(t, cfg.Equal(clone))

		clone["opt"].C["beta"] = Float(0.99)
		assert.Equal(t, 0.9, cfg["opt"].C["beta"].F64)
		assert.False(t, cfg.Equal(clone))
	})

	t.Run("NilClone", func(t *testing.T) {
		var nilCfg Configuration
		assert.Nil(t, nilCfg.Clone())
	})
}
