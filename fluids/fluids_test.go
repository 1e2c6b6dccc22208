package fluids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"water", "lgas", "hgas"} {
		fl, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, fl.Name)
	}
	_, err := Get("mercury")
	assert.Error(t, err)
}

func TestWaterProperties(t *testing.T) {
	fl := Water()
	assert.False(t, fl.IsGas)
	assert.InDelta(t, 998.2, fl.Density(293.15), 1e-9)
	// Density falls with temperature.
	assert.Less(t, fl.Density(330), fl.Density(293.15))
	assert.Greater(t, fl.Viscosity(293.15), 0.0)
	assert.Equal(t, 1.0, fl.Compressibility(5))
	assert.Equal(t, 0.0, fl.DerCompressibility())
}

func TestGasCompressibility(t *testing.T) {
	fl := LGas()
	assert.True(t, fl.IsGas)
	// Gas density is the normal-condition value regardless of T.
	assert.Equal(t, fl.Density(273.15), fl.Density(330))

	z1 := fl.Compressibility(1)
	z5 := fl.Compressibility(5)
	assert.Less(t, z5, z1)
	assert.InDelta(t, fl.DerCompressibility(), (z5-z1)/4, 1e-12)
}
