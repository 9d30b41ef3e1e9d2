package hal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/halmark/hal"
	"github.com/gekko3d/halmark/hal/haltest"
)

func TestOpen_ByName(t *testing.T) {
	hal.Register("test", func() hal.Backend { return haltest.New() })
	defer hal.Unregister("test")

	backend, err := hal.Open("test")
	require.NoError(t, err)
	assert.Equal(t, "test", backend.Name())
}

func TestOpen_UnknownName(t *testing.T) {
	_, err := hal.Open("no-such-backend")
	assert.ErrorIs(t, err, hal.ErrBackendNotAvailable)
}

func TestOpen_EmptyNamePicksAnyRegistered(t *testing.T) {
	hal.Register("test", func() hal.Backend { return haltest.New() })
	defer hal.Unregister("test")

	backend, err := hal.Open("")
	require.NoError(t, err)
	assert.Equal(t, "test", backend.Name())
}

func TestAvailable(t *testing.T) {
	hal.Register("test", func() hal.Backend { return haltest.New() })
	defer hal.Unregister("test")

	assert.Contains(t, hal.Available(), "test")
}
