package halwgpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/halmark/hal"
)

func TestSurfaceAlphaMode(t *testing.T) {
	mode, err := surfaceAlphaMode([]wgpu.CompositeAlphaMode{
		wgpu.CompositeAlphaModeOpaque,
		wgpu.CompositeAlphaModeAuto,
	})
	require.NoError(t, err)
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, mode)

	_, err = surfaceAlphaMode(nil)
	assert.ErrorIs(t, err, hal.ErrSurfaceLost)
}

func TestClassifyAcquireErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"lost", errors.New("Surface image is Lost"), hal.ErrSurfaceLost},
		{"outdated", errors.New("surface is Outdated, reconfigure required"), hal.ErrSurfaceLost},
		{"timeout", errors.New("surface Timeout while acquiring"), hal.ErrAcquireTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyAcquireErr(tc.in), tc.want)
		})
	}

	other := errors.New("device out of memory")
	got := classifyAcquireErr(other)
	assert.NotErrorIs(t, got, hal.ErrSurfaceLost)
	assert.NotErrorIs(t, got, hal.ErrAcquireTimeout)
	assert.ErrorContains(t, got, "device out of memory")
}
