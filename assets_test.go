package halmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/halmark/shaders"
)

func newAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]TextureAsset),
		shaders:  make(map[AssetId]ShaderAsset),
	}
}

func TestAssetServer_CreateTexture(t *testing.T) {
	server := newAssetServer()

	texels := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	id := server.CreateTexture(texels, 2, 1)

	got, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, texels, got.Texels())
	w, h := got.Size()
	assert.Equal(t, uint32(2), w)
	assert.Equal(t, uint32(1), h)
}

func TestAssetServer_WhiteTexture(t *testing.T) {
	server := newAssetServer()

	id := server.WhiteTexture()

	got, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, []uint8{0xFF, 0xFF, 0xFF, 0xFF}, got.Texels())
}

func TestAssetServer_DistinctIds(t *testing.T) {
	server := newAssetServer()

	a := server.WhiteTexture()
	b := server.WhiteTexture()

	assert.NotEqual(t, a, b)
}

func TestAssetServer_LoadShader_ValidatesSprite(t *testing.T) {
	server := newAssetServer()

	id := server.LoadShader("sprite", shaders.SpriteWGSL)

	got, ok := server.Shader(id)
	require.True(t, ok)
	assert.Equal(t, "sprite", got.Name())
	assert.Equal(t, shaders.SpriteWGSL, got.Listing())
}

func TestAssetServer_LoadShader_RejectsGarbage(t *testing.T) {
	server := newAssetServer()

	assert.Panics(t, func() {
		server.LoadShader("broken", "fn vs_main( {")
	})
}

func TestAssetServer_UnknownId(t *testing.T) {
	server := newAssetServer()

	_, ok := server.Texture("nope")
	assert.False(t, ok)
	_, ok = server.Shader("nope")
	assert.False(t, ok)
}
