package halmark

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/naga"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

type AssetId string

type AssetServer struct {
	textures map[AssetId]TextureAsset
	shaders  map[AssetId]ShaderAsset
}

type AssetServerModule struct{}

type TextureAsset struct {
	version uint
	texels  []uint8
	width   uint32
	height  uint32
}

func (t TextureAsset) Texels() []uint8        { return t.texels }
func (t TextureAsset) Size() (uint32, uint32) { return t.width, t.height }

type ShaderAsset struct {
	version uint
	name    string
	listing string
}

func (s ShaderAsset) Name() string    { return s.name }
func (s ShaderAsset) Listing() string { return s.listing }

func (server *AssetServer) CreateTexture(texels []uint8, texWidth uint32, texHeight uint32) AssetId {
	id := makeAssetId()

	server.textures[id] = TextureAsset{
		version: 0,
		texels:  texels,
		width:   texWidth,
		height:  texHeight,
	}

	return id
}

// WhiteTexture registers the 1x1 opaque white texel used when no sprite
// image is supplied; per-instance color does all the tinting.
func (server *AssetServer) WhiteTexture() AssetId {
	return server.CreateTexture([]uint8{0xFF, 0xFF, 0xFF, 0xFF}, 1, 1)
}

func (server *AssetServer) LoadTexture(filename string) AssetId {
	file, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		panic(err)
	}

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok {
		rgbaImg = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, draw.Src)
	}

	return server.CreateTexture(rgbaImg.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()))
}

// LoadShader registers WGSL source after validating it with naga.
// Validation failure is fatal: a bad shader is a build defect, not a
// runtime condition.
func (server *AssetServer) LoadShader(name string, source string) AssetId {
	if _, err := naga.Compile(source); err != nil {
		panic(fmt.Sprintf("shader %q failed validation: %v", name, err))
	}

	id := makeAssetId()

	server.shaders[id] = ShaderAsset{
		version: 0,
		name:    name,
		listing: source,
	}

	return id
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	t, ok := server.textures[id]
	return t, ok
}

func (server *AssetServer) Shader(id AssetId) (ShaderAsset, bool) {
	s, ok := server.shaders[id]
	return s, ok
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(&AssetServer{
		textures: make(map[AssetId]TextureAsset),
		shaders:  make(map[AssetId]ShaderAsset),
	})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
