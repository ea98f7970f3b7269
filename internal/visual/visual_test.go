package visual_test

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/visual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatMap_TilesBytes(t *testing.T) {
	img, err := visual.HeatMap([]byte{0, 255, 100}, 128)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())

	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 128, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 128, A: 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 100, G: 155, B: 128, A: 255}, img.RGBAAt(2, 0))
	assert.Equal(t, img.RGBAAt(0, 0), img.RGBAAt(3, 0))
	// pixel 128 is the first of row 1 and takes byte 128 % 3 = 2
	assert.Equal(t, img.RGBAAt(2, 0), img.RGBAAt(0, 1))
}

func TestHeatMap_TruncatesLongInput(t *testing.T) {
	data := make([]byte, 128*128+50)
	for i := range data {
		data[i] = byte(i)
	}
	data[len(data)-1] = 7
	img, err := visual.HeatMap(data, 128)
	require.NoError(t, err)
	assert.Equal(t, data[128*128-1], img.RGBAAt(127, 127).R)
	assert.Equal(t, uint8(255), img.RGBAAt(127, 127).R)
}

func TestHeatMap_Errors(t *testing.T) {
	_, err := visual.HeatMap(nil, 256)
	assert.ErrorIs(t, err, visual.ErrEmpty)
	_, err = visual.HeatMap([]byte{1}, 100)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	l := exchange.NewLayout(t.TempDir())
	require.NoError(t, os.MkdirAll(l.SharedPath(), 0755))
	require.NoError(t, os.WriteFile(l.Path(exchange.CiphertextBinary), []byte("ckks"), 0644))

	out := filepath.Join(t.TempDir(), "cipher.png")
	require.NoError(t, visual.Render(l, 256, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32('c'), r>>8)
	assert.Equal(t, uint32(255-'c'), g>>8)
	assert.Equal(t, uint32(128), b>>8)
}

func TestRender_MissingBinary(t *testing.T) {
	l := exchange.NewLayout(t.TempDir())
	err := visual.Render(l, 256, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}
