package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImage_OpaquePacksRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 80), B: 7, A: 255})
		}
	}

	out, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Width)
	assert.Equal(t, 3, out.Height)
	assert.Equal(t, 3, out.BytesPerPixel)
	assert.Equal(t, 15, out.Pitch)
	assert.False(t, out.HasAlpha())

	off := out.Offset(4, 2)
	assert.Equal(t, []byte{160, 160, 7}, out.Pix[off:off+3])
}

func TestFromImage_TranslucentKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	out, err := FromImage(img)
	require.NoError(t, err)
	assert.True(t, out.HasAlpha())
	off := out.Offset(1, 1)
	assert.Equal(t, []byte{10, 20, 30, 128}, out.Pix[off:off+4])
}

func TestFromImage_YCbCr(t *testing.T) {
	img := image.NewYCbCr(image.Rect(0, 0, 8, 8), image.YCbCrSubsampleRatio420)
	out, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 3, out.BytesPerPixel)
}

func TestFromImage_Empty(t *testing.T) {
	_, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 4)))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(0, 10, 3)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New(10, 10, 2)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = New(1<<15, 1<<15, 3)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestViewSharesPixels(t *testing.T) {
	m, err := New(4, 4, 3)
	require.NoError(t, err)
	v := m.View()
	m.Pix[0] = 99
	assert.Equal(t, byte(99), v.Pix[0])
	assert.NotSame(t, m, v)
}

func TestNRGBARoundtrip(t *testing.T) {
	m, err := New(3, 2, 3)
	require.NoError(t, err)
	for i := range m.Pix {
		m.Pix[i] = byte(i * 11)
	}
	back, err := FromImage(m.NRGBA())
	require.NoError(t, err)
	assert.Equal(t, m.Pix, back.Pix)
}

func TestHasAlpha(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}
	assert.False(t, HasAlpha(opaque))
	assert.True(t, HasAlpha(image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assert.False(t, HasAlpha(image.NewGray(image.Rect(0, 0, 2, 2))))
}
