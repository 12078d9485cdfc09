package rescaler

import (
	"context"
	"testing"

	"github.com/AnyUserName/coverhue/internal/pixel"
	"github.com/AnyUserName/coverhue/internal/resample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opaque(t *testing.T, w, h int) *pixel.Image {
	t.Helper()
	img, err := pixel.New(w, h, 3)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.Offset(x, y)
			img.Pix[off] = uint8(x)
			img.Pix[off+1] = uint8(y)
			img.Pix[off+2] = 128
		}
	}
	return img
}

func defaultOptions(radius float64) Options {
	return Options{Radius: radius, KernelSize: resample.DefaultKernelSize, Sigma: resample.DefaultSigma}
}

func TestHalvings(t *testing.T) {
	assert.Equal(t, 3, Halvings(4000, 200))
	assert.Equal(t, 0, Halvings(800, 200), "400 is not larger than the diameter")
	assert.Equal(t, 1, Halvings(801, 200))
	assert.Equal(t, 0, Halvings(100, 200))
}

func TestTarget(t *testing.T) {
	w, h := Target(4000, 3000, 200)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)

	w, h = Target(300, 600, 50)
	assert.Equal(t, 50, w)
	assert.Equal(t, 100, h)

	w, h = Target(1000, 1, 10)
	assert.Equal(t, 20, w)
	assert.Equal(t, 1, h)
}

func TestPyramid_Dimensions(t *testing.T) {
	cases := []struct {
		w, h   int
		radius float64
	}{
		{800, 600, 50},
		{600, 800, 50},
		{333, 333, 40},
		{64, 48, 100}, // upscale
	}
	for _, tc := range cases {
		src := opaque(t, tc.w, tc.h)
		out, err := Pyramid(context.Background(), src, tc.radius, resample.NewGaussian(3, 1))
		require.NoError(t, err)

		assert.Equal(t, int(tc.radius*2), out.Limiting(), "%dx%d", tc.w, tc.h)
		assert.InDelta(t, src.AspectRatio(), out.AspectRatio(), 0.02, "%dx%d", tc.w, tc.h)
		assert.Equal(t, 3, out.BytesPerPixel)
	}
}

func TestPyramid_Steps(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		radius float64
		steps  [][2]int
		out    [2]int
		long   bool
	}{
		{"small", 400, 300, 20, [][2]int{{200, 150}, {100, 75}, {50, 38}}, [2]int{40, 30}, false},
		{"full size", 4000, 3000, 200, [][2]int{{2000, 1500}, {1000, 750}, {500, 375}}, [2]int{400, 300}, true},
		{"portrait", 300, 400, 20, [][2]int{{150, 200}, {75, 100}, {38, 50}}, [2]int{30, 40}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.long && testing.Short() {
				t.Skip("large source")
			}
			require.Equal(t, len(tc.steps), Halvings(max(tc.w, tc.h), tc.radius))

			var got [][2]int
			out, err := pyramid(context.Background(), opaque(t, tc.w, tc.h), tc.radius, resample.NewGaussian(3, 1),
				func(img *pixel.Image) { got = append(got, [2]int{img.Width, img.Height}) })
			require.NoError(t, err)
			assert.Equal(t, tc.steps, got)
			assert.Equal(t, tc.out, [2]int{out.Width, out.Height})
		})
	}
}

func TestPyramid_AlphaPassesThrough(t *testing.T) {
	src, err := pixel.New(500, 500, 4)
	require.NoError(t, err)
	out, err := Pyramid(context.Background(), src, 50, resample.NewGaussian(3, 1))
	require.NoError(t, err)
	assert.Same(t, src, out)
}

func TestPyramid_Faults(t *testing.T) {
	_, err := Pyramid(context.Background(), &pixel.Image{}, 50, resample.NewGaussian(3, 1))
	assert.ErrorIs(t, err, resample.ErrEmptyImage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Pyramid(ctx, opaque(t, 400, 400), 50, resample.NewGaussian(3, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRescaler_ScaleAndInstall(t *testing.T) {
	r := New(context.Background(), nil)
	defer r.Close()

	assert.False(t, r.Scale(defaultOptions(25), false), "no source yet")
	assert.False(t, r.TryInstall())

	src := opaque(t, 200, 100)
	r.SetSource(src)
	require.True(t, r.Dirty())
	require.True(t, r.Scale(defaultOptions(25), false))
	assert.False(t, r.Dirty(), "dirty clears when the job starts")
	assert.False(t, r.Scale(defaultOptions(25), false), "not dirty and not forced")

	r.Wait()
	assert.Nil(t, r.Current(), "nothing installed before the consumer ticks")
	require.True(t, r.TryInstall())
	cur := r.Current()
	require.NotNil(t, cur)
	assert.Equal(t, 50, cur.Width)
	assert.Equal(t, 25, cur.Height)
	assert.False(t, r.TryInstall(), "pending slot is empty after install")

	assert.Same(t, src, r.Source(), "unscaled source is kept for later forced rescales")
}

func TestRescaler_ForceRescalesSameSource(t *testing.T) {
	r := New(context.Background(), nil)
	defer r.Close()

	r.SetSource(opaque(t, 120, 120))
	require.True(t, r.Scale(defaultOptions(30), false))
	r.Wait()
	require.True(t, r.TryInstall())
	assert.Equal(t, 60, r.Current().Width)

	require.True(t, r.Scale(defaultOptions(10), true))
	r.Wait()
	require.True(t, r.TryInstall())
	assert.Equal(t, 20, r.Current().Width)
}

func TestRescaler_LastFinishedWins(t *testing.T) {
	r := New(context.Background(), nil)
	defer r.Close()

	r.SetSource(opaque(t, 90, 90))
	require.True(t, r.Scale(defaultOptions(10), false))
	r.Wait()
	require.True(t, r.Scale(defaultOptions(20), true))
	r.Wait()

	require.True(t, r.TryInstall())
	assert.Equal(t, 40, r.Current().Width, "second result overwrote the first pending one")
}

func TestRescaler_TryInstallSkipsWhenContended(t *testing.T) {
	r := New(context.Background(), nil)
	defer r.Close()

	r.SetSource(opaque(t, 40, 40))
	require.True(t, r.Scale(defaultOptions(10), false))
	r.Wait()

	r.mu.Lock()
	assert.False(t, r.TryInstall(), "contended lock skips the tick")
	r.mu.Unlock()
	assert.True(t, r.TryInstall())
}

func TestRescaler_FaultKeepsInstalledTexture(t *testing.T) {
	r := New(context.Background(), nil)
	defer r.Close()

	r.SetSource(opaque(t, 40, 40))
	require.True(t, r.Scale(defaultOptions(10), false))
	r.Wait()
	require.True(t, r.TryInstall())
	installed := r.Current()

	// A zero-sized source never starts a job.
	r.SetSource(&pixel.Image{})
	assert.False(t, r.Scale(defaultOptions(10), true))
	r.Wait()
	assert.False(t, r.TryInstall())
	assert.Same(t, installed, r.Current())
}
