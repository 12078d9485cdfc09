package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/coverhue/internal/settings"
	"github.com/AnyUserName/coverhue/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 46, G: 117, B: 153, A: 255}
			if x < w*6/10 {
				c = color.NRGBA{R: 204, G: 68, B: 41, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// library lays out:
//
//	Artist/Album/cover.png   64x64 external art
//	Tagged/01.flac           audio with 40x20 embedded art
//	Broken/cover.png         undecodable
//	Notes/readme.txt         ignored
func library(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Artist", "Album", "cover.png"), coverPNG(t, 64, 64))
	writeFile(t, filepath.Join(root, "Tagged", "01.flac"), []byte("not really flac"))
	writeFile(t, filepath.Join(root, "Broken", "cover.png"), []byte("garbage"))
	writeFile(t, filepath.Join(root, "Notes", "readme.txt"), []byte("hi"))
	writeFile(t, filepath.Join(root, ".hidden", "cover.png"), coverPNG(t, 8, 8))
	return root
}

func embeddedPictures(t *testing.T) func(string) (tags.Picture, error) {
	data := coverPNG(t, 40, 20)
	return func(path string) (tags.Picture, error) {
		return tags.Picture{MimeType: "image/png", Data: data}, nil
	}
}

func testSettings() settings.Settings {
	s := settings.Default()
	s.Radius = 8
	return s
}

func TestScanAlbums(t *testing.T) {
	root := library(t)

	albums, err := ScanAlbums(root)
	require.NoError(t, err)
	require.Len(t, albums, 3)

	assert.Equal(t, "Artist/Album", albums[0].Key)
	assert.Equal(t, 1, albums[0].Images)
	assert.Empty(t, albums[0].Track)

	assert.Equal(t, "Broken", albums[1].Key)

	assert.Equal(t, "Tagged", albums[2].Key)
	assert.Equal(t, 1, albums[2].Tracks)
	assert.Equal(t, filepath.Join(root, "Tagged", "01.flac"), albums[2].Track)
}

func TestScanAlbums_RootFolderKeyedByName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Solo")
	writeFile(t, filepath.Join(root, "front.jpg"), []byte("x"))

	albums, err := ScanAlbums(root)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Solo", albums[0].Key)
}

func TestPipeline_Run(t *testing.T) {
	root := library(t)
	out := t.TempDir()

	p := New(Config{
		InputDir:  root,
		OutputDir: out,
		Settings:  testSettings(),
		Workers:   2,
		Pictures:  embeddedPictures(t),
	})
	r, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, r.Stats.TotalAlbums)
	assert.Equal(t, 2, r.Stats.WithArt)
	assert.Equal(t, 1, r.Stats.Failed)
	assert.Equal(t, 2, r.BuildInfo.Workers)
	assert.Equal(t, 8.0, r.Radius)

	ext := r.Albums["Artist/Album"]
	assert.Equal(t, "external", ext.Source.Kind)
	assert.Equal(t, "Artist/Album/cover.png", ext.Source.Path)
	assert.Equal(t, 64, ext.Source.Width)
	assert.Len(t, ext.Source.Hash, 8)
	require.NotEmpty(t, ext.Palette)
	assert.Equal(t, 10.0, ext.Palette[0].Hue)
	assert.Equal(t, 0, ext.Active)

	require.NotNil(t, ext.Texture)
	assert.Equal(t, "png", ext.Texture.Format)
	assert.Equal(t, 16, ext.Texture.Width)
	assert.Equal(t, 16, ext.Texture.Height)
	info, err := os.Stat(filepath.Join(out, filepath.FromSlash(ext.Texture.Path)))
	require.NoError(t, err)
	assert.Equal(t, ext.Texture.Size, info.Size())
	assert.Regexp(t, `^Artist/Album\.16\.16\.[0-9a-f]{8}\.png$`, ext.Texture.Path)

	emb := r.Albums["Tagged"]
	assert.Equal(t, "embedded", emb.Source.Kind)
	assert.Equal(t, "Tagged/01.flac", emb.Source.Path)
	require.NotNil(t, emb.Texture)
	assert.Equal(t, 16, emb.Texture.Width)
	assert.Equal(t, 8, emb.Texture.Height)

	assert.NotEmpty(t, r.Albums["Broken"].Error)
}

func TestPipeline_NoOutputSkipsTextures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "cover.png"), coverPNG(t, 32, 32))

	r, err := New(Config{InputDir: root, Settings: testSettings()}).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, r.Albums["A"].Texture)
	assert.NotEmpty(t, r.Albums["A"].Palette)
}

func TestPipeline_AllFailed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "cover.png"), []byte("garbage"))

	_, err := New(Config{InputDir: root}).Run(context.Background())
	assert.ErrorContains(t, err, "all 1 albums failed")
}

func TestPipeline_Empty(t *testing.T) {
	_, err := New(Config{InputDir: t.TempDir()}).Run(context.Background())
	assert.ErrorContains(t, err, "no albums found")
}

func TestPipeline_Cancelled(t *testing.T) {
	root := library(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{InputDir: root, Settings: testSettings()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
