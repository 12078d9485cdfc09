package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/coverhue/internal/palette"
)

func TestReportWriteRead(t *testing.T) {
	r := New(200)
	r.BuildInfo = &BuildInfo{Workers: 4}
	r.Albums["Artist/Album"] = Album{
		Source: SourceInfo{Kind: "external", Path: "Artist/Album/cover.jpg", Width: 1200, Height: 1200, Hash: "deadbeef"},
		Palette: []Swatch{
			{Hex: "#CC4429", Hue: 10, Saturation: 0.8, Value: 0.8, Count: 60},
			{Hex: "#2E7599", Hue: 200, Saturation: 0.7, Value: 0.6, Count: 40},
		},
		Texture: &Texture{Format: "png", Width: 400, Height: 400, Size: 5000, Hash: "abcd1234abcd1234", Path: "Artist/Album.400.400.abcd1234.png"},
	}
	r.Albums["Various/Broken"] = Album{Error: "decode: bad data"}

	path := filepath.Join(t.TempDir(), "coverhue.report.json")
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	r2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r2.Radius != 200 {
		t.Errorf("radius: got %v", r2.Radius)
	}
	if r2.BuildInfo == nil || r2.BuildInfo.Workers != 4 {
		t.Errorf("build_info: got %+v", r2.BuildInfo)
	}

	a, ok := r2.Albums["Artist/Album"]
	if !ok {
		t.Fatal("album Artist/Album missing")
	}
	if len(a.Palette) != 2 || a.Palette[0].Hue != 10 {
		t.Errorf("palette: got %+v", a.Palette)
	}
	if a.Texture == nil || a.Texture.Width != 400 {
		t.Errorf("texture: got %+v", a.Texture)
	}

	if r2.Stats.TotalAlbums != 2 {
		t.Errorf("total_albums: got %d", r2.Stats.TotalAlbums)
	}
	if r2.Stats.WithArt != 1 {
		t.Errorf("with_art: got %d", r2.Stats.WithArt)
	}
	if r2.Stats.Failed != 1 {
		t.Errorf("failed: got %d", r2.Stats.Failed)
	}
	if r2.Stats.TotalSwatches != 2 {
		t.Errorf("total_swatches: got %d", r2.Stats.TotalSwatches)
	}
	if r2.Stats.TotalTextureBytes != 5000 {
		t.Errorf("total_texture_bytes: got %d", r2.Stats.TotalTextureBytes)
	}
}

func TestReadJSON_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	if err := os.WriteFile(path, []byte(`{"version": 9, "albums": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadJSON(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported report version 9") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestSwatches_Descending(t *testing.T) {
	h := palette.NewHistogram([]palette.Bin{
		{Count: 2, Hue: 200, Saturation: 0.7, Value: 0.6},
		{Count: 5, Hue: 10, Saturation: 0.8, Value: 0.8},
	})
	s := Swatches(h)
	if len(s) != 2 {
		t.Fatalf("len = %d", len(s))
	}
	if s[0].Hue != 10 || s[0].Count != 5 {
		t.Errorf("first swatch: %+v", s[0])
	}
	if !strings.HasPrefix(s[1].Hex, "#") || len(s[1].Hex) != 7 {
		t.Errorf("hex: %q", s[1].Hex)
	}
}
