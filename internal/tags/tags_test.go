package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAudio(t *testing.T) {
	assert.True(t, IsAudio("/music/01 Intro.FLAC"))
	assert.True(t, IsAudio("song.m4a"))
	assert.False(t, IsAudio("cover.jpg"))
	assert.False(t, IsAudio("README"))
}

func TestReadPicture_NotAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.mp3")
	if err := os.WriteFile(path, []byte("definitely not mpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	pic, err := ReadPicture(path)
	assert.Error(t, err)
	assert.Empty(t, pic.Data)
}

func TestReadPicture_Missing(t *testing.T) {
	_, err := ReadPicture(filepath.Join(t.TempDir(), "missing.flac"))
	assert.Error(t, err)
}
