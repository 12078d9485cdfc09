package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AnyUserName/coverhue/internal/decode"
	"github.com/AnyUserName/coverhue/internal/tags"
)

// Album represents a folder holding audio files or artwork.
type Album struct {
	// Dir is the absolute path to the folder.
	Dir string
	// Key is the folder path relative to the input directory, using
	// forward slashes. The input directory itself is keyed by its base name.
	Key string
	// Track is the first audio file in the folder, or empty when the
	// folder only has images.
	Track string
	// Tracks counts the audio files in the folder.
	Tracks int
	// Images counts the artwork candidates in the folder.
	Images int
}

// ScanAlbums walks the input directory and returns every folder that
// contains audio or artwork, sorted by key.
func ScanAlbums(inputDir string) ([]Album, error) {
	byDir := make(map[string]*Album)

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(d.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		audio := tags.IsAudio(path)
		image := decode.Supported(path)
		if !audio && !image {
			return nil
		}

		dir := filepath.Dir(path)
		a, ok := byDir[dir]
		if !ok {
			a = &Album{Dir: dir, Key: albumKey(inputDir, dir)}
			byDir[dir] = a
		}
		if audio {
			a.Tracks++
			// WalkDir visits entries in lexical order.
			if a.Track == "" {
				a.Track = path
			}
		}
		if image {
			a.Images++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	albums := make([]Album, 0, len(byDir))
	for _, a := range byDir {
		albums = append(albums, *a)
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Key < albums[j].Key })
	return albums, nil
}

func albumKey(inputDir, dir string) string {
	rel, err := filepath.Rel(inputDir, dir)
	if err != nil || rel == "." {
		return filepath.Base(dir)
	}
	return filepath.ToSlash(rel)
}
