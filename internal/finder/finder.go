// Package finder locates album artwork next to audio files.
package finder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/coverhue/internal/decode"
)

// ErrNotFound is returned when a folder holds no usable artwork.
var ErrNotFound = errors.New("finder: no artwork found")

// preferredPrefixes mark files that are almost certainly the front cover.
var preferredPrefixes = []string{"cover", "front", "folder"}

// Preferred reports whether the file name starts with one of the
// conventional cover names, ignoring case.
func Preferred(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range preferredPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Find returns the best artwork file directly inside folder: the first
// preferred name, else the first supported image. When nothing is found
// and deep is set, subfolders are searched and the first preferred file
// wins.
//
// Callers pass deep only when no artwork is loaded yet, since a deep
// search of a large library root can be slow.
func Find(folder string, deep bool) (string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", err
	}

	var found string
	for _, e := range entries {
		if e.IsDir() || !decode.Supported(e.Name()) {
			continue
		}
		path := filepath.Join(folder, e.Name())
		if Preferred(path) {
			return path, nil
		}
		if found == "" {
			found = path
		}
	}
	if found != "" {
		return found, nil
	}
	if !deep {
		return "", ErrNotFound
	}

	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(d.Name(), ".") && path != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if !decode.Supported(path) {
			return nil
		}
		if found == "" {
			found = path
		}
		if Preferred(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}
