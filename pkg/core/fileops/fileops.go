// Package fileops holds the file level helpers used while scanning videos.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var imdbIDPattern = regexp.MustCompile(`\btt(\d{7,8})\b`)

// ReadNFO returns the first IMDb ID (tt1234567) found in an .nfo file, or ""
// when the file is missing or carries none.
func ReadNFO(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read NFO file '%s': %w", filePath, err)
	}
	m := imdbIDPattern.FindSubmatch(data)
	if m == nil {
		return "", nil
	}
	return "tt" + string(m[1]), nil
}

// FindNFO returns the .nfo file belonging to a video: "<name>.nfo" first,
// then "movie.nfo" in the same directory. It returns "" when neither exists.
func FindNFO(videoPath string) string {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	for _, candidate := range []string{filepath.Join(dir, base+".nfo"), filepath.Join(dir, "movie.nfo")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
