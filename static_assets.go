package server

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePublicDir locates the static page directory (landing, game, and
// random-match pages) relative to the working directory or the executable.
func ResolvePublicDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve public assets: %w", err)
	}
	if dir, ok := resolvePublicDirFrom(cwd); ok {
		return dir, nil
	}
	exePath, err := os.Executable()
	if err == nil {
		base := filepath.Dir(exePath)
		if dir, ok := resolvePublicDirFrom(base); ok {
			return dir, nil
		}
	}
	return "", fmt.Errorf("public assets directory not found")
}

func resolvePublicDirFrom(base string) (string, bool) {
	candidates := []string{
		filepath.Join(base, "public"),
		filepath.Join(base, "..", "public"),
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				continue
			}
			return abs, true
		}
	}
	return "", false
}
