package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// IsValidFolder checks if the provided path is a valid directory
func IsValidFolder(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Basename strips the directory and the last extension of path.
// Dot files keep their name: "/tmp/.hidden" gives ".hidden".
func Basename(path string) string {
	if path == "" {
		return ""
	}
	name := filepath.Base(path)
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	return strings.TrimSuffix(name, ext)
}
