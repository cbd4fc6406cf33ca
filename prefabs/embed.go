package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed cards/*.yaml levels/*.yaml scripts/*.tengo
var ContentFS embed.FS

// Root is the on-disk directory whose files override the embedded content.
var Root = "prefabs"

func LoadScript(name string) ([]byte, error) {
	return Load(cleanScriptPath(name))
}

// Load reads a content file, preferring the copy under Root.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ContentFS.ReadFile(clean)
}

// overlayFS lists the embedded files and opens each from disk when an
// override exists.
type overlayFS struct{}

func (overlayFS) Open(name string) (fs.File, error) {
	if f, err := os.Open(diskPrefabPath(name)); err == nil {
		return f, nil
	}
	return ContentFS.Open(name)
}

func (overlayFS) Glob(pattern string) ([]string, error) {
	return fs.Glob(ContentFS, pattern)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, Root+"/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := cleanPrefabPath(path)
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join(Root, filepath.FromSlash(clean))
}
