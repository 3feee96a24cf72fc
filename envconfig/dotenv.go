package envconfig

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// homeEnvFiles are checked in the user's home directory, lowest precedence
// first.
var homeEnvFiles = []string{
	filepath.Join(".gemini", ".env"),
	".gemini.env",
	"gemini.env",
	".env",
}

// DiscoverEnvFiles returns the existing .env files that apply to workDir,
// ordered from lowest to highest precedence:
//
//  1. files in home (~/.gemini/.env, ~/.gemini.env, ~/gemini.env, ~/.env)
//  2. .env in each directory from the enclosing git root down to workDir,
//     so the nearest file wins; without a git root the walk reaches the
//     filesystem root
//  3. .env in each of extraDirs, in order
//
// Empty home or workDir skip their tier.
func DiscoverEnvFiles(home, workDir string, extraDirs ...string) []string {
	var candidates []string
	if home != "" {
		for _, name := range homeEnvFiles {
			candidates = append(candidates, filepath.Join(home, name))
		}
	}
	if workDir != "" {
		dirs := projectDirs(workDir)
		for i := len(dirs) - 1; i >= 0; i-- {
			candidates = append(candidates, filepath.Join(dirs[i], ".env"))
		}
	}
	for _, dir := range extraDirs {
		if dir != "" {
			candidates = append(candidates, filepath.Join(dir, ".env"))
		}
	}

	var found []string
	seen := make(map[string]bool)
	for _, path := range candidates {
		if seen[path] {
			continue
		}
		seen[path] = true
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			found = append(found, path)
		}
	}
	return found
}

// projectDirs lists workDir and its parents up to and including the first
// directory containing .git, nearest first.
func projectDirs(workDir string) []string {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		dir = filepath.Clean(workDir)
	}
	var dirs []string
	for {
		dirs = append(dirs, dir)
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dirs
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dir = parent
	}
}

// ReadEnvFile parses a .env file. A UTF-8 byte order mark and NUL bytes are
// stripped before parsing; quoting, escapes and inline comments follow
// godotenv. An unquoted value only ends at a '#' preceded by whitespace, so
// KEY=abc#def keeps the whole value.
func ReadEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ReplaceAll(data, []byte{0}, nil)
	return godotenv.UnmarshalBytes(data)
}

// MergeEnvFiles reads files in order, later files overriding earlier ones.
// Missing files are ignored; unparseable files are reported through skip
// and otherwise ignored.
func MergeEnvFiles(files []string, skip func(path string, err error)) map[string]string {
	merged := make(map[string]string)
	for _, path := range files {
		vars, err := ReadEnvFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) && skip != nil {
				skip(path, err)
			}
			continue
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}
