package config

import (
	"os"
	"path/filepath"
)

// ScriptNames are the file names searched for by FindScript, in order of
// preference.
var ScriptNames = []string{"nest.lua", "nest.hcl"}

// FindScript finds a configuration file on disk. If dir is a file, it is
// returned as is. If no configuration is found, an empty string is returned.
//
// If the given dir does not contain one of ScriptNames, parent directories are
// traversed until a configuration is found.
func FindScript(dir string) (string, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !stat.IsDir() {
		return filepath.Abs(dir)
	}

	for _, name := range ScriptNames {
		file := filepath.Join(dir, name)
		st, err := os.Stat(file)
		if err == nil && !st.IsDir() {
			return filepath.Abs(file)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		// Not found
		return "", nil
	}
	return FindScript(parent)
}

// IsHCL reports whether the file should be loaded with the HCL loader rather
// than evaluated as a script.
func IsHCL(filename string) bool {
	return filepath.Ext(filename) == ".hcl"
}
