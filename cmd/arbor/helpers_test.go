package main

import (
	"os"
	"path/filepath"
)

func writeSet(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0644)
}
