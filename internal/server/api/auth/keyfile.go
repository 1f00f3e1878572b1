package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreateKey returns the password stored at path. A missing file is
// created with a freshly generated key, in which case created is true.
func LoadOrCreateKey(path string) (password string, created bool, err error) {
	b, err := os.ReadFile(path)
	if err == nil {
		password = strings.TrimSpace(string(b))
		if password == "" {
			return "", false, fmt.Errorf("key file %s is empty", path)
		}
		return password, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("read key file: %w", err)
	}

	password, err = GenerateKey()
	if err != nil {
		return "", false, fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(password), 0o600); err != nil {
		return "", false, fmt.Errorf("write key file: %w", err)
	}
	return password, true, nil
}
