package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// pepperLength is the number of random bytes behind a generated pepper.
const pepperLength = 32

var (
	// Pepper is dynamically loaded from a file or generated at runtime.
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "pepper"
)

func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}

	raw, err := loadOrCreateSecretFile(pepperFile, func() ([]byte, error) {
		b := make([]byte, pepperLength)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(b)), nil
	})
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	pepper = string(raw)
	return pepper
}

// loadOrCreateSecretFile reads a secret from path, creating the file with
// generate() (mode 0600) when it doesn't exist yet. Several processes
// sharing a volume end up with the same secret because creation is
// exclusive and the loser re-reads the winner's file.
func loadOrCreateSecretFile(path string, generate func() ([]byte, error)) ([]byte, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	if b, err := os.ReadFile(path); err == nil {
		return b, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	secret, err := generate()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Write(secret); err != nil {
		return nil, err
	}
	return secret, nil
}
