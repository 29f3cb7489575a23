// Package auth implements the API key gate backed by a plain-text key file.
package auth

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultKeysFile is the key file used when none is configured.
const DefaultKeysFile = "api_keys.txt"

// bcryptPrefixes identify key file lines holding a bcrypt hash.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

type entry struct {
	plain []byte
	hash  []byte
}

func (e entry) matches(key []byte) bool {
	if e.hash != nil {
		return bcrypt.CompareHashAndPassword(e.hash, key) == nil
	}
	return len(e.plain) == len(key) && subtle.ConstantTimeCompare(e.plain, key) == 1
}

// KeyFile is a newline-delimited list of accepted API keys. A missing file
// disables the gate. The file is re-read whenever its modification time or
// size changes.
type KeyFile struct {
	path string

	mu      sync.Mutex
	exists  bool
	modTime time.Time
	size    int64
	entries []entry
}

// NewKeyFile returns a KeyFile reading path. Nothing is read until first use.
func NewKeyFile(path string) *KeyFile {
	if path == "" {
		path = DefaultKeysFile
	}
	return &KeyFile{path: path}
}

// Path returns the file the keys are read from.
func (k *KeyFile) Path() string { return k.path }

// Enabled reports whether the key file exists.
func (k *KeyFile) Enabled() (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.refresh(); err != nil {
		return false, err
	}
	return k.exists, nil
}

// Authorize reports whether key may pass the gate. Every key passes when
// the key file does not exist; an empty key never passes otherwise.
func (k *KeyFile) Authorize(key string) (bool, error) {
	k.mu.Lock()
	if err := k.refresh(); err != nil {
		k.mu.Unlock()
		return false, err
	}
	exists, entries := k.exists, k.entries
	k.mu.Unlock()

	if !exists {
		return true, nil
	}
	if key == "" {
		return false, nil
	}

	presented := []byte(key)
	for _, e := range entries {
		if e.matches(presented) {
			return true, nil
		}
	}
	return false, nil
}

// refresh reloads the file when it appeared, vanished or changed.
// Callers must hold k.mu.
func (k *KeyFile) refresh() error {
	info, err := os.Stat(k.path)
	if errors.Is(err, fs.ErrNotExist) {
		if k.exists {
			slog.Info("api key file removed, access gate disabled", "path", k.path)
		}
		k.exists = false
		k.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat key file: %w", err)
	}

	if k.exists && info.ModTime().Equal(k.modTime) && info.Size() == k.size {
		return nil
	}

	data, err := os.ReadFile(k.path)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}

	entries, err := parseKeys(data)
	if err != nil {
		return fmt.Errorf("parse key file %s: %w", k.path, err)
	}

	k.entries = entries
	k.exists = true
	k.modTime = info.ModTime()
	k.size = info.Size()

	slog.Info("api keys loaded", "path", k.path, "count", len(k.entries))
	return nil
}

const maxKeyLine = 1 << 20

// parseKeys reads one key per line, trimming whitespace and skipping
// blank lines. Lines longer than maxKeyLine are an error.
func parseKeys(data []byte) ([]entry, error) {
	var entries []entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxKeyLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if isBcryptHash(line) {
			entries = append(entries, entry{hash: []byte(line)})
			continue
		}
		entries = append(entries, entry{plain: []byte(line)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func isBcryptHash(s string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// HashKey returns a bcrypt hash of key suitable for a key file line.
func HashKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(hash), nil
}
