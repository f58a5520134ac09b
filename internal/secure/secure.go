// Package secure implements a local credential cache for provider API keys:
// a SHA-256-keystream cipher over a file-backed key, adapted from the
// teacher's XOR-keystream cipher used to protect its own inbox/outbox
// messages. The cipher shape is unchanged; it is retargeted here at caching
// provider credentials on disk rather than encrypting commander messages.
package secure

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// #region key

// ensureKey loads the cache's symmetric key from keyPath, generating and
// persisting a new 32-byte key on first use.
func ensureKey(keyPath string) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o755); err != nil {
		return nil, fmt.Errorf("secure: create key dir: %w", err)
	}
	data, err := os.ReadFile(keyPath)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("secure: generate key: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("secure: write key: %w", err)
	}
	return key, nil
}

func keystream(key []byte, length int) []byte {
	stream := make([]byte, 0, length+sha256.Size)
	var counter uint64
	for len(stream) < length {
		buf := make([]byte, len(key)+8)
		copy(buf, key)
		binary.BigEndian.PutUint64(buf[len(key):], counter)
		h := sha256.Sum256(buf)
		stream = append(stream, h[:]...)
		counter++
	}
	return stream[:length]
}

// #endregion key

// #region encrypt-decrypt

// Encrypt returns the base64-encoded keystream-XOR ciphertext of plaintext.
func Encrypt(keyPath, plaintext string) (string, error) {
	key, err := ensureKey(keyPath)
	if err != nil {
		return "", err
	}
	data := []byte(plaintext)
	ks := keystream(key, len(data))
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ ks[i]
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func Decrypt(keyPath, b64Ciphertext string) (string, error) {
	key, err := ensureKey(keyPath)
	if err != nil {
		return "", err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(b64Ciphertext)
	if err != nil {
		return "", fmt.Errorf("secure: base64 decode: %w", err)
	}
	ks := keystream(key, len(ciphertext))
	out := make([]byte, len(ciphertext))
	for i := range ciphertext {
		out[i] = ciphertext[i] ^ ks[i]
	}
	return string(out), nil
}

// #endregion encrypt-decrypt

// #region cache

// Cache is a file-backed, encrypted store of per-provider API keys.
type Cache struct {
	keyPath   string
	cachePath string
}

// NewCache creates a credential cache rooted at dir, with the cipher key
// and encrypted credential blob stored as sibling files.
func NewCache(dir string) *Cache {
	return &Cache{
		keyPath:   filepath.Join(dir, ".credcache_key"),
		cachePath: filepath.Join(dir, "credentials.enc"),
	}
}

// Put stores apiKey for provider, overwriting any previous value.
func (c *Cache) Put(provider, apiKey string) error {
	creds, err := c.readAll()
	if err != nil {
		return err
	}
	creds[provider] = apiKey
	return c.writeAll(creds)
}

// Get returns the cached key for provider, or false if absent.
func (c *Cache) Get(provider string) (string, bool, error) {
	creds, err := c.readAll()
	if err != nil {
		return "", false, err
	}
	v, ok := creds[provider]
	return v, ok, nil
}

// Delete removes the cached key for provider.
func (c *Cache) Delete(provider string) error {
	creds, err := c.readAll()
	if err != nil {
		return err
	}
	delete(creds, provider)
	return c.writeAll(creds)
}

func (c *Cache) readAll() (map[string]string, error) {
	raw, err := os.ReadFile(c.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("secure: read cache: %w", err)
	}
	plaintext, err := Decrypt(c.keyPath, string(raw))
	if err != nil {
		return nil, fmt.Errorf("secure: decrypt cache: %w", err)
	}
	creds := map[string]string{}
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return nil, fmt.Errorf("secure: decode cache: %w", err)
	}
	return creds, nil
}

func (c *Cache) writeAll(creds map[string]string) error {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("secure: encode cache: %w", err)
	}
	ciphertext, err := Encrypt(c.keyPath, string(plaintext))
	if err != nil {
		return fmt.Errorf("secure: encrypt cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755); err != nil {
		return fmt.Errorf("secure: create cache dir: %w", err)
	}
	return os.WriteFile(c.cachePath, []byte(ciphertext), 0o600)
}

// #endregion cache
