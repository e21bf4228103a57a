// Package cache stores AI annotations so a summary is sent to a provider once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/indicacoes/internal/model"
)

// Cache is a byte-oriented key/value store with per-entry TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "indicacoes:v1:annotation:"

// AnnotationKey derives the key for a summary annotated by one provider/model.
// Whitespace differences do not change the key.
func AnnotationKey(provider, modelName, summary string) string {
	normalized := strings.Join(strings.Fields(summary), " ")
	hash := sha256.Sum256([]byte(provider + "\x00" + modelName + "\x00" + normalized))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. A disabled cache stores nothing.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
