// Package provider implements the credential pools, the retry/rotation
// executor, and the three capability clients (translate, transcribe,
// synthesize) that sit in front of the external vendors.
package provider

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrPoolEmpty        = errors.New("credential pool is empty")
	ErrAllKeysExhausted = errors.New("all credentials exhausted")
)

// KeyPool holds an ordered set of credentials for one capability and rotates
// past quota-exhausted entries. Exhaustion state is in-memory and
// process-lifetime; Reset clears it when the provider quota window rolls over.
type KeyPool struct {
	name string

	mu        sync.Mutex
	keys      []string
	exhausted []bool
	current   int
}

// NewKeyPool builds a pool from keys, dropping blank entries. An empty pool
// is a construction-time error, never a runtime one.
func NewKeyPool(name string, keys []string) (*KeyPool, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrPoolEmpty
	}
	log.Info().Str("module", "provider.keypool").Str("pool", name).Int("keys", len(cleaned)).Msg("loaded credentials")
	return &KeyPool{
		name:      name,
		keys:      cleaned,
		exhausted: make([]bool, len(cleaned)),
	}, nil
}

// Current returns the active credential and its index.
func (p *KeyPool) Current() (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[p.current], p.current
}

// Size returns the number of credentials in the pool.
func (p *KeyPool) Size() int { return len(p.keys) }

// Rotate marks failedIndex exhausted and, if the active credential is no
// longer usable, scans forward circularly for the next non-exhausted one.
// It returns false when every credential is exhausted. Marking an index that
// is already exhausted is a no-op for that flag, so concurrent reports of the
// same failure cannot skip past a usable key.
func (p *KeyPool) Rotate(failedIndex int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if failedIndex < 0 || failedIndex >= len(p.keys) {
		return !p.exhausted[p.current]
	}
	p.exhausted[failedIndex] = true

	if !p.exhausted[p.current] {
		return true
	}
	for i := 1; i <= len(p.keys); i++ {
		next := (failedIndex + i) % len(p.keys)
		if !p.exhausted[next] {
			log.Warn().Str("module", "provider.keypool").Str("pool", p.name).
				Int("from", failedIndex).Int("to", next).Msg("rotated credential")
			p.current = next
			return true
		}
	}
	log.Error().Str("module", "provider.keypool").Str("pool", p.name).Msg("all credentials exhausted")
	return false
}

// Reset clears all exhaustion flags. Driven externally by the quota-window
// ticker in main.
func (p *KeyPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.exhausted {
		p.exhausted[i] = false
	}
	p.current = 0
	log.Info().Str("module", "provider.keypool").Str("pool", p.name).Msg("exhaustion flags cleared")
}
