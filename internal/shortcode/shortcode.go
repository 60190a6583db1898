// Package shortcode issues the three character codes used by recipe short links.
package shortcode

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	Alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	Length      = 3
	MaxAttempts = 10
)

var (
	// ErrExhausted is returned when MaxAttempts candidates were all taken.
	ErrExhausted = errors.New("shortcode: could not generate a unique code")
	// ErrCollision is returned by a persist callback when the store rejected
	// the code as a duplicate. Assign treats it as a retry.
	ErrCollision = errors.New("shortcode: code already taken")
)

// ExistsFunc reports whether a code is already in use.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// PersistFunc writes a record carrying code.
type PersistFunc func(ctx context.Context, code string) error

type Generator struct {
	exists ExistsFunc

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Generator)

// WithRand replaces the random source. Tests use a seeded source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = r
	}
}

func NewGenerator(exists ExistsFunc, opts ...Option) *Generator {
	seed := uint64(time.Now().UnixNano())
	g := &Generator{
		exists: exists,
		rnd:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) candidate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[g.rnd.IntN(len(Alphabet))])
	}
	return b.String()
}

// Generate returns a code the exists check does not know about.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, ok, err := g.next(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", ErrExhausted
}

// Assign generates a code and hands it to persist. A persist that fails
// with ErrCollision consumes an attempt from the same budget as the exists
// check, so a code lost to a concurrent writer is retried.
func (g *Generator) Assign(ctx context.Context, persist PersistFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, ok, err := g.next(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		err = persist(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrCollision) {
			return "", err
		}
	}
	return "", ErrExhausted
}

func (g *Generator) next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	code := g.candidate()
	if g.exists == nil {
		return code, true, nil
	}
	taken, err := g.exists(ctx, code)
	if err != nil {
		return "", false, fmt.Errorf("check short code: %w", err)
	}
	return code, !taken, nil
}

// Valid reports whether code has the right length and alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
