// Package cache provides the byte caches the pipeline stores layouts, plans
// and rendered artifacts in.
//
// Four backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory (CLI use)
//   - [MemoryCache]: a process-local map (HTTP server without Redis)
//   - [RedisCache]: a shared Redis instance (multi-instance HTTP server)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys come from a [Keyer] so every caller derives the same key from the
// same inputs. Keys are SHA-256 digests of the JSON-encoded key parts.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLLayout   = 24 * time.Hour
	TTLPlan     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
//
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero or less stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// LayoutKey keys a computed grid by its catalog and parameter hashes.
	LayoutKey(catalogHash string, opts LayoutKeyOpts) string
	// PlanKey keys a plan document.
	PlanKey(catalogHash string, opts PlanKeyOpts) string
	// ArtifactKey keys a rendered output of a plan.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the catalog that shape a layout.
type LayoutKeyOpts struct {
	ParamsHash string `json:"params_hash"`
}

// PlanKeyOpts holds the inputs besides the catalog that shape a plan.
type PlanKeyOpts struct {
	ParamsHash string `json:"params_hash"`
	Component  string `json:"component"`
	Backend    string `json:"backend"`
}

// ArtifactKeyOpts selects a rendered output format.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", catalogHash, opts)
}

func (DefaultKeyer) PlanKey(catalogHash string, opts PlanKeyOpts) string {
	return hashKey("plan", catalogHash, opts)
}

func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}
