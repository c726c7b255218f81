package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// fingerprintFields is the canonical identity of a request: two
// requests with equal fields here are the same unit of work.
// Biological parameters and flags are deliberately excluded.
type fingerprintFields struct {
	Species string   `json:"species"`
	Tier    string   `json:"tier"`
	Quality string   `json:"quality"`
	Refs    []string `json:"refs"`
}

// Fingerprint derives the deterministic cache key for a request:
// sha256 over the canonical JSON of (species, tier, quality, ordered
// reference list), truncated to 16 bytes and hex encoded.
func Fingerprint(req *types.GenerationRequest) string {
	fields := fingerprintFields{
		Species: req.Species,
		Tier:    string(req.Tier),
		Quality: string(req.Quality),
		Refs:    req.ReferenceImages,
	}
	data, err := json.Marshal(fields)
	if err != nil {
		// fallback: deterministic string rendering to avoid key collisions
		data = []byte(fmt.Sprintf("%v", fields))
	}
	sum := sha256.Sum256(data)
	return "model:" + hex.EncodeToString(sum[:16])
}
