// Package fingerprint computes stable digests of target definitions.
package fingerprint

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/core/ports"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher fingerprints targets with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint returns a 16 hex digit digest covering everything that changes
// what a target runs: name, prerequisite, and each step's command, directory and overrides.
// The description is excluded.
func (h *Hasher) Fingerprint(target *domain.Target) string {
	hasher := xxhash.New()

	writeField(hasher, target.Name)
	writeField(hasher, target.Prerequisite)

	writeField(hasher, strconv.Itoa(len(target.Steps)))
	for i := range target.Steps {
		hashStep(hasher, &target.Steps[i])
	}

	return fmt.Sprintf("%016x", hasher.Sum64())
}

func hashStep(hasher *xxhash.Digest, step *domain.Step) {
	writeField(hasher, strconv.Itoa(len(step.Command)))
	for _, arg := range step.Command {
		writeField(hasher, arg)
	}

	writeField(hasher, step.WorkingDir)

	// Map iteration order is random.
	keys := slices.Sorted(maps.Keys(step.Environment))
	writeField(hasher, strconv.Itoa(len(keys)))
	for _, k := range keys {
		writeField(hasher, k)
		writeField(hasher, step.Environment[k])
	}
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0}) // Separator
}
