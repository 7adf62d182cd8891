package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// maxSlugAttempts bounds the numeric suffix search
const maxSlugAttempts = 10000

// slugLookup reports whether a slug is already persisted, ignoring excludeID
type slugLookup func(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

// SlugAssigner hands out unique slugs for one entity type during one run.
// Slugs claimed earlier in the run are never handed out again, even before
// they reach the store. It is not safe for concurrent use.
type SlugAssigner struct {
	exists  slugLookup
	claimed map[string]struct{}
}

// NewSlugAssigner creates an assigner backed by a store existence check
func NewSlugAssigner(exists slugLookup) *SlugAssigner {
	return &SlugAssigner{
		exists:  exists,
		claimed: make(map[string]struct{}),
	}
}

// Assign returns base, or base-2, base-3 ... whichever is free first, and
// claims it. An empty base yields nil: records may have no slug.
func (a *SlugAssigner) Assign(ctx context.Context, base string, excludeID *uuid.UUID) (*string, error) {
	if base == "" {
		return nil, nil
	}

	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := base
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		if _, taken := a.claimed[candidate]; taken {
			continue
		}
		exists, err := a.exists(ctx, candidate, excludeID)
		if err != nil {
			return nil, fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if exists {
			continue
		}
		a.claimed[candidate] = struct{}{}
		return &candidate, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSlugExhausted, base)
}

// Claim marks a slug that an existing record already owns as used
func (a *SlugAssigner) Claim(slug string) {
	if slug != "" {
		a.claimed[slug] = struct{}{}
	}
}
