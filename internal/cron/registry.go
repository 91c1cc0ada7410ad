package cron

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Job is one unit of scheduled maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with the minimum spacing between its runs.
type Entry struct {
	Job   Job
	Every time.Duration
}

// Registry is the fixed, ordered set of jobs a cron worker owns.
type Registry struct {
	entries []Entry
}

// NewRegistry validates entries and keeps them in the given order.
// Job names double as claim keys, so they must be unique.
func NewRegistry(entries ...Entry) (*Registry, error) {
	seen := make(map[string]struct{}, len(entries))
	kept := make([]Entry, 0, len(entries))
	for i, entry := range entries {
		if entry.Job == nil {
			return nil, fmt.Errorf("entry %d has no job", i)
		}
		name := entry.Job.Name()
		switch _, dup := seen[name]; {
		case name == "":
			return nil, fmt.Errorf("entry %d has an empty job name", i)
		case dup:
			return nil, fmt.Errorf("job %q registered twice", name)
		case entry.Every <= 0:
			return nil, fmt.Errorf("job %q needs a positive cadence", name)
		}
		seen[name] = struct{}{}
		kept = append(kept, entry)
	}
	return &Registry{entries: kept}, nil
}

// Entries returns a copy of the registered entries.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	return slices.Clone(r.entries)
}
