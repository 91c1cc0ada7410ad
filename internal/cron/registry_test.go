package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	a := Entry{Job: &stubJob{name: "a"}, Every: time.Hour}
	b := Entry{Job: &stubJob{name: "b"}, Every: 24 * time.Hour}
	registry, err := NewRegistry(a, b)
	require.NoError(t, err)

	entries := registry.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Job.Name())
	require.Equal(t, 24*time.Hour, entries[1].Every)

	entries[0].Job = nil
	require.NotNil(t, registry.Entries()[0].Job)
}

func TestRegistryRejectsBadEntries(t *testing.T) {
	cases := map[string][]Entry{
		"nil job":      {{Every: time.Hour}},
		"empty name":   {{Job: &stubJob{}, Every: time.Hour}},
		"zero cadence": {{Job: &stubJob{name: "a"}}},
		"duplicate": {
			{Job: &stubJob{name: "a"}, Every: time.Hour},
			{Job: &stubJob{name: "a"}, Every: 2 * time.Hour},
		},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(entries...)
			require.Error(t, err)
		})
	}
}

func TestNilRegistryHasNoEntries(t *testing.T) {
	var registry *Registry
	require.Empty(t, registry.Entries())
}
