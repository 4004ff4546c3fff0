package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsDuplicates(t *testing.T) {
	sweep := &stubJob{name: "session-sweep"}
	retention := &stubJob{name: "client-state-retention"}
	registry := NewRegistry(nil, sweep)

	if !registry.Register(retention) {
		t.Fatal("expected retention job to register")
	}
	if registry.Register(&stubJob{name: "session-sweep"}) {
		t.Fatal("duplicate job name should be rejected")
	}
	if registry.Register(nil) {
		t.Fatal("nil job should be rejected")
	}

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != sweep || jobs[1] != retention {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("Jobs must return a copy")
	}
}

func TestZeroRegistryAcceptsJobs(t *testing.T) {
	var registry Registry
	if !registry.Register(&stubJob{name: "a"}) || len(registry.Jobs()) != 1 {
		t.Fatal("zero registry should accept jobs")
	}
}
