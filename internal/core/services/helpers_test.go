package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/regkit/registrar/internal/adapters/registry"
	"github.com/regkit/registrar/internal/adapters/repository"
)

// newTestService wires the service against the in-memory registry and
// stores. The registry records every command it receives so tests can
// assert on the exact protocol traffic.
func newTestService(t *testing.T) (*Service, *registry.Memory) {
	t.Helper()
	reg := registry.NewMemory()
	svc := NewService(
		reg,
		repository.NewMemoryDomainStore(),
		repository.NewMemoryContactStore(),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, reg
}
