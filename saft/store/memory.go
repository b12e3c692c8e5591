// Package store provides ExportStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/saft-export/saft"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Compile-time interface check.
var _ saft.ExportStore = (*Memory)(nil)

// Memory keeps export records in a slice, in insertion order.
type Memory struct {
	mu      sync.RWMutex
	records []saft.ExportRecord
	ids     map[string]bool
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]bool)}
}

// SaveExport appends a record. Append-only.
func (m *Memory) SaveExport(_ context.Context, rec saft.ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[rec.ID] {
		return fmt.Errorf("export %s already recorded", rec.ID)
	}
	m.ids[rec.ID] = true
	m.records = append(m.records, rec)
	return nil
}

// LastExport returns the newest succeeded export for the document type.
func (m *Memory) LastExport(_ context.Context, doc saft.DocumentType) (*saft.ExportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *saft.ExportRecord
	for i := range m.records {
		r := m.records[i]
		if r.DocumentType != doc || r.Status != saft.StatusSucceeded {
			continue
		}
		// Ties keep the later append.
		if last == nil || !r.CreatedAt.Before(last.CreatedAt) {
			last = &r
		}
	}
	return last, nil
}

// ListExports returns records newest first.
func (m *Memory) ListExports(_ context.Context, limit int) ([]saft.ExportRecord, error) {
	m.mu.RLock()
	out := make([]saft.ExportRecord, len(m.records))
	copy(out, m.records)
	m.mu.RUnlock()

	// Reverse append order first so equal timestamps stay newest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
