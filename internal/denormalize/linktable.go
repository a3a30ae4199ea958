package denormalize

import (
	"github.com/rpattn/contentql/internal/domain"
)

// LinkTable indexes the entries and assets of one collection response by id.
// It lives only as long as the response it was built from.
type LinkTable struct {
	entries map[string]domain.RawEntry
	assets  map[string]domain.RawAsset
}

// BuildLinkTable indexes the payload's linked entries and assets. Top-level
// items are indexed too, since the delivery API does not repeat them in the
// includes block when one item links to another. The first occurrence of an
// id wins.
func BuildLinkTable(payload domain.RawPayload) *LinkTable {
	table := &LinkTable{
		entries: make(map[string]domain.RawEntry, len(payload.Items)+len(payload.LinkedEntries)),
		assets:  make(map[string]domain.RawAsset, len(payload.LinkedAssets)),
	}
	for _, group := range [][]domain.RawEntry{payload.Items, payload.LinkedEntries} {
		for _, e := range group {
			if _, exists := table.entries[e.ID]; exists || e.ID == "" {
				continue
			}
			table.entries[e.ID] = e
		}
	}
	for _, a := range payload.LinkedAssets {
		if _, exists := table.assets[a.ID]; exists || a.ID == "" {
			continue
		}
		table.assets[a.ID] = a
	}
	return table
}

// Entry looks up an entry by id.
func (t *LinkTable) Entry(id string) (domain.RawEntry, bool) {
	if t == nil {
		return domain.RawEntry{}, false
	}
	e, ok := t.entries[id]
	return e, ok
}

// Asset looks up an asset by id.
func (t *LinkTable) Asset(id string) (domain.RawAsset, bool) {
	if t == nil {
		return domain.RawAsset{}, false
	}
	a, ok := t.assets[id]
	return a, ok
}

// Len returns the number of indexed entries and assets.
func (t *LinkTable) Len() (entries, assets int) {
	if t == nil {
		return 0, 0
	}
	return len(t.entries), len(t.assets)
}
