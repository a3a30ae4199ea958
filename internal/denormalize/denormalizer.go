// Package denormalize rebuilds nested entry trees from a normalized
// collection response by resolving link references.
package denormalize

import (
	"github.com/rpattn/contentql/internal/domain"
)

// Denormalize resolves every entry against the link table. Link references
// that cannot be resolved are treated as absent: dropped from sequences and
// null for single asset links. A link back to an entry that is already being
// expanded higher up the same branch is treated the same way, so cyclic link
// graphs terminate.
func Denormalize(entries []domain.RawEntry, table *LinkTable) []domain.Entry {
	d := &denormalizer{table: table, onPath: make(map[string]int)}
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, d.entry(e))
	}
	return out
}

type denormalizer struct {
	table *LinkTable
	// onPath counts the entries currently being expanded on this branch.
	onPath map[string]int
}

func (d *denormalizer) entry(raw domain.RawEntry) domain.Entry {
	d.onPath[raw.ID]++
	defer func() {
		if d.onPath[raw.ID]--; d.onPath[raw.ID] == 0 {
			delete(d.onPath, raw.ID)
		}
	}()

	fields := make(map[string]domain.Value, len(raw.Fields))
	for name, value := range raw.Fields {
		fields[domain.FieldName(name)] = d.value(value)
	}
	return domain.Entry{
		ID:       raw.ID,
		TypeName: raw.ContentType,
		Fields:   fields,
	}
}

func (d *denormalizer) value(raw any) domain.Value {
	switch v := raw.(type) {
	case domain.Link:
		if v.IsAsset() {
			asset, ok := d.table.Asset(v.ID)
			if !ok {
				return domain.Null()
			}
			return domain.Image(ImageFromAsset(asset))
		}
		return d.links([]domain.Link{v})
	case []any:
		if links, ok := linkSequence(v); ok {
			return d.links(links)
		}
		if len(v) == 1 {
			return domain.Scalar(v[0])
		}
		return domain.Scalar(v)
	default:
		return domain.Scalar(raw)
	}
}

// links resolves a sequence of link references. A sequence made only of asset
// links becomes a list of images; otherwise entry links are expanded and
// anything unresolved is dropped.
func (d *denormalizer) links(links []domain.Link) domain.Value {
	if allAssets(links) {
		images := make([]domain.ImageDescriptor, 0, len(links))
		for _, l := range links {
			if asset, ok := d.table.Asset(l.ID); ok {
				images = append(images, ImageFromAsset(asset))
			}
		}
		return domain.Images(images)
	}

	nested := make([]domain.Entry, 0, len(links))
	for _, l := range links {
		if l.IsAsset() || d.onPath[l.ID] > 0 {
			continue
		}
		raw, ok := d.table.Entry(l.ID)
		if !ok {
			continue
		}
		nested = append(nested, d.entry(raw))
	}
	return domain.Entries(nested)
}

func linkSequence(values []any) ([]domain.Link, bool) {
	if len(values) == 0 {
		return nil, false
	}
	links := make([]domain.Link, 0, len(values))
	for _, v := range values {
		l, ok := v.(domain.Link)
		if !ok {
			return nil, false
		}
		links = append(links, l)
	}
	return links, true
}

func allAssets(links []domain.Link) bool {
	for _, l := range links {
		if !l.IsAsset() {
			return false
		}
	}
	return len(links) > 0
}

// ImageFromAsset converts an asset into an image descriptor at its original
// dimensions.
func ImageFromAsset(asset domain.RawAsset) domain.ImageDescriptor {
	return domain.ImageDescriptor{
		URL:         asset.File.URL,
		Width:       asset.File.Width,
		Height:      asset.File.Height,
		Title:       asset.Title,
		Description: asset.Description,
		ContentType: asset.File.ContentType,
	}
}
