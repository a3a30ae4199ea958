package domain

import (
	"encoding/json"
	"fmt"
)

// LinkType tells which table a link reference resolves through.
type LinkType string

const (
	LinkTypeEntry LinkType = "Entry"
	LinkTypeAsset LinkType = "Asset"
)

// Link is a reference from an entry field to another entry or asset.
type Link struct {
	ID       string
	LinkType LinkType
}

// IsAsset reports whether the link points at an asset.
func (l Link) IsAsset() bool {
	return l.LinkType == LinkTypeAsset
}

// RawEntry is a normalized entry as delivered by the content API. Field values
// are scalars, Link values, []any (of scalars or links) or JSON objects.
type RawEntry struct {
	ID          string
	ContentType string
	Fields      map[string]any
}

// RawAsset is a media object delivered alongside entries.
type RawAsset struct {
	ID          string
	Title       string
	Description string
	File        AssetFile
}

// AssetFile describes the binary behind an asset.
type AssetFile struct {
	URL         string
	ContentType string
	FileName    string
	Width       int
	Height      int
}

// RawPayload is one page of entries plus the side-loaded links.
type RawPayload struct {
	Items         []RawEntry
	Total         int
	Skip          int
	Limit         int
	LinkedEntries []RawEntry
	LinkedAssets  []RawAsset
}

type wireSys struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	LinkType    string `json:"linkType"`
	ContentType *struct {
		Sys struct {
			ID string `json:"id"`
		} `json:"sys"`
	} `json:"contentType"`
}

// UnmarshalJSON decodes the delivery API entry shape, turning link objects
// into Link values.
func (e *RawEntry) UnmarshalJSON(data []byte) error {
	var wire struct {
		Sys    wireSys        `json:"sys"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode entry: %w", err)
	}

	e.ID = wire.Sys.ID
	e.ContentType = ""
	if wire.Sys.ContentType != nil {
		e.ContentType = wire.Sys.ContentType.Sys.ID
	}
	e.Fields = make(map[string]any, len(wire.Fields))
	for name, value := range wire.Fields {
		e.Fields[name] = decodeFieldValue(value)
	}
	return nil
}

func decodeFieldValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if link, ok := linkFromWire(v); ok {
			return link
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if m, ok := item.(map[string]any); ok {
				if link, ok := linkFromWire(m); ok {
					out[i] = link
					continue
				}
			}
			out[i] = item
		}
		return out
	default:
		return value
	}
}

func linkFromWire(m map[string]any) (Link, bool) {
	sys, ok := m["sys"].(map[string]any)
	if !ok {
		return Link{}, false
	}
	if typ, _ := sys["type"].(string); typ != "Link" {
		return Link{}, false
	}
	id, _ := sys["id"].(string)
	linkType, _ := sys["linkType"].(string)
	return Link{ID: id, LinkType: LinkType(linkType)}, true
}

// UnmarshalJSON decodes the delivery API asset shape.
func (a *RawAsset) UnmarshalJSON(data []byte) error {
	var wire struct {
		Sys    wireSys `json:"sys"`
		Fields struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			File        struct {
				URL         string `json:"url"`
				ContentType string `json:"contentType"`
				FileName    string `json:"fileName"`
				Details     struct {
					Image struct {
						Width  int `json:"width"`
						Height int `json:"height"`
					} `json:"image"`
				} `json:"details"`
			} `json:"file"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode asset: %w", err)
	}

	a.ID = wire.Sys.ID
	a.Title = wire.Fields.Title
	a.Description = wire.Fields.Description
	a.File = AssetFile{
		URL:         wire.Fields.File.URL,
		ContentType: wire.Fields.File.ContentType,
		FileName:    wire.Fields.File.FileName,
		Width:       wire.Fields.File.Details.Image.Width,
		Height:      wire.Fields.File.Details.Image.Height,
	}
	return nil
}

// UnmarshalJSON decodes a collection response with its includes block.
func (p *RawPayload) UnmarshalJSON(data []byte) error {
	var wire struct {
		Items    []RawEntry `json:"items"`
		Total    int        `json:"total"`
		Skip     int        `json:"skip"`
		Limit    int        `json:"limit"`
		Includes struct {
			Entry []RawEntry `json:"Entry"`
			Asset []RawAsset `json:"Asset"`
		} `json:"includes"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = RawPayload{
		Items:         wire.Items,
		Total:         wire.Total,
		Skip:          wire.Skip,
		Limit:         wire.Limit,
		LinkedEntries: wire.Includes.Entry,
		LinkedAssets:  wire.Includes.Asset,
	}
	return nil
}
