package domain

import (
	"github.com/ettle/strcase"
)

// ImageDescriptor describes an image asset at its original dimensions, or at
// scaled dimensions once an image resolver has been applied.
type ImageDescriptor struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Field returns the descriptor attribute with the given name as a plain value.
func (img ImageDescriptor) Field(name string) (any, bool) {
	switch name {
	case "url":
		return img.URL, true
	case "width":
		return img.Width, true
	case "height":
		return img.Height, true
	case "title":
		return img.Title, true
	case "description":
		return img.Description, true
	case "contentType":
		return img.ContentType, true
	default:
		return nil, false
	}
}

// GoValue returns the descriptor as a JSON-ready map.
func (img ImageDescriptor) GoValue() map[string]any {
	m := map[string]any{
		"url":    img.URL,
		"width":  img.Width,
		"height": img.Height,
	}
	if img.Title != "" {
		m["title"] = img.Title
	}
	if img.Description != "" {
		m["description"] = img.Description
	}
	if img.ContentType != "" {
		m["contentType"] = img.ContentType
	}
	return m
}

// Entry is a denormalized entry: links have been replaced by the entries and
// images they point at.
type Entry struct {
	ID       string
	TypeName string
	Fields   map[string]Value
}

// FieldName normalizes a wire or query field name to the lower camel case
// key entries are stored under.
func FieldName(name string) string {
	return strcase.ToCamel(name)
}

// Field returns the named field or a null value. The name must already be
// normalized with FieldName.
func (e Entry) Field(name string) Value {
	if v, ok := e.Fields[name]; ok {
		return v
	}
	return Null()
}

// GoValue returns the entry with every nested value converted to plain Go
// values. Identity is reported under "id" and "typeName".
func (e Entry) GoValue() map[string]any {
	m := make(map[string]any, len(e.Fields)+2)
	for name, v := range e.Fields {
		m[name] = v.GoValue()
	}
	m["id"] = e.ID
	m["typeName"] = e.TypeName
	return m
}

// ValueKind enumerates the variants of Value.
type ValueKind int

const (
	NullKind ValueKind = iota
	ScalarKind
	ImageKind
	ImagesKind
	EntriesKind
)

func (k ValueKind) String() string {
	switch k {
	case NullKind:
		return "null"
	case ScalarKind:
		return "scalar"
	case ImageKind:
		return "image"
	case ImagesKind:
		return "images"
	case EntriesKind:
		return "entries"
	default:
		return "unknown"
	}
}

// Value is a denormalized field value. The zero value is null.
type Value struct {
	kind    ValueKind
	scalar  any
	image   ImageDescriptor
	images  []ImageDescriptor
	entries []Entry
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a plain JSON value (string, number, bool, object, list).
// A nil scalar is null.
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: ScalarKind, scalar: v}
}

// Image wraps a resolved image asset.
func Image(img ImageDescriptor) Value {
	return Value{kind: ImageKind, image: img}
}

// Images wraps a sequence of resolved image assets.
func Images(imgs []ImageDescriptor) Value {
	return Value{kind: ImagesKind, images: imgs}
}

// Entries wraps a (possibly singular) sequence of nested entries.
func Entries(entries []Entry) Value {
	return Value{kind: EntriesKind, entries: entries}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

// Scalar returns the wrapped scalar or nil.
func (v Value) Scalar() any { return v.scalar }

// Image returns the wrapped image. Only meaningful for ImageKind.
func (v Value) Image() ImageDescriptor { return v.image }

// Images returns the wrapped images. Only meaningful for ImagesKind.
func (v Value) Images() []ImageDescriptor { return v.images }

// Entries returns the nested entries. Only meaningful for EntriesKind.
func (v Value) Entries() []Entry { return v.entries }

// GoValue converts the value into plain Go values suitable for JSON encoding.
func (v Value) GoValue() any {
	switch v.kind {
	case ScalarKind:
		return v.scalar
	case ImageKind:
		return v.image.GoValue()
	case ImagesKind:
		out := make([]any, len(v.images))
		for i, img := range v.images {
			out[i] = img.GoValue()
		}
		return out
	case EntriesKind:
		out := make([]any, len(v.entries))
		for i, e := range v.entries {
			out[i] = e.GoValue()
		}
		return out
	default:
		return nil
	}
}
