// Package projection reduces denormalized entries to the shape requested by a
// query's selection tree.
package projection

import (
	"fmt"

	"github.com/rpattn/contentql/internal/domain"
	"github.com/rpattn/contentql/internal/imaging"
)

// Project projects every entry against the selection, preserving order.
func Project(entries []domain.Entry, selection []domain.QueryNode) ([]domain.Object, error) {
	out := make([]domain.Object, 0, len(entries))
	for i, e := range entries {
		obj, err := ProjectEntry(e, selection)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// ProjectEntry emits exactly the selected fields of a single entry.
func ProjectEntry(e domain.Entry, selection []domain.QueryNode) (domain.Object, error) {
	obj := make(domain.Object, 0, len(selection))
	for _, node := range selection {
		value, err := projectField(e, node)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", node.ResponseKey(), err)
		}
		obj = append(obj, domain.Field{Key: node.ResponseKey(), Value: value})
	}
	return obj, nil
}

func projectField(e domain.Entry, node domain.QueryNode) (any, error) {
	switch n := node.(type) {
	case *domain.Prop:
		if v, ok := identityField(e, n.Key); ok {
			return v, nil
		}
		return e.Field(domain.FieldName(n.Key)).GoValue(), nil
	case *domain.Join:
		value := e.Field(domain.FieldName(n.Key))
		if n.HasParams() {
			resolved, err := resolve(value, n.Params)
			if err != nil {
				return nil, err
			}
			value = resolved
		}
		return projectValue(value, n.Children)
	default:
		return nil, fmt.Errorf("unsupported query node %T", node)
	}
}

func identityField(e domain.Entry, key string) (string, bool) {
	switch key {
	case "id":
		return e.ID, true
	case "typeName", "__typename":
		return e.TypeName, true
	default:
		return "", false
	}
}

// resolve applies the field resolver for parameterized joins. Image scaling is
// the only resolver; other values pass through untouched.
func resolve(value domain.Value, params domain.Params) (domain.Value, error) {
	width, height := imaging.TargetsFromParams(params)
	switch value.Kind() {
	case domain.ImageKind:
		img, err := imaging.Scale(value.Image(), width, height)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Image(img), nil
	case domain.ImagesKind:
		scaled := make([]domain.ImageDescriptor, 0, len(value.Images()))
		for _, img := range value.Images() {
			s, err := imaging.Scale(img, width, height)
			if err != nil {
				return domain.Value{}, err
			}
			scaled = append(scaled, s)
		}
		return domain.Images(scaled), nil
	default:
		return value, nil
	}
}

func projectValue(value domain.Value, children []domain.QueryNode) (any, error) {
	switch value.Kind() {
	case domain.NullKind:
		return nil, nil
	case domain.EntriesKind:
		nested, err := Project(value.Entries(), children)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(nested))
		for i, obj := range nested {
			out[i] = obj
		}
		return out, nil
	case domain.ImageKind:
		return projectImage(value.Image(), children), nil
	case domain.ImagesKind:
		out := make([]any, len(value.Images()))
		for i, img := range value.Images() {
			out[i] = projectImage(img, children)
		}
		return out, nil
	case domain.ScalarKind:
		return projectScalar(value.Scalar(), children), nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", value.Kind())
	}
}

func projectImage(img domain.ImageDescriptor, children []domain.QueryNode) domain.Object {
	obj := make(domain.Object, 0, len(children))
	for _, child := range children {
		v, _ := img.Field(child.NodeKey())
		obj = append(obj, domain.Field{Key: child.ResponseKey(), Value: v})
	}
	return obj
}

// projectScalar narrows JSON object scalars (and lists of them) to the
// selected keys. Other scalars are copied as they are.
func projectScalar(v any, children []domain.QueryNode) any {
	switch val := v.(type) {
	case map[string]any:
		obj := make(domain.Object, 0, len(children))
		for _, child := range children {
			var fieldValue any = val[child.NodeKey()]
			if join, ok := child.(*domain.Join); ok {
				fieldValue = projectScalar(fieldValue, join.Children)
			}
			obj = append(obj, domain.Field{Key: child.ResponseKey(), Value: fieldValue})
		}
		return obj
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = projectScalar(item, children)
		}
		return out
	default:
		return v
	}
}
