package domain

import (
	"math"
)

// QueryNode is one node of a parsed selection tree: either a *Prop (leaf
// field) or a *Join (field with a nested selection).
type QueryNode interface {
	// NodeKey is the field name the node selects.
	NodeKey() string
	// ResponseKey is the key used in the projected output.
	ResponseKey() string

	isQueryNode()
}

// Prop selects a leaf field. Params on a leaf are carried but never resolved.
type Prop struct {
	Key    string
	Alias  string
	Params Params
}

// Join selects a field together with a nested selection and optional
// parameters. Root query nodes are always joins.
type Join struct {
	Key      string
	Alias    string
	Children []QueryNode
	Params   Params
}

func (p *Prop) NodeKey() string { return p.Key }

func (p *Prop) ResponseKey() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Key
}

func (*Prop) isQueryNode() {}

func (j *Join) NodeKey() string { return j.Key }

func (j *Join) ResponseKey() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Key
}

func (*Join) isQueryNode() {}

// HasParams reports whether the join carries any parameters.
func (j *Join) HasParams() bool {
	return len(j.Params) > 0
}

// Params holds field arguments. Values are plain Go values as produced by the
// query parser: string, bool, int64, float64, nil, []any or map[string]any.
type Params map[string]any

// Int returns the named parameter as an int. Whole floats are accepted.
func (p Params) Int(name string) (int, bool) {
	raw, ok := p[name]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// String returns the named parameter when it is a string.
func (p Params) String(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// Clone returns a shallow copy of the parameters.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
