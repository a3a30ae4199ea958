// Package query turns query documents into selection trees and plans the
// collection fetches needed to resolve them.
package query

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/rpattn/contentql/internal/domain"
)

var (
	// ErrNoOperation is returned when the requested operation is not in the document.
	ErrNoOperation = errors.New("operation not found")
	// ErrUnsupportedOperation is returned for mutations and subscriptions.
	ErrUnsupportedOperation = errors.New("only query operations are supported")
)

// Parse parses a query document and returns the root nodes of the selected
// operation. operationName may be empty when the document holds exactly one
// operation.
func Parse(source, operationName string, variables map[string]any) ([]*domain.Join, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: source})
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	op, err := findOperation(doc, operationName)
	if err != nil {
		return nil, err
	}
	if op.Operation != ast.Query {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedOperation, op.Operation)
	}

	vars := withDefaults(op, variables)
	b := &builder{doc: doc, vars: vars}
	nodes, err := b.selection(op.SelectionSet, nil)
	if err != nil {
		return nil, err
	}

	roots := make([]*domain.Join, 0, len(nodes))
	for _, node := range nodes {
		root, ok := node.(*domain.Join)
		if !ok {
			return nil, fmt.Errorf("root field %s must select sub-fields", node.NodeKey())
		}
		roots = append(roots, root)
	}
	return roots, nil
}

func findOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, fmt.Errorf("%w: document has %d operations, an operation name is required", ErrNoOperation, len(doc.Operations))
		}
		return doc.Operations[0], nil
	}
	op := doc.Operations.ForName(name)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoOperation, name)
	}
	return op, nil
}

// withDefaults fills in declared variable defaults the caller did not set.
func withDefaults(op *ast.OperationDefinition, variables map[string]any) map[string]any {
	vars := make(map[string]any, len(variables)+len(op.VariableDefinitions))
	for k, v := range variables {
		vars[k] = v
	}
	for _, def := range op.VariableDefinitions {
		if _, ok := vars[def.Variable]; ok || def.DefaultValue == nil {
			continue
		}
		if v, err := def.DefaultValue.Value(nil); err == nil {
			vars[def.Variable] = v
		}
	}
	return vars
}

type builder struct {
	doc  *ast.QueryDocument
	vars map[string]any
}

// selection flattens fragments and converts fields into query nodes. visiting
// guards against fragments that spread themselves.
func (b *builder) selection(set ast.SelectionSet, visiting map[string]bool) ([]domain.QueryNode, error) {
	var nodes []domain.QueryNode
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			node, err := b.field(s, visiting)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case *ast.InlineFragment:
			inner, err := b.selection(s.SelectionSet, visiting)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, inner...)
		case *ast.FragmentSpread:
			if visiting[s.Name] {
				return nil, fmt.Errorf("fragment %s spreads itself", s.Name)
			}
			frag := b.doc.Fragments.ForName(s.Name)
			if frag == nil {
				return nil, fmt.Errorf("unknown fragment %s", s.Name)
			}
			next := make(map[string]bool, len(visiting)+1)
			for k := range visiting {
				next[k] = true
			}
			next[s.Name] = true
			inner, err := b.selection(frag.SelectionSet, next)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, inner...)
		}
	}
	return nodes, nil
}

func (b *builder) field(f *ast.Field, visiting map[string]bool) (domain.QueryNode, error) {
	alias := ""
	if f.Alias != "" && f.Alias != f.Name {
		alias = f.Alias
	}

	params, err := b.arguments(f)
	if err != nil {
		return nil, err
	}

	if len(f.SelectionSet) == 0 {
		return &domain.Prop{Key: f.Name, Alias: alias, Params: params}, nil
	}

	children, err := b.selection(f.SelectionSet, visiting)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	return &domain.Join{
		Key:      f.Name,
		Alias:    alias,
		Children: children,
		Params:   params,
	}, nil
}

func (b *builder) arguments(f *ast.Field) (domain.Params, error) {
	if len(f.Arguments) == 0 {
		return nil, nil
	}
	params := make(domain.Params, len(f.Arguments))
	for _, arg := range f.Arguments {
		v, err := arg.Value.Value(b.vars)
		if err != nil {
			return nil, fmt.Errorf("field %s: argument %s: %w", f.Name, arg.Name, err)
		}
		params[arg.Name] = v
	}
	return params, nil
}
