package query

import (
	"github.com/rpattn/contentql/internal/domain"
)

// Reserved root parameters.
const (
	ParamID    = "id"
	ParamLimit = "limit"
	ParamSkip  = "skip"
	ParamOrder = "order"
)

// WireIDField is the wire-level path of an entry's identifier.
const WireIDField = "sys.id"

// Plan derives the fetch request for one root query node. Only the immediate
// children are selected; nested joins are served from the linked includes of
// the same response.
func Plan(root *domain.Join) domain.FetchRequest {
	req := domain.FetchRequest{
		Collection: root.Key,
		Params:     make(domain.Params, len(root.Params)),
	}

	seen := make(map[string]struct{}, len(root.Children))
	for _, child := range root.Children {
		var key string
		switch n := child.(type) {
		case *domain.Prop:
			key = n.Key
		case *domain.Join:
			key = n.Key
		default:
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		req.SelectedFields = append(req.SelectedFields, key)
	}

	for name, value := range root.Params {
		req.Params[wireParamName(name)] = value
	}
	return req
}

// wireParamName maps the identifier filter to its wire path. Pagination and
// ordering parameters, and every other filter, keep the name they were given.
func wireParamName(name string) string {
	if name == ParamID {
		return WireIDField
	}
	return name
}
