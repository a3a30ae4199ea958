package contentful

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rpattn/contentql/internal/domain"
)

// IncludeDepth is the number of link levels the delivery API resolves into the
// includes block.
const IncludeDepth = 10

const (
	sysIDField          = "sys.id"
	sysContentTypeField = "sys.contentType"
)

// EncodeRequest builds the query string for a collection fetch.
func EncodeRequest(req domain.FetchRequest) url.Values {
	q := url.Values{}
	q.Set("content_type", req.Collection)
	q.Set("include", strconv.Itoa(IncludeDepth))
	q.Set("select", strings.Join(selectFields(req.SelectedFields), ","))

	names := make([]string, 0, len(req.Params))
	for name := range req.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, ok := encodeParam(req.Params[name])
		if !ok {
			continue
		}
		q.Set(name, value)
	}
	return q
}

func selectFields(fields []string) []string {
	out := []string{sysIDField, sysContentTypeField}
	seen := map[string]struct{}{sysIDField: {}, sysContentTypeField: {}}
	for _, field := range fields {
		wire := wireFieldName(field)
		if _, dup := seen[wire]; dup {
			continue
		}
		seen[wire] = struct{}{}
		out = append(out, wire)
	}
	return out
}

func wireFieldName(field string) string {
	switch field {
	case "id":
		return sysIDField
	case "typeName", "__typename":
		return sysContentTypeField
	default:
		return "fields." + field
	}
}

// encodeParam renders a parameter value. Lists are comma-joined and null
// values are dropped.
func encodeParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := encodeParam(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	case []string:
		return strings.Join(v, ","), true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	default:
		return fmt.Sprint(v), true
	}
}
