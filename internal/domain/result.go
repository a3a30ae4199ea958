package domain

import (
	"encoding/json"
	"fmt"
)

// FetchRequest describes one collection fetch. SelectedFields are query field
// names; Params are already keyed by their wire-level names.
type FetchRequest struct {
	Collection     string
	SelectedFields []string
	Params         Params
}

// PaginationInfo is page and cursor metadata derived from total, skip and
// limit.
type PaginationInfo struct {
	Total       int
	PageSize    int
	CurrentPage int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
	Cursor      int
	NextSkip    int
	PrevSkip    int
}

type paginationJSON struct {
	Nodes struct {
		Total int `json:"total"`
	} `json:"nodes"`
	Page struct {
		Size    int  `json:"size"`
		Current int  `json:"current"`
		Total   int  `json:"total"`
		HasNext bool `json:"hasNext"`
		HasPrev bool `json:"hasPrev"`
	} `json:"page"`
	Pagination struct {
		Cursor   int `json:"cursor"`
		NextSkip int `json:"nextSkip"`
		PrevSkip int `json:"prevSkip"`
	} `json:"pagination"`
}

// MarshalJSON encodes the info as {nodes:{total}, page:{...}, pagination:{...}}.
func (p PaginationInfo) MarshalJSON() ([]byte, error) {
	var out paginationJSON
	out.Nodes.Total = p.Total
	out.Page.Size = p.PageSize
	out.Page.Current = p.CurrentPage
	out.Page.Total = p.TotalPages
	out.Page.HasNext = p.HasNext
	out.Page.HasPrev = p.HasPrev
	out.Pagination.Cursor = p.Cursor
	out.Pagination.NextSkip = p.NextSkip
	out.Pagination.PrevSkip = p.PrevSkip
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *PaginationInfo) UnmarshalJSON(data []byte) error {
	var in paginationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = PaginationInfo{
		Total:       in.Nodes.Total,
		PageSize:    in.Page.Size,
		CurrentPage: in.Page.Current,
		TotalPages:  in.Page.Total,
		HasNext:     in.Page.HasNext,
		HasPrev:     in.Page.HasPrev,
		Cursor:      in.Pagination.Cursor,
		NextSkip:    in.Pagination.NextSkip,
		PrevSkip:    in.Pagination.PrevSkip,
	}
	return nil
}

// RootResult is the resolved output of one root query node.
type RootResult struct {
	Nodes []Object       `json:"nodes"`
	Info  PaginationInfo `json:"info"`
}

// RootError reports the failure of a single root query node.
type RootError struct {
	Key        string
	Collection string
	Err        error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// MarshalJSON encodes the error as {"message": ..., "path": [key]}.
func (e *RootError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string   `json:"message"`
		Path    []string `json:"path"`
	}{
		Message: e.Err.Error(),
		Path:    []string{e.Key},
	})
}

// Result maps each root key to its result. Roots that failed are absent from
// Data and present in Errors.
type Result struct {
	Data   map[string]RootResult
	Errors []*RootError
	// Order lists the root keys in query order.
	Order []string
}

// MarshalJSON encodes the result as {"data": {...}, "errors": [...]} with data
// keys in query order.
func (r Result) MarshalJSON() ([]byte, error) {
	data := make(Object, 0, len(r.Data))
	for _, key := range r.Order {
		if root, ok := r.Data[key]; ok {
			data = append(data, Field{Key: key, Value: root})
		}
	}
	out := struct {
		Data   Object       `json:"data"`
		Errors []*RootError `json:"errors,omitempty"`
	}{
		Data:   data,
		Errors: r.Errors,
	}
	return json.Marshal(out)
}
