package graphql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rpattn/contentql/internal/denormalize"
	"github.com/rpattn/contentql/internal/domain"
	"github.com/rpattn/contentql/internal/entityloader"
	"github.com/rpattn/contentql/internal/metrics"
	"github.com/rpattn/contentql/internal/middleware"
	"github.com/rpattn/contentql/internal/pagination"
	"github.com/rpattn/contentql/internal/projection"
	"github.com/rpattn/contentql/internal/query"
)

// ErrDuplicateRoot is reported for root nodes that share a response key.
var ErrDuplicateRoot = errors.New("duplicate root response key")

// DefaultConcurrency bounds the number of root pipelines running at once.
const DefaultConcurrency = 8

// ResolutionRecorder persists the outcome of each root resolution.
type ResolutionRecorder interface {
	Record(ctx context.Context, entry domain.ResolutionLogEntry) error
}

// Resolver runs one fetch, denormalize, paginate and project pipeline per
// root query node.
type Resolver struct {
	fetcher     entityloader.Fetcher
	recorder    ResolutionRecorder
	logger      *zap.Logger
	concurrency int
}

type Option func(*Resolver)

func WithRecorder(recorder ResolutionRecorder) Option {
	return func(r *Resolver) { r.recorder = recorder }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency bounds concurrent root pipelines; n <= 0 removes the bound.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.concurrency = n }
}

// NewResolver creates a resolver that fetches collections through fetcher.
// A loader attached to the request context takes precedence.
func NewResolver(fetcher entityloader.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:     fetcher,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rootOutcome struct {
	result domain.RootResult
	err    error
}

// Resolve resolves every root independently. A failing root is reported in
// Errors and omitted from Data; it never affects its siblings.
func (r *Resolver) Resolve(ctx context.Context, roots []*domain.Join) domain.Result {
	result := domain.Result{
		Data:  make(map[string]domain.RootResult, len(roots)),
		Order: make([]string, 0, len(roots)),
	}

	counts := make(map[string]int, len(roots))
	for _, root := range roots {
		key := root.ResponseKey()
		if counts[key] == 0 {
			result.Order = append(result.Order, key)
		}
		counts[key]++
	}

	fetcher := r.fetcherFor(ctx)
	outcomes := make([]rootOutcome, len(roots))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, root := range roots {
		if counts[root.ResponseKey()] > 1 {
			outcomes[i].err = ErrDuplicateRoot
			continue
		}
		g.Go(func() error {
			outcomes[i] = r.resolveRoot(ctx, fetcher, root)
			return nil
		})
	}
	_ = g.Wait()

	reported := make(map[string]bool, len(roots))
	for i, root := range roots {
		key := root.ResponseKey()
		if outcomes[i].err == nil {
			result.Data[key] = outcomes[i].result
			continue
		}
		if reported[key] {
			continue
		}
		reported[key] = true
		result.Errors = append(result.Errors, &domain.RootError{
			Key:        key,
			Collection: root.Key,
			Err:        outcomes[i].err,
		})
	}
	return result
}

func (r *Resolver) fetcherFor(ctx context.Context) entityloader.Fetcher {
	if loader := middleware.LoaderFromContext(ctx); loader != nil {
		return loader
	}
	return r.fetcher
}

func (r *Resolver) resolveRoot(ctx context.Context, fetcher entityloader.Fetcher, root *domain.Join) rootOutcome {
	start := time.Now()
	out, total, err := r.runPipeline(ctx, fetcher, root)
	duration := time.Since(start)

	entry := domain.ResolutionLogEntry{
		RootKey:    root.ResponseKey(),
		Collection: root.Key,
		Total:      total,
		ItemCount:  len(out.Nodes),
		Duration:   duration,
	}
	fields := []zap.Field{
		zap.String("root", root.ResponseKey()),
		zap.String("collection", root.Key),
		zap.Int("total", total),
		zap.Duration("duration", duration),
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
		metrics.RootsResolved.WithLabelValues("error").Inc()
		r.logger.Warn("root resolution failed", append(fields, zap.Error(err))...)
	} else {
		metrics.RootsResolved.WithLabelValues("ok").Inc()
		r.logger.Debug("root resolved", fields...)
	}

	if r.recorder != nil {
		if recErr := r.recorder.Record(ctx, entry); recErr != nil {
			r.logger.Warn("failed to record resolution", zap.String("root", root.ResponseKey()), zap.Error(recErr))
		}
	}
	return rootOutcome{result: out, err: err}
}

func (r *Resolver) runPipeline(ctx context.Context, fetcher entityloader.Fetcher, root *domain.Join) (domain.RootResult, int, error) {
	if fetcher == nil {
		return domain.RootResult{}, 0, fmt.Errorf("fetcher not configured")
	}

	req := query.Plan(root)
	payload, err := fetcher.Fetch(ctx, req)
	if err != nil {
		return domain.RootResult{}, 0, fmt.Errorf("failed to fetch %s: %w", root.Key, err)
	}

	table := denormalize.BuildLinkTable(payload)
	entries := denormalize.Denormalize(payload.Items, table)

	nodes, err := projection.Project(entries, root.Children)
	if err != nil {
		return domain.RootResult{}, payload.Total, fmt.Errorf("failed to project %s: %w", root.Key, err)
	}

	return domain.RootResult{
		Nodes: nodes,
		Info:  pageInfo(payload, req.Params),
	}, payload.Total, nil
}

// pageInfo derives pagination from the response, falling back to the
// requested limit when the response omits it. A zero limit yields count-only
// metadata.
func pageInfo(payload domain.RawPayload, params domain.Params) domain.PaginationInfo {
	limit := payload.Limit
	if limit <= 0 {
		if requested, ok := params.Int(query.ParamLimit); ok {
			limit = requested
		}
	}
	skip := payload.Skip
	if skip <= 0 {
		if requested, ok := params.Int(query.ParamSkip); ok && requested > 0 {
			skip = requested
		}
	}
	if limit <= 0 {
		return pagination.CountOnly(payload.Total, skip)
	}
	return pagination.Calculate(payload.Total, skip, limit)
}

// Request is a query document with its operation name and variables.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Execute parses the request and resolves its roots.
func (r *Resolver) Execute(ctx context.Context, req Request) (domain.Result, error) {
	roots, err := query.Parse(req.Query, req.OperationName, req.Variables)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to parse query: %w", err)
	}
	return r.Resolve(ctx, roots), nil
}
