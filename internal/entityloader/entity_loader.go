// Package entityloader batches collection fetches issued within one request.
package entityloader

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader"
	"golang.org/x/sync/errgroup"

	"github.com/rpattn/contentql/internal/contentful"
	"github.com/rpattn/contentql/internal/domain"
)

// Fetcher retrieves one page of a collection with its linked includes.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, error)

func (f FetcherFunc) Fetch(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, error) {
	return f(ctx, req)
}

// DefaultWait is how long the loader collects fetches before dispatching a batch.
const DefaultWait = 2 * time.Millisecond

// Loader collects fetches submitted within a short window and dispatches them
// together. Results are never cached, so identical requests issued by
// different roots are each fetched.
type Loader struct {
	Loader *dataloader.Loader
}

type Option func(*options)

type options struct {
	wait        time.Duration
	concurrency int
}

func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithConcurrency bounds the number of fetches a batch runs at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	o := options{wait: DefaultWait, concurrency: 8}
	for _, opt := range opts {
		opt(&o)
	}

	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		var g errgroup.Group
		if o.concurrency > 0 {
			g.SetLimit(o.concurrency)
		}
		for i, k := range keys {
			key, ok := k.(requestKey)
			if !ok {
				results[i] = &dataloader.Result{Error: fmt.Errorf("unexpected loader key %T", k)}
				continue
			}
			g.Go(func() error {
				payload, err := fetcher.Fetch(ctx, key.req)
				results[i] = &dataloader.Result{Data: payload, Error: err}
				return nil
			})
		}
		_ = g.Wait()
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn,
		dataloader.WithWait(o.wait),
		dataloader.WithCache(&dataloader.NoCache{}),
	)
	return &Loader{Loader: loader}
}

// Fetch submits the request to the current batch and waits for its result.
func (l *Loader) Fetch(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, error) {
	thunk := l.Loader.Load(ctx, newRequestKey(req))
	data, err := thunk()
	if err != nil {
		return domain.RawPayload{}, err
	}
	payload, ok := data.(domain.RawPayload)
	if !ok {
		return domain.RawPayload{}, fmt.Errorf("unexpected loader result %T", data)
	}
	return payload, nil
}

// requestKey identifies a fetch by its encoded wire query.
type requestKey struct {
	encoded string
	req     domain.FetchRequest
}

func newRequestKey(req domain.FetchRequest) requestKey {
	return requestKey{
		encoded: contentful.EncodeRequest(req).Encode(),
		req:     req,
	}
}

func (k requestKey) String() string   { return k.encoded }
func (k requestKey) Raw() interface{} { return k.req }
