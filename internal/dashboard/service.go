// Package dashboard shapes sale records into the aggregate series the charts
// consume and owns the view state machine around the remote fetches.
package dashboard

import (
	"context"

	"github.com/vendascope/vendascope/internal/salesapi"
)

// Lister is the slice of the vendas API client the dashboard reads from.
type Lister interface {
	ListSales(ctx context.Context, filter salesapi.Filter) ([]salesapi.SaleRecord, error)
	GetSaleByID(ctx context.Context, id string) (*salesapi.SaleRecord, error)
}

// Overview is one fully-shaped dashboard view: the raw record set plus both
// derived series. It is replaced wholesale on every successful fetch, never
// merged.
type Overview struct {
	Records   []salesapi.SaleRecord `json:"vendas"`
	ByProduct []ProductTotal        `json:"por_produto"`
	ByDay     []DayTotal            `json:"por_dia"`
}

// Service coordinates remote fetches with the cache layer.
type Service struct {
	client Lister
	cache  *Cache
}

// NewService wires the vendas API client with a Cache helper.
func NewService(client Lister, cache *Cache) *Service {
	return &Service{client: client, cache: cache}
}

// Overview fetches the record set for the filter and derives both aggregate
// series, memoised per filter window until the next Invalidate.
func (s *Service) Overview(ctx context.Context, filter salesapi.Filter) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview", filter.CacheKey())
	if err != nil {
		return Overview{}, err
	}
	var overview Overview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		records, err := s.client.ListSales(ctx, filter)
		if err != nil {
			return nil, err
		}
		return Overview{
			Records:   records,
			ByProduct: AggregateByProduct(records),
			ByDay:     AggregateByDay(records),
		}, nil
	})
	if err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// Sale looks up a single record by identifier. Lookups are never cached; a
// nil record means the identifier does not exist upstream.
func (s *Service) Sale(ctx context.Context, id string) (*salesapi.SaleRecord, error) {
	return s.client.GetSaleByID(ctx, id)
}

// Invalidate drops every memoised view.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
