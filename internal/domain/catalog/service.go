package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// Service serves catalog queries over a product Source.
type Service struct {
	source Source
}

// NewService creates a Service reading from source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// List fetches the collection and applies f to it.
func (s *Service) List(ctx context.Context, f Filter) (Page, error) {
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		return Page{}, errors.Wrap(err, "fetch products")
	}
	return Apply(products, f), nil
}

// Featured returns the top rated products carrying badge.
func (s *Service) Featured(ctx context.Context, badge Badge, limit int) ([]Product, error) {
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	return Featured(products, badge, limit), nil
}

// Search returns up to limit products matching query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	return Search(products, query, limit), nil
}

// Get returns the product with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}
