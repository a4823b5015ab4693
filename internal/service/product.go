package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/repository"
)

// ProductStore reads catalog entries.
type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
}

// ProductService serves the read-only catalog.
type ProductService struct {
	store    ProductStore
	pages    paginate.Source[*model.Product]
	pageOpts paginate.Options
	metrics  metrics.Recorder
}

// NewProductService creates a new ProductService.
func NewProductService(store ProductStore, pages paginate.Source[*model.Product], pageOpts paginate.Options, recorder metrics.Recorder) *ProductService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProductService{store: store, pages: pages, pageOpts: pageOpts, metrics: recorder}
}

// List returns one page of the catalog.
func (s *ProductService) List(ctx context.Context, req paginate.Request) (*paginate.Page[*model.Product], error) {
	page, err := paginate.Paginate(ctx, s.pages, repository.Catalog(), req, s.pageOpts)
	if err != nil {
		countOutOfRange(s.metrics, err)
		return nil, err
	}
	return page, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	if !validID(id) {
		return nil, apierr.NotFound(MsgProductNotFound)
	}

	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apierr.Wrap(err, http.StatusNotFound, MsgProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}
