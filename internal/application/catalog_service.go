package application

import (
	"context"
	"fmt"
	"log/slog"
)

// ServiceRepository provides read access to the service catalog.
type ServiceRepository interface {
	ListServices(ctx context.Context) ([]Service, error)
	GetService(ctx context.Context, id int64) (Service, error)
}

// CatalogService is the read-only view of bookable offerings.
type CatalogService struct {
	services ServiceRepository
	logger   *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(services ServiceRepository) *CatalogService {
	return NewCatalogServiceWithLogger(services, nil)
}

// NewCatalogServiceWithLogger constructs a CatalogService with a specified logger.
func NewCatalogServiceWithLogger(services ServiceRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{services: services, logger: defaultLogger(logger)}
}

// ListAll returns every service in storage order.
func (s *CatalogService) ListAll(ctx context.Context) ([]Service, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	if s.services == nil {
		return nil, nil
	}

	services, err := s.services.ListServices(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "CatalogService", "ListAll").
			ErrorContext(ctx, "failed to list services", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return services, nil
}

// GetByID returns one service or ErrNotFound.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (Service, error) {
	if s == nil {
		return Service{}, fmt.Errorf("CatalogService is nil")
	}
	if s.services == nil {
		return Service{}, ErrNotFound
	}
	if id <= 0 {
		return Service{}, ErrNotFound
	}
	return s.services.GetService(ctx, id)
}
