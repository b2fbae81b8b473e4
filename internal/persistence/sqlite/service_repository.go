package sqlite

import (
	"context"

	"github.com/example/hotel-booking/internal/persistence"
)

// ServiceRepository reads the service catalog.
type ServiceRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewServiceRepository creates a new SQLite catalog repository.
func NewServiceRepository(pool *ConnectionPool) *ServiceRepository {
	return &ServiceRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// ListServices returns the catalog in storage order.
func (r *ServiceRepository) ListServices(ctx context.Context) ([]persistence.Service, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT service_id, service_name, description, price
		FROM services
		ORDER BY rowid`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var services []persistence.Service
	for rows.Next() {
		var service persistence.Service
		if err := rows.Scan(&service.ID, &service.Name, &service.Description, &service.Price); err != nil {
			return nil, r.mapper.MapError(err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return services, nil
}

// GetService returns one catalog entry.
func (r *ServiceRepository) GetService(ctx context.Context, id int64) (persistence.Service, error) {
	var service persistence.Service
	err := r.helper.QueryRow(ctx, `
		SELECT service_id, service_name, description, price
		FROM services
		WHERE service_id = ?`, id).Scan(&service.ID, &service.Name, &service.Description, &service.Price)
	if err != nil {
		return persistence.Service{}, r.mapper.MapError(err)
	}
	return service, nil
}

// UpsertService inserts or replaces a catalog entry by id. Existing bookings
// keep the service label they were created with.
func (r *ServiceRepository) UpsertService(ctx context.Context, service persistence.Service) error {
	if service.ID <= 0 || service.Name == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO services (service_id, service_name, description, price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (service_id) DO UPDATE SET
			service_name = excluded.service_name,
			description = excluded.description,
			price = excluded.price`,
		service.ID, service.Name, service.Description, service.Price)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
