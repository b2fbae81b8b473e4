// Package seed loads the service catalog and administrator accounts from an
// operator supplied YAML file at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/persistence"
)

// File is the seed document.
type File struct {
	Services       []ServiceEntry       `yaml:"services"`
	Administrators []AdministratorEntry `yaml:"administrators"`
}

// ServiceEntry is one catalog row, upserted by ID.
type ServiceEntry struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
}

// AdministratorEntry provisions an admin account. PasswordHash must already be
// an argon2id or bcrypt digest.
type AdministratorEntry struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Phone        string `yaml:"phone"`
	PasswordHash string `yaml:"password_hash"`
}

// ServiceWriter upserts catalog rows.
type ServiceWriter interface {
	UpsertService(ctx context.Context, service persistence.Service) error
}

// UserWriter looks up and creates accounts.
type UserWriter interface {
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	CreateUser(ctx context.Context, user persistence.User) error
}

// Result summarises an Apply run.
type Result struct {
	ServicesUpserted      int
	AdministratorsCreated int
	AdministratorsSkipped int
}

// LoadFile reads and validates the seed file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("seed: decode: %w", err)
	}
	if err := file.Validate(); err != nil {
		return File{}, err
	}
	return file, nil
}

// Validate checks every entry and reports all problems together.
func (f File) Validate() error {
	var problems []error

	seenIDs := make(map[int64]struct{}, len(f.Services))
	for i, service := range f.Services {
		if service.ID <= 0 {
			problems = append(problems, fmt.Errorf("services[%d]: id must be positive", i))
		}
		if _, dup := seenIDs[service.ID]; dup {
			problems = append(problems, fmt.Errorf("services[%d]: duplicate id %d", i, service.ID))
		}
		seenIDs[service.ID] = struct{}{}
		if strings.TrimSpace(service.Name) == "" {
			problems = append(problems, fmt.Errorf("services[%d]: name is required", i))
		}
		if service.Price < 0 {
			problems = append(problems, fmt.Errorf("services[%d]: price must not be negative", i))
		}
	}

	seenEmails := make(map[string]struct{}, len(f.Administrators))
	for i, admin := range f.Administrators {
		email := strings.TrimSpace(admin.Email)
		if email == "" {
			problems = append(problems, fmt.Errorf("administrators[%d]: email is required", i))
		}
		if _, dup := seenEmails[email]; dup && email != "" {
			problems = append(problems, fmt.Errorf("administrators[%d]: duplicate email %s", i, email))
		}
		seenEmails[email] = struct{}{}
		if strings.TrimSpace(admin.Name) == "" {
			problems = append(problems, fmt.Errorf("administrators[%d]: name is required", i))
		}
		if !application.IsPasswordHash(strings.TrimSpace(admin.PasswordHash)) {
			problems = append(problems, fmt.Errorf("administrators[%d]: password_hash must be an argon2id or bcrypt digest", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("seed: invalid file: %w", errors.Join(problems...))
	}
	return nil
}

// Seeder applies a seed file to storage.
type Seeder struct {
	services    ServiceWriter
	users       UserWriter
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(services ServiceWriter, users UserWriter, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Seeder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		services:    services,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger.With("component", "seed"),
	}
}

// Apply upserts services and creates administrators whose email is not yet
// registered. Existing accounts are left untouched.
func (s *Seeder) Apply(ctx context.Context, file File) (Result, error) {
	var result Result

	for _, entry := range file.Services {
		service := persistence.Service{
			ID:          entry.ID,
			Name:        strings.TrimSpace(entry.Name),
			Description: strings.TrimSpace(entry.Description),
			Price:       entry.Price,
		}
		if err := s.services.UpsertService(ctx, service); err != nil {
			return result, fmt.Errorf("seed: upsert service %d: %w", entry.ID, err)
		}
		result.ServicesUpserted++
	}

	for _, entry := range file.Administrators {
		email := strings.TrimSpace(entry.Email)
		_, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			result.AdministratorsSkipped++
			s.logger.InfoContext(ctx, "administrator already present", "email", email)
			continue
		case !errors.Is(err, persistence.ErrNotFound):
			return result, fmt.Errorf("seed: lookup administrator %s: %w", email, err)
		}

		user := persistence.User{
			ID:           s.idGenerator(),
			Email:        email,
			Name:         strings.TrimSpace(entry.Name),
			PasswordHash: strings.TrimSpace(entry.PasswordHash),
			Role:         application.RoleAdmin.String(),
			CreatedAt:    s.now(),
		}
		if phone := strings.TrimSpace(entry.Phone); phone != "" {
			user.Phone = &phone
		}

		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				result.AdministratorsSkipped++
				continue
			}
			return result, fmt.Errorf("seed: create administrator %s: %w", email, err)
		}
		result.AdministratorsCreated++
		s.logger.InfoContext(ctx, "administrator provisioned", "email", email, "user_id", user.ID)
	}

	return result, nil
}
