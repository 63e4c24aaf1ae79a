package packages

import (
	"context"
	"errors"
	"fmt"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

// ServiceInterface defines package business logic.
type ServiceInterface interface {
	Create(ctx context.Context, senderID int, req models.CreatePackageRequest) (*models.Package, error)
	Get(ctx context.Context, id int) (*models.PackageWithSender, error)
	List(ctx context.Context, filter storage.PackageFilter) ([]*models.PackageWithSender, error)
	ListByUser(ctx context.Context, senderID int) ([]*models.Package, error)
	Update(ctx context.Context, id, requesterID int, data models.PackageUpdateData) (*models.Package, error)
}

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) ServiceInterface {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, senderID int, req models.CreatePackageRequest) (*models.Package, error) {
	pkg, err := s.store.CreatePackage(ctx, senderID, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreatePackage: %w", err)
	}
	return pkg, nil
}

func (s *Service) Get(ctx context.Context, id int) (*models.PackageWithSender, error) {
	pkg, err := s.store.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetPackage: %w", err)
	}
	return s.withSender(ctx, pkg), nil
}

// List returns active packages matching the filter, each enriched with the
// redacted profile of its sender.
func (s *Service) List(ctx context.Context, filter storage.PackageFilter) ([]*models.PackageWithSender, error) {
	pkgs, err := s.store.ListPackages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListPackages: %w", err)
	}

	enriched := make([]*models.PackageWithSender, 0, len(pkgs))
	for _, pkg := range pkgs {
		enriched = append(enriched, s.withSender(ctx, pkg))
	}
	return enriched, nil
}

func (s *Service) ListByUser(ctx context.Context, senderID int) ([]*models.Package, error) {
	pkgs, err := s.store.ListPackagesByUser(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("service.ListPackagesByUser: %w", err)
	}
	return pkgs, nil
}

// Update applies a partial update after verifying the requester owns the
// package.
func (s *Service) Update(ctx context.Context, id, requesterID int, data models.PackageUpdateData) (*models.Package, error) {
	pkg, err := s.store.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.UpdatePackage.Get: %w", err)
	}
	if pkg.SenderID != requesterID {
		return nil, models.ErrForbidden
	}

	updated, err := s.store.UpdatePackage(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("service.UpdatePackage: %w", err)
	}
	return updated, nil
}

func (s *Service) withSender(ctx context.Context, pkg *models.Package) *models.PackageWithSender {
	out := &models.PackageWithSender{Package: *pkg}
	if user, err := s.store.GetUser(ctx, pkg.SenderID); err == nil {
		out.Sender = user.Profile()
	}
	return out
}
