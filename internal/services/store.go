package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type CreateStoreInput struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

type StoreService interface {
	Create(dbc dbctx.Context, in CreateStoreInput) (*types.Store, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Store, error)
	List(dbc dbctx.Context, limit int) ([]*types.Store, error)
}

type storeService struct {
	log       *logger.Logger
	storeRepo repos.StoreRepo
}

func NewStoreService(log *logger.Logger, storeRepo repos.StoreRepo) StoreService {
	return &storeService{log: log.With("service", "StoreService"), storeRepo: storeRepo}
}

func (s *storeService) Create(dbc dbctx.Context, in CreateStoreInput) (*types.Store, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.Validationf("store name is required")
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, errors.Validationf("coordinates out of range")
	}
	rows, err := s.storeRepo.Create(dbc, []*types.Store{{
		ID:        uuid.New(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}})
	if err != nil {
		return nil, errors.Storagef("creating store: %v", err)
	}
	return rows[0], nil
}

func (s *storeService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Store, error) {
	row, err := s.storeRepo.GetByID(dbc, id)
	if err != nil {
		return nil, errors.Storagef("loading store: %v", err)
	}
	if row == nil {
		return nil, errors.NotFoundf("store %s", id)
	}
	return row, nil
}

func (s *storeService) List(dbc dbctx.Context, limit int) ([]*types.Store, error) {
	rows, err := s.storeRepo.List(dbc, limit)
	if err != nil {
		return nil, errors.Storagef("listing stores: %v", err)
	}
	return rows, nil
}
