package service

import (
	"context"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

type AddressInput struct {
	Title       string
	AddressType models.AddressType
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	City        string
	District    string
	PostalCode  string
	Country     string
	IsDefault   bool
}

var addressRequired = []string{"title", "first_name", "last_name", "phone_number", "address", "city", "district"}

type AddressService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAddressService(repo *repository.Repository, log *zap.Logger) *AddressService {
	return &AddressService{repo: repo, log: log}
}

func validateAddress(in *AddressInput) error {
	if in.AddressType == "" {
		in.AddressType = models.AddressShipping
	}
	if !in.AddressType.Valid() {
		return ErrInvalidAddressType
	}
	return missingFields("address is incomplete", map[string]string{
		"title":        in.Title,
		"first_name":   in.FirstName,
		"last_name":    in.LastName,
		"phone_number": in.PhoneNumber,
		"address":      in.Address,
		"city":         in.City,
		"district":     in.District,
	}, addressRequired)
}

func fillAddress(a *models.Address, in AddressInput) {
	a.Title = strings.TrimSpace(in.Title)
	a.AddressType = in.AddressType
	a.FirstName = strings.TrimSpace(in.FirstName)
	a.LastName = strings.TrimSpace(in.LastName)
	a.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	a.Address = strings.TrimSpace(in.Address)
	a.City = strings.TrimSpace(in.City)
	a.District = strings.TrimSpace(in.District)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.Country = strings.TrimSpace(in.Country)
	a.IsDefault = in.IsDefault
}

func (s *AddressService) List(ctx context.Context, typ *models.AddressType) ([]models.Address, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if typ != nil && !typ.Valid() {
		return nil, ErrInvalidAddressType
	}
	return s.repo.Addresses.ListByUser(ctx, uid, typ)
}

func (s *AddressService) Get(ctx context.Context, id uint) (*models.Address, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Addresses.GetForUser(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAddressNotFound
	}
	return a, nil
}

func (s *AddressService) Create(ctx context.Context, in AddressInput) (*models.Address, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateAddress(&in); err != nil {
		return nil, err
	}
	a := &models.Address{UserID: uid}
	fillAddress(a, in)
	if err := s.write(ctx, a, true); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Update(ctx context.Context, id uint, in AddressInput) (*models.Address, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateAddress(&in); err != nil {
		return nil, err
	}
	fillAddress(a, in)
	if err := s.write(ctx, a, false); err != nil {
		return nil, err
	}
	return a, nil
}

// SetDefault makes the address the default of its type for the owner.
func (s *AddressService) SetDefault(ctx context.Context, id uint) (*models.Address, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsDefault = true
	if err := s.write(ctx, a, false); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, id uint) error {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	ok, err := s.repo.Addresses.Delete(ctx, id, uid)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAddressNotFound
	}
	return nil
}

// write keeps at most one default address per user and type.
func (s *AddressService) write(ctx context.Context, a *models.Address, create bool) error {
	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if create {
			err = tx.Addresses.Create(ctx, a)
		} else {
			err = tx.Addresses.Save(ctx, a)
		}
		if err != nil || !a.IsDefault {
			return err
		}
		return tx.Addresses.ClearDefault(ctx, a.UserID, a.AddressType, a.ID)
	})
}
