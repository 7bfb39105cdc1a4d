package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/google/uuid"
)

func profileKey(customerID uint) string { return fmt.Sprintf("profile:%d", customerID) }

// ProfileStore persists customer profiles (saved delivery addresses).
type ProfileStore struct {
	kv kvstore.Store
}

func NewProfileStore(kv kvstore.Store) *ProfileStore {
	return &ProfileStore{kv: kv}
}

func (s *ProfileStore) Get(ctx context.Context, customerID uint) (*models.CustomerProfile, error) {
	raw, found, err := s.kv.Get(ctx, profileKey(customerID))
	if err != nil {
		return nil, apperrors.Network(err)
	}
	profile := &models.CustomerProfile{CustomerID: customerID}
	if !found {
		return profile, nil
	}
	if err := json.Unmarshal(raw, profile); err != nil {
		_ = s.kv.Remove(ctx, profileKey(customerID))
		return &models.CustomerProfile{CustomerID: customerID}, nil
	}
	profile.CustomerID = customerID
	return profile, nil
}

func (s *ProfileStore) save(ctx context.Context, profile *models.CustomerProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return withRetry(ctx, func() error {
		return s.kv.Set(ctx, profileKey(profile.CustomerID), payload)
	})
}

// AddAddress appends a saved address. The first address becomes the default;
// marking a later one default clears the flag elsewhere so at most one
// address ever carries it.
func (s *ProfileStore) AddAddress(ctx context.Context, customerID uint, addr models.DeliveryAddress) (*models.DeliveryAddress, error) {
	profile, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	addr.ID = uuid.NewString()
	if len(profile.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range profile.Addresses {
			profile.Addresses[i].IsDefault = false
		}
	}
	profile.Addresses = append(profile.Addresses, addr)
	if err := s.save(ctx, profile); err != nil {
		return nil, err
	}
	return &profile.Addresses[len(profile.Addresses)-1], nil
}

// SetDefault marks one saved address as the default, clearing the others.
func (s *ProfileStore) SetDefault(ctx context.Context, customerID uint, addressID string) error {
	profile, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if profile.FindAddress(addressID) == nil {
		return apperrors.NotFound("Address not found", "العنوان غير موجود")
	}
	for i := range profile.Addresses {
		profile.Addresses[i].IsDefault = profile.Addresses[i].ID == addressID
	}
	return s.save(ctx, profile)
}

// DeleteAddress removes a saved address. If it was the default, the first
// remaining address inherits the flag.
func (s *ProfileStore) DeleteAddress(ctx context.Context, customerID uint, addressID string) error {
	profile, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	removedDefault := false
	kept := profile.Addresses[:0]
	for _, a := range profile.Addresses {
		if a.ID == addressID {
			removedDefault = a.IsDefault
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == len(profile.Addresses) {
		return apperrors.NotFound("Address not found", "العنوان غير موجود")
	}
	profile.Addresses = kept
	if removedDefault && len(profile.Addresses) > 0 {
		profile.Addresses[0].IsDefault = true
	}
	return s.save(ctx, profile)
}
