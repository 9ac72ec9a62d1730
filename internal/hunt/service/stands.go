package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// CreateStand adds a stand to a session.
func (s *HuntService) CreateStand(ctx context.Context, input domain.CreateStandInput) (domain.Stand, error) {
	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return domain.Stand{}, err
	}

	unlock := s.locks.lock(session.ID)
	defer unlock()

	if _, err := s.getMutableSession(ctx, session.ID); err != nil {
		return domain.Stand{}, err
	}

	stand, err := domain.CreateStand(input, s.clock, s.idGenerator)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStandSequence) {
			return domain.Stand{}, apperrors.Wrap(apperrors.CodeStandInvalidSequence, err.Error(), err)
		}
		return domain.Stand{}, err
	}
	if err := s.stores.Stands.PutStand(ctx, stand); err != nil {
		return domain.Stand{}, fmt.Errorf("store stand: %w", err)
	}
	return stand, nil
}

// GetStand fetches a stand by ID.
func (s *HuntService) GetStand(ctx context.Context, standID string) (domain.Stand, error) {
	stand, err := s.stores.Stands.GetStand(ctx, standID)
	if err != nil {
		return domain.Stand{}, mapStorageErr(err, "stand")
	}
	return stand, nil
}

// ListStands returns all stands of a session in sequence order.
func (s *HuntService) ListStands(ctx context.Context, sessionID string) ([]domain.Stand, error) {
	stands, err := s.stores.Stands.ListStands(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list stands: %w", err)
	}
	return stands, nil
}

// CloseStand withdraws a stand from use. An occupied stand must be released
// before it can be closed.
func (s *HuntService) CloseStand(ctx context.Context, standID string) (domain.Stand, error) {
	stand, err := s.stores.Stands.GetStand(ctx, standID)
	if err != nil {
		return domain.Stand{}, mapStorageErr(err, "stand")
	}

	if _, err := s.getSession(ctx, stand.SessionID); err != nil {
		return domain.Stand{}, err
	}

	unlock := s.locks.lock(stand.SessionID)
	defer unlock()

	if _, err := s.getMutableSession(ctx, stand.SessionID); err != nil {
		return domain.Stand{}, err
	}

	stand, err = s.stores.Stands.GetStand(ctx, standID)
	if err != nil {
		return domain.Stand{}, mapStorageErr(err, "stand")
	}
	switch stand.Status {
	case domain.StandStatusClosed:
		return stand, nil
	case domain.StandStatusOccupied:
		return domain.Stand{}, apperrors.New(apperrors.CodeStandOccupied,
			"release the stand's assignment before closing it")
	}

	stand.Status = domain.StandStatusClosed
	stand.UpdatedAt = s.clock().UTC()
	if err := s.stores.Stands.PutStand(ctx, stand); err != nil {
		return domain.Stand{}, fmt.Errorf("store stand: %w", err)
	}
	return stand, nil
}

// ReopenStand makes a closed stand available again.
func (s *HuntService) ReopenStand(ctx context.Context, standID string) (domain.Stand, error) {
	stand, err := s.stores.Stands.GetStand(ctx, standID)
	if err != nil {
		return domain.Stand{}, mapStorageErr(err, "stand")
	}

	if _, err := s.getSession(ctx, stand.SessionID); err != nil {
		return domain.Stand{}, err
	}

	unlock := s.locks.lock(stand.SessionID)
	defer unlock()

	if _, err := s.getMutableSession(ctx, stand.SessionID); err != nil {
		return domain.Stand{}, err
	}

	stand, err = s.stores.Stands.GetStand(ctx, standID)
	if err != nil {
		return domain.Stand{}, mapStorageErr(err, "stand")
	}
	if stand.Status != domain.StandStatusClosed {
		return stand, nil
	}

	stand.Status = domain.StandStatusAvailable
	stand.UpdatedAt = s.clock().UTC()
	if err := s.stores.Stands.PutStand(ctx, stand); err != nil {
		return domain.Stand{}, fmt.Errorf("store stand: %w", err)
	}
	return stand, nil
}
