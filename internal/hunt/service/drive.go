package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// CreateDrive plans a new drive phase. The active-stand subset is fixed here
// and must name open stands of the same session.
func (s *HuntService) CreateDrive(ctx context.Context, input domain.CreateDriveInput) (domain.Drive, error) {
	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return domain.Drive{}, err
	}

	unlock := s.locks.lock(session.ID)
	defer unlock()

	session, err = s.getMutableSession(ctx, session.ID)
	if err != nil {
		return domain.Drive{}, err
	}

	drive, err := domain.CreateDrive(input, s.clock, s.idGenerator)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDriveSequence) {
			return domain.Drive{}, apperrors.Wrap(apperrors.CodeDriveInvalidSequence, err.Error(), err)
		}
		return domain.Drive{}, err
	}

	if len(drive.ActiveStandIDs) > 0 {
		stands, err := s.stores.Stands.ListStands(ctx, session.ID)
		if err != nil {
			return domain.Drive{}, fmt.Errorf("list stands: %w", err)
		}
		open := make(map[string]bool, len(stands))
		for _, stand := range stands {
			open[stand.ID] = stand.Status != domain.StandStatusClosed
		}
		for _, standID := range drive.ActiveStandIDs {
			if !open[standID] {
				return domain.Drive{}, apperrors.WithMetadata(apperrors.CodeDriveForeignStand,
					"active stands must be open stands of the same session",
					map[string]string{"stand_id": standID})
			}
		}
	}

	if err := s.stores.Drives.PutDrive(ctx, drive); err != nil {
		return domain.Drive{}, fmt.Errorf("store drive: %w", err)
	}
	return drive, nil
}

// StartDrive moves a planned drive to RUNNING. At most one drive per session
// runs at a time; a second start observes a conflict.
func (s *HuntService) StartDrive(ctx context.Context, driveID string) (domain.Drive, error) {
	drive, err := s.stores.Drives.GetDrive(ctx, driveID)
	if err != nil {
		return domain.Drive{}, mapStorageErr(err, "drive")
	}

	if _, err := s.getSession(ctx, drive.SessionID); err != nil {
		return domain.Drive{}, err
	}

	unlock := s.locks.lock(drive.SessionID)
	defer unlock()

	session, err := s.getMutableSession(ctx, drive.SessionID)
	if err != nil {
		return domain.Drive{}, err
	}
	if session.Status != domain.SessionStatusActive {
		return domain.Drive{}, apperrors.New(apperrors.CodeSessionInvalidTransition,
			"drives can only start while the session is active")
	}

	drive, err = s.stores.Drives.GetDrive(ctx, driveID)
	if err != nil {
		return domain.Drive{}, mapStorageErr(err, "drive")
	}
	if drive.Status != domain.DriveStatusPlanned {
		return domain.Drive{}, apperrors.WithMetadata(apperrors.CodeDriveNotPlanned,
			"only a planned drive can start",
			map[string]string{"status": drive.Status.String()})
	}

	if running, err := s.stores.Drives.GetRunningDrive(ctx, drive.SessionID); err == nil {
		return domain.Drive{}, apperrors.WithMetadata(apperrors.CodeDriveAlreadyRunning,
			"another drive is already running",
			map[string]string{"drive_id": running.ID})
	} else if !isNotFound(err) {
		return domain.Drive{}, fmt.Errorf("check running drive: %w", err)
	}

	now := s.clock().UTC()
	drive.Status = domain.DriveStatusRunning
	drive.StartedAt = &now
	drive.UpdatedAt = now
	if err := s.stores.Drives.PutDrive(ctx, drive); err != nil {
		if errors.Is(err, storage.ErrDriveRunning) {
			return domain.Drive{}, apperrors.Wrap(apperrors.CodeDriveAlreadyRunning,
				"another drive is already running", err)
		}
		return domain.Drive{}, fmt.Errorf("store drive: %w", err)
	}

	if _, err := s.emitEvent(ctx, drive.SessionID, domain.EventTypeDriveStarted, domain.SystemOrigin,
		domain.DriveStartedPayload{
			DriveID:       drive.ID,
			DriveSequence: drive.Sequence,
			Name:          drive.Name,
		}, domain.VisibilityEveryone); err != nil {
		return domain.Drive{}, err
	}
	return drive, nil
}

// EndDrive moves a running drive to COMPLETED with its result. An aborted
// drive is ended the same way with result.Aborted set; there is no separate
// aborted state.
func (s *HuntService) EndDrive(ctx context.Context, driveID string, result domain.DriveResult) (domain.Drive, error) {
	drive, err := s.stores.Drives.GetDrive(ctx, driveID)
	if err != nil {
		return domain.Drive{}, mapStorageErr(err, "drive")
	}

	unlock := s.locks.lock(drive.SessionID)
	defer unlock()

	drive, err = s.stores.Drives.GetDrive(ctx, driveID)
	if err != nil {
		return domain.Drive{}, mapStorageErr(err, "drive")
	}
	if drive.Status != domain.DriveStatusRunning {
		return domain.Drive{}, apperrors.WithMetadata(apperrors.CodeDriveNotRunning,
			"only a running drive can end",
			map[string]string{"status": drive.Status.String()})
	}

	now := s.clock().UTC()
	drive.Status = domain.DriveStatusCompleted
	drive.ActualEnd = &now
	drive.Result = &result
	drive.UpdatedAt = now
	if err := s.stores.Drives.PutDrive(ctx, drive); err != nil {
		return domain.Drive{}, fmt.Errorf("store drive: %w", err)
	}

	if _, err := s.emitEvent(ctx, drive.SessionID, domain.EventTypeDriveEnded, domain.SystemOrigin,
		domain.DriveEndedPayload{
			DriveID:       drive.ID,
			DriveSequence: drive.Sequence,
			SpeciesSeen:   result.SpeciesSeen,
			Notes:         result.Notes,
			Aborted:       result.Aborted,
		}, domain.VisibilityEveryone); err != nil {
		return domain.Drive{}, err
	}
	return drive, nil
}

// GetDrive fetches a drive by ID.
func (s *HuntService) GetDrive(ctx context.Context, driveID string) (domain.Drive, error) {
	drive, err := s.stores.Drives.GetDrive(ctx, driveID)
	if err != nil {
		return domain.Drive{}, mapStorageErr(err, "drive")
	}
	return drive, nil
}

// ListDrives returns all drives of a session in sequence order.
func (s *HuntService) ListDrives(ctx context.Context, sessionID string) ([]domain.Drive, error) {
	drives, err := s.stores.Drives.ListDrives(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list drives: %w", err)
	}
	return drives, nil
}
