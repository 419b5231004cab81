package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rideboard/internal/models"
	"rideboard/internal/notify"
	"rideboard/internal/observability"
	"rideboard/internal/repository"
)

var (
	ErrOfferingNotFound   = errors.New("offering not found")
	ErrSelfJoin           = errors.New("owner cannot join their own offering")
	ErrAlreadyListed      = errors.New("user already waitlisted or accepted")
	ErrNoSeatsAvailable   = errors.New("no seats available")
	ErrNotInWaitlist      = errors.New("user is not on the waiting list")
	ErrNotAccepted        = errors.New("user is not an accepted rider")
	ErrForbidden          = errors.New("actor lacks permission")
	ErrSeatsExceedVehicle = errors.New("total seats exceed vehicle capacity")
)

// OfferingService is the capacity ledger: every membership and seat-count
// mutation goes through here, inside one transaction with the offering row
// locked, so availableSeats + accepted members == totalSeats always holds.
type OfferingService interface {
	Create(ctx context.Context, offering *models.Offering) error
	Get(ctx context.Context, id uint) (*models.Offering, []models.OfferingMember, error)
	List(ctx context.Context, filter repository.ListingFilter) ([]models.Offering, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Offering, error)
	JoinWaitlist(ctx context.Context, offeringID, userID uint, message string) (*models.OfferingMember, error)
	CancelWaitlistEntry(ctx context.Context, offeringID, userID uint) error
	AcceptFromWaitlist(ctx context.Context, offeringID, ownerID, userID uint) error
	RemoveAccepted(ctx context.Context, offeringID, actorID, userID uint) error
	Delete(ctx context.Context, offeringID, actorID uint) error
}

type offeringService struct {
	offeringRepo repository.OfferingRepository
	memberRepo   repository.MemberRepository
	favoriteRepo repository.FavoriteRepository
	vehicleRepo  repository.VehicleRepository
	dispatcher   notify.Dispatcher
}

func NewOfferingService(
	offeringRepo repository.OfferingRepository,
	memberRepo repository.MemberRepository,
	favoriteRepo repository.FavoriteRepository,
	vehicleRepo repository.VehicleRepository,
	dispatcher notify.Dispatcher,
) OfferingService {
	return &offeringService{
		offeringRepo: offeringRepo,
		memberRepo:   memberRepo,
		favoriteRepo: favoriteRepo,
		vehicleRepo:  vehicleRepo,
		dispatcher:   dispatcher,
	}
}

func (s *offeringService) notifyEvent(ctx context.Context, event notify.Event) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, event)
	}
}

func (s *offeringService) Create(ctx context.Context, offering *models.Offering) error {
	if offering.VehicleID != nil {
		vehicle, err := s.vehicleRepo.FindByID(ctx, *offering.VehicleID)
		if err != nil {
			return ErrVehicleNotFound
		}
		if vehicle.OwnerUserID != offering.OwnerUserID {
			return ErrForbidden
		}
		if offering.TotalSeats > vehicle.Seats {
			return ErrSeatsExceedVehicle
		}
	}

	offering.AvailableSeats = offering.TotalSeats
	return s.offeringRepo.Create(ctx, nil, offering)
}

func (s *offeringService) Get(ctx context.Context, id uint) (*models.Offering, []models.OfferingMember, error) {
	offering, err := s.offeringRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, ErrOfferingNotFound
	}
	members, err := s.memberRepo.ListByOffering(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return offering, members, nil
}

func (s *offeringService) List(ctx context.Context, filter repository.ListingFilter) ([]models.Offering, error) {
	return s.offeringRepo.List(ctx, filter)
}

func (s *offeringService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Offering, error) {
	return s.offeringRepo.ListByOwner(ctx, ownerID)
}

// JoinWaitlist appends the user to the waitlist tail. Joining is never
// seat-gated; only acceptance is.
func (s *offeringService) JoinWaitlist(ctx context.Context, offeringID, userID uint, message string) (*models.OfferingMember, error) {
	var (
		member  *models.OfferingMember
		ownerID uint
	)
	err := s.offeringRepo.InTx(ctx, func(tx *gorm.DB) error {
		offering, err := s.offeringRepo.LockByID(ctx, tx, offeringID)
		if err != nil {
			return ErrOfferingNotFound
		}
		if offering.OwnerUserID == userID {
			return ErrSelfJoin
		}
		ownerID = offering.OwnerUserID

		_, err = s.memberRepo.FindByOfferingAndUser(ctx, tx, offeringID, userID)
		if err == nil {
			return ErrAlreadyListed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		position, err := s.memberRepo.NextPosition(ctx, tx, offeringID)
		if err != nil {
			return err
		}

		m := &models.OfferingMember{
			OfferingID:   offeringID,
			UserID:       userID,
			Status:       models.StatusWaitlisted,
			Position:     &position,
			QuickMessage: message,
		}
		if err := s.memberRepo.Create(ctx, tx, m); err != nil {
			return err
		}

		// Favorites double as the user's "my active rides" view.
		if err := s.favoriteRepo.Add(ctx, tx, userID, models.FavoriteOffering, offeringID); err != nil {
			return err
		}

		member = m
		return nil
	})
	if err != nil {
		observability.LedgerTransitions.WithLabelValues("join", "rejected").Inc()
		return nil, err
	}

	observability.LedgerTransitions.WithLabelValues("join", "ok").Inc()
	s.notifyEvent(ctx, notify.Event{
		Kind:       notify.KindWaitlistJoined,
		OfferingID: offeringID,
		UserID:     userID,
		OwnerID:    ownerID,
	})
	return member, nil
}

func (s *offeringService) CancelWaitlistEntry(ctx context.Context, offeringID, userID uint) error {
	return s.offeringRepo.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.offeringRepo.LockByID(ctx, tx, offeringID); err != nil {
			return ErrOfferingNotFound
		}

		member, err := s.memberRepo.FindByOfferingAndUser(ctx, tx, offeringID, userID)
		if err != nil || member.Status != models.StatusWaitlisted {
			return ErrNotInWaitlist
		}

		// Waitlist membership never consumed a seat, so no count change.
		return s.memberRepo.Delete(ctx, tx, member.ID)
	})
}

// AcceptFromWaitlist atomically moves a waitlisted user into a seat. There
// is no auto-promotion anywhere in the system; this explicit owner action is
// the only way a seat gets assigned.
func (s *offeringService) AcceptFromWaitlist(ctx context.Context, offeringID, ownerID, userID uint) error {
	err := s.offeringRepo.InTx(ctx, func(tx *gorm.DB) error {
		offering, err := s.offeringRepo.LockByID(ctx, tx, offeringID)
		if err != nil {
			return ErrOfferingNotFound
		}
		if offering.OwnerUserID != ownerID {
			return ErrForbidden
		}
		if offering.AvailableSeats <= 0 {
			return ErrNoSeatsAvailable
		}

		member, err := s.memberRepo.FindByOfferingAndUser(ctx, tx, offeringID, userID)
		if err != nil || member.Status != models.StatusWaitlisted {
			return ErrNotInWaitlist
		}

		if err := s.memberRepo.Accept(ctx, tx, member.ID); err != nil {
			return err
		}
		if err := s.offeringRepo.AdjustSeats(ctx, tx, offeringID, -1); err != nil {
			return err
		}
		return s.favoriteRepo.Add(ctx, tx, userID, models.FavoriteOffering, offeringID)
	})
	if err != nil {
		observability.LedgerTransitions.WithLabelValues("accept", "rejected").Inc()
		return err
	}

	observability.LedgerTransitions.WithLabelValues("accept", "ok").Inc()
	s.notifyEvent(ctx, notify.Event{
		Kind:       notify.KindUserAccepted,
		OfferingID: offeringID,
		UserID:     userID,
		OwnerID:    ownerID,
	})
	return nil
}

// RemoveAccepted frees the seat without re-admitting anyone from the
// waitlist.
func (s *offeringService) RemoveAccepted(ctx context.Context, offeringID, actorID, userID uint) error {
	var ownerID uint
	err := s.offeringRepo.InTx(ctx, func(tx *gorm.DB) error {
		offering, err := s.offeringRepo.LockByID(ctx, tx, offeringID)
		if err != nil {
			return ErrOfferingNotFound
		}
		if actorID != offering.OwnerUserID && actorID != userID {
			return ErrForbidden
		}
		ownerID = offering.OwnerUserID

		member, err := s.memberRepo.FindByOfferingAndUser(ctx, tx, offeringID, userID)
		if err != nil || member.Status != models.StatusAccepted {
			return ErrNotAccepted
		}

		if err := s.memberRepo.Delete(ctx, tx, member.ID); err != nil {
			return err
		}
		return s.offeringRepo.AdjustSeats(ctx, tx, offeringID, 1)
	})
	if err != nil {
		observability.LedgerTransitions.WithLabelValues("remove", "rejected").Inc()
		return err
	}

	observability.LedgerTransitions.WithLabelValues("remove", "ok").Inc()
	s.notifyEvent(ctx, notify.Event{
		Kind:       notify.KindUserRemoved,
		OfferingID: offeringID,
		UserID:     userID,
		OwnerID:    ownerID,
	})
	return nil
}

func (s *offeringService) Delete(ctx context.Context, offeringID, actorID uint) error {
	err := s.offeringRepo.InTx(ctx, func(tx *gorm.DB) error {
		offering, err := s.offeringRepo.LockByID(ctx, tx, offeringID)
		if err != nil {
			return ErrOfferingNotFound
		}
		if offering.OwnerUserID != actorID {
			return ErrForbidden
		}

		if err := s.memberRepo.DeleteByOffering(ctx, tx, offeringID); err != nil {
			return err
		}
		if err := s.favoriteRepo.PurgeItem(ctx, tx, models.FavoriteOffering, offeringID); err != nil {
			return err
		}
		return s.offeringRepo.Delete(ctx, tx, offeringID)
	})
	if err != nil {
		return err
	}

	s.notifyEvent(ctx, notify.Event{
		Kind:       notify.KindOfferingDeleted,
		OfferingID: offeringID,
		OwnerID:    actorID,
	})
	return nil
}
