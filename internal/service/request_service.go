package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rideboard/internal/models"
	"rideboard/internal/notify"
	"rideboard/internal/repository"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrSelfAccept       = errors.New("requester cannot accept their own request")
	ErrAlreadyAccepted  = errors.New("request is already accepted")
	ErrNotAcceptedByYou = errors.New("request is not accepted by you")
)

// RequestService runs the Open/Accepted toggle. Requests have a single
// acceptor and no waitlist.
type RequestService interface {
	Create(ctx context.Context, request *models.Request) error
	Get(ctx context.Context, id uint) (*models.Request, error)
	List(ctx context.Context, filter repository.ListingFilter) ([]models.Request, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.Request, error)
	Accept(ctx context.Context, requestID, userID uint) error
	Unaccept(ctx context.Context, requestID, userID uint) error
	Delete(ctx context.Context, requestID, actorID uint) error
}

type requestService struct {
	requestRepo  repository.RequestRepository
	favoriteRepo repository.FavoriteRepository
	dispatcher   notify.Dispatcher
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	favoriteRepo repository.FavoriteRepository,
	dispatcher notify.Dispatcher,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		favoriteRepo: favoriteRepo,
		dispatcher:   dispatcher,
	}
}

func (s *requestService) notifyEvent(ctx context.Context, event notify.Event) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, event)
	}
}

func (s *requestService) Create(ctx context.Context, request *models.Request) error {
	request.AcceptedByUserID = nil
	return s.requestRepo.Create(ctx, nil, request)
}

func (s *requestService) Get(ctx context.Context, id uint) (*models.Request, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	return request, nil
}

func (s *requestService) List(ctx context.Context, filter repository.ListingFilter) ([]models.Request, error) {
	return s.requestRepo.List(ctx, filter)
}

func (s *requestService) ListByRequester(ctx context.Context, requesterID uint) ([]models.Request, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID)
}

func (s *requestService) Accept(ctx context.Context, requestID, userID uint) error {
	var requesterID uint
	err := s.requestRepo.InTx(ctx, func(tx *gorm.DB) error {
		request, err := s.requestRepo.LockByID(ctx, tx, requestID)
		if err != nil {
			return ErrRequestNotFound
		}
		if request.RequesterUserID == userID {
			return ErrSelfAccept
		}
		if !request.Open() {
			return ErrAlreadyAccepted
		}
		requesterID = request.RequesterUserID

		// The IS NULL guard in the update is the compare-and-swap; the
		// row lock already serializes, this keeps the claim safe even
		// without it.
		claimed, err := s.requestRepo.SetAcceptor(ctx, tx, requestID, userID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrAlreadyAccepted
		}

		return s.favoriteRepo.Add(ctx, tx, userID, models.FavoriteRequest, requestID)
	})
	if err != nil {
		return err
	}

	s.notifyEvent(ctx, notify.Event{
		Kind:      notify.KindRequestAccepted,
		RequestID: requestID,
		UserID:    userID,
		OwnerID:   requesterID,
	})
	return nil
}

func (s *requestService) Unaccept(ctx context.Context, requestID, userID uint) error {
	var requesterID uint
	err := s.requestRepo.InTx(ctx, func(tx *gorm.DB) error {
		request, err := s.requestRepo.LockByID(ctx, tx, requestID)
		if err != nil {
			return ErrRequestNotFound
		}
		if request.AcceptedByUserID == nil || *request.AcceptedByUserID != userID {
			return ErrNotAcceptedByYou
		}
		requesterID = request.RequesterUserID

		cleared, err := s.requestRepo.ClearAcceptor(ctx, tx, requestID, userID)
		if err != nil {
			return err
		}
		if !cleared {
			return ErrNotAcceptedByYou
		}

		// Unaccepting also drops the auto-favorite from the accept.
		_, err = s.favoriteRepo.Remove(ctx, tx, userID, models.FavoriteRequest, requestID)
		return err
	})
	if err != nil {
		return err
	}

	s.notifyEvent(ctx, notify.Event{
		Kind:      notify.KindRequestUnaccepted,
		RequestID: requestID,
		UserID:    userID,
		OwnerID:   requesterID,
	})
	return nil
}

func (s *requestService) Delete(ctx context.Context, requestID, actorID uint) error {
	return s.requestRepo.InTx(ctx, func(tx *gorm.DB) error {
		request, err := s.requestRepo.LockByID(ctx, tx, requestID)
		if err != nil {
			return ErrRequestNotFound
		}
		if request.RequesterUserID != actorID {
			return ErrForbidden
		}

		if err := s.favoriteRepo.PurgeItem(ctx, tx, models.FavoriteRequest, requestID); err != nil {
			return err
		}
		return s.requestRepo.Delete(ctx, tx, requestID)
	})
}
