package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideboard/internal/models"
	"rideboard/internal/notify"
)

type requestFixture struct {
	store      *memStore
	svc        RequestService
	dispatcher *recordingDispatcher
	favorites  *memFavoriteRepo
}

func newRequestFixture() *requestFixture {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	requests := &memRequestRepo{s: store}
	favorites := &memFavoriteRepo{s: store}
	return &requestFixture{
		store:      store,
		svc:        NewRequestService(requests, favorites, dispatcher),
		dispatcher: dispatcher,
		favorites:  favorites,
	}
}

func (f *requestFixture) newRequest(t *testing.T, requesterID uint) *models.Request {
	t.Helper()
	request := &models.Request{
		RequesterUserID: requesterID,
		Name:            "Lift from the airport",
		Lat:             48.35,
		Lng:             11.78,
		ArrivalAt:       time.Now().Add(12 * time.Hour),
		Wants:           "one seat, small bag",
	}
	require.NoError(t, f.svc.Create(context.Background(), request))
	return request
}

func TestRequestCreate_StartsOpen(t *testing.T) {
	f := newRequestFixture()

	somebody := uint(99)
	request := &models.Request{
		RequesterUserID:  1,
		Name:             "Lift",
		ArrivalAt:        time.Now().Add(time.Hour),
		AcceptedByUserID: &somebody,
	}
	require.NoError(t, f.svc.Create(context.Background(), request))

	// Whatever the client sent, a new request is always open.
	assert.True(t, request.Open())
}

func TestRequestAcceptCycle(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	request := f.newRequest(t, 1)

	require.NoError(t, f.svc.Accept(ctx, request.ID, 2))

	got, err := f.svc.Get(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AcceptedByUserID)
	assert.Equal(t, uint(2), *got.AcceptedByUserID)

	// Accepting auto-favorites the request for the helper.
	favorited, err := f.favorites.Exists(ctx, 2, models.FavoriteRequest, request.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	require.NoError(t, f.svc.Unaccept(ctx, request.ID, 2))

	got, err = f.svc.Get(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, got.Open())

	// The auto-favorite goes away with the acceptance.
	favorited, err = f.favorites.Exists(ctx, 2, models.FavoriteRequest, request.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	// The cycle can repeat with a different helper.
	require.NoError(t, f.svc.Accept(ctx, request.ID, 3))

	assert.Equal(t, []string{
		notify.KindRequestAccepted,
		notify.KindRequestUnaccepted,
		notify.KindRequestAccepted,
	}, f.dispatcher.kinds())
}

func TestRequestAccept_Rejections(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	request := f.newRequest(t, 1)

	assert.ErrorIs(t, f.svc.Accept(ctx, request.ID, 1), ErrSelfAccept)
	assert.ErrorIs(t, f.svc.Accept(ctx, 999, 2), ErrRequestNotFound)

	require.NoError(t, f.svc.Accept(ctx, request.ID, 2))
	assert.ErrorIs(t, f.svc.Accept(ctx, request.ID, 3), ErrAlreadyAccepted)
	assert.ErrorIs(t, f.svc.Accept(ctx, request.ID, 2), ErrAlreadyAccepted)
}

func TestRequestUnaccept_Rejections(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	request := f.newRequest(t, 1)

	assert.ErrorIs(t, f.svc.Unaccept(ctx, request.ID, 2), ErrNotAcceptedByYou)

	require.NoError(t, f.svc.Accept(ctx, request.ID, 2))

	// Only the current acceptor can release it, the requester included.
	assert.ErrorIs(t, f.svc.Unaccept(ctx, request.ID, 3), ErrNotAcceptedByYou)
	assert.ErrorIs(t, f.svc.Unaccept(ctx, request.ID, 1), ErrNotAcceptedByYou)
}

func TestRequestDelete(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	request := f.newRequest(t, 1)

	require.NoError(t, f.svc.Accept(ctx, request.ID, 2))

	assert.ErrorIs(t, f.svc.Delete(ctx, request.ID, 2), ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, request.ID, 1))

	_, err := f.svc.Get(ctx, request.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	// The helper's bookmark does not outlive the request.
	favorited, err := f.favorites.Exists(ctx, 2, models.FavoriteRequest, request.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
}
