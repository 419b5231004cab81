package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"rideboard/internal/models"
	"rideboard/internal/notify"
	"rideboard/internal/repository"
)

// memStore backs the in-memory repositories used by the service tests. Its
// mutex stands in for the per-row locks a real database provides: InTx holds
// it for the whole transaction, so transactions serialize exactly like
// FOR UPDATE serializes them in production.
type memStore struct {
	mu        sync.Mutex
	offerings map[uint]*models.Offering
	members   map[uint]*models.OfferingMember
	requests  map[uint]*models.Request
	vehicles  map[uint]*models.Vehicle
	favorites map[uint]*models.Favorite
	nextID    uint
}

func newMemStore() *memStore {
	return &memStore{
		offerings: map[uint]*models.Offering{},
		members:   map[uint]*models.OfferingMember{},
		requests:  map[uint]*models.Request{},
		vehicles:  map[uint]*models.Vehicle{},
		favorites: map[uint]*models.Favorite{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

// --- OfferingRepository ---

type memOfferingRepo struct{ s *memStore }

func (r *memOfferingRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(nil)
}

func (r *memOfferingRepo) Create(ctx context.Context, tx *gorm.DB, o *models.Offering) error {
	o.ID = r.s.id()
	o.CreatedAt = time.Now()
	r.s.offerings[o.ID] = o
	return nil
}

func (r *memOfferingRepo) FindByID(ctx context.Context, id uint) (*models.Offering, error) {
	o, ok := r.s.offerings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOfferingRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Offering, error) {
	var out []models.Offering
	for _, id := range ids {
		if o, ok := r.s.offerings[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOfferingRepo) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Offering, error) {
	o, ok := r.s.offerings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOfferingRepo) List(ctx context.Context, filter repository.ListingFilter) ([]models.Offering, error) {
	var out []models.Offering
	for _, o := range r.s.offerings {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memOfferingRepo) ListByOwner(ctx context.Context, ownerID uint) ([]models.Offering, error) {
	var out []models.Offering
	for _, o := range r.s.offerings {
		if o.OwnerUserID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOfferingRepo) AdjustSeats(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	o, ok := r.s.offerings[id]
	if !ok {
		return repository.ErrSeatGuard
	}
	next := o.AvailableSeats + delta
	if next < 0 || next > o.TotalSeats {
		return repository.ErrSeatGuard
	}
	o.AvailableSeats = next
	return nil
}

func (r *memOfferingRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.s.offerings, id)
	return nil
}

func (r *memOfferingRepo) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var n int64
	for _, o := range r.s.offerings {
		if o.VehicleID != nil && *o.VehicleID == vehicleID {
			n++
		}
	}
	return n, nil
}

func (r *memOfferingRepo) FindDueReminders(ctx context.Context, until time.Time) ([]models.Offering, error) {
	now := time.Now()
	var out []models.Offering
	for _, o := range r.s.offerings {
		if !o.ReminderSent && o.ArrivalAt.After(now) && !o.ArrivalAt.After(until) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOfferingRepo) MarkReminderSent(ctx context.Context, id uint) error {
	if o, ok := r.s.offerings[id]; ok {
		o.ReminderSent = true
	}
	return nil
}

func (r *memOfferingRepo) DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	for id, o := range r.s.offerings {
		if o.ArrivalAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(r.s.offerings, id)
	}
	return ids, nil
}

// --- MemberRepository ---

type memMemberRepo struct{ s *memStore }

func (r *memMemberRepo) Create(ctx context.Context, tx *gorm.DB, m *models.OfferingMember) error {
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.members[m.ID] = m
	return nil
}

func (r *memMemberRepo) FindByOfferingAndUser(ctx context.Context, tx *gorm.DB, offeringID, userID uint) (*models.OfferingMember, error) {
	for _, m := range r.s.members {
		if m.OfferingID == offeringID && m.UserID == userID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memMemberRepo) NextPosition(ctx context.Context, tx *gorm.DB, offeringID uint) (int, error) {
	max := 0
	for _, m := range r.s.members {
		if m.OfferingID == offeringID && m.Status == models.StatusWaitlisted && m.Position != nil && *m.Position > max {
			max = *m.Position
		}
	}
	return max + 1, nil
}

func (r *memMemberRepo) Accept(ctx context.Context, tx *gorm.DB, memberID uint) error {
	if m, ok := r.s.members[memberID]; ok {
		m.Status = models.StatusAccepted
		m.Position = nil
	}
	return nil
}

func (r *memMemberRepo) Delete(ctx context.Context, tx *gorm.DB, memberID uint) error {
	delete(r.s.members, memberID)
	return nil
}

func (r *memMemberRepo) DeleteByOffering(ctx context.Context, tx *gorm.DB, offeringID uint) error {
	for id, m := range r.s.members {
		if m.OfferingID == offeringID {
			delete(r.s.members, id)
		}
	}
	return nil
}

func (r *memMemberRepo) ListByOffering(ctx context.Context, offeringID uint) ([]models.OfferingMember, error) {
	var out []models.OfferingMember
	for _, m := range r.s.members {
		if m.OfferingID == offeringID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		pi, pj := 0, 0
		if out[i].Position != nil {
			pi = *out[i].Position
		}
		if out[j].Position != nil {
			pj = *out[j].Position
		}
		if pi != pj {
			return pi < pj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memMemberRepo) ListByUser(ctx context.Context, userID uint) ([]models.OfferingMember, error) {
	var out []models.OfferingMember
	for _, m := range r.s.members {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMemberRepo) CountByStatus(ctx context.Context, tx *gorm.DB, offeringID uint, status models.MemberStatus) (int64, error) {
	var n int64
	for _, m := range r.s.members {
		if m.OfferingID == offeringID && m.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memMemberRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	var n int64
	for id, m := range r.s.members {
		if _, ok := r.s.offerings[m.OfferingID]; !ok {
			delete(r.s.members, id)
			n++
		}
	}
	return n, nil
}

// --- FavoriteRepository ---

type memFavoriteRepo struct{ s *memStore }

func (r *memFavoriteRepo) find(userID uint, itemType models.FavoriteType, itemID uint) (uint, bool) {
	for id, f := range r.s.favorites {
		if f.UserID == userID && f.ItemType == itemType && f.ItemID == itemID {
			return id, true
		}
	}
	return 0, false
}

func (r *memFavoriteRepo) Add(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) error {
	if _, ok := r.find(userID, itemType, itemID); ok {
		return nil
	}
	id := r.s.id()
	r.s.favorites[id] = &models.Favorite{ID: id, UserID: userID, ItemType: itemType, ItemID: itemID}
	return nil
}

func (r *memFavoriteRepo) Remove(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) (bool, error) {
	if id, ok := r.find(userID, itemType, itemID); ok {
		delete(r.s.favorites, id)
		return true, nil
	}
	return false, nil
}

func (r *memFavoriteRepo) Exists(ctx context.Context, userID uint, itemType models.FavoriteType, itemID uint) (bool, error) {
	_, ok := r.find(userID, itemType, itemID)
	return ok, nil
}

func (r *memFavoriteRepo) ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var out []models.Favorite
	for _, f := range r.s.favorites {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memFavoriteRepo) PurgeItem(ctx context.Context, tx *gorm.DB, itemType models.FavoriteType, itemID uint) error {
	for id, f := range r.s.favorites {
		if f.ItemType == itemType && f.ItemID == itemID {
			delete(r.s.favorites, id)
		}
	}
	return nil
}

func (r *memFavoriteRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	for id, f := range r.s.favorites {
		if f.UserID == userID {
			delete(r.s.favorites, id)
		}
	}
	return nil
}

func (r *memFavoriteRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	var n int64
	for id, f := range r.s.favorites {
		var gone bool
		switch f.ItemType {
		case models.FavoriteOffering:
			_, ok := r.s.offerings[f.ItemID]
			gone = !ok
		case models.FavoriteRequest:
			_, ok := r.s.requests[f.ItemID]
			gone = !ok
		}
		if gone {
			delete(r.s.favorites, id)
			n++
		}
	}
	return n, nil
}

// --- RequestRepository ---

type memRequestRepo struct{ s *memStore }

func (r *memRequestRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(nil)
}

func (r *memRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *models.Request) error {
	req.ID = r.s.id()
	req.CreatedAt = time.Now()
	r.s.requests[req.ID] = req
	return nil
}

func (r *memRequestRepo) FindByID(ctx context.Context, id uint) (*models.Request, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *memRequestRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Request, error) {
	var out []models.Request
	for _, id := range ids {
		if req, ok := r.s.requests[id]; ok {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Request, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *memRequestRepo) List(ctx context.Context, filter repository.ListingFilter) ([]models.Request, error) {
	var out []models.Request
	for _, req := range r.s.requests {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRequestRepo) ListByRequester(ctx context.Context, requesterID uint) ([]models.Request, error) {
	var out []models.Request
	for _, req := range r.s.requests {
		if req.RequesterUserID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) SetAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	req, ok := r.s.requests[id]
	if !ok || req.AcceptedByUserID != nil {
		return false, nil
	}
	req.AcceptedByUserID = &userID
	return true, nil
}

func (r *memRequestRepo) ClearAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	req, ok := r.s.requests[id]
	if !ok || req.AcceptedByUserID == nil || *req.AcceptedByUserID != userID {
		return false, nil
	}
	req.AcceptedByUserID = nil
	return true, nil
}

func (r *memRequestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.s.requests, id)
	return nil
}

func (r *memRequestRepo) DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	for id, req := range r.s.requests {
		if req.ArrivalAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(r.s.requests, id)
	}
	return ids, nil
}

// --- VehicleRepository ---

type memVehicleRepo struct{ s *memStore }

func (r *memVehicleRepo) Create(ctx context.Context, tx *gorm.DB, v *models.Vehicle) error {
	v.ID = r.s.id()
	r.s.vehicles[v.ID] = v
	return nil
}

func (r *memVehicleRepo) FindByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *memVehicleRepo) FindByOwner(ctx context.Context, ownerID uint) (*models.Vehicle, error) {
	for _, v := range r.s.vehicles {
		if v.OwnerUserID == ownerID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memVehicleRepo) Save(ctx context.Context, tx *gorm.DB, v *models.Vehicle) error {
	r.s.vehicles[v.ID] = v
	return nil
}

func (r *memVehicleRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.s.vehicles, id)
	return nil
}

// --- UserRepository ---

type memUserRepo struct {
	s     *memStore
	users map[uint]*models.User
}

func newMemUserRepo(s *memStore) *memUserRepo {
	return &memUserRepo{s: s, users: map[uint]*models.User{}}
}

func (r *memUserRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(nil)
}

// Create honors the unique index on auth_uid.
func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.AuthUID == u.AuthUID {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = r.s.id()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByAuthUID(ctx context.Context, authUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.AuthUID == authUID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Save writes scalar columns only; contact rows are owned by
// ReplaceContacts, as in the real schema.
func (r *memUserRepo) Save(ctx context.Context, tx *gorm.DB, u *models.User) error {
	copied := *u
	if existing, ok := r.users[u.ID]; ok {
		copied.ContactEntries = existing.ContactEntries
	}
	r.users[u.ID] = &copied
	return nil
}

func (r *memUserRepo) ReplaceContacts(ctx context.Context, tx *gorm.DB, userID uint, entries []models.ContactEntry) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ContactEntries = nil
	for i, e := range entries {
		e.UserID = userID
		e.Position = i
		u.ContactEntries = append(u.ContactEntries, e)
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.users, id)
	return nil
}

// --- Dispatcher ---

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Kind
	}
	return out
}
