package dto

import (
	"time"

	"rideboard/internal/models"
)

// Stable error codes surfaced to clients. Handlers pick the code, the error
// handler middleware renders the envelope.
const (
	CodeNotFound         = "NotFound"
	CodeAlreadyListed    = "AlreadyListed"
	CodeSelfJoin         = "SelfJoin"
	CodeNoSeatsAvailable = "NoSeatsAvailable"
	CodeNotInWaitlist    = "NotInWaitlist"
	CodeNotAccepted      = "NotAccepted"
	CodeAlreadyAccepted  = "AlreadyAccepted"
	CodeNotAcceptedByYou = "NotAcceptedByYou"
	CodeForbidden        = "Forbidden"
	CodeValidation       = "ValidationError"
	CodeVehicleExists    = "VehicleExists"
	CodeVehicleInUse     = "VehicleInUse"
	CodeUnauthorized     = "Unauthorized"
	CodeUnavailable      = "Unavailable"
	CodeInternal         = "Internal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MemberResponse struct {
	UserID       uint      `json:"user_id"`
	Position     *int      `json:"position,omitempty"`
	QuickMessage string    `json:"quick_message,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
}

type OfferingResponse struct {
	ID             uint      `json:"id"`
	OwnerUserID    uint      `json:"owner_user_id"`
	Name           string    `json:"name"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Address        string    `json:"address,omitempty"`
	ArrivalAt      time.Time `json:"arrival_at"`
	Notes          string    `json:"notes,omitempty"`
	VehicleID      *uint     `json:"vehicle_id,omitempty"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`

	WaitingList   []MemberResponse `json:"waiting_list,omitempty"`
	AcceptedUsers []MemberResponse `json:"accepted_users,omitempty"`
}

type RequestResponse struct {
	ID               uint      `json:"id"`
	RequesterUserID  uint      `json:"requester_user_id"`
	Name             string    `json:"name"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	Address          string    `json:"address,omitempty"`
	ArrivalAt        time.Time `json:"arrival_at"`
	Notes            string    `json:"notes,omitempty"`
	Wants            string    `json:"wants,omitempty"`
	AcceptedByUserID *uint     `json:"accepted_by_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type UserResponse struct {
	ID                uint                  `json:"id"`
	Email             string                `json:"email"`
	Name              string                `json:"name"`
	VehicleID         *uint                 `json:"vehicle_id,omitempty"`
	CompletedProfile  bool                  `json:"completed_profile"`
	AcceptedAgreement bool                  `json:"accepted_agreement"`
	ContactEntries    []models.ContactEntry `json:"contact_entries"`
}

type VehicleResponse struct {
	ID          uint   `json:"id"`
	OwnerUserID uint   `json:"owner_user_id"`
	Color       string `json:"color,omitempty"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Seats       int    `json:"seats"`
}

type FavoritesResponse struct {
	Offerings []OfferingResponse `json:"offerings"`
	Requests  []RequestResponse  `json:"requests"`
}

type ListingsResponse struct {
	Offerings []OfferingResponse `json:"offerings"`
	Requests  []RequestResponse  `json:"requests"`
}

func ToMemberResponse(m *models.OfferingMember) MemberResponse {
	return MemberResponse{
		UserID:       m.UserID,
		Position:     m.Position,
		QuickMessage: m.QuickMessage,
		JoinedAt:     m.CreatedAt,
	}
}

func ToOfferingResponse(o *models.Offering, members []models.OfferingMember) OfferingResponse {
	resp := OfferingResponse{
		ID:             o.ID,
		OwnerUserID:    o.OwnerUserID,
		Name:           o.Name,
		Lat:            o.Lat,
		Lng:            o.Lng,
		Address:        o.Address,
		ArrivalAt:      o.ArrivalAt,
		Notes:          o.Notes,
		VehicleID:      o.VehicleID,
		TotalSeats:     o.TotalSeats,
		AvailableSeats: o.AvailableSeats,
		CreatedAt:      o.CreatedAt,
	}
	for i := range members {
		m := ToMemberResponse(&members[i])
		switch members[i].Status {
		case models.StatusAccepted:
			resp.AcceptedUsers = append(resp.AcceptedUsers, m)
		default:
			resp.WaitingList = append(resp.WaitingList, m)
		}
	}
	return resp
}

func ToRequestResponse(r *models.Request) RequestResponse {
	return RequestResponse{
		ID:               r.ID,
		RequesterUserID:  r.RequesterUserID,
		Name:             r.Name,
		Lat:              r.Lat,
		Lng:              r.Lng,
		Address:          r.Address,
		ArrivalAt:        r.ArrivalAt,
		Notes:            r.Notes,
		Wants:            r.Wants,
		AcceptedByUserID: r.AcceptedByUserID,
		CreatedAt:        r.CreatedAt,
	}
}

func ToUserResponse(u *models.User) UserResponse {
	entries := u.ContactEntries
	if entries == nil {
		entries = []models.ContactEntry{}
	}
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		VehicleID:         u.VehicleID,
		CompletedProfile:  u.CompletedProfile,
		AcceptedAgreement: u.AcceptedAgreement,
		ContactEntries:    entries,
	}
}

func ToVehicleResponse(v *models.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:          v.ID,
		OwnerUserID: v.OwnerUserID,
		Color:       v.Color,
		Make:        v.Make,
		Model:       v.Model,
		Seats:       v.Seats,
	}
}
