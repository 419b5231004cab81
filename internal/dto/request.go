package dto

import "time"

type CreateOfferingRequest struct {
	Name       string    `json:"name" validate:"required,max=120"`
	Lat        float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lng        float64   `json:"lng" validate:"gte=-180,lte=180"`
	Address    string    `json:"address" validate:"max=255"`
	ArrivalAt  time.Time `json:"arrival_at" validate:"required"`
	Notes      string    `json:"notes" validate:"max=1000"`
	VehicleID  *uint     `json:"vehicle_id"`
	TotalSeats int       `json:"total_seats" validate:"required,gt=0,lte=8"`
}

type JoinWaitlistRequest struct {
	Message string `json:"message" validate:"max=280"`
}

type AcceptUserRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type CreateRideRequest struct {
	Name      string    `json:"name" validate:"required,max=120"`
	Lat       float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64   `json:"lng" validate:"gte=-180,lte=180"`
	Address   string    `json:"address" validate:"max=255"`
	ArrivalAt time.Time `json:"arrival_at" validate:"required"`
	Notes     string    `json:"notes" validate:"max=1000"`
	Wants     string    `json:"wants" validate:"max=280"`
}

type ToggleFavoriteRequest struct {
	Type string `json:"type" validate:"required,oneof=offering request"`
	ID   uint   `json:"id" validate:"required"`
}

type ContactEntryPayload struct {
	Type     string `json:"type" validate:"required,max=40"`
	Value    string `json:"value" validate:"required,max=255"`
	Platform string `json:"platform" validate:"max=40"`
}

type UpdateProfileRequest struct {
	Name              string                `json:"name" validate:"required,max=120"`
	ContactEntries    []ContactEntryPayload `json:"contact_entries" validate:"dive"`
	AcceptedAgreement *bool                 `json:"accepted_agreement"`
}

type VehicleRequest struct {
	Color string `json:"color" validate:"max=40"`
	Make  string `json:"make" validate:"required,max=60"`
	Model string `json:"model" validate:"required,max=60"`
	Seats int    `json:"seats" validate:"required,gt=0,lte=8"`
}
