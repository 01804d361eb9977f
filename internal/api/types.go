package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/zionnix/jmd-remake/internal/booking"
)

const dateFormat = "2006-01-02"

type SubmitAppointmentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Message  string `json:"message,omitempty"`
	SlotDate string `json:"slot_date"` // YYYY-MM-DD
	SlotTime string `json:"slot_time"` // HH:MM
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone,omitempty"`
	Message         *string    `json:"message,omitempty"`
	SlotDate        string     `json:"slot_date"`
	SlotTime        string     `json:"slot_time"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		Message:         a.Message,
		SlotDate:        a.SlotDate.Format(dateFormat),
		SlotTime:        a.SlotTime,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		StatusChangedAt: a.StatusChangedAt,
	}
}

type SlotResponse struct {
	Time string `json:"time"`
	Free bool   `json:"free"`
}

type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Validated int `json:"validated"`
	Rejected  int `json:"rejected"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
