package booking

import (
	"errors"

	"courtgrid/internal/schedule"
)

var (
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidStartTime    = errors.New("startTime must be HH:MM")
	ErrInvalidDuration     = errors.New("duration must be a 30-minute multiple between 30 and 480")
	ErrDepositExceedsPrice = errors.New("deposit cannot exceed the total price")
)

// Draft is a booking as composed by the caller, consumed once by submission.
type Draft struct {
	ResourceID    int    `json:"resourceId" binding:"required" validate:"required,gt=0"`
	Date          string `json:"date" binding:"required" validate:"required"`
	StartTime     string `json:"startTime" binding:"required" validate:"required"`
	Duration      int    `json:"duration" binding:"required" validate:"required"`
	ClientName    string `json:"clientName" binding:"required" validate:"required,min=2,max=120"`
	ClientEmail   string `json:"clientEmail" validate:"omitempty,email"`
	ClientPhone   string `json:"clientPhone"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"paymentMethod"`
	DepositCents  int64  `json:"depositCents" validate:"gte=0"`
}

// EndTime derives the end from start and duration, wrapping at midnight.
func (d Draft) EndTime() string {
	return schedule.AddMinutes(d.StartTime, d.Duration)
}

// Validate checks the shape of the draft. The deposit-versus-price invariant
// is checked at submission, once the price is resolved.
func (d Draft) Validate() error {
	if !schedule.ValidDate(d.Date) {
		return ErrInvalidDate
	}
	if !schedule.ValidTime(d.StartTime) {
		return ErrInvalidStartTime
	}
	if !schedule.ValidDuration(d.Duration) {
		return ErrInvalidDuration
	}
	return nil
}
