package reservation

import "time"

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentFailed  = "failed"
)

// Reservation mirrors a backend booking. The backend is the source of truth;
// entries held here are an optimistic local view.
type Reservation struct {
	ID            int       `json:"id"`
	ResourceID    int       `json:"resourceId"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	EndTime       string    `json:"endTime"`
	Duration      int       `json:"duration"`
	PriceCents    int64     `json:"priceCents"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	ClientName    string    `json:"clientName"`
	ClientEmail   string    `json:"clientEmail,omitempty"`
	ClientPhone   string    `json:"clientPhone,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	DepositCents  int64     `json:"depositCents,omitempty"`
	IsRecurring   bool      `json:"isRecurring,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the known reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
