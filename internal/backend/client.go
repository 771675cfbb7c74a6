package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"courtgrid/internal/reservation"
	"courtgrid/internal/resource"

	"github.com/google/uuid"
)

// AvailabilitySlot is one entry of a per-resource availability response.
type AvailabilitySlot struct {
	StartTime string `json:"startTime"`
	Available bool   `json:"available"`
}

// BookingFilter narrows ListBookings. Zero values mean no constraint.
type BookingFilter struct {
	DateFrom   string
	DateTo     string
	ResourceID int
}

type CreateBookingRequest struct {
	ResourceID   int    `json:"resourceId"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Duration     int    `json:"duration"`
	PriceCents   int64  `json:"priceCents"`
	ClientName   string `json:"clientName"`
	ClientEmail  string `json:"clientEmail,omitempty"`
	ClientPhone  string `json:"clientPhone,omitempty"`
	Notes        string `json:"notes,omitempty"`
	DepositCents int64  `json:"depositCents,omitempty"`
	IsRecurring  bool   `json:"isRecurring,omitempty"`
}

type RecurringCheckRequest struct {
	ResourceID int      `json:"resourceId"`
	StartTime  string   `json:"startTime"`
	Duration   int      `json:"duration"`
	Dates      []string `json:"dates"`
}

// OccurrenceReport is the backend's per-date conflict verdict.
type OccurrenceReport struct {
	Date         string        `json:"date"`
	Available    bool          `json:"available"`
	Conflict     *Conflict     `json:"conflict,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

type Conflict struct {
	ResourceName    string `json:"resourceName"`
	ExistingBooking string `json:"existingBooking"`
}

type Alternative struct {
	ResourceID int    `json:"resourceId"`
	Time       string `json:"time"`
	PriceCents int64  `json:"priceCents"`
	Kind       string `json:"kind"`
}

type RecurringCheckResponse struct {
	Availability []OccurrenceReport `json:"availability"`
	Summary      struct {
		Unavailable      int `json:"unavailable"`
		NeedsAlternative int `json:"needsAlternative"`
	} `json:"summary"`
}

type RecurringGroupRequest struct {
	Occurrences []CreateBookingRequest `json:"occurrences"`
}

// Client is the remote booking platform API. Implementations carry their own
// credentials; nothing in this module reads tokens from ambient state.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListResources(ctx context.Context) ([]resource.Resource, error) {
	var out struct {
		Resources []resource.Resource `json:"resources"`
	}
	if err := c.do(ctx, http.MethodGet, "/resources", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Resources, nil
}

func (c *Client) GetResourceAvailability(ctx context.Context, resourceID int, date string, durationMinutes int) ([]AvailabilitySlot, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("duration", strconv.Itoa(durationMinutes))

	var out struct {
		AvailableSlots []AvailabilitySlot `json:"availableSlots"`
	}
	path := fmt.Sprintf("/resources/%d/availability", resourceID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out.AvailableSlots, nil
}

func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*reservation.Reservation, error) {
	var out struct {
		Booking reservation.Reservation `json:"booking"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

func (c *Client) ListBookings(ctx context.Context, filter BookingFilter) ([]reservation.Reservation, error) {
	q := url.Values{}
	if filter.DateFrom != "" {
		q.Set("from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q.Set("to", filter.DateTo)
	}
	if filter.ResourceID != 0 {
		q.Set("resourceId", strconv.Itoa(filter.ResourceID))
	}

	var out struct {
		Bookings []reservation.Reservation `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id int, action string) (*reservation.Reservation, error) {
	var out struct {
		Booking reservation.Reservation `json:"booking"`
	}
	path := fmt.Sprintf("/bookings/%d/%s", id, action)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

func (c *Client) CheckRecurringAvailability(ctx context.Context, req RecurringCheckRequest) (*RecurringCheckResponse, error) {
	var out RecurringCheckResponse
	if err := c.do(ctx, http.MethodPost, "/bookings/recurring/check", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecurringBookingGroup(ctx context.Context, req RecurringGroupRequest) ([]reservation.Reservation, error) {
	var out struct {
		Bookings []reservation.Reservation `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookings/recurring", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return c.statusError(resp)
}

func (c *Client) statusError(resp *http.Response) error {
	var payload struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: payload.Error, Details: payload.Details}
	case http.StatusConflict:
		return &ConflictError{Message: payload.Error}
	case http.StatusNotImplemented:
		return ErrGroupCreateUnsupported
	default:
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, payload.Error)
	}
}
