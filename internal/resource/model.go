package resource

// Resource is a bookable court or amenity. Owned by the remote backend;
// read-only here.
type Resource struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Sport             string `json:"sport"`
	PricePerHourCents int64  `json:"pricePerHour"`
	// Optional flat prices for 90 and 120 minute bookings. When absent the
	// hourly price is pro-rated.
	PricePerHour90Cents  *int64 `json:"pricePerHour90,omitempty"`
	PricePerHour120Cents *int64 `json:"pricePerHour120,omitempty"`
	IsActive             bool   `json:"isActive"`
}

// PriceFor returns the price in cents for a booking of the given duration.
func (r Resource) PriceFor(durationMinutes int) int64 {
	switch durationMinutes {
	case 90:
		if r.PricePerHour90Cents != nil {
			return *r.PricePerHour90Cents
		}
	case 120:
		if r.PricePerHour120Cents != nil {
			return *r.PricePerHour120Cents
		}
	}
	return r.PricePerHourCents * int64(durationMinutes) / 60
}

// FilterActive returns the active resources, optionally narrowed by sport.
func FilterActive(resources []Resource, sport string) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if !r.IsActive {
			continue
		}
		if sport != "" && r.Sport != sport {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Find returns the resource with the given id.
func Find(resources []Resource, resourceID int) (Resource, bool) {
	for _, r := range resources {
		if r.ID == resourceID {
			return r, true
		}
	}
	return Resource{}, false
}

// ResolvePrice finds the price for resourceID, falling back to fallbackCents
// when the resource is unknown. Used by recurring submission where an
// alternative may point at a resource whose price cannot be resolved.
func ResolvePrice(resources []Resource, resourceID int, durationMinutes int, fallbackCents int64) int64 {
	if r, ok := Find(resources, resourceID); ok {
		return r.PriceFor(durationMinutes)
	}
	return fallbackCents
}
