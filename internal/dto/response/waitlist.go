package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type WaitlistResponse struct {
	ID             string                `json:"id"`
	CustomerName   string                `json:"customerName"`
	CustomerEmail  string                `json:"customerEmail"`
	Date           string                `json:"date"`
	PreferredStart *string               `json:"preferredStart,omitempty"`
	PreferredEnd   *string               `json:"preferredEnd,omitempty"`
	Status         entity.WaitlistStatus `json:"status"`
	NotifiedAt     *time.Time            `json:"notifiedAt,omitempty"`
	ExpiresAt      *time.Time            `json:"expiresAt,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func WaitlistToResponse(e *entity.WaitlistEntry) WaitlistResponse {
	return WaitlistResponse{
		ID:             e.ID.String(),
		CustomerName:   e.CustomerName,
		CustomerEmail:  e.CustomerEmail,
		Date:           e.Date.Format("2006-01-02"),
		PreferredStart: e.PreferredStart,
		PreferredEnd:   e.PreferredEnd,
		Status:         e.Status,
		NotifiedAt:     e.NotifiedAt,
		ExpiresAt:      e.ExpiresAt,
		CreatedAt:      e.CreatedAt,
	}
}
