package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type BookingResponse struct {
	ID               string               `json:"id"`
	Reference        string               `json:"reference"`
	CustomerName     string               `json:"customerName"`
	CustomerEmail    string               `json:"customerEmail"`
	CustomerPhone    *string              `json:"customerPhone,omitempty"`
	ServiceIDs       []string             `json:"serviceIds"`
	Date             string               `json:"date"`
	StartTime        string               `json:"startTime"`
	EndTime          string               `json:"endTime"`
	Subtotal         string               `json:"subtotal"`
	DiscountAmount   string               `json:"discountAmount"`
	GiftCardAmount   string               `json:"giftCardAmount"`
	TotalPrice       string               `json:"totalPrice"`
	DepositAmount    string               `json:"depositAmount"`
	DepositStatus    entity.DepositStatus `json:"depositStatus"`
	RemainingBalance *string              `json:"remainingBalance,omitempty"`
	Status           entity.BookingStatus `json:"status"`
	MarkedNoShow     bool                 `json:"markedNoShow"`
	DiscountApplied  bool                 `json:"discountApplied"`
	GiftCardApplied  bool                 `json:"giftCardApplied"`
	PackageApplied   bool                 `json:"packageApplied"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

type DepositIntentResponse struct {
	Required      bool    `json:"required"`
	DepositAmount string  `json:"depositAmount"`
	ClientSecret  *string `json:"clientSecret,omitempty"`
}

type TipIntentResponse struct {
	BookingID    string `json:"bookingId"`
	Amount       string `json:"amount"`
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
}

// BookingToResponse converts the stored booking. Applied flags are derived
// from the instrument references.
func BookingToResponse(b *entity.Booking) BookingResponse {
	serviceIDs := make([]string, len(b.ServiceIDs))
	for i, id := range b.ServiceIDs {
		serviceIDs[i] = id.String()
	}

	return BookingResponse{
		ID:              b.ID.String(),
		Reference:       b.Reference,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		ServiceIDs:      serviceIDs,
		Date:            b.Date.Format("2006-01-02"),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Subtotal:        b.Subtotal.StringFixed(2),
		DiscountAmount:  b.DiscountAmount.StringFixed(2),
		GiftCardAmount:  b.GiftCardAmount.StringFixed(2),
		TotalPrice:      b.TotalPrice.StringFixed(2),
		DepositAmount:   b.DepositAmount.StringFixed(2),
		DepositStatus:   b.DepositStatus,
		Status:          b.Status,
		MarkedNoShow:    b.MarkedNoShow,
		DiscountApplied: b.DiscountCodeID != nil,
		GiftCardApplied: b.GiftCardID != nil,
		PackageApplied:  b.CustomerPackageID != nil,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
