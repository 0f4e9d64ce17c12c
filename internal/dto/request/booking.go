package request

type CreateBookingRequest struct {
	CustomerName           string   `json:"customerName" validate:"required,max=255"`
	CustomerEmail          string   `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone          *string  `json:"customerPhone,omitempty" validate:"omitempty,phone"`
	ServiceIDs             []string `json:"serviceIds" validate:"required,min=1,max=10,dive,uuid"`
	Date                   string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime              string   `json:"startTime" validate:"required,datetime=15:04"`
	DiscountCode           *string  `json:"discountCode,omitempty" validate:"omitempty,max=64"`
	GiftCardCode           *string  `json:"giftCardCode,omitempty" validate:"omitempty,max=64"`
	CustomerPackageID      *string  `json:"customerPackageId,omitempty" validate:"omitempty,uuid"`
	DepositPaymentIntentID *string  `json:"depositPaymentIntentId,omitempty" validate:"omitempty,max=255"`
}

type DepositIntentRequest struct {
	ServiceIDs    []string `json:"serviceIds" validate:"required,min=1,max=10,dive,uuid"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email,max=255"`
}

// TipIntentRequest takes the amount as a decimal string, e.g. "5.00".
type TipIntentRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

type ListBookingsRequest struct {
	PaginatedRequest
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
