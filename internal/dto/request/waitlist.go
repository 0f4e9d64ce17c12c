package request

type JoinWaitlistRequest struct {
	CustomerName   string  `json:"customerName" validate:"required,max=255"`
	CustomerEmail  string  `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone  *string `json:"customerPhone,omitempty" validate:"omitempty,phone"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	PreferredStart *string `json:"preferredStart,omitempty" validate:"omitempty,datetime=15:04"`
	PreferredEnd   *string `json:"preferredEnd,omitempty" validate:"omitempty,datetime=15:04"`
}
