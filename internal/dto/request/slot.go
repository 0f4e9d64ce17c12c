package request

type NextAvailableRequest struct {
	ServiceIDs string `json:"serviceIds" validate:"required"`
	From       string `json:"from" validate:"omitempty,datetime=2006-01-02"`
}
