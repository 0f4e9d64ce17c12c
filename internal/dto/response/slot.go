package response

import "appointment-booking/internal/data/entity"

type SlotResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type NextAvailableResponse struct {
	Found   bool     `json:"found"`
	Date    string   `json:"date,omitempty"`
	Time    string   `json:"time,omitempty"`
	SlotIDs []string `json:"slotIds,omitempty"`
}

func SlotToResponse(s *entity.TimeSlot) SlotResponse {
	return SlotResponse{
		ID:        s.ID.String(),
		Date:      s.Date.Format("2006-01-02"),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}
