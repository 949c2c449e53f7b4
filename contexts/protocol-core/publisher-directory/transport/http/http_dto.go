package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterPublisherRequest struct {
	TakeRateBps uint32 `json:"take_rate_bps"`
}

type ScheduleRateUpdateRequest struct {
	NewRateBps uint32 `json:"new_rate_bps"`
}

type PublisherDTO struct {
	Address            string `json:"address"`
	TakeRateBps        uint32 `json:"take_rate_bps"`
	PendingRateBps     uint32 `json:"pending_rate_bps,omitempty"`
	PendingEffectBlock uint64 `json:"pending_effect_block,omitempty"`
	HasPendingRate     bool   `json:"has_pending_rate"`
}

type PublisherResponse struct {
	Status string       `json:"status"`
	Data   PublisherDTO `json:"data"`
}

type ListPublishersResponse struct {
	Status string         `json:"status"`
	Data   []PublisherDTO `json:"data"`
}
