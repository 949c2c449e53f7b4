package httpadapter

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/publisher-directory/application"
	"admesh/contexts/protocol-core/publisher-directory/ports"
	httptransport "admesh/contexts/protocol-core/publisher-directory/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterPublisherHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterPublisherRequest,
) (httptransport.PublisherResponse, error) {
	publisher, err := h.Service.RegisterPublisher(ctx, caller, req.TakeRateBps)
	if err != nil {
		return httptransport.PublisherResponse{}, err
	}
	return httptransport.PublisherResponse{Status: "success", Data: toDTO(publisher)}, nil
}

func (h Handler) ScheduleRateUpdateHandler(
	ctx context.Context,
	caller string,
	req httptransport.ScheduleRateUpdateRequest,
) (httptransport.PublisherResponse, error) {
	publisher, err := h.Service.ScheduleRateUpdate(ctx, caller, req.NewRateBps)
	if err != nil {
		return httptransport.PublisherResponse{}, err
	}
	return httptransport.PublisherResponse{Status: "success", Data: toDTO(publisher)}, nil
}

func (h Handler) GetPublisherHandler(ctx context.Context, address string) (httptransport.PublisherResponse, error) {
	publisher, err := h.Service.GetPublisher(ctx, address)
	if err != nil {
		return httptransport.PublisherResponse{}, err
	}
	return httptransport.PublisherResponse{Status: "success", Data: toDTO(publisher)}, nil
}

func (h Handler) ListPublishersHandler(ctx context.Context) (httptransport.ListPublishersResponse, error) {
	publishers, err := h.Service.ListPublishers(ctx)
	if err != nil {
		return httptransport.ListPublishersResponse{}, err
	}
	resp := httptransport.ListPublishersResponse{
		Status: "success",
		Data:   make([]httptransport.PublisherDTO, 0, len(publishers)),
	}
	for _, publisher := range publishers {
		resp.Data = append(resp.Data, toDTO(publisher))
	}
	return resp, nil
}

func toDTO(publisher ports.Publisher) httptransport.PublisherDTO {
	return httptransport.PublisherDTO{
		Address:            publisher.Address,
		TakeRateBps:        publisher.TakeRateBps,
		PendingRateBps:     publisher.PendingRateBps,
		PendingEffectBlock: publisher.PendingEffectBlock,
		HasPendingRate:     publisher.HasPendingRate,
	}
}
