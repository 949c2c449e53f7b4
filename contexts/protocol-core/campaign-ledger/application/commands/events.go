package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"admesh/contexts/protocol-core/campaign-ledger/ports"
)

func newLedgerEnvelope(
	eventID string,
	eventType string,
	campaignID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "campaign-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "campaign_id",
		PartitionKey:     strconv.FormatUint(campaignID, 10),
		Data:             payload,
	}, nil
}
