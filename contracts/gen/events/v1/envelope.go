package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope shared by every
// context and by the realtime transport.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

const (
	EventProofSubmitted   = "proof_submitted"
	EventVoteCast         = "vote_cast"
	EventWishResolved     = "wish_resolved"
	EventWishCancelled    = "wish_cancelled"
	EventPledgeRecorded   = "pledge_recorded"
	EventTreasuryCredited = "treasury_credited"
	EventProposalCreated  = "proposal_created"
	EventProposalVoted    = "proposal_voted"
	EventProposalExecuted = "proposal_executed"
	EventProposalExpired  = "proposal_expired"
)

// BroadcastEventTypes lists the events pushed to realtime clients.
var BroadcastEventTypes = []string{
	EventProofSubmitted,
	EventVoteCast,
	EventWishResolved,
	EventWishCancelled,
	EventPledgeRecorded,
	EventTreasuryCredited,
	EventProposalCreated,
	EventProposalVoted,
	EventProposalExecuted,
	EventProposalExpired,
}

// NewEnvelope marshals data and stamps the common envelope fields.
func NewEnvelope(
	eventID string,
	eventType string,
	sourceService string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}
