package commands

import (
	"context"
	"strconv"
	"time"

	application "wishpact/contexts/impact-governance/proposal-governor/application"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

const (
	moduleName    = "impact-governance/proposal-governor"
	sourceService = "proposal-governor"

	defaultExternalCallTimeout = 5 * time.Second
)

func (uc GovernorUseCase) emit(ctx context.Context, eventType string, proposalID uint64, at time.Time, data map[string]any) {
	if uc.Outbox == nil || uc.IDGen == nil {
		return
	}
	key := strconv.FormatUint(proposalID, 10)
	eventID, err := uc.IDGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = contractsv1.NewEnvelope(eventID, eventType, sourceService, "proposal_id", key, at, data)
		if err == nil {
			err = uc.Outbox.AppendOutbox(ctx, envelope)
		}
	}
	if err != nil {
		uc.sideEffectFailed("governance outbox append failed", err, "event_type", eventType, "proposal_id", proposalID)
	}
}

// chain runs a best-effort chain bridge call under the external call timeout.
// Caller cancellation does not propagate into it.
func (uc GovernorUseCase) chain(ctx context.Context, operation string, proposalID uint64, call func(context.Context, ports.ChainBridge) error) {
	if uc.Chain == nil {
		return
	}
	timeout := uc.ExternalCallTimeout
	if timeout <= 0 {
		timeout = defaultExternalCallTimeout
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := call(callCtx, uc.Chain); err != nil {
		uc.sideEffectFailed("chain bridge call failed", err, "operation", operation, "proposal_id", proposalID)
	}
}

func (uc GovernorUseCase) sideEffectFailed(message string, err error, attrs ...any) {
	fields := []any{
		"event", "governance_side_effect_failed",
		"module", moduleName,
		"layer", "application",
		"error", err.Error(),
	}
	fields = append(fields, attrs...)
	application.ResolveLogger(uc.Logger).Warn(message, fields...)
}
