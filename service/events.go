package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/kafka"
)

// Published event types
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationReviewed  = "application.reviewed"
	EventAffiliateCreated     = "affiliate.created"
	EventAffiliateUpdated     = "affiliate.updated"
	EventCommissionCreated    = "commission.created"
	EventCommissionUpdated    = "commission.updated"
	EventPayoutCreated        = "payout.created"
	EventPayoutUpdated        = "payout.updated"
	EventLinkClicked          = "link.clicked"
)

const publishTimeout = 5 * time.Second

// publish sends the event in the background. It is called after commit and
// never affects the outcome of the request.
func (service *Service) publish(eventType string, entityID uint64, payload interface{}) {
	if !featureflags.IsEnabled(featureflags.EventsPublish) {
		return
	}
	event := kafka.Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: service.now().UTC(),
		Payload:    payload,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := service.events.Publish(ctx, event); err != nil {
			log.Error().Err(err).
				Str("section", "events").
				Str("event", eventType).
				Uint64("entity_id", entityID).
				Msg("Unable to publish event")
		}
	}()
}
