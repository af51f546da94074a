package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hookfan/internal/engine/mapping"
	"hookfan/internal/platform/models"
)

// DestinationSource and MappingSource are the configuration collaborator:
// immutable snapshots for the duration of one dispatch.
type DestinationSource interface {
	ListEnabledByWebhook(webhookID string) ([]*models.Destination, error)
}

type MappingSource interface {
	ListByDestination(destinationID string) ([]*models.FieldMapping, error)
}

// LogStore is append-only plus the single retry patch.
type LogStore interface {
	Create(entry *models.DeliveryLog) error
	PatchRetryOutcome(id, status, errorMessage string) error
}

// Dispatcher fans one inbound event out to a webhook's enabled destinations.
// Destinations are delivered concurrently and in isolation: one failing
// destination never affects its siblings, and no failure propagates back to
// the ingress caller. A transport-class failure gets exactly one scheduled
// retry that patches the same log row.
type Dispatcher struct {
	destinations DestinationSource
	mappings     MappingSource
	logs         LogStore
	adapters     map[models.DestinationType]Adapter
	scheduler    Scheduler
	retryDelay   time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(destinations DestinationSource, mappings MappingSource, logs LogStore,
	adapters map[models.DestinationType]Adapter, scheduler Scheduler, retryDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		destinations: destinations,
		mappings:     mappings,
		logs:         logs,
		adapters:     adapters,
		scheduler:    scheduler,
		retryDelay:   retryDelay,
	}
}

// Dispatch delivers one event. It returns once every destination's first
// attempt has been spawned; callers invoke it fire-and-forget. Zero enabled
// destinations is a no-op with no log rows.
func (d *Dispatcher) Dispatch(webhookID string, flattened map[string]interface{}, rawPayload json.RawMessage) {
	dests, err := d.destinations.ListEnabledByWebhook(webhookID)
	if err != nil {
		log.Error().Err(err).Str("webhook_id", webhookID).Msg("failed to load destinations")
		return
	}

	for _, dest := range dests {
		d.wg.Add(1)
		go func(dest *models.Destination) {
			defer d.wg.Done()
			d.deliver(dest, flattened, rawPayload)
		}(dest)
	}
}

// Wait drains in-flight deliveries including scheduled retries. Used by
// tests and by server shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(dest *models.Destination, flattened map[string]interface{}, rawPayload json.RawMessage) {
	logger := log.With().Str("webhook_id", dest.WebhookID).Str("destination_id", dest.ID).Str("type", string(dest.Type)).Logger()

	entry := &models.DeliveryLog{
		WebhookID:     dest.WebhookID,
		DestinationID: dest.ID,
		Payload:       rawPayload,
		RetryCount:    0,
	}

	fieldMappings, err := d.mappings.ListByDestination(dest.ID)
	if err != nil {
		entry.Status = models.DeliveryStatusFailed
		entry.ErrorMessage = "failed to load field mappings: " + err.Error()
		d.writeLog(entry, logger)
		return
	}

	record, err := mapping.Resolve(flattened, fieldMappings)
	if err != nil {
		// Configuration precondition: no adapter call, no retry.
		entry.Status = models.DeliveryStatusFailed
		entry.ErrorMessage = err.Error()
		d.writeLog(entry, logger)
		logger.Warn().Msg("delivery aborted, no field mappings configured")
		return
	}

	adapter, ok := d.adapters[dest.Type]
	if !ok {
		entry.Status = models.DeliveryStatusFailed
		entry.ErrorMessage = "no adapter for destination type " + string(dest.Type)
		d.writeLog(entry, logger)
		return
	}

	writeErr := adapter.Write(context.Background(), dest, record)
	if writeErr != nil {
		entry.Status = models.DeliveryStatusFailed
		entry.ErrorMessage = writeErr.Error()
	} else {
		entry.Status = models.DeliveryStatusSuccess
	}
	d.writeLog(entry, logger)

	if writeErr == nil {
		logger.Info().Str("log_id", entry.ID).Msg("delivered")
		return
	}

	logger.Warn().Str("log_id", entry.ID).Err(writeErr).Msg("first delivery attempt failed")

	if !retryable(writeErr) {
		return
	}

	// Same adapter, same resolved record; mappings are not re-resolved.
	d.wg.Add(1)
	d.scheduler.Schedule(d.retryDelay, func() {
		defer d.wg.Done()
		d.retry(adapter, dest, record, entry.ID, logger)
	})
}

func (d *Dispatcher) retry(adapter Adapter, dest *models.Destination, record map[string]interface{}, logID string, logger zerolog.Logger) {
	err := adapter.Write(context.Background(), dest, record)
	if err != nil {
		if patchErr := d.logs.PatchRetryOutcome(logID, models.DeliveryStatusFailed, err.Error()); patchErr != nil {
			logger.Error().Err(patchErr).Str("log_id", logID).Msg("failed to record retry outcome")
		}
		logger.Warn().Str("log_id", logID).Err(err).Msg("retry failed")
		return
	}

	if patchErr := d.logs.PatchRetryOutcome(logID, models.DeliveryStatusSuccess, ""); patchErr != nil {
		logger.Error().Err(patchErr).Str("log_id", logID).Msg("failed to record retry outcome")
	}
	logger.Info().Str("log_id", logID).Msg("delivered on retry")
}

func (d *Dispatcher) writeLog(entry *models.DeliveryLog, logger zerolog.Logger) {
	if err := d.logs.Create(entry); err != nil {
		logger.Error().Err(err).Msg("failed to write delivery log")
	}
}

func retryable(err error) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Retryable()
	}
	return true
}
