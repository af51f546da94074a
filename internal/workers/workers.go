package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"hookfan/internal/platform/repositories"
)

// PruneDeliveryLogs deletes delivery logs older than maxAge. Pruning is by
// age only: logs whose destination has been deleted are kept until they age
// out, so the audit trail survives destination churn.
func PruneDeliveryLogs(logRepo *repositories.DeliveryLogRepository, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()

	deleted, err := logRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("pruned delivery logs")
	}
	return nil
}
