package obs

import (
	"appliance-intake-service/internal/platform/logging"
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Time logs the duration of an operation together with the chi request ID.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := middleware.GetReqID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logging.L().Warn("op_failed", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		logging.L().Debug("op_done", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
