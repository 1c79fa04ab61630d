package obs

import (
	"context"
	"log"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs op entry/exit with duration, tagging the request id from either
// the chi middleware (HTTP path) or our own context key (internal calls).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := requestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}
