package notice

import (
	"context"
	"time"

	"github.com/turtacn/LienPilot/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// NoticeRequestedEvent is the payload of TopicNOIRequested.
type NoticeRequestedEvent struct {
	RequestID string        `json:"request_id,omitempty"`
	Render    RenderRequest `json:"render"`
}

// NoticeRequestedHandler renders and stores the notice carried by each
// request event. Requests that can never succeed are logged and
// acknowledged instead of being retried.
func NoticeRequestedHandler(svc Service, m *prometheus.AppMetrics, log logging.Logger) kafka.MessageHandler {
	log = logging.ForComponent(log, "noi_worker")
	return func(ctx context.Context, msg *kafka.Message) error {
		start := time.Now()
		defer func() { prometheus.RecordMessage(m, msg.Topic, time.Since(start)) }()

		env, err := kafka.MessageToEventEnvelope(msg)
		if err != nil {
			log.Error("drop malformed notice request", logging.Int64("offset", msg.Offset), logging.Err(err))
			return nil
		}
		var ev NoticeRequestedEvent
		if err := env.DecodePayload(&ev); err != nil {
			log.Error("drop undecodable notice request", logging.String(logging.KeyEventID, env.EventID), logging.Err(err))
			return nil
		}

		req := ev.Render
		req.Store = true
		res, err := svc.RenderDocument(ctx, &req)
		if err != nil {
			if permanent(err) {
				log.Warn("notice request rejected",
					logging.String(logging.KeyEventID, env.EventID),
					logging.String(logging.KeyInvoice, req.Notice.InvoiceNumber),
					logging.Err(err))
				prometheus.RecordError(m, "noi_worker", string(errors.GetCode(err)))
				return nil
			}
			return err
		}
		log.Info("notice request served",
			logging.String(logging.KeyEventID, env.EventID),
			logging.String(logging.KeyRequestID, ev.RequestID),
			logging.String(logging.KeyObject, res.ObjectKey),
			logging.Bool("cached", res.Cached))
		return nil
	}
}

// permanent reports whether retrying err is pointless: bad input rather
// than an unavailable dependency.
func permanent(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeLienInvalidDate,
		errors.ErrCodeLienInvalidState,
		errors.ErrCodeLetterInvalidData,
		errors.ErrCodeLetterUnresolvedPlaceholder,
		errors.ErrCodeDocumentInvalidOption,
		errors.ErrCodeValidation,
		errors.ErrCodeBadRequest:
		return true
	}
	return false
}

//Personal.AI order the ending
