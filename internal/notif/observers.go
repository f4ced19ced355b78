package notif

import (
	"context"
	"fmt"
	"time"

	"foodorder/internal/common"
	"foodorder/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchObserver hands deliverable notifications to the external
// dispatcher: records created for immediate delivery and deferred records
// the releaser found due.
type DispatchObserver struct {
	publisher common.EventPublisher
	timeout   time.Duration
	failures  prometheus.Counter
}

func NewDispatchObserver(publisher common.EventPublisher, timeout time.Duration, failures prometheus.Counter) *DispatchObserver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DispatchObserver{
		publisher: publisher,
		timeout:   timeout,
		failures:  failures,
	}
}

func (d *DispatchObserver) Name() string {
	return "dispatch_observer"
}

func (d *DispatchObserver) Update(event common.NotificationEvent) error {
	switch event.Kind {
	case common.EventCreated:
		if event.Deferred {
			return nil
		}
	case common.EventDue:
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		if d.failures != nil {
			d.failures.Inc()
		}
		return fmt.Errorf("failed to hand notification %s to dispatcher: %w", event.NotificationID, err)
	}
	return nil
}

type MetricsObserver struct {
	metrics *metrics.Metrics
}

func NewMetricsObserver(m *metrics.Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) Name() string {
	return "metrics_observer"
}

func (o *MetricsObserver) Update(event common.NotificationEvent) error {
	switch event.Kind {
	case common.EventCreated:
		o.metrics.NotificationsCreated.WithLabelValues(string(event.Type), string(event.Category)).Inc()
	case common.EventRead:
		o.metrics.NotificationsRead.Inc()
	case common.EventDeleted:
		o.metrics.NotificationsDeleted.Inc()
	case common.EventDeliveryOutcome:
		o.metrics.DeliveryOutcomes.WithLabelValues(event.Channel.String(), statusLabel(event.Status)).Inc()
	case common.EventDue:
		o.metrics.ScheduledReleased.Inc()
	}
	return nil
}

// statusLabel keeps provider-specific states out of the label set.
func statusLabel(s common.DeliveryState) string {
	switch s {
	case common.DeliveryQueued, common.DeliverySent, common.DeliveryDelivered,
		common.DeliveryFailed, common.DeliveryBounced:
		return string(s)
	}
	return "other"
}
