package notif

import (
	"context"
	"sync"

	"foodorder/internal/common"
	"foodorder/pkg/zlog"

	"go.uber.org/zap"
)

type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	onDrop       func(common.NotificationEvent)
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewNotificationManager(workerPoolSize, bufferSize int) *NotificationManager {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
		ctx:          ctx,
		cancel:       cancel,
	}

	for i := 0; i < workerPoolSize; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

// OnDrop registers a hook called for every event NotifyAsync discards.
func (nm *NotificationManager) OnDrop(fn func(common.NotificationEvent)) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.onDrop = fn
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	zlog.Info("observer subscribed", zap.String("observer", observer.Name()))
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	zlog.Info("observer unsubscribed", zap.String("observer", observer.Name()))
}

func (nm *NotificationManager) Notify(event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			zlog.Warn("observer update failed",
				zap.String("observer", observer.Name()),
				zap.String("event", string(event.Kind)),
				zap.String("notification_id", event.NotificationID),
				zap.Error(err))
		}
	}
}

// NotifyAsync queues the event for the worker pool and never blocks: when
// the queue is full the event is dropped.
func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) {
	if nm.ctx.Err() != nil {
		return
	}

	select {
	case nm.eventChannel <- event:
	default:
		zlog.Warn("notification event queue full, dropping event",
			zap.String("event", string(event.Kind)),
			zap.String("notification_id", event.NotificationID))

		nm.mu.RLock()
		onDrop := nm.onDrop
		nm.mu.RUnlock()
		if onDrop != nil {
			onDrop(event)
		}
	}
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for {
		select {
		case event := <-nm.eventChannel:
			nm.Notify(event)
		case <-nm.ctx.Done():
			nm.drain()
			return
		}
	}
}

// drain delivers whatever is still queued at shutdown.
func (nm *NotificationManager) drain() {
	for {
		select {
		case event := <-nm.eventChannel:
			nm.Notify(event)
		default:
			return
		}
	}
}

// Shutdown stops the workers after the queue is drained. The channel is
// left open so a late NotifyAsync cannot panic.
func (nm *NotificationManager) Shutdown() {
	nm.shutdownOnce.Do(func() {
		nm.cancel()
		nm.wg.Wait()
		zlog.Info("notification manager shutdown complete")
	})
}

var _ common.Subject = (*NotificationManager)(nil)
