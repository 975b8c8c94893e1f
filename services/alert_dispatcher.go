package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/notification"
)

// PushProvider is the delivery transport boundary; the real implementation
// is FCM, tests plug in a fake.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// AlertDispatcher fans pattern alerts out to the user's registered devices
// through a small worker pool. Dispatching never blocks the caller: when the
// queue is full the alert is dropped with a log line, since alerts are
// derived state and will be recomputed on the next scan.
type AlertDispatcher struct {
	store        docstore.Store
	pushProvider PushProvider
	workers      int
	jobQueue     chan notification.Alert
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func NewAlertDispatcher(store docstore.Store) *AlertDispatcher {
	d := &AlertDispatcher{
		store:    store,
		workers:  3,
		jobQueue: make(chan notification.Alert, 100),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the real transport from main.go.
func (d *AlertDispatcher) SetPushProvider(provider PushProvider) {
	d.pushProvider = provider
}

// RegisterDevice upserts a push token into the user's device document.
func (d *AlertDispatcher) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return errors.New("device token is required")
	}

	devices := &notification.Devices{}
	err := d.store.Get(ctx, docstore.CollectionDevices, userID, devices)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	devices.UserID = userID

	for i, t := range devices.Tokens {
		if t.Token == req.Token {
			devices.Tokens[i].Platform = req.Platform
			devices.Tokens[i].Registered = time.Now()
			return d.store.Put(ctx, docstore.CollectionDevices, userID, devices)
		}
	}
	devices.Tokens = append(devices.Tokens, notification.DeviceToken{
		Token:      req.Token,
		Platform:   req.Platform,
		Registered: time.Now(),
	})
	return d.store.Put(ctx, docstore.CollectionDevices, userID, devices)
}

// Dispatch enqueues an alert for delivery.
func (d *AlertDispatcher) Dispatch(alert notification.Alert) {
	select {
	case d.jobQueue <- alert:
	default:
		log.Printf("Alert queue full, dropping alert for user %s", alert.UserID)
	}
}

func (d *AlertDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}

func (d *AlertDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *AlertDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case alert := <-d.jobQueue:
			d.deliver(alert)
		case <-d.stopChan:
			return
		}
	}
}

func (d *AlertDispatcher) deliver(alert notification.Alert) {
	if d.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	devices := &notification.Devices{}
	if err := d.store.Get(ctx, docstore.CollectionDevices, alert.UserID, devices); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			log.Printf("Failed to load devices for user %s: %v", alert.UserID, err)
		}
		return
	}
	if len(devices.Tokens) == 0 {
		return
	}

	if err := d.pushProvider.SendPush(ctx, devices.Tokens, alert.Title, alert.Body, alert.Data); err != nil {
		log.Printf("Push failed for user %s: %v", alert.UserID, err)
	}
}
