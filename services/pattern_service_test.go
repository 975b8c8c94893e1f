package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lifeTrackAPI/internal/checkin"
	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/notification"
	"lifeTrackAPI/internal/pattern"
)

type fakePushProvider struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakePushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, title)
	return nil
}

func (f *fakePushProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func newTestPatternStack(day string) (*PatternService, *AlertDispatcher, *CheckInService, docstore.Store) {
	store := docstore.NewMemoryStore()
	statsService := NewStatsService(store)
	habitService := NewHabitService(store, statsService)
	habitService.now = fixedNow(day)
	checkInService := NewCheckInService(store, statsService)
	checkInService.now = fixedNow(day)
	financeService := NewFinanceService(store)
	financeService.now = fixedNow(day)
	dispatcher := NewAlertDispatcher(store)
	patternService := NewPatternService(store, habitService, financeService, dispatcher)
	return patternService, dispatcher, checkInService, store
}

func TestDetectFindsLowMoodPattern(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher, checkIns, _ := newTestPatternStack("2024-03-10")
	defer dispatcher.Stop()

	ref, _ := dates.ParseDay("2024-03-10")
	for _, d := range []string{"2024-03-08", "2024-03-09", "2024-03-10"} {
		if _, err := checkIns.Upsert(ctx, "u1", &checkin.UpsertCheckInRequest{Date: d, Mood: 1, Energy: 3}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	detected, err := svc.Detect(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	var mood *pattern.Detected
	for i := range detected {
		if detected[i].Category == pattern.CategoryMood {
			mood = &detected[i]
		}
	}
	if mood == nil {
		t.Fatal("Expected a mood pattern")
	}
	if mood.Type != pattern.TypeNegative || mood.ConsecutiveDays != 3 {
		t.Errorf("Unexpected mood pattern: %+v", mood)
	}
}

func TestDetectReturnsEmptySliceNotNil(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher, checkIns, _ := newTestPatternStack("2024-03-10")
	defer dispatcher.Stop()

	for _, d := range dates.TrailingWindow(mustDay("2024-03-10"), 7) {
		if _, err := checkIns.Upsert(ctx, "u1", &checkin.UpsertCheckInRequest{Date: d, Mood: 3, Energy: 3}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	detected, err := svc.Detect(ctx, "u1", mustDay("2024-03-10"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if detected == nil {
		t.Error("Expected empty slice, got nil")
	}
}

func TestHighSeverityNegativeAlertsAreDispatched(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher, checkIns, store := newTestPatternStack("2024-03-10")
	defer dispatcher.Stop()

	provider := &fakePushProvider{}
	dispatcher.SetPushProvider(provider)
	if err := dispatcher.RegisterDevice(ctx, "u1", &notification.RegisterDeviceRequest{Token: "tok-1", Platform: "ios"}); err != nil {
		t.Fatalf("RegisterDevice failed: %v", err)
	}

	// Five consecutive low-mood days: high severity.
	for _, d := range []string{"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10"} {
		if _, err := checkIns.Upsert(ctx, "u1", &checkin.UpsertCheckInRequest{Date: d, Mood: 1, Energy: 3}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	if _, err := svc.Detect(ctx, "u1", mustDay("2024-03-10")); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// Delivery is asynchronous; give the workers a moment.
	deadline := time.Now().Add(2 * time.Second)
	for provider.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if provider.count() == 0 {
		t.Error("Expected at least one push for a high-severity negative pattern")
	}

	// Devices doc round-trips through the store.
	devices := &notification.Devices{}
	if err := store.Get(ctx, docstore.CollectionDevices, "u1", devices); err != nil {
		t.Fatalf("Get devices failed: %v", err)
	}
	if len(devices.Tokens) != 1 || devices.Tokens[0].Token != "tok-1" {
		t.Errorf("Unexpected devices doc: %+v", devices)
	}
}

func mustDay(s string) time.Time {
	t, err := dates.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
