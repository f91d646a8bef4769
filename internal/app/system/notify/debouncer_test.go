package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/testutil"
	"go.uber.org/zap"
)

func notice(recipient, scope, typ string) notify.Notice {
	return notify.Notice{
		RecipientID: recipient,
		Email:       recipient + "@example.com",
		Scope:       scope,
		Type:        typ,
		Subject:     "test",
	}
}

func TestDebouncer_SuppressesRepeats(t *testing.T) {
	rec := &testutil.RecordingNotifier{}
	d := notify.NewDebouncer(notify.NewMemory(time.Minute), rec, time.Minute, zap.NewNop())
	ctx := context.Background()

	d.Trigger(ctx, notice("u1", "thread1", notify.TypeSlotsPublished), false)
	d.Trigger(ctx, notice("u1", "thread1", notify.TypeSlotsPublished), false)

	if rec.Count() != 1 {
		t.Errorf("expected 1 dispatch, got %d", rec.Count())
	}
}

func TestDebouncer_DistinctKeysIndependent(t *testing.T) {
	rec := &testutil.RecordingNotifier{}
	d := notify.NewDebouncer(notify.NewMemory(time.Minute), rec, time.Minute, zap.NewNop())
	ctx := context.Background()

	d.Trigger(ctx, notice("u1", "thread1", notify.TypeSlotsPublished), false)
	d.Trigger(ctx, notice("u2", "thread1", notify.TypeSlotsPublished), false)
	d.Trigger(ctx, notice("u1", "thread2", notify.TypeSlotsPublished), false)
	d.Trigger(ctx, notice("u1", "thread1", notify.TypeSlotBooked), false)

	if rec.Count() != 4 {
		t.Errorf("expected 4 dispatches, got %d", rec.Count())
	}
}

func TestDebouncer_ForceBypassesAndRecords(t *testing.T) {
	rec := &testutil.RecordingNotifier{}
	d := notify.NewDebouncer(notify.NewMemory(time.Minute), rec, time.Minute, zap.NewNop())
	ctx := context.Background()

	n := notice("u1", "meeting1", notify.TypeMeetingLink)
	d.Trigger(ctx, n, true)
	d.Trigger(ctx, n, true)
	if rec.Count() != 2 {
		t.Fatalf("forced triggers: expected 2 dispatches, got %d", rec.Count())
	}

	// The forced send still stamps the window, so a following non-forced
	// trigger is suppressed.
	d.Trigger(ctx, n, false)
	if rec.Count() != 2 {
		t.Errorf("non-forced after force: expected 2 dispatches, got %d", rec.Count())
	}
}

func TestDebouncer_ZeroWindowDisables(t *testing.T) {
	rec := &testutil.RecordingNotifier{}
	d := notify.NewDebouncer(notify.NewMemory(time.Minute), rec, 0, zap.NewNop())
	ctx := context.Background()

	n := notice("u1", "thread1", notify.TypeSlotsPublished)
	d.Trigger(ctx, n, false)
	d.Trigger(ctx, n, false)
	d.Trigger(ctx, n, false)

	if rec.Count() != 3 {
		t.Errorf("expected 3 dispatches, got %d", rec.Count())
	}
}

func TestDebouncer_DispatchFailureSwallowed(t *testing.T) {
	rec := &testutil.RecordingNotifier{Fail: true}
	d := notify.NewDebouncer(notify.NewMemory(time.Minute), rec, time.Minute, zap.NewNop())

	// Must not panic or propagate anything.
	d.Trigger(context.Background(), notice("u1", "thread1", notify.TypeSlotBooked), false)

	if rec.Count() != 0 {
		t.Errorf("failing notifier recorded %d notices", rec.Count())
	}
}

func TestMemoryStore_ClaimOnce(t *testing.T) {
	store := notify.NewMemory(time.Minute)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = store.Claim(ctx, "k", time.Minute)
	if err != nil || ok {
		t.Fatalf("second claim: ok=%v err=%v", ok, err)
	}
	ok, err = store.Claim(ctx, "other", time.Minute)
	if err != nil || !ok {
		t.Fatalf("unrelated key: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_WindowExpires(t *testing.T) {
	store := notify.NewMemory(50 * time.Millisecond)
	ctx := context.Background()

	if ok, _ := store.Claim(ctx, "k", 50*time.Millisecond); !ok {
		t.Fatal("first claim lost")
	}
	time.Sleep(120 * time.Millisecond)
	if ok, _ := store.Claim(ctx, "k", 50*time.Millisecond); !ok {
		t.Error("claim after expiry lost")
	}
}
