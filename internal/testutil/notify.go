// internal/testutil/notify.go
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/mentorhq/mentorhub/internal/app/system/notify"
)

// RecordingNotifier captures dispatched notices for assertions. Safe for
// concurrent use. When Fail is set, Send returns an error so tests can
// check that dispatch failures stay swallowed.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
	Fail    bool
}

// Send records the notice.
func (r *RecordingNotifier) Send(_ context.Context, n notify.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return errors.New("dispatch failed")
	}
	r.notices = append(r.notices, n)
	return nil
}

// Notices returns a copy of everything sent so far.
func (r *RecordingNotifier) Notices() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many notices were dispatched.
func (r *RecordingNotifier) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}
