package mailer

import (
	"strings"
	"testing"

	"github.com/mentorhq/mentorhub/internal/app/system/notify"
)

func TestBuildNoticeEmail_SubjectFallback(t *testing.T) {
	e := BuildNoticeEmail(notify.Notice{Type: notify.TypeSlotBooked}, "http://localhost:3000")
	if e.Subject != "[MentorHub] A class slot was booked" {
		t.Errorf("subject: got %q", e.Subject)
	}

	e = BuildNoticeEmail(notify.Notice{Type: "something_new"}, "http://localhost:3000")
	if e.Subject != "[MentorHub] Notification" {
		t.Errorf("unknown type subject: got %q", e.Subject)
	}

	e = BuildNoticeEmail(notify.Notice{Type: notify.TypeSlotBooked, Subject: "Sam booked Tuesday 10:00"}, "http://localhost:3000")
	if e.Subject != "[MentorHub] Sam booked Tuesday 10:00" {
		t.Errorf("explicit subject: got %q", e.Subject)
	}
}

func TestBuildNoticeEmail_PreviewSanitized(t *testing.T) {
	e := BuildNoticeEmail(notify.Notice{
		Type:    notify.TypeMeetingRequested,
		Preview: `<script>alert(1)</script>need <b>help</b> with limits`,
	}, "http://localhost:3000")

	if strings.Contains(e.HTMLBody, "<script>") || strings.Contains(e.HTMLBody, "<b>") {
		t.Error("markup leaked into HTML body")
	}
	if !strings.Contains(e.TextBody, "need help with limits") {
		t.Errorf("sanitized preview missing from text body: %q", e.TextBody)
	}
}

func TestBuildNoticeEmail_PreviewTruncated(t *testing.T) {
	long := strings.Repeat("a", 400)
	e := BuildNoticeEmail(notify.Notice{Type: notify.TypeMeetingRequested, Preview: long}, "http://localhost:3000")

	want := strings.Repeat("a", previewMax) + "…"
	if !strings.Contains(e.TextBody, want) {
		t.Error("long preview not truncated with ellipsis")
	}
	if strings.Contains(e.TextBody, strings.Repeat("a", previewMax+1)) {
		t.Error("preview exceeds the cap")
	}
}

func TestBuildNoticeEmail_LinkFallback(t *testing.T) {
	e := BuildNoticeEmail(notify.Notice{
		Type: notify.TypeMeetingLink,
		Link: "http://localhost:3000/meetings/abc",
	}, "http://localhost:3000")
	if !strings.Contains(e.TextBody, "Open: http://localhost:3000/meetings/abc") {
		t.Errorf("notice link missing: %q", e.TextBody)
	}

	e = BuildNoticeEmail(notify.Notice{Type: notify.TypeMeetingLink}, "http://localhost:3000")
	if !strings.Contains(e.TextBody, "Open: http://localhost:3000") {
		t.Errorf("base url fallback missing: %q", e.TextBody)
	}
	if !strings.Contains(e.HTMLBody, `href="http://localhost:3000"`) {
		t.Error("base url fallback missing from HTML body")
	}
}

func TestTrimPreview(t *testing.T) {
	if got := trimPreview("  hello  "); got != "hello" {
		t.Errorf("trim: got %q", got)
	}
	if got := trimPreview(""); got != "" {
		t.Errorf("empty: got %q", got)
	}
}
