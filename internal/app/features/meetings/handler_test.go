package meetings_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhq/mentorhub/internal/app/features/meetings"
	meetingstore "github.com/mentorhq/mentorhub/internal/app/store/meetings"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/mentorhq/mentorhub/internal/domain/models"
	"github.com/mentorhq/mentorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testEnv struct {
	router   chi.Router
	fixtures *testutil.Fixtures
	recorder *testutil.RecordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	rec := &testutil.RecordingNotifier{}

	h := &meetings.Handler{
		Meetings: meetingstore.New(db, "meet.example.com"),
		Users:    userstore.New(db),
		Notify:   notify.NewDebouncer(notify.NewMemory(time.Minute), rec, time.Minute, zap.NewNop()),
		Log:      zap.NewNop(),
		BaseURL:  "http://localhost:3000",
	}

	r := chi.NewRouter()
	r.Mount("/meetings", meetings.Routes(h))
	return &testEnv{router: r, fixtures: testutil.NewFixtures(t, db), recorder: rec}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) pair(t *testing.T) (student, mentor models.User) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mentor = e.fixtures.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	student = e.fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	return student, mentor
}

func TestHandleRequest(t *testing.T) {
	env := newTestEnv(t)
	student, mentor := env.pair(t)

	rec := env.do(testutil.NewJSONRequest(t, http.MethodPost, "/meetings", map[string]any{
		"thread_id":  primitive.NewObjectID().Hex(),
		"student_id": student.ID.Hex(),
		"mentor_id":  mentor.ID.Hex(),
		"reason":     "stuck on derivatives",
		"timezone":   "UTC",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var m models.Meeting
	testutil.DecodeJSON(t, rec, &m)
	if m.Status != models.MeetingRequested {
		t.Errorf("status: %q", m.Status)
	}

	// The mentor hears about the request.
	if env.recorder.Count() != 1 {
		t.Fatalf("expected 1 notice, got %d", env.recorder.Count())
	}
	if n := env.recorder.Notices()[0]; n.Type != notify.TypeMeetingRequested || n.RecipientID != mentor.ID.Hex() || n.Email != "mia@example.com" {
		t.Errorf("notice: %+v", n)
	}
}

func TestMeetingLifecycleFlow(t *testing.T) {
	env := newTestEnv(t)
	student, mentor := env.pair(t)

	rec := env.do(testutil.NewJSONRequest(t, http.MethodPost, "/meetings", map[string]any{
		"thread_id":  primitive.NewObjectID().Hex(),
		"student_id": student.ID.Hex(),
		"mentor_id":  mentor.ID.Hex(),
		"reason":     "algebra",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("request: got %d", rec.Code)
	}
	var m models.Meeting
	testutil.DecodeJSON(t, rec, &m)
	base := "/meetings/" + m.ID.Hex()

	// Link before schedule conflicts.
	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/link",
		map[string]any{"actor_id": mentor.ID.Hex()}))
	if rec.Code != http.StatusConflict {
		t.Errorf("early link: got %d", rec.Code)
	}

	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/schedule", map[string]any{
		"actor_id":       mentor.ID.Hex(),
		"scheduled_time": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/link",
		map[string]any{"actor_id": mentor.ID.Hex()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("link: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &m)
	if m.Status != models.MeetingLinkSent || m.Link == "" {
		t.Errorf("after link: %+v", m)
	}

	// Both parties received the link.
	linkNotices := 0
	for _, n := range env.recorder.Notices() {
		if n.Type == notify.TypeMeetingLink {
			linkNotices++
		}
	}
	if linkNotices != 2 {
		t.Errorf("expected 2 link notices, got %d", linkNotices)
	}

	// Cancel after the link is out conflicts.
	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/cancel",
		map[string]any{"actor_id": student.ID.Hex()}))
	if rec.Code != http.StatusConflict {
		t.Errorf("cancel after link: got %d", rec.Code)
	}

	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/complete",
		map[string]any{"actor_id": mentor.ID.Hex()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d", rec.Code)
	}
	testutil.DecodeJSON(t, rec, &m)
	if m.Status != models.MeetingCompleted {
		t.Errorf("after complete: %q", m.Status)
	}
}

func TestHandleCancel_Outsider(t *testing.T) {
	env := newTestEnv(t)
	student, mentor := env.pair(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := env.fixtures.CreateMeeting(ctx, primitive.NewObjectID(), student.ID, mentor.ID, models.MeetingRequested)

	rec := env.do(testutil.NewJSONRequest(t, http.MethodPost, "/meetings/"+m.ID.Hex()+"/cancel",
		map[string]any{"actor_id": primitive.NewObjectID().Hex()}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider cancel: got %d", rec.Code)
	}
}

func TestRescheduleNegotiation(t *testing.T) {
	env := newTestEnv(t)
	student, mentor := env.pair(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := env.fixtures.CreateMeeting(ctx, primitive.NewObjectID(), student.ID, mentor.ID, models.MeetingScheduled)
	base := "/meetings/" + m.ID.Hex()

	proposed := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	rec := env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule", map[string]any{
		"requested_by":  student.ID.Hex(),
		"proposed_time": proposed.Format(time.RFC3339),
		"note":          "exam that day",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("propose: got %d, body %s", rec.Code, rec.Body.String())
	}

	// The proposer may not decide their own request.
	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule/0",
		map[string]any{"actor_id": student.ID.Hex(), "decision": "accepted"}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("self-resolve: got %d", rec.Code)
	}

	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule/0",
		map[string]any{"actor_id": mentor.ID.Hex(), "decision": "maybe"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad decision: got %d", rec.Code)
	}

	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule/0",
		map[string]any{"actor_id": mentor.ID.Hex(), "decision": "accepted"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resolved models.Meeting
	testutil.DecodeJSON(t, rec, &resolved)
	if resolved.ScheduledTime == nil || !resolved.ScheduledTime.Equal(proposed) {
		t.Errorf("scheduled_time: got %v, want %v", resolved.ScheduledTime, proposed)
	}

	// Second resolution of the same entry conflicts.
	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule/0",
		map[string]any{"actor_id": mentor.ID.Hex(), "decision": "rejected"}))
	if rec.Code != http.StatusConflict {
		t.Errorf("double resolve: got %d", rec.Code)
	}

	// Out-of-range entry index.
	rec = env.do(testutil.NewJSONRequest(t, http.MethodPost, base+"/reschedule/5",
		map[string]any{"actor_id": mentor.ID.Hex(), "decision": "accepted"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing entry: got %d", rec.Code)
	}
}

func TestServeList(t *testing.T) {
	env := newTestEnv(t)
	student, mentor := env.pair(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	env.fixtures.CreateMeeting(ctx, primitive.NewObjectID(), student.ID, mentor.ID, models.MeetingScheduled)
	env.fixtures.CreateMeeting(ctx, primitive.NewObjectID(), student.ID, mentor.ID, models.MeetingCancelled)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/meetings?student="+student.ID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var resp struct {
		Meetings []models.Meeting `json:"meetings"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Meetings) != 1 {
		t.Errorf("expected 1 upcoming meeting, got %d", len(resp.Meetings))
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/meetings", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no filter: got %d", rec.Code)
	}
}
