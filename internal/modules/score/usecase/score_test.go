package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	scoreout "yuki/internal/modules/score/adapter/out"
	scoredto "yuki/internal/modules/score/dto"
	scorein "yuki/internal/modules/score/port/in"
	"yuki/internal/modules/score/service"
	"yuki/internal/modules/score/usecase"
	"yuki/internal/platform/clock"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/httpjson"
	"yuki/internal/platform/loop"
	"yuki/internal/platform/task"
)

type fakeCreds struct{ token string }

func (f fakeCreds) AuthToken(context.Context) (string, error) { return f.token, nil }

type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *recorder) add(body map[string]any) {
	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.mu.Unlock()
}

func (r *recorder) all() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.bodies...)
}

func newUsecase(t *testing.T, token string, handler http.HandlerFunc) (scorein.Usecase, *loop.Loop) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	history, err := scoreout.NewSQLiteSubmissionLog(filepath.Join(t.TempDir(), "yuki.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	lp := loop.New()
	svc := service.NewSubmissionService(
		fakeCreds{token: token},
		scoreout.NewStaticIdentity(12345, "RobTop"),
		scoreout.NewHTTPScoreSender(httpjson.New(srv.URL, 5*time.Second, srv.Client())),
		history,
		lp,
		clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		zerolog.Nop(),
	)
	return usecase.NewInteractor(svc), lp
}

func waitAll(t *testing.T, lp *loop.Loop, handles ...*task.Handle) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for _, h := range handles {
		for {
			lp.RunPending()
			select {
			case <-h.Done():
			default:
				if time.Now().After(deadline) {
					t.Fatalf("timed out waiting for submission")
				}
				time.Sleep(time.Millisecond)
				continue
			}
			break
		}
	}
}

func TestSubmitPostsFullPayload(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	uc, lp := newUsecase(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scores" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.add(body)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	h, err := uc.Submit(context.Background(), scoredto.SubmitInput{
		SessionID: "sess-1", LevelID: 128, LevelName: "1st level", LevelCreator: "RobTop",
		Percentage: 10, Attempts: 1, Coins: []bool{true, false, true},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitAll(t, lp, h)

	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("expected one request, got %d", len(bodies))
	}
	b := bodies[0]
	if b["auth_token"] != "tok" || b["gd_account_id"] != float64(12345) || b["gd_username"] != "RobTop" {
		t.Fatalf("missing credentials/identity: %v", b)
	}
	if b["level_id"] != float64(128) || b["percentage"] != float64(10) || b["attempts"] != float64(1) || b["passed"] != false || b["is_practice"] != false {
		t.Fatalf("unexpected record fields: %v", b)
	}
	coins, _ := b["coins_collected"].([]any)
	if len(coins) != 3 || coins[0] != true || coins[1] != false || coins[2] != true {
		t.Fatalf("coins order/length not preserved: %v", b["coins_collected"])
	}

	history, err := uc.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(history) != 1 || history[0].Status != "sent" || history[0].LevelName != "1st level" {
		t.Fatalf("unexpected history %+v", history)
	}
	if len(history[0].Coins) != 3 || history[0].Coins[1] {
		t.Fatalf("history coins lost: %+v", history[0].Coins)
	}
}

func TestSubmitWhileUnlinkedSendsNothing(t *testing.T) {
	t.Parallel()
	calls := 0
	uc, lp := newUsecase(t, "", func(http.ResponseWriter, *http.Request) { calls++ })
	h, err := uc.Submit(context.Background(), scoredto.SubmitInput{LevelID: 1, Percentage: 50})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitAll(t, lp, h)
	if calls != 0 {
		t.Fatalf("expected no request while unlinked, got %d", calls)
	}
	history, _ := uc.Recent(context.Background(), 0)
	if len(history) != 1 || history[0].Status != "skipped" {
		t.Fatalf("expected skipped entry, got %+v", history)
	}
}

func TestSubmissionsAreSerialisedInOrder(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	var active, maxActive int
	var mu sync.Mutex
	uc, lp := newUsecase(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		time.Sleep(10 * time.Millisecond)
		rec.add(body)
		mu.Lock()
		active--
		mu.Unlock()
	})

	var handles []*task.Handle
	for _, pct := range []int{20, 35, 100} {
		h, err := uc.Submit(context.Background(), scoredto.SubmitInput{LevelID: 7, Percentage: pct, Passed: pct == 100})
		if err != nil {
			t.Fatalf("submit %d: %v", pct, err)
		}
		handles = append(handles, h)
	}
	if uc.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", uc.Pending())
	}
	waitAll(t, lp, handles...)

	bodies := rec.all()
	if len(bodies) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(bodies))
	}
	for i, want := range []float64{20, 35, 100} {
		if bodies[i]["percentage"] != want {
			t.Fatalf("request %d: expected %v, got %v", i, want, bodies[i]["percentage"])
		}
	}
	if maxActive != 1 {
		t.Fatalf("expected one request in flight at a time, saw %d", maxActive)
	}
	if uc.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", uc.Pending())
	}
}

func TestServerErrorAndCancellationAreRecorded(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	uc, lp := newUsecase(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["percentage"] == float64(99) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Invalid auth token"}`))
	})
	t.Cleanup(func() { close(release) })

	failed, err := uc.Submit(context.Background(), scoredto.SubmitInput{LevelID: 3, Percentage: 40})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitAll(t, lp, failed)

	cancelled, err := uc.Submit(context.Background(), scoredto.SubmitInput{LevelID: 3, Percentage: 99})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancelled.Cancel()
	waitAll(t, lp, cancelled)

	history, _ := uc.Recent(context.Background(), 10)
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %+v", history)
	}
	if history[0].Status != "cancelled" {
		t.Fatalf("expected newest entry cancelled, got %+v", history[0])
	}
	if history[1].Status != "failed" || history[1].Detail == "" {
		t.Fatalf("expected failed entry with detail, got %+v", history[1])
	}
}

func TestSubmitRejectsBadInputAndFullQueue(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	uc, _ := newUsecase(t, "tok", func(http.ResponseWriter, *http.Request) { <-release })
	t.Cleanup(func() { close(release) })
	ctx := context.Background()

	for _, in := range []scoredto.SubmitInput{
		{LevelID: 1, Percentage: 101},
		{LevelID: 1, Percentage: -1},
		{LevelID: 1, Attempts: -1},
		{Percentage: 10},
	} {
		if _, err := uc.Submit(ctx, in); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", in, err)
		}
	}

	// One in flight plus a full queue behind it.
	for i := 0; i < 33; i++ {
		if _, err := uc.Submit(ctx, scoredto.SubmitInput{LevelID: 1, Percentage: 10}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if _, err := uc.Submit(ctx, scoredto.SubmitInput{LevelID: 1, Percentage: 10}); !errors.Is(err, apperrors.ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
}
