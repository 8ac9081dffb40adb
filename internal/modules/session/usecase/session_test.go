package usecase_test

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	sessionout "yuki/internal/modules/session/adapter/out"
	"yuki/internal/modules/session/domain"
	sessiondto "yuki/internal/modules/session/dto"
	sessionin "yuki/internal/modules/session/port/in"
	"yuki/internal/modules/session/service"
	"yuki/internal/modules/session/usecase"
	"yuki/internal/platform/clock"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type fakeSubmitter struct {
	records []domain.ScoreRecord
	err     error
	open    bool
}

func (f *fakeSubmitter) Submit(_ context.Context, record domain.ScoreRecord) (*task.Handle, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, record)
	if f.open {
		return task.New(context.Background()), nil
	}
	return task.Resolved(), nil
}

type fakeSettings struct {
	autoSubmit  bool
	submitFails bool
}

func (f fakeSettings) SubmitSettings(context.Context) (bool, bool, error) {
	return f.autoSubmit, f.submitFails, nil
}

type fakeLink struct{ linked bool }

func (f fakeLink) Linked(context.Context) (bool, error) { return f.linked, nil }

type harness struct {
	uc        sessionin.Usecase
	clock     *clock.Manual
	submitter *fakeSubmitter
	dir       string
}

func newHarness(t *testing.T, settings fakeSettings, linked bool) harness {
	t.Helper()
	dir := t.TempDir()
	clk := clock.NewManual(t0)
	sub := &fakeSubmitter{}
	svc := service.NewSessionService(clk, fakeID{}, sub, settings, fakeLink{linked: linked}, sessionout.NewMarkdownJournal(dir), zerolog.Nop())
	return harness{uc: usecase.NewInteractor(svc), clock: clk, submitter: sub, dir: dir}
}

var allOn = fakeSettings{autoSubmit: true, submitFails: true}

func enter(t *testing.T, h harness, coins int, practice bool) {
	t.Helper()
	if _, err := h.uc.Enter(context.Background(), sessiondto.EnterInput{
		LevelID: 128, LevelName: "Stereo Madness", LevelCreator: "RobTop", CoinCount: coins, Practice: practice,
	}); err != nil {
		t.Fatalf("enter: %v", err)
	}
}

func TestDeathIsReportedWithSnapshot(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 3, false)

	_ = h.uc.Progress(ctx, 10)
	out, err := h.uc.AttemptEnd(ctx)
	if err != nil {
		t.Fatalf("attempt end: %v", err)
	}
	if !out.Incremented || !out.Submitted || out.Attempts != 1 || out.DeathPercentage != 10 {
		t.Fatalf("unexpected attempt output %+v", out)
	}
	if len(h.submitter.records) != 1 {
		t.Fatalf("expected one record, got %d", len(h.submitter.records))
	}
	got := h.submitter.records[0]
	want := domain.ScoreRecord{
		SessionID: "sess-1", LevelID: 128, LevelName: "Stereo Madness", LevelCreator: "RobTop",
		Percentage: 10, Attempts: 1, Coins: []bool{false, false, false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected record\n got %+v\nwant %+v", got, want)
	}
}

func TestLowDeathIsNotReported(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 3, false)
	_ = h.uc.Progress(ctx, 3)
	out, err := h.uc.AttemptEnd(ctx)
	if err != nil {
		t.Fatalf("attempt end: %v", err)
	}
	if out.Submitted || len(h.submitter.records) != 0 {
		t.Fatalf("death at 3%% must not be reported")
	}
	if out.Attempts != 1 {
		t.Fatalf("attempt must still be counted, got %d", out.Attempts)
	}
}

func TestDeathsAreRateLimited(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 0, false)

	die := func(pct int) bool {
		_ = h.uc.Progress(ctx, pct)
		out, err := h.uc.AttemptEnd(ctx)
		if err != nil {
			t.Fatalf("attempt end: %v", err)
		}
		return out.Submitted
	}
	if !die(20) {
		t.Fatalf("first death must be reported")
	}
	h.clock.Advance(2 * time.Second)
	if die(30) {
		t.Fatalf("death 2s later must be rate limited")
	}
	h.clock.Advance(3 * time.Second)
	if !die(40) {
		t.Fatalf("death once the window elapsed must be reported")
	}
	if len(h.submitter.records) != 2 || h.submitter.records[1].Attempts != 3 {
		t.Fatalf("unexpected records %+v", h.submitter.records)
	}
}

func TestPracticeReportsPassOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 1, true)

	_ = h.uc.Progress(ctx, 90)
	if out, _ := h.uc.AttemptEnd(ctx); out.Submitted {
		t.Fatalf("practice deaths must not be reported")
	}
	if out, _ := h.uc.ReportOutcome(ctx, false); out.Submitted {
		t.Fatalf("practice fails must not be reported")
	}
	_ = h.uc.Complete(ctx, 1)
	out, err := h.uc.ReportOutcome(ctx, true)
	if err != nil || !out.Submitted {
		t.Fatalf("practice pass must be reported, got %+v %v", out, err)
	}
	rec := h.submitter.records[0]
	if !rec.Passed || !rec.Practice || rec.Percentage != 100 || !reflect.DeepEqual(rec.Coins, []bool{true}) {
		t.Fatalf("unexpected pass record %+v", rec)
	}
}

func TestPassReportedOncePerSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 0, false)
	_ = h.uc.Complete(ctx, 0)
	first, _ := h.uc.ReportOutcome(ctx, true)
	second, _ := h.uc.ReportOutcome(ctx, true)
	if !first.Submitted || second.Submitted || len(h.submitter.records) != 1 {
		t.Fatalf("expected a single pass report, got %v %v %d", first.Submitted, second.Submitted, len(h.submitter.records))
	}
}

func TestNoDeathReportsAfterCompletion(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()
	enter(t, h, 0, false)
	_ = h.uc.Progress(ctx, 100)
	_ = h.uc.Complete(ctx, 0)
	h.clock.Advance(time.Minute)
	out, err := h.uc.AttemptEnd(ctx)
	if err != nil {
		t.Fatalf("attempt end: %v", err)
	}
	if out.Incremented || out.Submitted || out.Attempts != 0 {
		t.Fatalf("completed session must be terminal for deaths, got %+v", out)
	}
}

func TestUnlinkedOrDisabledReportsNothing(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		settings fakeSettings
		linked   bool
	}{
		"unlinked":         {allOn, false},
		"auto-submit off":  {fakeSettings{submitFails: true}, true},
		"submit-fails off": {fakeSettings{autoSubmit: true}, true},
	}
	for name, tc := range cases {
		h := newHarness(t, tc.settings, tc.linked)
		ctx := context.Background()
		enter(t, h, 0, false)
		_ = h.uc.Progress(ctx, 50)
		_, _ = h.uc.AttemptEnd(ctx)
		if len(h.submitter.records) != 0 {
			t.Fatalf("%s: death must not be reported", name)
		}
	}

	h := newHarness(t, fakeSettings{autoSubmit: true}, true)
	enter(t, h, 0, false)
	if out, _ := h.uc.ReportOutcome(context.Background(), true); !out.Submitted {
		t.Fatalf("submit-fails must not gate pass reports")
	}
}

func TestQueueRejectionIsSilent(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	h.submitter.err = apperrors.ErrQueueFull
	ctx := context.Background()
	enter(t, h, 0, false)
	_ = h.uc.Progress(ctx, 50)
	out, err := h.uc.AttemptEnd(ctx)
	if err != nil {
		t.Fatalf("a refused hand-off must not fail the hook: %v", err)
	}
	if out.Submitted {
		t.Fatalf("refused hand-off must not count as submitted")
	}
}

func TestLifecycleAndJournal(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	ctx := context.Background()

	if err := h.uc.Progress(ctx, 10); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	if _, err := h.uc.Enter(ctx, sessiondto.EnterInput{LevelID: 0}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for level 0, got %v", err)
	}
	enter(t, h, 2, false)
	if _, err := h.uc.Enter(ctx, sessiondto.EnterInput{LevelID: 1}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session exists, got %v", err)
	}
	active, err := h.uc.Active(ctx)
	if err != nil || active.SessionID != "sess-1" || active.State != "fresh" {
		t.Fatalf("unexpected active session %+v %v", active, err)
	}

	_ = h.uc.Progress(ctx, 42)
	_, _ = h.uc.AttemptEnd(ctx)
	h.clock.Advance(90 * time.Second)
	out, err := h.uc.Quit(ctx)
	if err != nil {
		t.Fatalf("quit: %v", err)
	}
	if out.EndedBy != domain.EndedByQuit || out.Session.Attempts != 1 || out.Session.Best != 42 {
		t.Fatalf("unexpected exit %+v", out)
	}
	if len(h.submitter.records) != 1 {
		t.Fatalf("quit must not report anything, got %d records", len(h.submitter.records))
	}
	if _, err := h.uc.Active(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("session must be gone after quit, got %v", err)
	}

	if !strings.HasPrefix(out.JournalPath, h.dir) || !strings.HasSuffix(out.JournalPath, "200000-stereo-madness.md") {
		t.Fatalf("unexpected journal path %s", out.JournalPath)
	}
	b, err := os.ReadFile(out.JournalPath)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	note := string(b)
	for _, want := range []string{"ended_by: quit", "attempts: 1", "best_percentage: 42", "reports: 1", "- Duration: 1m30s"} {
		if !strings.Contains(note, want) {
			t.Fatalf("journal missing %q:\n%s", want, note)
		}
	}
}

func TestExitReturnsOutstandingSubmissions(t *testing.T) {
	t.Parallel()
	h := newHarness(t, allOn, true)
	h.submitter.open = true
	ctx := context.Background()
	enter(t, h, 0, false)
	_ = h.uc.Progress(ctx, 50)
	_, _ = h.uc.AttemptEnd(ctx)
	out, err := h.uc.Exit(ctx)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if len(out.Outstanding) != 1 {
		t.Fatalf("expected one outstanding submission, got %d", len(out.Outstanding))
	}
	out.Outstanding[0].Cancel()
}
