package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"yuki/internal/modules/score/domain"
	scoreout "yuki/internal/modules/score/port/out"
	"yuki/internal/platform/clock"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

// SubmissionService sends scores one at a time in submission order. Later
// submissions queue behind the one in flight so a pass reported right after
// a death is not lost.
type SubmissionService struct {
	creds    scoreout.CredentialSource
	identity scoreout.IdentitySource
	sender   scoreout.ScoreSender
	history  scoreout.SubmissionLog
	poster   task.Poster
	clock    clock.Clock
	log      zerolog.Logger

	mu       sync.Mutex
	queue    []job
	inflight bool
}

type job struct {
	handle *task.Handle
	record domain.Record
}

type outcome struct {
	entry      domain.Entry
	err        error
	historyErr error
}

func NewSubmissionService(
	creds scoreout.CredentialSource,
	identity scoreout.IdentitySource,
	sender scoreout.ScoreSender,
	history scoreout.SubmissionLog,
	poster task.Poster,
	clk clock.Clock,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		creds:    creds,
		identity: identity,
		sender:   sender,
		history:  history,
		poster:   poster,
		clock:    clk,
		log:      log,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, record domain.Record) (*task.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) >= domain.MaxPending {
		s.log.Warn().Int("level_id", record.LevelID).Msg("score dropped: submission queue full")
		return nil, apperrors.ErrQueueFull
	}
	h := task.New(ctx)
	s.queue = append(s.queue, job{handle: h, record: record})
	s.startNextLocked()
	return h, nil
}

// Pending counts queued submissions plus the one in flight.
func (s *SubmissionService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.queue)
	if s.inflight {
		n++
	}
	return n
}

func (s *SubmissionService) Recent(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.history.Recent(ctx, limit)
}

func (s *SubmissionService) startNextLocked() {
	if s.inflight || len(s.queue) == 0 {
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.inflight = true
	task.Start(next.handle, s.poster, func(ctx context.Context) outcome {
		return s.deliver(ctx, next.record)
	}, func(out outcome) {
		s.report(out)
		s.mu.Lock()
		s.inflight = false
		s.startNextLocked()
		s.mu.Unlock()
	})
}

// deliver runs off the loop: credential lookup, the POST and the history
// write are all I/O.
func (s *SubmissionService) deliver(ctx context.Context, record domain.Record) outcome {
	entry := domain.Entry{Record: record}
	err := s.send(ctx, record)
	switch {
	case err == nil:
		entry.Status = domain.StatusSent
	case errors.Is(err, apperrors.ErrNotLinked):
		entry.Status = domain.StatusSkipped
	case errors.Is(err, apperrors.ErrNetworkCancelled):
		entry.Status = domain.StatusCancelled
	default:
		entry.Status = domain.StatusFailed
	}
	if err != nil {
		entry.Detail = err.Error()
	}
	entry.SubmittedAt = s.clock.Now()
	return outcome{
		entry:      entry,
		err:        err,
		historyErr: s.history.Append(context.WithoutCancel(ctx), entry),
	}
}

func (s *SubmissionService) send(ctx context.Context, record domain.Record) error {
	token, err := s.creds.AuthToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return apperrors.ErrNotLinked
	}
	who, err := s.identity.Identity(ctx)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, domain.NewPayload(token, who, record))
}

func (s *SubmissionService) report(out outcome) {
	r := out.entry.Record
	ev := func(e *zerolog.Event) *zerolog.Event {
		return e.Int("level_id", r.LevelID).Int("percentage", r.Percentage).Int("attempts", r.Attempts).Bool("passed", r.Passed)
	}
	switch out.entry.Status {
	case domain.StatusSent:
		ev(s.log.Info()).Msg("score submitted")
	case domain.StatusSkipped:
		ev(s.log.Warn()).Msg("cannot submit score: account not linked")
	case domain.StatusCancelled:
		ev(s.log.Warn()).Msg("score submission cancelled")
	default:
		ev(s.log.Error()).Err(out.err).Msg("failed to submit score")
	}
	if out.historyErr != nil {
		s.log.Error().Err(out.historyErr).Msg("record submission history")
	}
}
