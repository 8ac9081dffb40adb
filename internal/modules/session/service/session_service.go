package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"yuki/internal/modules/session/domain"
	sessionout "yuki/internal/modules/session/port/out"
	"yuki/internal/platform/clock"
	"yuki/internal/platform/id"
	"yuki/internal/platform/task"
)

// SessionService applies the submission policy to tracker events and hands
// accepted records to the submitter. It runs on the owning loop.
type SessionService struct {
	clock     clock.Clock
	idGen     id.Generator
	submitter sessionout.ScoreSubmitter
	settings  sessionout.SettingsSource
	link      sessionout.LinkStatus
	journal   sessionout.Journal
	log       zerolog.Logger

	outstanding []*task.Handle
}

// NewSessionService wires the service. journal may be nil to skip notes.
func NewSessionService(
	clk clock.Clock,
	idGen id.Generator,
	submitter sessionout.ScoreSubmitter,
	settings sessionout.SettingsSource,
	link sessionout.LinkStatus,
	journal sessionout.Journal,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		clock:     clk,
		idGen:     idGen,
		submitter: submitter,
		settings:  settings,
		link:      link,
		journal:   journal,
		log:       log,
	}
}

func (s *SessionService) Start(level domain.Level, practice bool) *domain.Session {
	session := domain.Start(s.idGen.New(), level, practice, s.clock.Now(), domain.MinSecondsBetweenSubmits)
	s.log.Debug().Str("session", session.ID()).Int("level", level.ID).Bool("practice", practice).Msg("session started")
	return session
}

// AttemptEnd closes the current attempt and reports the death when the
// policy allows it.
func (s *SessionService) AttemptEnd(ctx context.Context, session *domain.Session) (incremented bool, death int, submitted bool, err error) {
	incremented, death = session.OnAttemptEnd()
	if !incremented {
		return false, death, false, nil
	}
	settings, err := s.currentSettings(ctx)
	if err != nil {
		return true, death, false, err
	}
	now := s.clock.Now()
	if !domain.ShouldSubmitDeath(session, death, settings, now) {
		return true, death, false, nil
	}
	session.MarkSubmitted(now)
	submitted = s.submit(ctx, domain.DeathRecord(session, death))
	if submitted {
		s.log.Debug().Str("session", session.ID()).Int("percentage", death).Msg("death reported")
	}
	return true, death, submitted, nil
}

// Outcome reports a pass or fail of the whole level. Outcomes are not rate
// limited.
func (s *SessionService) Outcome(ctx context.Context, session *domain.Session, passed bool) (bool, error) {
	settings, err := s.currentSettings(ctx)
	if err != nil {
		return false, err
	}
	if !domain.ShouldSubmitOutcome(session, passed, settings) {
		return false, nil
	}
	session.MarkSubmitted(s.clock.Now())
	return s.submit(ctx, domain.OutcomeRecord(session, passed)), nil
}

// End summarises the session and writes its journal note. The returned
// handles are the submissions still in flight.
func (s *SessionService) End(ctx context.Context, session *domain.Session, endedBy string) (domain.Summary, string, []*task.Handle, error) {
	summary := session.Summarize(s.clock.Now(), endedBy)
	pending := s.pending()
	s.log.Debug().Str("session", session.ID()).Str("ended_by", endedBy).Int("attempts", summary.Attempts).Msg("session ended")
	if s.journal == nil {
		return summary, "", pending, nil
	}
	path, err := s.journal.Save(ctx, summary)
	if err != nil {
		return summary, "", pending, fmt.Errorf("save session journal: %w", err)
	}
	return summary, path, pending, nil
}

func (s *SessionService) currentSettings(ctx context.Context) (domain.Settings, error) {
	autoSubmit, submitFails, err := s.settings.SubmitSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read submit settings: %w", err)
	}
	linked, err := s.link.Linked(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read link state: %w", err)
	}
	return domain.Settings{AutoSubmit: autoSubmit, SubmitFails: submitFails, Linked: linked}, nil
}

// submit never fails the caller: a rejected hand-off is logged and the
// record is dropped.
func (s *SessionService) submit(ctx context.Context, record domain.ScoreRecord) bool {
	h, err := s.submitter.Submit(ctx, record)
	if err != nil {
		s.log.Warn().Err(err).Int("level", record.LevelID).Msg("score not queued")
		return false
	}
	s.outstanding = append(s.pending(), h)
	return true
}

func (s *SessionService) pending() []*task.Handle {
	kept := s.outstanding[:0]
	for _, h := range s.outstanding {
		select {
		case <-h.Done():
		default:
			kept = append(kept, h)
		}
	}
	s.outstanding = kept
	return append([]*task.Handle(nil), kept...)
}
