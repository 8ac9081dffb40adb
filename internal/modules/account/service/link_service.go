package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"yuki/internal/modules/account/domain"
	accountout "yuki/internal/modules/account/port/out"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

// LinkService owns the process-wide LinkState and the single link request
// slot. A second request while one is in flight is rejected, not queued.
// The state is cached after the first load; deaths read it on the loop.
type LinkService struct {
	store    accountout.CredentialStore
	verifier accountout.LinkVerifier
	poster   task.Poster
	log      zerolog.Logger

	mu       sync.Mutex
	inflight *task.Handle
	cached   *domain.LinkState
}

func NewLinkService(store accountout.CredentialStore, verifier accountout.LinkVerifier, poster task.Poster, log zerolog.Logger) *LinkService {
	return &LinkService{store: store, verifier: verifier, poster: poster, log: log}
}

type verifyOutcome struct {
	resp    domain.VerifyResponse
	err     error
	saveErr error
}

func (s *LinkService) RequestLink(ctx context.Context, req domain.VerifyRequest, onResult func(domain.Result)) (*task.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		return nil, apperrors.ErrLinkInProgress
	}
	h := task.New(ctx)
	s.inflight = h

	task.Start(h, s.poster, func(ctx context.Context) verifyOutcome {
		resp, err := s.verifier.Verify(ctx, req)
		out := verifyOutcome{resp: resp, err: err}
		if err == nil && resp.HTTPOK && resp.Success {
			// The server already rotated the token; keep it even if the
			// player closed the popup meanwhile.
			state := domain.LinkState{AuthToken: resp.AuthToken, DisplayName: resp.DisplayName}
			out.saveErr = s.store.Save(context.WithoutCancel(ctx), state)
			if out.saveErr == nil {
				s.remember(state)
			}
		}
		return out
	}, func(out verifyOutcome) {
		s.mu.Lock()
		s.inflight = nil
		s.mu.Unlock()
		onResult(s.resolve(out))
	})
	return h, nil
}

func (s *LinkService) resolve(out verifyOutcome) domain.Result {
	switch {
	case errors.Is(out.err, apperrors.ErrNetworkCancelled):
		s.log.Warn().Msg("link request cancelled")
		return domain.Result{Message: domain.MsgRequestCancelled}
	case out.err != nil:
		s.log.Error().Err(out.err).Msg("link request failed")
		return domain.Result{Message: domain.MsgRequestFailed}
	case !out.resp.HTTPOK:
		s.log.Warn().Str("error", out.resp.Error).Msg("link request rejected")
		return domain.Result{Message: orDefault(out.resp.Error, domain.MsgRequestFailed)}
	case !out.resp.Success:
		s.log.Warn().Str("error", out.resp.Error).Msg("link code not accepted")
		return domain.Result{Message: orDefault(out.resp.Error, domain.MsgUnknownError)}
	case out.saveErr != nil:
		s.log.Error().Err(out.saveErr).Msg("save credentials")
		return domain.Result{Message: domain.MsgSaveFailed}
	}
	s.log.Info().Str("discord_username", out.resp.DisplayName).Msg("account linked")
	return domain.Result{Success: true, Message: out.resp.DisplayName}
}

func (s *LinkService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

func (s *LinkService) Unlink(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.remember(domain.LinkState{})
	s.log.Info().Msg("account unlinked")
	return nil
}

func (s *LinkService) State(ctx context.Context) (domain.LinkState, error) {
	s.mu.Lock()
	if s.cached != nil {
		state := *s.cached
		s.mu.Unlock()
		return state, nil
	}
	s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.LinkState{}, err
	}
	s.mu.Lock()
	if s.cached == nil {
		s.cached = &state
	}
	state = *s.cached
	s.mu.Unlock()
	return state, nil
}

func (s *LinkService) remember(state domain.LinkState) {
	s.mu.Lock()
	s.cached = &state
	s.mu.Unlock()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
