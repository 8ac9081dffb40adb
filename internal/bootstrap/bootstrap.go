package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	accountinadapter "yuki/internal/modules/account/adapter/in"
	accountoutadapter "yuki/internal/modules/account/adapter/out"
	accountservice "yuki/internal/modules/account/service"
	accountusecase "yuki/internal/modules/account/usecase"
	scoreinadapter "yuki/internal/modules/score/adapter/in"
	scoreoutadapter "yuki/internal/modules/score/adapter/out"
	scoreservice "yuki/internal/modules/score/service"
	scoreusecase "yuki/internal/modules/score/usecase"
	sessioninadapter "yuki/internal/modules/session/adapter/in"
	sessionoutadapter "yuki/internal/modules/session/adapter/out"
	sessionout "yuki/internal/modules/session/port/out"
	sessionservice "yuki/internal/modules/session/service"
	sessionusecase "yuki/internal/modules/session/usecase"
	"yuki/internal/platform/clock"
	"yuki/internal/platform/config"
	"yuki/internal/platform/httpjson"
	"yuki/internal/platform/id"
	"yuki/internal/platform/logging"
	"yuki/internal/platform/loop"
	"yuki/internal/platform/telemetry"
	uilink "yuki/internal/ui/link"
)

const serviceName = "yuki"

type Options struct {
	// LogWriter replaces the console writer on stderr.
	LogWriter io.Writer
	// HTTPClient replaces the default transport client.
	HTTPClient *http.Client
}

type App struct {
	Config     config.Config
	Log        zerolog.Logger
	Loop       *loop.Loop
	Timeline   *clock.Manual
	AccountCLI accountinadapter.CLIHandler
	ScoreCLI   scoreinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler

	shutdownTracing func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	log := logging.New(cfg.LogLevel, opts.LogWriter)
	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	clk := clock.SystemClock{}
	// Session tracking follows the replayed timeline, not wall time.
	timeline := clock.NewManual(clk.Now())
	lp := loop.New()
	client := httpjson.New(cfg.ServerURL, cfg.RequestTimeout, opts.HTTPClient)

	credentials, err := accountoutadapter.NewSQLiteCredentialStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new credential store: %w", err)
	}
	accountUC := accountusecase.NewInteractor(accountservice.NewLinkService(
		credentials,
		accountoutadapter.NewHTTPLinkVerifier(client),
		lp,
		logging.Component(log, "link"),
	))

	history, err := scoreoutadapter.NewSQLiteSubmissionLog(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new submission log: %w", err)
	}
	scoreUC := scoreusecase.NewInteractor(scoreservice.NewSubmissionService(
		scoreoutadapter.NewAccountCredentialAdapter(accountUC),
		scoreoutadapter.NewStaticIdentity(cfg.GDAccountID, cfg.GDUsername),
		scoreoutadapter.NewHTTPScoreSender(client),
		history,
		lp,
		clk,
		logging.Component(log, "score"),
	))

	var journal sessionout.Journal
	if cfg.Journal {
		journal = sessionoutadapter.NewMarkdownJournal(cfg.DataDir)
	}
	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(
		timeline,
		id.RandomHex{},
		sessionoutadapter.NewScoreSubmitterAdapter(scoreUC),
		sessionoutadapter.NewConfigSettings(cfg),
		sessionoutadapter.NewAccountLinkStatus(accountUC),
		journal,
		logging.Component(log, "session"),
	))

	return &App{
		Config:          cfg,
		Log:             log,
		Loop:            lp,
		Timeline:        timeline,
		AccountCLI:      accountinadapter.NewCLIHandler(accountUC, lp),
		ScoreCLI:        scoreinadapter.NewCLIHandler(scoreUC),
		SessionCLI:      sessioninadapter.NewCLIHandler(sessionUC, lp, timeline),
		shutdownTracing: shutdown,
	}, nil
}

// Start runs the owning loop until ctx is done.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Loop.Run(ctx) }()
}

// Close stops the loop and flushes traces.
func (a *App) Close(ctx context.Context) error {
	a.Loop.Stop()
	return a.shutdownTracing(ctx)
}

func RunTUI(ctx context.Context, app *App) error {
	model := uilink.NewModel(ctx, app.AccountCLI, app.Config.GDAccountID, app.Config.GDUsername, app.Config.ServerURL)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
