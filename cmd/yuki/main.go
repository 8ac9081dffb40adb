package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"yuki/internal/bootstrap"
	sessionin "yuki/internal/modules/session/adapter/in"
	"yuki/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "yuki",
		Short:         "Level session tracking and score reporting for Yuki",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: user config dir/yuki)")

	root.AddCommand(newLinkCmd(&dataDir))
	root.AddCommand(newUnlinkCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newPlayCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newConfigCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	return root
}

func resolveDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(base, "yuki"), nil
}

func loadConfig(dataDir string) (config.Config, error) {
	dir, err := resolveDataDir(dataDir)
	if err != nil {
		return config.Config{}, err
	}
	return config.New(dir)
}

// withApp builds the app, runs its loop for the duration of fn and shuts it
// down afterwards. The loop outlives an interrupt so a cancelled request can
// still deliver its result.
func withApp(ctx context.Context, dataDir string, fn func(*bootstrap.App) error) error {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.Start(loopCtx)
	runErr := fn(app)
	cancel()
	closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return errors.Join(runErr, app.Close(closeCtx))
}

func newLinkCmd(dataDir *string) *cobra.Command {
	var accountID int
	var username string
	cmd := &cobra.Command{
		Use:   "link <code>",
		Short: "Link this player to a Discord account with a 6-character code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				code, err := app.AccountCLI.NormalizeCode(args[0])
				if err != nil {
					return err
				}
				id, name := app.Config.GDAccountID, app.Config.GDUsername
				if accountID != 0 {
					id = accountID
				}
				if username != "" {
					name = username
				}
				out, err := app.AccountCLI.Link(cmd.Context(), code, id, name)
				if err != nil {
					return err
				}
				if !out.Success {
					return fmt.Errorf("link failed: %s", out.Message)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "linked to %s\n", out.Message)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&accountID, "account-id", 0, "game account id (default: gd_account_id from config)")
	cmd.Flags().StringVar(&username, "username", "", "game username (default: gd_username from config)")
	return cmd
}

func newUnlinkCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Forget the linked account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				if err := app.AccountCLI.Unlink(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "unlinked")
				return nil
			})
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show link state and submission settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				state, err := app.AccountCLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if state.Linked {
					_, _ = fmt.Fprintf(w, "linked: %s\n", state.DisplayName)
				} else {
					_, _ = fmt.Fprintln(w, "linked: no")
				}
				cfg := app.Config
				_, _ = fmt.Fprintf(w, "server: %s\nauto-submit: %t\nsubmit-fails: %t\njournal: %t\n", cfg.ServerURL, cfg.AutoSubmit, cfg.SubmitFails, cfg.Journal)
				_, _ = fmt.Fprintf(w, "game account: %d %s\n", cfg.GDAccountID, cfg.GDUsername)
				return nil
			})
		},
	}
}

func newPlayCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <script.yaml>",
		Short: "Replay a recorded level session and report it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			script, err := sessionin.ParseScript(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				res, err := app.SessionCLI.Play(cmd.Context(), script)
				w := cmd.OutOrStdout()
				for _, e := range res.Events {
					_, _ = fmt.Fprintf(w, "%8s  %-10s %s\n", e.At, e.Kind, e.Detail)
				}
				if err != nil {
					return err
				}
				s := res.Exit.Session
				_, _ = fmt.Fprintf(w, "session %s level=%d attempts=%d best=%d%% completed=%t reports=%d ended_by=%s\n",
					s.SessionID, s.LevelID, s.Attempts, s.Best, s.Completed, s.Reports, res.Exit.EndedBy)
				if res.Exit.JournalPath != "" {
					_, _ = fmt.Fprintf(w, "journal: %s\n", res.Exit.JournalPath)
				}
				return nil
			})
		},
	}
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent score submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				entries, err := app.ScoreCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, e := range entries {
					result := "fail"
					if e.Passed {
						result = "pass"
					}
					if e.Practice {
						result += " (practice)"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%d%%\t%d attempts\t%s\t%s\t%s\n",
						e.SubmittedAt.Format(time.DateTime), e.LevelID, e.LevelName, e.Percentage, e.Attempts, result, coinRow(e.Coins), e.Status)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries")
	return cmd
}

func coinRow(coins []bool) string {
	marks := make([]string, len(coins))
	for i, c := range coins {
		marks[i] = "o"
		if c {
			marks[i] = "x"
		}
	}
	return "[" + strings.Join(marks, "") + "]"
}

func newConfigCmd(dataDir *string) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Read and change settings"}
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting (auto-submit, submit-fails, journal, server_url, gd_account_id, gd_username, log_level)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveDataDir(*dataDir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.Path(dir))
			return nil
		},
	}
	cfgCmd.AddCommand(set, path)
	return cfgCmd
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the account link popup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(cmd.Context(), app)
			})
		},
	}
}
