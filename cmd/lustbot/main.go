package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lustbot-widget/internal/backend"
	"lustbot-widget/internal/config"
	"lustbot-widget/internal/db"
	"lustbot-widget/internal/identity"
	"lustbot-widget/internal/lead"
	"lustbot-widget/internal/logging"
	"lustbot-widget/internal/server"
	"lustbot-widget/internal/store"
	"lustbot-widget/internal/tui"
	"lustbot-widget/internal/widget"
	"lustbot-widget/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "lustbot:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lustbot",
		Short:         "LustBot shopping assistant chat widget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCmd(), newServeCmd(), newRenderCmd(), newWhoamiCmd())
	return root
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with LustBot in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// The terminal belongs to the UI: log to a file or nowhere.
			log := logging.Discard()
			if cfg.Log.File != "" {
				var closer io.Closer
				log, closer, err = logging.Setup(cfg.Log.Level, cfg.Log.File)
				if err != nil {
					return err
				}
				defer closer.Close()
			}

			ids, closeIDs, err := openIdentityStore(cfg.Identity, log)
			if err != nil {
				return err
			}
			defer closeIDs()

			detector, err := lead.LoadDetector(cfg.Lead.PatternsFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			be := newBackend(ctx, cfg.Backend)
			surface := tui.NewSurface()
			w, err := widget.New(widget.Options{
				Backend:   be,
				Surface:   surface,
				UserID:    identity.GetOrCreateUserID(ids, log),
				Detector:  detector,
				LeadDelay: cfg.Lead.Delay,
				Logger:    log,
			})
			if err != nil {
				return err
			}
			log.Info().Str("user_id", w.UserID()).Str("backend", be.Endpoint()).Msg("chat session started")
			return tui.Run(ctx, w, surface)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat widget as a web page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}
			defer closer.Close()

			detector, err := lead.LoadDetector(cfg.Lead.PatternsFile)
			if err != nil {
				return err
			}

			be := newBackend(cmd.Context(), cfg.Backend)
			s := server.New(server.Options{
				Backend:       be,
				Detector:      detector,
				AllowedOrigin: cfg.Server.AllowedOrigin,
				SecureCookies: cfg.Server.SecureCookies,
				LeadDelay:     cfg.Lead.Delay,
				Logger:        log,
			})
			srv := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           s.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			log.Info().Str("addr", srv.Addr).Str("backend", be.Endpoint()).Msg("LustBot widget listening")
			return runServer(cmd.Context(), srv)
		},
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render a bot reply read from stdin as widget HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), widget.Message{Text: string(raw), Sender: widget.SenderBot}.HTML())
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the persisted user identifier, creating it if needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}
			defer closer.Close()

			ids, closeIDs, err := openIdentityStore(cfg.Identity, log)
			if err != nil {
				return err
			}
			defer closeIDs()

			fmt.Fprintln(cmd.OutOrStdout(), identity.GetOrCreateUserID(ids, log))
			return nil
		},
	}
}

func openIdentityStore(cfg config.IdentityConfig, log zerolog.Logger) (store.Store, func(), error) {
	switch cfg.Store {
	case config.IdentityMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.IdentityDatabase:
		database, err := db.Open(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		var schema fs.FS = migrations.FS
		if cfg.MigrationsDir != "" {
			schema = os.DirFS(cfg.MigrationsDir)
		}
		if err := database.RunMigrations(schema); err != nil {
			database.Close()
			return nil, nil, err
		}
		return store.NewDatabaseStore(database, cfg.Profile), func() { database.Close() }, nil
	default:
		fileStore := store.NewFileStore(cfg.File)
		log.Debug().Str("path", fileStore.Path()).Msg("identity kept in file")
		return fileStore, func() {}, nil
	}
}

func newBackend(ctx context.Context, cfg config.BackendConfig) *backend.Client {
	hc := backend.Authenticated(ctx, backend.AuthConfig{
		Token:        cfg.Token,
		TokenURL:     cfg.OAuthTokenURL,
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Scopes:       cfg.OAuthScopes,
	})
	return backend.NewClient(cfg.URL, backend.WithHTTPClient(hc), backend.WithTimeout(cfg.Timeout))
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
