package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/config"
	"github.com/blogem/authsession/controllers"
	"github.com/blogem/authsession/database"
	"github.com/blogem/authsession/logger"
	"github.com/blogem/authsession/metrics"
	authmiddleware "github.com/blogem/authsession/middleware"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/repositories"
	"github.com/blogem/authsession/services"
	"github.com/blogem/authsession/session"
)

// app wires the long-lived components shared by every command
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	repos    *repositories.Repositories
	client   *authenticator.OIDCClient
	store    *session.Store
	auditor  *services.AuthAuditor
	recorder *metrics.Recorder
}

// bootstrap builds the app. interactiveOnly forces popup logins for terminal commands.
func bootstrap(ctx context.Context, interactiveOnly bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewWithSentry(cfg.SentryConfig(), logger.AccountExtractor)
	slog.SetDefault(log)

	db, err := database.InitializeDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	repos := repositories.NewRepositories(db, cfg.Keyring.Service)

	client, err := authenticator.NewOIDCClient(ctx, cfg.ClientConfig(),
		authenticator.WithAccountStore(repos.Accounts),
		authenticator.WithSecretStore(repos.Secrets),
		authenticator.WithDefaultNavigator(authenticator.BrowserNavigator),
		authenticator.WithLogger(log),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	recorder, err := metrics.NewRecorder(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := cfg.ProviderOptions()
	if interactiveOnly {
		opts.LoginType = models.LoginTypePopup
	}

	store, err := session.Init(ctx, session.InitOptions{
		Client:     client,
		Parameters: cfg.AuthenticationParameters(),
		Options:    opts,
		ProviderOptions: []services.ProviderOption{
			services.WithLogger(log),
			services.WithMetrics(recorder),
		},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		repos:    repos,
		client:   client,
		store:    store,
		auditor:  services.NewAuthAuditor(repos.AuthEvents, store.Provider(), log),
		recorder: recorder,
	}, nil
}

func (a *app) Close() {
	a.auditor.Close()
	session.Teardown()
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}

func main() {
	root := &cobra.Command{
		Use:           "authsession",
		Short:         "OpenID Connect session manager with silent token renewal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		loginCmd(),
		logoutCmd(),
		tokenCmd(),
		statusCmd(),
		menuItemsCmd(),
		eventsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp runs fn against a bootstrapped app and closes it afterwards
func withApp(interactiveOnly bool, fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), interactiveOnly)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP",
		RunE: withApp(false, func(ctx context.Context, a *app) error {
			ctrl := controllers.NewControllers(a.store, a.client, a.cfg.API.BaseURL, a.logger)
			srv := &http.Server{
				Addr:              a.cfg.ListenAddr(),
				Handler:           setupRouter(a, ctrl),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("server starting", slog.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		}),
	}
}

// setupRouter configures all routes
func setupRouter(a *app, ctrl *controllers.Controllers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmiddleware.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(a.recorder.Middleware)
	// Popup logins block the request until the user finishes in the browser
	r.Use(middleware.Timeout(a.cfg.Auth.PopupTimeout + 30*time.Second))

	// PUBLIC ROUTES (no authentication required)
	r.Get("/", ctrl.Session.Index)
	r.Get("/login", ctrl.Auth.Login)
	r.Get("/callback", ctrl.Auth.Callback)
	r.Post("/logout", ctrl.Auth.Logout)
	r.Get("/health", controllers.Health)
	r.Handle("/metrics", metrics.Handler(nil))

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth(a.store))
		r.Get("/profile", ctrl.Session.Profile)
		r.Get("/menuitems", ctrl.MenuItems.Index)
	})

	return r
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in through the system browser",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			sess := a.store.Session()
			if sess.IsAuthenticated() {
				fmt.Println("already signed in")
				return nil
			}
			if err := sess.SignIn(ctx); err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}
			if info := sess.AccountInfo(); info != nil && info.Account != nil {
				fmt.Printf("signed in as %s\n", info.Account.Username)
			}
			return nil
		}),
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget cached tokens",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			if err := a.store.Session().SignOut(ctx); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		}),
	}
}

func tokenCmd() *cobra.Command {
	var scopes string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token, renewing it if needed",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			token, err := a.store.Session().GetAccessToken(ctx, splitFlag(scopes))
			if err != nil {
				return fmt.Errorf("failed to get access token: %w", err)
			}
			fmt.Println(token)
			return nil
		}),
	}
	cmd.Flags().StringVar(&scopes, "scopes", "", "comma or space separated scopes (default: configured scopes)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			state := a.store.State()
			out := map[string]any{
				"is_ready":             state.IsReady,
				"is_authenticated":     state.IsAuthenticated(),
				"authentication_state": state.AuthenticationState,
			}
			if state.AccountInfo != nil && state.AccountInfo.Account != nil {
				out["username"] = state.AccountInfo.Account.Username
			}
			if state.Error != nil {
				out["error"] = state.Error.Error()
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}),
	}
}

func menuItemsCmd() *cobra.Command {
	var scopes string
	cmd := &cobra.Command{
		Use:   "menuitems",
		Short: "List menu items from the menu API",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			if a.cfg.API.BaseURL == "" {
				return errors.New("API_BASE_URL is required")
			}

			var tokens services.TokenSource = a.store.Session()
			if list := splitFlag(scopes); len(list) > 0 {
				tokens = services.ProviderTokenSource{
					Provider: a.store.Provider(),
					Params:   &models.AuthenticationParameters{Scopes: list},
				}
			}

			client, err := services.BuildMenuItemClient(ctx, a.cfg.API.BaseURL, tokens)
			if err != nil {
				return err
			}
			items, err := client.GetMenuItems(ctx)
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Printf("%-6s %-30s %8.2f\n", item.ID, item.Name, item.Price)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&scopes, "scopes", "", "scopes of the API token (default: configured scopes)")
	return cmd
}

func eventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent authentication events",
		RunE: withApp(true, func(ctx context.Context, a *app) error {
			events, err := a.repos.AuthEvents.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range events {
				detail := string(e.State)
				if e.Kind == models.AuthEventError {
					detail = e.ErrorCode
				}
				fmt.Printf("%s  %-12s %-16s %s\n", e.Timestamp.Format(time.RFC3339), e.Kind, detail, e.AccountID)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events to show")
	return cmd
}

// splitFlag splits a comma or space separated flag value
func splitFlag(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
}
