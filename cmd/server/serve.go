package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dahabiya-site/internal/auth"
	"dahabiya-site/internal/broadcast"
	"dahabiya-site/internal/cache"
	"dahabiya-site/internal/config"
	"dahabiya-site/internal/content"
	"dahabiya-site/internal/data"
	"dahabiya-site/internal/handler"
	"dahabiya-site/internal/i18n"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/schema"
	"dahabiya-site/internal/service"
	"dahabiya-site/internal/session"
	"dahabiya-site/internal/view"
	"dahabiya-site/web"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const (
	eventBuffer       = 16
	sseKeepAlive      = 25 * time.Second
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE:  runServe,
	}
}

// services holds the application layer shared by serve and seed.
type services struct {
	structure  *schema.Structure
	resolver   *content.Resolver
	hub        *broadcast.Hub
	content    *service.ContentService
	catalog    *service.CatalogService
	blog       *service.BlogService
	navigation *service.NavigationService
}

// newServices wires repositories into services. contentCache may be nil.
func newServices(db *sqlx.DB, contentCache content.Cache, cfg *config.Config, log logger.Logger) (*services, error) {
	structure, err := schema.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load content structure: %w", err)
	}
	contentRepo := data.NewSQLContentRepository(db)
	hub := broadcast.NewHub(eventBuffer)
	resolver := content.NewResolver(contentRepo, contentCache, cfg.Cache.TTL, structure, log.With(map[string]interface{}{"component": "content"}))

	catalog := service.NewCatalogService(
		data.NewSQLDahabiyaRepository(db),
		data.NewSQLPackageRepository(db),
		data.NewSQLCatalogRepository(db),
		hub,
		log,
	)
	return &services{
		structure:  structure,
		resolver:   resolver,
		hub:        hub,
		content:    service.NewContentService(contentRepo, structure, resolver, hub, log),
		catalog:    catalog,
		blog:       service.NewBlogService(data.NewSQLBlogRepository(db)),
		navigation: service.NewNavigationService(data.NewSQLNavigationRepository(db), catalog, log),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database Initialization and Migration ---
	db, err := openDB(cfg, log)
	if err != nil {
		log.Fatal(err, "Failed to prepare database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := session.New(db.DB, cfg.DB.Driver, cfg.Session, cfg.Server.TLS.Enabled)

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	var identifier handler.Identifier
	if cfg.OIDC.Enabled() {
		authenticator, err := auth.NewAuthenticator(ctx, &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
		identifier = authenticator
	} else {
		log.Warn("OIDC is not configured; the admin panel cannot be signed in to.")
	}
	enforcer, err := auth.NewEnforcer(db)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, cfg.Admin.Emails, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	catalog, err := i18n.New(cfg.Site.Languages, cfg.Site.DefaultLanguage)
	if err != nil {
		log.Fatal(err, "Failed to load translations")
	}
	viewService, err := view.New(web.TemplateFS, catalog)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	var contentCache content.Cache
	if cfg.Cache.FilePath != "" {
		log.Info("Initializing SQLite cache...")
		c, err := cache.New(cfg.Cache.FilePath)
		if err != nil {
			log.Fatal(err, "Failed to initialize cache")
		}
		defer c.Close()
		purger, err := cache.SchedulePurge(c, cfg.Cache.PurgeSchedule, log)
		if err != nil {
			log.Fatal(err, "Failed to schedule cache purge")
		}
		defer purger.Stop()
		contentCache = c
		log.Info("Cache initialized.")
	}

	// --- Dependency Injection and Handler Initialization ---
	svc, err := newServices(db, contentCache, cfg, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize services")
	}

	if cfg.Redis.URL != "" {
		relay, err := broadcast.NewRedisRelay(ctx, cfg.Redis.URL, cfg.Redis.Channel, log)
		if err != nil {
			log.Fatal(err, "Failed to connect to Redis")
		}
		defer relay.Close()
		svc.hub.SetRelay(relay)
		svc.hub.OnRemote(svc.content.ApplyRemote)
		go relay.Run(ctx, svc.hub)
		log.Info(fmt.Sprintf("Relaying content events over Redis channel %q", cfg.Redis.Channel))
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.Fatal(err, "Failed to open static assets")
	}

	shell := handler.ShellOptions{
		SiteName:        cfg.Site.Name,
		MenuCloseDelay:  cfg.Site.MenuCloseDelay,
		ScrollThreshold: cfg.Site.ScrollThreshold,
	}
	limiter := middleware.NewWriteLimiter(cfg.Admin.WriteRate, cfg.Admin.WriteBurst)

	// --- Router Setup ---
	router := handler.NewRouter(handler.Router{
		Site:      handler.NewSiteHandler(svc.resolver, svc.catalog, svc.blog, svc.navigation, viewService, shell, log),
		API:       handler.NewAPIHandler(svc.content, svc.catalog, svc.navigation, log),
		Admin:     handler.NewAdminHandler(svc.content, svc.catalog, svc.structure, sessionManager, viewService, log),
		Auth:      handler.NewAuthHandler(identifier, sessionManager, log),
		Seo:       handler.NewSeoHandler(svc.catalog, svc.blog, cfg.Site.BaseURL, log),
		Updates:   broadcast.NewStream(svc.hub, sseKeepAlive),
		Static:    static,
		Sessions:  sessionManager,
		Authorize: middleware.Authorizer(enforcer, sessionManager, viewService, log),
		Settings:  middleware.Settings(catalog, sessionManager),
		Limiter:   limiter,
		Errors:    middleware.Error(log, viewService),
		APIErrors: middleware.API(log),
	})

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		// Open event streams end when the signal context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()

	<-ctx.Done()
	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}
