// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	errorsfeature "github.com/dalemusser/geogroups/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/geogroups/internal/app/features/groups"
	healthfeature "github.com/dalemusser/geogroups/internal/app/features/health"
	loginfeature "github.com/dalemusser/geogroups/internal/app/features/login"
	logoutfeature "github.com/dalemusser/geogroups/internal/app/features/logout"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the search index, mailer, audit
// logger and login limiter in deps.Services are ready.
//
// GeoGroups initializes the template engine, applies session and CSRF
// middleware, and mounts the health, auth and groups routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser reloads the user on each request so a renamed or
	// removed account takes effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	svc := deps.Services
	if svc == nil {
		svc = &Services{}
	}

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators.
	// Mounted before CSRF and sessions so probes stay cheap.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, svc.Index, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.LoadSessionUser)
		r.Use(skipCSRFForUnservedMethods)
		r.Use(csrf.Protect(csrfKey(appCfg),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
		))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/groups/", http.StatusSeeOther)
		})
		r.Get("/forbidden", errorsHandler.Forbidden)

		loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
		loginHandler.AuditLog = svc.Audit
		loginHandler.Limiter = svc.Limiter
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.Audit, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
		groupsHandler.Index = svc.Index
		groupsHandler.Mailer = svc.Mailer
		groupsHandler.Audit = svc.Audit
		groupsHandler.BaseURL = appCfg.BaseURL
		if appCfg.ListPageSize > 0 {
			groupsHandler.PageSize = appCfg.ListPageSize
		}
		r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))
	})

	return r, nil
}

// csrfKey returns the 32-byte key gorilla/csrf requires. A blank csrf_key
// derives one from the session key.
func csrfKey(appCfg AppConfig) []byte {
	if appCfg.CSRFKey != "" {
		return []byte(appCfg.CSRFKey)
	}
	sum := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	return sum[:]
}

// skipCSRFForUnservedMethods lets PUT, PATCH and DELETE through the CSRF
// check. No handler changes data for them, so they end in a 405 rather
// than a 403.
func skipCSRFForUnservedMethods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut, http.MethodPatch, http.MethodDelete:
			r = csrf.UnsafeSkipCheck(r)
		}
		next.ServeHTTP(w, r)
	})
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	errorsfeature.RenderForbidden(w, r, "Your form has expired. Reload the page and try again.", "/groups/")
}
