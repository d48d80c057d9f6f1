// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"sync"
	"time"

	accountfeature "github.com/dalemusser/laag/internal/app/features/account"
	auditlogfeature "github.com/dalemusser/laag/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/laag/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/laag/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/laag/internal/app/features/groups"
	healthfeature "github.com/dalemusser/laag/internal/app/features/health"
	laagsfeature "github.com/dalemusser/laag/internal/app/features/laags"
	loginfeature "github.com/dalemusser/laag/internal/app/features/login"
	logoutfeature "github.com/dalemusser/laag/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/laag/internal/app/features/notifications"
	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/ratelimit"
	"github.com/dalemusser/laag/internal/app/system/transitions"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/router"
	"go.uber.org/zap"
)

// signupLimit bounds account creation per client IP.
const (
	signupLimit  = 5
	signupWindow = time.Hour
)

var (
	cleanupMu sync.Mutex
	cleanups  []func()
)

// onShutdown registers fn to run during Shutdown.
func onShutdown(fn func()) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanups = append(cleanups, fn)
}

func runCleanups() {
	cleanupMu.Lock()
	fns := cleanups
	cleanups = nil
	cleanupMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Laag applies session middleware and
// mounts the JSON feature routers: auth, account, groups with their laags,
// the feed, notifications, dashboards and the admin area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.LaagMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the profile on every request so deletions and renames apply
	// immediately.
	sessionMgr.SetUserLookup(profilestore.New(db).SessionLookup())

	errLog := errorsfeature.NewErrorLogger(logger)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
		Laag:  appCfg.AuditLogLaag,
	})

	loginLimiter := ratelimit.NewLoginLimiter()
	signupLimiter := ratelimit.New(signupLimit, signupWindow)
	onShutdown(loginLimiter.Close)
	onShutdown(signupLimiter.Close)

	tr := transitions.New(db, deps.Broker, logger)

	// waffle's router: request id, real ip, panic recovery, access logs
	r := router.New(coreCfg, logger)

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.LaagMongoClient, logger)
	if deps.Redis != nil {
		healthHandler.Extra["redis"] = deps.Redis
	}
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded images, when stored on local disk
	if appCfg.StorageType == "local" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, loginLimiter, logger)
	loginHandler.Audit = audit
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/signup", ratelimit.Middleware(signupLimiter)(loginfeature.SignupRoutes(loginHandler)))
	r.Mount("/me", loginfeature.MeRoutes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutHandler.Audit = audit
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	accountHandler := accountfeature.NewHandler(db, deps.Blobs, appCfg.UploadMaxBytes, errLog, logger)
	r.Mount("/account", accountfeature.Routes(accountHandler, sessionMgr))

	// Groups, with laags nested under /groups/{id}/laags
	laagsHandler := laagsfeature.NewHandler(db, deps.Blobs, appCfg.UploadMaxBytes, tr, errLog, logger)
	laagsHandler.Audit = audit
	groupsHandler := groupsfeature.NewHandler(db, deps.Blobs, appCfg.UploadMaxBytes, errLog, logger)
	groupsHandler.Audit = audit
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr, laagsfeature.Routes(laagsHandler, sessionMgr)))
	r.Mount("/feed", laagsfeature.FeedRoutes(laagsHandler, sessionMgr))

	notesHandler := notificationsfeature.NewHandler(db, deps.Broker, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notesHandler, sessionMgr))

	// Dashboards
	dashboardHandler := dashboardfeature.NewHandler(db, appCfg.LeaderboardPageSize, errLog, logger)
	dashboardHandler.Audit = audit
	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	r.Mount("/admin", dashboardfeature.AdminRoutes(dashboardHandler, sessionMgr))
	r.Mount("/", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	return r, nil
}
