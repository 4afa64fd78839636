// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: the human-readable name users type to sign in

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/auditlog"
	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/dalemusser/geogroups/internal/app/system/limits"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/ratelimit"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger        // may be nil
	Limiter    *ratelimit.LoginLimiter // may be nil

	users *userstore.Store
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string // what the user typed
	ReturnURL string
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		users:      userstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	render.Page(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/groups/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxLoginFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, username); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, username)
			h.renderFormWithError(w, r, reason, username)
			return
		}
	}

	u, err := h.users.Authenticate(ctx, username, password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.auditFailure(ctx, r, username)
		h.renderFormWithError(w, r, "Incorrect username or password.", username)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB authenticate user", err, "A server error occurred.", "/login")
		return
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		} else {
			h.Log.Error("session store error during login, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
	}
	if err := h.SessionMgr.SignIn(w, r, sess, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", u.Username))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", username)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetUser(username)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Username)

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturnURL), http.StatusSeeOther)
}

// auditFailure records which kind of failure happened. The visitor always
// sees the same message.
func (h *Handler) auditFailure(ctx context.Context, r *http.Request, username string) {
	u, err := h.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Username)
	case errors.Is(err, userstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, username)
	default:
		h.Log.Warn("login audit lookup failed", zap.Error(err))
	}
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	render.Page(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/groups/"),
		Error:     msg,
		Username:  username,
		ReturnURL: strings.TrimSpace(r.FormValue("return")),
	})
}
