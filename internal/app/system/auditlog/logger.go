// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: the human-readable name users type to sign in

import (
	"context"
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/store/audit"
	"github.com/dalemusser/geogroups/internal/app/system/ratelimit"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (sign in, sign out).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Group controls logging for group events (create, update, delete, membership, invitations).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Group string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.GroupID != nil {
		fields = append(fields, zap.String("group_id", event.GroupID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryGroup:
		setting = l.config.Group
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = &userID
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a failed sign in for an unknown username.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attempted string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound)
	e.Success = false
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_username": attempted}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a failed sign in for a known user.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword)
	e.UserID = &userID
	e.Success = false
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a sign in rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attempted string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit)
	e.Success = false
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_username": attempted}
	l.Log(ctx, e)
}

// Logout logs a sign out. userID may be empty when the session was already gone.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout)
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// --- Group Events ---

func (l *Logger) groupEvent(ctx context.Context, r *http.Request, eventType string, groupID, actorID primitive.ObjectID, userID *primitive.ObjectID, details map[string]string) {
	e := requestEvent(r, audit.CategoryGroup, eventType)
	e.GroupID = &groupID
	if !actorID.IsZero() {
		e.ActorID = &actorID
	}
	e.UserID = userID
	e.Details = details
	l.Log(ctx, e)
}

// GroupCreated logs the creation of g by actorID.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, g models.Group) {
	l.groupEvent(ctx, r, audit.EventGroupCreated, g.ID, actorID, nil,
		map[string]string{"slug": g.Slug, "title": g.Title, "access": string(g.Access)})
}

// GroupUpdated logs an edit of g by actorID.
func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, g models.Group) {
	l.groupEvent(ctx, r, audit.EventGroupUpdated, g.ID, actorID, nil,
		map[string]string{"title": g.Title, "access": string(g.Access)})
}

// GroupDeleted logs the removal of g by actorID.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, g models.Group) {
	l.groupEvent(ctx, r, audit.EventGroupDeleted, g.ID, actorID, nil,
		map[string]string{"slug": g.Slug, "title": g.Title})
}

// MemberAdded logs actorID giving userID role in groupID.
func (l *Logger) MemberAdded(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID, role models.GroupRole) {
	l.groupEvent(ctx, r, audit.EventMemberAdded, groupID, actorID, &userID,
		map[string]string{"role": string(role)})
}

// MemberRemoved logs actorID removing userID from groupID.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID) {
	l.groupEvent(ctx, r, audit.EventMemberRemoved, groupID, actorID, &userID, nil)
}

// MemberJoined logs userID joining groupID on their own.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, groupID, userID primitive.ObjectID) {
	l.groupEvent(ctx, r, audit.EventMemberJoined, groupID, userID, &userID, nil)
}

// InvitationSent logs actorID inviting a user or address to inv's group.
func (l *Logger) InvitationSent(ctx context.Context, r *http.Request, actorID primitive.ObjectID, inv models.GroupInvitation) {
	details := map[string]string{"role": string(inv.Role)}
	if inv.Email != "" {
		details["email"] = inv.Email
	}
	l.groupEvent(ctx, r, audit.EventInvitationSent, inv.GroupID, actorID, inv.UserID, details)
}

// InvitationAnswered logs userID accepting or declining inv.
func (l *Logger) InvitationAnswered(ctx context.Context, r *http.Request, userID primitive.ObjectID, inv models.GroupInvitation, accepted bool) {
	eventType := audit.EventInvitationDeclined
	if accepted {
		eventType = audit.EventInvitationAccepted
	}
	l.groupEvent(ctx, r, eventType, inv.GroupID, userID, &userID,
		map[string]string{"role": string(inv.Role)})
}
