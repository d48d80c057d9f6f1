// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	"github.com/dalemusser/laag/internal/app/system/ratelimit"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for one event category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config selects where each category of events goes. Empty means All.
type Config struct {
	Auth  string // sign-in, signup, sign-out
	Admin string // profile deletion, group and membership changes
	Laag  string // laag creation, status changes, deletion
}

// Logger records audit events to the audit store and to zap.
// A nil *Logger is valid and drops everything, so handlers built
// without one (tests, tools) need no special casing.
type Logger struct {
	store  *auditstore.Store
	zapLog *zap.Logger
	config Config
}

func New(store *auditstore.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case auditstore.CategoryAuth:
		s = l.config.Auth
	case auditstore.CategoryAdmin:
		s = l.config.Admin
	case auditstore.CategoryLaag:
		s = l.config.Laag
	}
	if s == "" {
		return All
	}
	return s
}

func (l *Logger) logToZap(event auditstore.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	for name, id := range map[string]*primitive.ObjectID{
		"user_id":  event.UserID,
		"actor_id": event.ActorID,
		"group_id": event.GroupID,
		"laag_id":  event.LaagID,
	} {
		if id != nil {
			fields = append(fields, zap.String(name, id.Hex()))
		}
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

// Log records event according to the category's setting. Store failures
// are logged, never returned.
func (l *Logger) Log(ctx context.Context, event auditstore.Event) {
	if l == nil {
		return
	}
	s := l.setting(event.Category)
	if s == Off {
		return
	}
	if s == All || s == Log {
		l.logToZap(event)
	}
	if s == All || s == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) auditstore.Event {
	return auditstore.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// --- Authentication ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginSuccess, true)
	e.UserID = idPtr(userID)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailed records a rejected sign-in. userID is zero when no profile
// matched the email.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, reason string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginFailed, false)
	e.UserID = idPtr(userID)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginRateLimited, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventSignup, true)
	e.UserID = idPtr(userID)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLogout, true)
	e.UserID = idPtr(userID)
	l.Log(ctx, e)
}

// --- Admin ---

func (l *Logger) ProfileDeleted(ctx context.Context, r *http.Request, actorID, profileID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAdmin, auditstore.EventProfileDeleted, true)
	e.ActorID, e.UserID = idPtr(actorID), idPtr(profileID)
	l.Log(ctx, e)
}

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string) {
	e := fromRequest(r, auditstore.CategoryAdmin, auditstore.EventGroupCreated, true)
	e.ActorID, e.GroupID = idPtr(actorID), idPtr(groupID)
	e.Details = map[string]string{"group_name": name}
	l.Log(ctx, e)
}

func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAdmin, auditstore.EventGroupDeleted, true)
	e.ActorID, e.GroupID = idPtr(actorID), idPtr(groupID)
	l.Log(ctx, e)
}

func (l *Logger) MemberAdded(ctx context.Context, r *http.Request, actorID, profileID, groupID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAdmin, auditstore.EventMemberAdded, true)
	e.ActorID, e.UserID, e.GroupID = idPtr(actorID), idPtr(profileID), idPtr(groupID)
	l.Log(ctx, e)
}

func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, profileID, groupID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAdmin, auditstore.EventMemberRemoved, true)
	e.ActorID, e.UserID, e.GroupID = idPtr(actorID), idPtr(profileID), idPtr(groupID)
	l.Log(ctx, e)
}

// --- Laags ---

func (l *Logger) LaagCreated(ctx context.Context, r *http.Request, actorID, groupID, laagID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryLaag, auditstore.EventLaagCreated, true)
	e.ActorID, e.GroupID, e.LaagID = idPtr(actorID), idPtr(groupID), idPtr(laagID)
	l.Log(ctx, e)
}

// LaagStatusChanged records a Cancel or Complete transition. Other
// statuses are ignored.
func (l *Logger) LaagStatusChanged(ctx context.Context, r *http.Request, actorID, groupID, laagID primitive.ObjectID, status models.LaagStatus) {
	var eventType string
	switch status {
	case models.StatusCancelled:
		eventType = auditstore.EventLaagCancelled
	case models.StatusCompleted:
		eventType = auditstore.EventLaagCompleted
	default:
		return
	}
	e := fromRequest(r, auditstore.CategoryLaag, eventType, true)
	e.ActorID, e.GroupID, e.LaagID = idPtr(actorID), idPtr(groupID), idPtr(laagID)
	l.Log(ctx, e)
}

func (l *Logger) LaagDeleted(ctx context.Context, r *http.Request, actorID, groupID, laagID primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryLaag, auditstore.EventLaagDeleted, true)
	e.ActorID, e.GroupID, e.LaagID = idPtr(actorID), idPtr(groupID), idPtr(laagID)
	l.Log(ctx, e)
}
