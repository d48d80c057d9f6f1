// internal/app/features/laags/handler.go
package laags

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	attendeestore "github.com/dalemusser/laag/internal/app/store/attendees"
	commentstore "github.com/dalemusser/laag/internal/app/store/comments"
	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	imagestore "github.com/dalemusser/laag/internal/app/store/images"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/app/system/transitions"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves laags nested under a group, their photos and comments,
// and the cross-group feed.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *apierrors.ErrorLogger
	Blobs       storage.Store
	MaxUpload   int64
	PageSize    int
	Transitions *transitions.Service

	Groups    *groupstore.Store
	Members   *membershipstore.Store
	Laags     *laagstore.Store
	Attendees *attendeestore.Store
	Images    *imagestore.Store
	Comments  *commentstore.Store

	// Audit records security-relevant actions. Nil disables it.
	Audit *auditlog.Logger
}

// NewHandler wires the laag stores to db. tr runs cancel and complete.
func NewHandler(db *mongo.Database, blobs storage.Store, maxUpload int64, tr *transitions.Service, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Blobs:       blobs,
		MaxUpload:   maxUpload,
		PageSize:    paging.PageSize,
		Transitions: tr,
		Groups:      groupstore.New(db),
		Members:     membershipstore.New(db),
		Laags:       laagstore.New(db),
		Attendees:   attendeestore.New(db),
		Images:      imagestore.New(db),
		Comments:    commentstore.New(db),
	}
}
