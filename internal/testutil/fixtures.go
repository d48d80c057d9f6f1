package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Existing parameters are kept so calls can be chained.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts an active profile with the given role.
func (f *Fixtures) CreateProfile(ctx context.Context, fullName, email, role string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateUser inserts a profile with the user role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, fullName, email, models.RoleUser)
}

// CreateAdmin inserts a profile with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, fullName, email, models.RoleAdmin)
}

// CreateGroup inserts a group owned by owner plus the owner's membership row.
// no_members is 1, matching a group created with no extra members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, owner primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		GroupName:   name,
		GroupNameCI: text.Fold(name),
		NoMembers:   1,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	f.AddMember(ctx, g.ID, owner)
	return g
}

// AddMember inserts an active membership row.
func (f *Fixtures) AddMember(ctx context.Context, groupID, profileID primitive.ObjectID) models.GroupMember {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.GroupMember{
		ID:          primitive.NewObjectID(),
		GroupID:     groupID,
		GroupMember: profileID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateLaag inserts a Planning laag in group organized by organizer.
func (f *Fixtures) CreateLaag(ctx context.Context, what string, groupID, organizer primitive.ObjectID, privacy models.Privacy) models.Laag {
	f.t.Helper()

	now := time.Now().UTC()
	l := models.Laag{
		ID:            primitive.NewObjectID(),
		What:          what,
		Where:         "Somewhere",
		Why:           "Because",
		EstimatedCost: 10,
		Status:        models.StatusPlanning,
		Privacy:       privacy,
		WhenStart:     now.Add(24 * time.Hour),
		WhenEnd:       now.Add(26 * time.Hour),
		Organizer:     organizer,
		GroupID:       groupID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("laags").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test laag: %v", err)
	}
	return l
}

// AddAttendee inserts an active attendee row.
func (f *Fixtures) AddAttendee(ctx context.Context, laagID, profileID primitive.ObjectID) models.LaagAttendee {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.LaagAttendee{
		ID:         primitive.NewObjectID(),
		LaagID:     laagID,
		AttendeeID: profileID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("laag_attendees").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test attendee: %v", err)
	}
	return a
}
