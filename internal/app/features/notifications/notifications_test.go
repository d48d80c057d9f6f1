package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	"github.com/dalemusser/laag/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/laag/internal/app/store/notifications"
	"github.com/dalemusser/laag/internal/app/system/realtime"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/laag/internal/testutil"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestNotifications_ReadFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	h := notifications.NewHandler(db, nil, apierrors.NewErrorLogger(logger), logger)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	g := fx.CreateGroup(ctx, "Club", owner.ID)
	notes := notificationstore.New(db)

	var ids []primitive.ObjectID
	for _, what := range []string{"Darts", "Golf"} {
		l := fx.CreateLaag(ctx, what, g.ID, owner.ID, models.PrivacyGroupOnly)
		n, err := notes.Create(ctx, l.ID, g.ID, models.StatusCancelled)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := notes.FanOut(ctx, n.ID, []primitive.ObjectID{owner.ID}); err != nil {
			t.Fatalf("FanOut: %v", err)
		}
		ids = append(ids, n.ID)
	}
	user := testutil.UserFromProfile(owner)

	unread := func() int64 {
		rec := testutil.NewRecorder()
		h.ServeUnreadCount(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, user))
		rec.AssertStatus(t, http.StatusOK)
		var got map[string]int64
		rec.DecodeJSON(t, &got)
		return got["unread"]
	}
	if n := unread(); n != 2 {
		t.Fatalf("unread = %d, want 2", n)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, user))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Darts")
	rec.AssertContains(t, "Golf")

	mark := func(fn http.HandlerFunc, id string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPost, "/", nil, user), "id", id)
		rec := testutil.NewRecorder()
		fn(rec, req)
		return rec
	}

	mark(h.HandleRead, ids[0].Hex()).AssertStatus(t, http.StatusNoContent)
	if n := unread(); n != 1 {
		t.Errorf("after read: unread = %d, want 1", n)
	}
	mark(h.HandleUnread, ids[0].Hex()).AssertStatus(t, http.StatusNoContent)
	if n := unread(); n != 2 {
		t.Errorf("after unread: unread = %d, want 2", n)
	}
	mark(h.HandleRead, primitive.NewObjectID().Hex()).AssertStatus(t, http.StatusNotFound)
	mark(h.HandleRead, "zzz").AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.HandleReadAll(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", nil, user))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"updated":2`)
	if n := unread(); n != 0 {
		t.Errorf("after read-all: unread = %d, want 0", n)
	}
}

func TestNotifications_RequiresUser(t *testing.T) {
	h := &notifications.Handler{Log: zap.NewNop(), ErrLog: apierrors.NewErrorLogger(nil)}
	rec := testutil.NewRecorder()
	h.ServeUnreadCount(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeWS_ForwardsEvents(t *testing.T) {
	broker := realtime.NewLocalBroker()
	defer broker.Close()

	h := &notifications.Handler{Log: zap.NewNop(), ErrLog: apierrors.NewErrorLogger(nil), Broker: broker}
	user := testutil.RegularUser()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, testutil.WithUser(r, user))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	want := realtime.Event{Type: realtime.EventNotificationCreated, NotificationID: "n1", LaagID: "l1", At: time.Now().UTC()}
	if err := broker.Publish(ctx, user.ID, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got realtime.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Type != want.Type || got.NotificationID != "n1" || got.LaagID != "l1" {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestServeWS_NoBroker(t *testing.T) {
	h := &notifications.Handler{Log: zap.NewNop(), ErrLog: apierrors.NewErrorLogger(nil)}
	rec := testutil.NewRecorder()
	h.ServeWS(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/ws", nil, testutil.RegularUser()))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}
