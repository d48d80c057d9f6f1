// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/laag/internal/app/system/realtime"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	LaagMongoClient   *mongo.Client
	LaagMongoDatabase *mongo.Database

	// Broker fans notification events out to WebSocket subscribers.
	// Redis is set only when Broker is backed by it.
	Broker realtime.Broker
	Redis  *realtime.RedisBroker

	Blobs storage.Store
}
