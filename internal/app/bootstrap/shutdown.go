// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down rate limiters, the broker and DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	runCleanups()

	if deps.Broker != nil {
		if err := deps.Broker.Close(); err != nil {
			logger.Warn("notification broker close failed", zap.Error(err))
		}
	}
	if deps.LaagMongoClient != nil {
		logger.Info("disconnecting Laag MongoDB client")
		if err := deps.LaagMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
