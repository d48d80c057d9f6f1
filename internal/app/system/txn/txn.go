// Package txn runs multi-collection writes inside a MongoDB transaction and
// falls back to plain sequential execution on deployments that cannot run
// transactions (standalone servers, some emulators).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions are unavailable.
const (
	codeIllegalOperation  = 20
	codeNoReplicationMode = 51
	codeOperationNotInTxn = 263
)

var keywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err means the server cannot run the
// transaction at all, as opposed to the transaction body failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoReplicationMode, codeOperationNotInTxn:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, k := range keywords {
		if strings.Contains(msg, k) {
			hits++
		}
	}
	return hits >= 2
}

// Run executes fn inside a transaction on client. If the deployment does not
// support transactions, fn is run once more without a session and the
// fallback is logged. The context passed to fn is the session context in the
// transactional path and ctx otherwise, so stores should always use it.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fallback(ctx, log, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fallback(ctx, log, err, fn)
	}
	return err
}

func fallback(ctx context.Context, log *zap.Logger, cause error, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Debug("transactions unavailable, running writes sequentially", zap.Error(cause))
	}
	return fn(ctx)
}

// Active reports whether ctx carries a session, which inside Run means the
// writes are part of a transaction and will be rolled back on error.
func Active(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}
