package profilestore

import (
	"context"
	"errors"

	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLookup returns an auth.UserLookup that reloads the signed-in
// profile on each request. Missing, deleted, or malformed ids yield
// (nil, nil) so the request is treated as signed out.
func (s *Store) SessionLookup() auth.UserLookup {
	return func(ctx context.Context, id string) (*auth.SessionUser, error) {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()

		p, err := s.GetByID(ctx, oid)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &auth.SessionUser{
			ID:    p.ID.Hex(),
			Name:  p.FullName,
			Email: p.Email,
			Role:  p.Role,
		}, nil
	}
}
