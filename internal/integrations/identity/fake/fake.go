package fake

import (
	"context"

	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/pkg/errors"
)

// FakeClient stands in for the identity service in local runs and tests.
// With no allow-list every positive id is accepted.
type FakeClient struct {
	allowed map[int64]struct{}
}

func New(allowed ...int64) *FakeClient {
	f := &FakeClient{}
	if len(allowed) > 0 {
		f.allowed = make(map[int64]struct{}, len(allowed))
		for _, id := range allowed {
			f.allowed[id] = struct{}{}
		}
	}
	return f
}

func (f *FakeClient) ValidateUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return errors.Wrapf(identity.ErrUnknownUser, "user %d", userID)
	}
	if f.allowed == nil {
		return nil
	}
	if _, ok := f.allowed[userID]; !ok {
		return errors.Wrapf(identity.ErrUnknownUser, "user %d", userID)
	}
	return nil
}
