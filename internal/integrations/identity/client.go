package identity

import (
	"context"

	"github.com/pkg/errors"
)

// ErrUnknownUser is returned when the identity service does not recognize
// (or refuses) the user.
var ErrUnknownUser = errors.New("unknown user")

type Client interface {
	ValidateUser(ctx context.Context, userID int64) error
}
