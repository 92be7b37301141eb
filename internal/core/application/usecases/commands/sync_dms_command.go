package commands

import (
	"errors"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/pkg/guard"
)

var ErrSyncDMSCommandIsNotConstructed = errors.New(
	"SyncDMSCommand must be created via NewSyncDMSCommand constructor",
)

// SyncDMSCommand triggers one reconciliation pass against the DMS. The actor
// is the user who asked for it, or actor.SystemActor for the scheduled job.
type SyncDMSCommand struct { //nolint:recvcheck //using for validation
	actor actor.Actor

	guard guard.ConstructorGuard
}

func NewSyncDMSCommand(caller actor.Actor) (SyncDMSCommand, error) {
	if err := caller.Validate(); err != nil {
		return SyncDMSCommand{}, err
	}

	return SyncDMSCommand{
		actor: caller,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c SyncDMSCommand) Validate() error {
	return c.guard.Validate(ErrSyncDMSCommandIsNotConstructed)
}

func (c SyncDMSCommand) Actor() actor.Actor {
	return c.actor
}

// SyncError describes one document that could not be applied.
type SyncError struct {
	OrderID     string `json:"orderId"`
	ExternalRef string `json:"externalRef"`
	Error       string `json:"error"`
}

// SyncDMSResult summarizes a reconciliation pass.
type SyncDMSResult struct {
	Synced  int         `json:"synced"`
	Errors  []SyncError `json:"errors"`
	Message string      `json:"message"`
}
