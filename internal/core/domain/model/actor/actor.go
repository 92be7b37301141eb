// Package actor models the authenticated caller of a use case: who they are,
// which company they belong to and what they are allowed to do.
package actor

import (
	"errors"
	"fmt"
	"strings"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor was not built by New or System.
var ErrActorIsNotConstructed = errors.New("Actor must be created via New constructor")

// Role is the coarse permission group of a user.
type Role string

const (
	Admin       Role = "ADMIN"
	Commercial  Role = "COMMERCIAL"
	ClientAdmin Role = "CLIENT_ADMIN"
	ClientUser  Role = "CLIENT_USER"

	// System is the role of background processes such as DMS reconciliation.
	// It is never issued to a user token.
	System Role = "SYSTEM"
)

// ParseRole accepts the role names carried in access tokens.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case Admin, Commercial, ClientAdmin, ClientUser:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a user role", s))
	}
}

// IsInternal reports whether the role belongs to the distributor side.
func (r Role) IsInternal() bool {
	return r == Admin || r == Commercial || r == System
}

// IsClient reports whether the role belongs to a client company.
func (r Role) IsClient() bool {
	return r == ClientAdmin || r == ClientUser
}

var systemActorID = kernel.MustUUIDFromString("00000000-0000-4000-8000-000000000001")

// Actor is an immutable value describing the caller.
type Actor struct {
	id        kernel.UUID
	name      string
	role      Role
	companyID *kernel.UUID

	guard guard.ConstructorGuard
}

// New builds a user actor. Client roles must carry the company they belong
// to; internal roles never do.
func New(id kernel.UUID, name string, role Role, companyID *kernel.UUID) (Actor, error) {
	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if role != Admin && role != Commercial && !role.IsClient() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a user role", role)))
	}
	if role.IsClient() && (companyID == nil || companyID.IsZero()) {
		problems = append(problems, errs.NewValueIsRequiredError("companyID"))
	}
	if err := errors.Join(problems...); err != nil {
		return Actor{}, err
	}

	a := Actor{
		id:    id,
		name:  strings.TrimSpace(name),
		role:  role,
		guard: guard.NewConstructorGuard(),
	}
	if role.IsClient() {
		c := *companyID
		a.companyID = &c
	}
	return a, nil
}

// SystemActor returns the actor used by background processes.
func SystemActor() Actor {
	return Actor{
		id:    systemActorID,
		name:  "system",
		role:  System,
		guard: guard.NewConstructorGuard(),
	}
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() kernel.UUID { return a.id }
func (a Actor) Name() string    { return a.name }
func (a Actor) Role() Role      { return a.role }

// CompanyID returns the client company of the actor, nil for internal roles.
func (a Actor) CompanyID() *kernel.UUID {
	if a.companyID == nil {
		return nil
	}
	c := *a.companyID
	return &c
}

func (a Actor) IsInternal() bool { return a.role.IsInternal() }

// BelongsTo reports whether the actor is a member of companyID.
func (a Actor) BelongsTo(companyID kernel.UUID) bool {
	return a.companyID != nil && a.companyID.IsEqual(companyID)
}

// CanSee reports whether the actor may read orders of companyID.
func (a Actor) CanSee(companyID kernel.UUID) bool {
	return a.IsInternal() || a.BelongsTo(companyID)
}

// DisplayName is the name shown to other users, falling back to the id.
func (a Actor) DisplayName() string {
	if a.name != "" {
		return a.name
	}
	return a.id.String()
}
