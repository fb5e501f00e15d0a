package contacts

import (
	"context"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/pkg/pagination"
)

// System defines the public contract for contact domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Contact], error)

	Find(ctx context.Context, id uuid.UUID) (*Contact, error)
	Create(ctx context.Context, cmd CreateCommand) (*Contact, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error

	RecordInteraction(ctx context.Context, contactID uuid.UUID, cmd InteractionCommand) (*Interaction, error)
	Interactions(ctx context.Context, contactID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Interaction], error)

	Snapshot(ctx context.Context, contactID, organizationID uuid.UUID) (*Context, error)
}
