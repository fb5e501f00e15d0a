package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/pkg/pagination"
	"github.com/emma-crm/warden/pkg/query"
	"github.com/emma-crm/warden/pkg/repository"
)

const contactColumns = "id, organization_id, first_name, last_name, email, phone, industry, attributes, created_at, updated_at"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a contact repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "contacts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Contact], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "FirstName", "LastName", "Email")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanContact)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Contact, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanContact)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Contact, error) {
	if cmd.Email == "" || cmd.OrganizationID == uuid.Nil {
		return nil, ErrInvalidContact
	}

	attrs, err := marshalAttributes(cmd.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	q := fmt.Sprintf(`
		INSERT INTO contacts(id, organization_id, first_name, last_name, email, phone, industry, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, contactColumns)

	insertArgs := []any{
		uuid.New(),
		cmd.OrganizationID,
		cmd.FirstName,
		cmd.LastName,
		cmd.Email,
		cmd.Phone,
		cmd.Industry,
		attrs,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Contact, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanContact)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contact created", "id", c.ID, "organization_id", c.OrganizationID)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Contact, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(current, cmd)

	attrs, err := marshalAttributes(current.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	q := fmt.Sprintf(`
		UPDATE contacts
		SET first_name = $2, last_name = $3, email = $4, phone = $5, industry = $6, attributes = $7, updated_at = now()
		WHERE id = $1
		RETURNING %s`, contactColumns)

	updateArgs := []any{
		id,
		current.FirstName,
		current.LastName,
		current.Email,
		current.Phone,
		current.Industry,
		attrs,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Contact, error) {
		return repository.QueryOne(ctx, tx, q, updateArgs, scanContact)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contact updated", "id", id)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM contacts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contact deleted", "id", id)
	return nil
}

func (r *repo) RecordInteraction(ctx context.Context, contactID uuid.UUID, cmd InteractionCommand) (*Interaction, error) {
	contact, err := r.Find(ctx, contactID)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if cmd.OccurredAt != nil {
		occurredAt = *cmd.OccurredAt
	}

	q := `
		INSERT INTO interactions(id, contact_id, organization_id, agent_id, channel, summary, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, contact_id, organization_id, agent_id, channel, summary, occurred_at`

	insertArgs := []any{
		uuid.New(),
		contactID,
		contact.OrganizationID,
		cmd.AgentID,
		cmd.Channel,
		cmd.Summary,
		occurredAt,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Interaction, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanInteraction)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("interaction recorded", "contact_id", contactID, "channel", i.Channel)
	return &i, nil
}

func (r *repo) Interactions(ctx context.Context, contactID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Interaction], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(interactionProjection, query.SortField{Field: "OccurredAt", Descending: true}).
		WhereEquals("ContactID", contactID)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

// Snapshot assembles the current validation context for a contact: its
// attributes plus the timestamp of its most recent interaction. A non-nil
// organizationID scopes the lookup so a contact outside the requesting
// tenant resolves as not found.
func (r *repo) Snapshot(ctx context.Context, contactID, organizationID uuid.UUID) (*Context, error) {
	qb := query.NewBuilder(projection).WhereEquals("ID", contactID)
	if organizationID != uuid.Nil {
		qb.WhereEquals("OrganizationID", organizationID)
	}
	q, args := qb.BuildSingleOrNull()

	contact, err := repository.QueryOne(ctx, r.db, q, args, scanContact)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	snap := &Context{
		ContactID:      contact.ID,
		OrganizationID: contact.OrganizationID,
		Industry:       contact.Industry,
		Attributes:     contact.Attributes,
		FetchedAt:      time.Now(),
	}

	var last time.Time
	err = r.db.QueryRowContext(
		ctx,
		"SELECT occurred_at FROM interactions WHERE contact_id = $1 ORDER BY occurred_at DESC LIMIT 1",
		contactID,
	).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("query last interaction: %w", err)
	default:
		snap.LastInteraction = &last
	}

	return snap, nil
}

func applyUpdate(c *Contact, cmd UpdateCommand) {
	if cmd.FirstName != nil {
		c.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		c.LastName = *cmd.LastName
	}
	if cmd.Email != nil {
		c.Email = *cmd.Email
	}
	if cmd.Phone != nil {
		c.Phone = cmd.Phone
	}
	if cmd.Industry != nil {
		c.Industry = *cmd.Industry
	}
	if cmd.Attributes != nil {
		c.Attributes = normalizeAttributes(cmd.Attributes)
	}
}

func marshalAttributes(attrs map[string]string) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return json.Marshal(normalizeAttributes(attrs))
}
