package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/pkg/pagination"
	"github.com/emma-crm/warden/pkg/query"
	"github.com/emma-crm/warden/pkg/repository"
)

const promptColumns = "id, name, role, industry, instructions, description, active"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
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
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	prompts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	q := fmt.Sprintf(`
		INSERT INTO prompts(id, name, role, industry, instructions, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, promptColumns)

	args := []any{uuid.New(), cmd.Name, cmd.Role, NormalizeIndustry(cmd.Industry), cmd.Instructions, cmd.Description}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name, "role", p.Role)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	q := fmt.Sprintf(`
		UPDATE prompts
		SET name = $1, role = $2, industry = $3, instructions = $4, description = $5
		WHERE id = $6
		RETURNING %s`, promptColumns)

	args := []any{cmd.Name, cmd.Role, NormalizeIndustry(cmd.Industry), cmd.Instructions, cmd.Description, id}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt updated", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM prompts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		target, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		_, err = tx.ExecContext(
			ctx,
			"UPDATE prompts SET active = false WHERE role = $1 AND industry = $2 AND active = true",
			target.Role,
			target.Industry,
		)
		if err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		activateQ := fmt.Sprintf(`
			UPDATE prompts SET active = true
			WHERE id = $1
			RETURNING %s`, promptColumns)

		return repository.QueryOne(ctx, tx, activateQ, []any{id}, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt activated", "id", p.ID, "name", p.Name, "role", p.Role, "industry", p.Industry)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q := fmt.Sprintf(`
		UPDATE prompts SET active = false
		WHERE id = $1
		RETURNING %s`, promptColumns)

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "name", p.Name, "role", p.Role)
	return &p, nil
}

// Instructions returns the effective instructions for a role and industry.
// Resolution order: active industry-scoped override, active generic
// override, hardcoded default. A missing database row is not an error.
func (r *repo) Instructions(ctx context.Context, role Role, industry Industry) (string, error) {
	industry = NormalizeIndustry(industry)

	if industry != IndustryGeneric {
		text, err := r.activeOverride(ctx, role, industry)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}

	text, err := r.activeOverride(ctx, role, IndustryGeneric)
	if err != nil {
		return "", err
	}
	if text != "" {
		return text, nil
	}

	return Instructions(role)
}

// Spec returns the response specification for a role. Specs are not
// overridable; the parser depends on the documented shape.
func (r *repo) Spec(_ context.Context, role Role) (string, error) {
	return Spec(role)
}

// SystemPrompt assembles the full system prompt for a role: effective
// instructions, industry profile when one applies, and the response spec.
func (r *repo) SystemPrompt(ctx context.Context, role Role, industry Industry) (string, error) {
	text, err := r.Instructions(ctx, role, industry)
	if err != nil {
		return "", err
	}

	spec, err := Spec(role)
	if err != nil {
		return "", err
	}

	sections := []string{text}
	if profile := IndustryProfile(industry); profile != "" {
		sections = append(sections, profile)
	}
	sections = append(sections, spec)

	return strings.Join(sections, "\n\n"), nil
}

func (r *repo) activeOverride(ctx context.Context, role Role, industry Industry) (string, error) {
	var text string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT instructions FROM prompts WHERE role = $1 AND industry = $2 AND active = true LIMIT 1",
		role,
		industry,
	).Scan(&text)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("query active override: %w", err)
	}
	return text, nil
}
