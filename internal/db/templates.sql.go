package db

import (
	"context"
	"database/sql"
)

const templateColumns = `id, name, description, letterhead, slots, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (Template, error) {
	var i Template
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Letterhead,
		&i.Slots,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTemplate = `-- name: CreateTemplate :one
INSERT INTO templates (name, description, letterhead, slots)
VALUES (?, ?, ?, ?)
RETURNING ` + templateColumns

type CreateTemplateParams struct {
	Name        string
	Description string
	Letterhead  []byte
	Slots       string
}

func (q *Queries) CreateTemplate(ctx context.Context, arg CreateTemplateParams) (Template, error) {
	row := q.db.QueryRowContext(ctx, createTemplate,
		arg.Name,
		arg.Description,
		nullableBytes(arg.Letterhead),
		arg.Slots,
	)
	return scanTemplate(row)
}

const getTemplateByID = `-- name: GetTemplateByID :one
SELECT ` + templateColumns + ` FROM templates WHERE id = ?`

func (q *Queries) GetTemplateByID(ctx context.Context, id int64) (Template, error) {
	return scanTemplate(q.db.QueryRowContext(ctx, getTemplateByID, id))
}

const getTemplateByName = `-- name: GetTemplateByName :one
SELECT ` + templateColumns + ` FROM templates WHERE name = ?`

func (q *Queries) GetTemplateByName(ctx context.Context, name string) (Template, error) {
	return scanTemplate(q.db.QueryRowContext(ctx, getTemplateByName, name))
}

const listTemplates = `-- name: ListTemplates :many
SELECT ` + templateColumns + ` FROM templates ORDER BY name`

func (q *Queries) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := q.db.QueryContext(ctx, listTemplates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Template
	for rows.Next() {
		i, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTemplate = `-- name: UpdateTemplate :one
UPDATE templates SET
    description = COALESCE(?, description),
    letterhead = COALESCE(?, letterhead),
    slots = COALESCE(?, slots),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + templateColumns

type UpdateTemplateParams struct {
	Description sql.NullString
	Letterhead  []byte
	Slots       sql.NullString
	ID          int64
}

func (q *Queries) UpdateTemplate(ctx context.Context, arg UpdateTemplateParams) (Template, error) {
	row := q.db.QueryRowContext(ctx, updateTemplate,
		arg.Description,
		nullableBytes(arg.Letterhead),
		arg.Slots,
		arg.ID,
	)
	return scanTemplate(row)
}

const deleteTemplate = `-- name: DeleteTemplate :execrows
DELETE FROM templates WHERE id = ?`

func (q *Queries) DeleteTemplate(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTemplate, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTemplateReferences = `-- name: CountTemplateReferences :one
SELECT (SELECT COUNT(*) FROM invoices WHERE template_id = ?1) + (SELECT COUNT(*) FROM timesheets WHERE template_id = ?1)`

func (q *Queries) CountTemplateReferences(ctx context.Context, templateID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countTemplateReferences, templateID).Scan(&count)
	return count, err
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
