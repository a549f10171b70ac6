package db

import (
	"context"
)

const createTag = `-- name: CreateTag :one
INSERT INTO tags (name) VALUES (?)
RETURNING id, name, created_at`

func (q *Queries) CreateTag(ctx context.Context, name string) (Tag, error) {
	var i Tag
	err := q.db.QueryRowContext(ctx, createTag, name).Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const getTagByName = `-- name: GetTagByName :one
SELECT id, name, created_at FROM tags WHERE name = ?`

func (q *Queries) GetTagByName(ctx context.Context, name string) (Tag, error) {
	var i Tag
	err := q.db.QueryRowContext(ctx, getTagByName, name).Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listTags = `-- name: ListTags :many
SELECT id, name, created_at FROM tags ORDER BY name`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, listTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		var i Tag
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
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

const deleteTag = `-- name: DeleteTag :execrows
DELETE FROM tags WHERE name = ?`

func (q *Queries) DeleteTag(ctx context.Context, name string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTag, name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listInvoiceTags = `-- name: ListInvoiceTags :many
SELECT t.name FROM invoice_tags it
JOIN tags t ON t.id = it.tag_id
WHERE it.invoice_id = ?
ORDER BY t.name`

func (q *Queries) ListInvoiceTags(ctx context.Context, invoiceID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listInvoiceTags, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addInvoiceTag = `-- name: AddInvoiceTag :exec
INSERT OR IGNORE INTO invoice_tags (invoice_id, tag_id) VALUES (?, ?)`

type AddInvoiceTagParams struct {
	InvoiceID int64
	TagID     int64
}

func (q *Queries) AddInvoiceTag(ctx context.Context, arg AddInvoiceTagParams) error {
	_, err := q.db.ExecContext(ctx, addInvoiceTag, arg.InvoiceID, arg.TagID)
	return err
}

const clearInvoiceTags = `-- name: ClearInvoiceTags :exec
DELETE FROM invoice_tags WHERE invoice_id = ?`

func (q *Queries) ClearInvoiceTags(ctx context.Context, invoiceID int64) error {
	_, err := q.db.ExecContext(ctx, clearInvoiceTags, invoiceID)
	return err
}
