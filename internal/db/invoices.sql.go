package db

import (
	"context"
	"database/sql"
)

const invoiceColumns = `i.id, i.number_prefix, i.number_seq, i.client_id, i.template_id, i.date, i.particulars, i.status, i.generated_path, i.created_at, i.updated_at`

type InvoiceRow struct {
	Invoice
	ClientName   string
	TemplateName string
}

func scanInvoiceRow(row interface{ Scan(...interface{}) error }) (InvoiceRow, error) {
	var i InvoiceRow
	err := row.Scan(
		&i.ID,
		&i.NumberPrefix,
		&i.NumberSeq,
		&i.ClientID,
		&i.TemplateID,
		&i.Date,
		&i.Particulars,
		&i.Status,
		&i.GeneratedPath,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClientName,
		&i.TemplateName,
	)
	return i, err
}

func collectInvoiceRows(rows *sql.Rows) ([]InvoiceRow, error) {
	defer rows.Close()
	var items []InvoiceRow
	for rows.Next() {
		i, err := scanInvoiceRow(rows)
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

const createInvoice = `-- name: CreateInvoice :one
INSERT INTO invoices (client_id, template_id, date, particulars, status)
VALUES (?, ?, ?, ?, 'draft')
RETURNING id`

type CreateInvoiceParams struct {
	ClientID    int64
	TemplateID  int64
	Date        string
	Particulars string
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createInvoice,
		arg.ClientID,
		arg.TemplateID,
		arg.Date,
		arg.Particulars,
	).Scan(&id)
	return id, err
}

const getInvoiceByID = `-- name: GetInvoiceByID :one
SELECT ` + invoiceColumns + `, c.name AS client_name, tp.name AS template_name
FROM invoices i
JOIN clients c ON c.id = i.client_id
JOIN templates tp ON tp.id = i.template_id
WHERE i.id = ?`

func (q *Queries) GetInvoiceByID(ctx context.Context, id int64) (InvoiceRow, error) {
	return scanInvoiceRow(q.db.QueryRowContext(ctx, getInvoiceByID, id))
}

const selectInvoices = `-- name: SelectInvoices :many
SELECT ` + invoiceColumns + `, c.name AS client_name, tp.name AS template_name
FROM invoices i
JOIN clients c ON c.id = i.client_id
JOIN templates tp ON tp.id = i.template_id
WHERE i.date >= ?1
  AND i.date <= ?2
  AND (?3 = '' OR c.name = ?3)
  AND (?4 OR i.status != 'cancelled')
  AND (?5 = '[]' OR EXISTS (
        SELECT 1 FROM invoice_tags it
        JOIN tags g ON g.id = it.tag_id
        WHERE it.invoice_id = i.id
          AND g.name IN (SELECT value FROM json_each(?5))
  ))
ORDER BY i.date ASC, i.id ASC`

type SelectInvoicesParams struct {
	FromDate         string
	ToDate           string
	ClientName       string
	IncludeCancelled bool
	// Tags is a JSON array of tag names; "[]" disables the tag filter.
	Tags string
}

func (q *Queries) SelectInvoices(ctx context.Context, arg SelectInvoicesParams) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, selectInvoices,
		arg.FromDate,
		arg.ToDate,
		arg.ClientName,
		arg.IncludeCancelled,
		arg.Tags,
	)
	if err != nil {
		return nil, err
	}
	return collectInvoiceRows(rows)
}

const listInvoicesByStatus = `-- name: ListInvoicesByStatus :many
SELECT ` + invoiceColumns + `, c.name AS client_name, tp.name AS template_name
FROM invoices i
JOIN clients c ON c.id = i.client_id
JOIN templates tp ON tp.id = i.template_id
WHERE i.status = ?
ORDER BY i.date ASC, i.id ASC`

func (q *Queries) ListInvoicesByStatus(ctx context.Context, status string) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvoicesByStatus, status)
	if err != nil {
		return nil, err
	}
	return collectInvoiceRows(rows)
}

const updateInvoice = `-- name: UpdateInvoice :exec
UPDATE invoices SET
    client_id = COALESCE(?, client_id),
    template_id = COALESCE(?, template_id),
    date = COALESCE(?, date),
    particulars = COALESCE(?, particulars),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type UpdateInvoiceParams struct {
	ClientID    sql.NullInt64
	TemplateID  sql.NullInt64
	Date        sql.NullString
	Particulars sql.NullString
	ID          int64
}

func (q *Queries) UpdateInvoice(ctx context.Context, arg UpdateInvoiceParams) error {
	_, err := q.db.ExecContext(ctx, updateInvoice,
		arg.ClientID,
		arg.TemplateID,
		arg.Date,
		arg.Particulars,
		arg.ID,
	)
	return err
}

const setInvoiceStatus = `-- name: SetInvoiceStatus :exec
UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type SetInvoiceStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) SetInvoiceStatus(ctx context.Context, arg SetInvoiceStatusParams) error {
	_, err := q.db.ExecContext(ctx, setInvoiceStatus, arg.Status, arg.ID)
	return err
}

const nextInvoiceSeq = `-- name: NextInvoiceSeq :one
SELECT COALESCE(MAX(number_seq), 0) + 1 FROM invoices WHERE number_prefix = ?`

func (q *Queries) NextInvoiceSeq(ctx context.Context, prefix string) (int64, error) {
	var next int64
	err := q.db.QueryRowContext(ctx, nextInvoiceSeq, prefix).Scan(&next)
	return next, err
}

const assignInvoiceNumber = `-- name: AssignInvoiceNumber :execrows
UPDATE invoices SET number_prefix = ?, number_seq = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND number_seq IS NULL`

type AssignInvoiceNumberParams struct {
	NumberPrefix string
	NumberSeq    int64
	ID           int64
}

func (q *Queries) AssignInvoiceNumber(ctx context.Context, arg AssignInvoiceNumberParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, assignInvoiceNumber, arg.NumberPrefix, arg.NumberSeq, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markInvoiceGenerated = `-- name: MarkInvoiceGenerated :exec
UPDATE invoices SET
    status = CASE WHEN status = 'cancelled' THEN status ELSE 'generated' END,
    generated_path = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type MarkInvoiceGeneratedParams struct {
	GeneratedPath string
	ID            int64
}

func (q *Queries) MarkInvoiceGenerated(ctx context.Context, arg MarkInvoiceGeneratedParams) error {
	_, err := q.db.ExecContext(ctx, markInvoiceGenerated, arg.GeneratedPath, arg.ID)
	return err
}

const deleteInvoice = `-- name: DeleteInvoice :execrows
DELETE FROM invoices WHERE id = ? AND number_seq IS NULL`

func (q *Queries) DeleteInvoice(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInvoice, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countInvoicesByStatus = `-- name: CountInvoicesByStatus :many
SELECT status, COUNT(*) FROM invoices GROUP BY status ORDER BY status`

type CountInvoicesByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountInvoicesByStatus(ctx context.Context) ([]CountInvoicesByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countInvoicesByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountInvoicesByStatusRow
	for rows.Next() {
		var i CountInvoicesByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
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

const createInvoiceItem = `-- name: CreateInvoiceItem :one
INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price)
VALUES (?1, (SELECT COALESCE(MAX(position), 0) + 1 FROM invoice_items WHERE invoice_id = ?1), ?2, ?3, ?4)
RETURNING id, invoice_id, position, description, quantity, unit_price`

type CreateInvoiceItemParams struct {
	InvoiceID   int64
	Description string
	Quantity    string
	UnitPrice   string
}

func (q *Queries) CreateInvoiceItem(ctx context.Context, arg CreateInvoiceItemParams) (InvoiceItem, error) {
	var i InvoiceItem
	err := q.db.QueryRowContext(ctx, createInvoiceItem,
		arg.InvoiceID,
		arg.Description,
		arg.Quantity,
		arg.UnitPrice,
	).Scan(&i.ID, &i.InvoiceID, &i.Position, &i.Description, &i.Quantity, &i.UnitPrice)
	return i, err
}

const listInvoiceItems = `-- name: ListInvoiceItems :many
SELECT id, invoice_id, position, description, quantity, unit_price
FROM invoice_items WHERE invoice_id = ? ORDER BY position, id`

func (q *Queries) ListInvoiceItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	rows, err := q.db.QueryContext(ctx, listInvoiceItems, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceItem
	for rows.Next() {
		var i InvoiceItem
		if err := rows.Scan(&i.ID, &i.InvoiceID, &i.Position, &i.Description, &i.Quantity, &i.UnitPrice); err != nil {
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

const deleteInvoiceItem = `-- name: DeleteInvoiceItem :execrows
DELETE FROM invoice_items WHERE invoice_id = ? AND position = ?`

type DeleteInvoiceItemParams struct {
	InvoiceID int64
	Position  int64
}

func (q *Queries) DeleteInvoiceItem(ctx context.Context, arg DeleteInvoiceItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInvoiceItem, arg.InvoiceID, arg.Position)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
