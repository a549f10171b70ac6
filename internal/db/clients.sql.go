package db

import (
	"context"
	"database/sql"
)

const clientColumns = `c.id, c.name, c.account_id, c.billing_unit, c.address, c.period_day, c.created_at, c.updated_at`

type ClientRow struct {
	Client
	AccountName string
}

func scanClientRow(row interface{ Scan(...interface{}) error }) (ClientRow, error) {
	var i ClientRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.AccountID,
		&i.BillingUnit,
		&i.Address,
		&i.PeriodDay,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.AccountName,
	)
	return i, err
}

const createClient = `-- name: CreateClient :one
INSERT INTO clients (name, account_id, billing_unit, address, period_day)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateClientParams struct {
	Name        string
	AccountID   int64
	BillingUnit string
	Address     string
	PeriodDay   int64
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createClient,
		arg.Name,
		arg.AccountID,
		arg.BillingUnit,
		arg.Address,
		arg.PeriodDay,
	).Scan(&id)
	return id, err
}

const getClientByID = `-- name: GetClientByID :one
SELECT ` + clientColumns + `, a.name AS account_name
FROM clients c
JOIN accounts a ON a.id = c.account_id
WHERE c.id = ?`

func (q *Queries) GetClientByID(ctx context.Context, id int64) (ClientRow, error) {
	return scanClientRow(q.db.QueryRowContext(ctx, getClientByID, id))
}

const getClientByName = `-- name: GetClientByName :one
SELECT ` + clientColumns + `, a.name AS account_name
FROM clients c
JOIN accounts a ON a.id = c.account_id
WHERE c.name = ?`

func (q *Queries) GetClientByName(ctx context.Context, name string) (ClientRow, error) {
	return scanClientRow(q.db.QueryRowContext(ctx, getClientByName, name))
}

const listClients = `-- name: ListClients :many
SELECT ` + clientColumns + `, a.name AS account_name
FROM clients c
JOIN accounts a ON a.id = c.account_id
ORDER BY c.name`

func (q *Queries) ListClients(ctx context.Context) ([]ClientRow, error) {
	rows, err := q.db.QueryContext(ctx, listClients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ClientRow
	for rows.Next() {
		i, err := scanClientRow(rows)
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

const updateClient = `-- name: UpdateClient :exec
UPDATE clients SET
    account_id = COALESCE(?, account_id),
    billing_unit = COALESCE(?, billing_unit),
    address = COALESCE(?, address),
    period_day = COALESCE(?, period_day),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type UpdateClientParams struct {
	AccountID   sql.NullInt64
	BillingUnit sql.NullString
	Address     sql.NullString
	PeriodDay   sql.NullInt64
	ID          int64
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) error {
	_, err := q.db.ExecContext(ctx, updateClient,
		arg.AccountID,
		arg.BillingUnit,
		arg.Address,
		arg.PeriodDay,
		arg.ID,
	)
	return err
}

const deleteClient = `-- name: DeleteClient :execrows
DELETE FROM clients WHERE id = ?`

func (q *Queries) DeleteClient(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteClient, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countAccountClients = `-- name: CountAccountClients :one
SELECT COUNT(*) FROM clients WHERE account_id = ?`

func (q *Queries) CountAccountClients(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAccountClients, accountID).Scan(&count)
	return count, err
}

const countClientRecords = `-- name: CountClientRecords :one
SELECT (SELECT COUNT(*) FROM invoices WHERE client_id = ?1) + (SELECT COUNT(*) FROM timesheets WHERE client_id = ?1)`

func (q *Queries) CountClientRecords(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countClientRecords, clientID).Scan(&count)
	return count, err
}

const countClients = `-- name: CountClients :one
SELECT COUNT(*) FROM clients`

func (q *Queries) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countClients).Scan(&count)
	return count, err
}
