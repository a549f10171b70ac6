package db

import (
	"context"
	"database/sql"
)

const accountColumns = `id, name, signatory, address, phone, email, pan, service_tax, bank_details, prefix, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Signatory,
		&i.Address,
		&i.Phone,
		&i.Email,
		&i.Pan,
		&i.ServiceTax,
		&i.BankDetails,
		&i.Prefix,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (name, signatory, address, phone, email, pan, service_tax, bank_details, prefix)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	Name        string
	Signatory   string
	Address     string
	Phone       string
	Email       string
	Pan         sql.NullString
	ServiceTax  sql.NullString
	BankDetails string
	Prefix      sql.NullString
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.Name,
		arg.Signatory,
		arg.Address,
		arg.Phone,
		arg.Email,
		arg.Pan,
		arg.ServiceTax,
		arg.BankDetails,
		arg.Prefix,
	)
	return scanAccount(row)
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByName = `-- name: GetAccountByName :one
SELECT ` + accountColumns + ` FROM accounts WHERE name = ?`

func (q *Queries) GetAccountByName(ctx context.Context, name string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByName, name))
}

const listAccounts = `-- name: ListAccounts :many
SELECT ` + accountColumns + ` FROM accounts ORDER BY name`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		i, err := scanAccount(rows)
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

const updateAccount = `-- name: UpdateAccount :one
UPDATE accounts SET
    signatory = COALESCE(?, signatory),
    address = COALESCE(?, address),
    phone = COALESCE(?, phone),
    email = COALESCE(?, email),
    pan = COALESCE(?, pan),
    service_tax = COALESCE(?, service_tax),
    bank_details = COALESCE(?, bank_details),
    prefix = COALESCE(?, prefix),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + accountColumns

type UpdateAccountParams struct {
	Signatory   sql.NullString
	Address     sql.NullString
	Phone       sql.NullString
	Email       sql.NullString
	Pan         sql.NullString
	ServiceTax  sql.NullString
	BankDetails sql.NullString
	Prefix      sql.NullString
	ID          int64
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, updateAccount,
		arg.Signatory,
		arg.Address,
		arg.Phone,
		arg.Email,
		arg.Pan,
		arg.ServiceTax,
		arg.BankDetails,
		arg.Prefix,
		arg.ID,
	)
	return scanAccount(row)
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countAccounts = `-- name: CountAccounts :one
SELECT COUNT(*) FROM accounts`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAccounts).Scan(&count)
	return count, err
}
