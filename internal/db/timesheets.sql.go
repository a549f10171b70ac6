package db

import (
	"context"
	"database/sql"
)

const timesheetColumns = `t.id, t.date, t.employee, t.client_id, t.description, t.template_id, t.content, t.generated_path, t.created_at, t.updated_at`

type TimesheetRow struct {
	Timesheet
	ClientName   string
	TemplateName string
}

func scanTimesheetRow(row interface{ Scan(...interface{}) error }) (TimesheetRow, error) {
	var i TimesheetRow
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Employee,
		&i.ClientID,
		&i.Description,
		&i.TemplateID,
		&i.Content,
		&i.GeneratedPath,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClientName,
		&i.TemplateName,
	)
	return i, err
}

const createTimesheet = `-- name: CreateTimesheet :one
INSERT INTO timesheets (date, employee, client_id, description, template_id, content)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateTimesheetParams struct {
	Date        string
	Employee    string
	ClientID    int64
	Description string
	TemplateID  int64
	Content     string
}

func (q *Queries) CreateTimesheet(ctx context.Context, arg CreateTimesheetParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTimesheet,
		arg.Date,
		arg.Employee,
		arg.ClientID,
		arg.Description,
		arg.TemplateID,
		arg.Content,
	).Scan(&id)
	return id, err
}

const getTimesheetByID = `-- name: GetTimesheetByID :one
SELECT ` + timesheetColumns + `, c.name AS client_name, tp.name AS template_name
FROM timesheets t
JOIN clients c ON c.id = t.client_id
JOIN templates tp ON tp.id = t.template_id
WHERE t.id = ?`

func (q *Queries) GetTimesheetByID(ctx context.Context, id int64) (TimesheetRow, error) {
	return scanTimesheetRow(q.db.QueryRowContext(ctx, getTimesheetByID, id))
}

const selectTimesheets = `-- name: SelectTimesheets :many
SELECT ` + timesheetColumns + `, c.name AS client_name, tp.name AS template_name
FROM timesheets t
JOIN clients c ON c.id = t.client_id
JOIN templates tp ON tp.id = t.template_id
WHERE t.date >= ?1
  AND t.date <= ?2
  AND (?3 = '' OR c.name = ?3)
  AND (?4 IS NULL OR t.employee = ?4)
ORDER BY t.date ASC, t.id ASC`

type SelectTimesheetsParams struct {
	FromDate   string
	ToDate     string
	ClientName string
	Employee   sql.NullString
}

func (q *Queries) SelectTimesheets(ctx context.Context, arg SelectTimesheetsParams) ([]TimesheetRow, error) {
	rows, err := q.db.QueryContext(ctx, selectTimesheets,
		arg.FromDate,
		arg.ToDate,
		arg.ClientName,
		arg.Employee,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TimesheetRow
	for rows.Next() {
		i, err := scanTimesheetRow(rows)
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

const updateTimesheet = `-- name: UpdateTimesheet :exec
UPDATE timesheets SET
    date = COALESCE(?, date),
    employee = COALESCE(?, employee),
    client_id = COALESCE(?, client_id),
    description = COALESCE(?, description),
    template_id = COALESCE(?, template_id),
    content = COALESCE(?, content),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type UpdateTimesheetParams struct {
	Date        sql.NullString
	Employee    sql.NullString
	ClientID    sql.NullInt64
	Description sql.NullString
	TemplateID  sql.NullInt64
	Content     sql.NullString
	ID          int64
}

func (q *Queries) UpdateTimesheet(ctx context.Context, arg UpdateTimesheetParams) error {
	_, err := q.db.ExecContext(ctx, updateTimesheet,
		arg.Date,
		arg.Employee,
		arg.ClientID,
		arg.Description,
		arg.TemplateID,
		arg.Content,
		arg.ID,
	)
	return err
}

const markTimesheetGenerated = `-- name: MarkTimesheetGenerated :exec
UPDATE timesheets SET generated_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type MarkTimesheetGeneratedParams struct {
	GeneratedPath string
	ID            int64
}

func (q *Queries) MarkTimesheetGenerated(ctx context.Context, arg MarkTimesheetGeneratedParams) error {
	_, err := q.db.ExecContext(ctx, markTimesheetGenerated, arg.GeneratedPath, arg.ID)
	return err
}

const deleteTimesheet = `-- name: DeleteTimesheet :execrows
DELETE FROM timesheets WHERE id = ?`

func (q *Queries) DeleteTimesheet(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTimesheet, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTimesheets = `-- name: CountTimesheets :one
SELECT COUNT(*), COUNT(generated_path) FROM timesheets`

type CountTimesheetsRow struct {
	Total     int64
	Generated int64
}

func (q *Queries) CountTimesheets(ctx context.Context) (CountTimesheetsRow, error) {
	var i CountTimesheetsRow
	err := q.db.QueryRowContext(ctx, countTimesheets).Scan(&i.Total, &i.Generated)
	return i, err
}
