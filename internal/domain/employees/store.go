package employees

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrmaccess/internal/domain/access"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const selectEmployees = `
    SELECT e.id::text,
           COALESCE(e.user_id::text, ''),
           COALESCE(e.department_id::text, ''),
           COALESCE(e.position_id::text, ''),
           COALESCE(e.manager_id::text, ''),
           e.status, e.profile, e.created_at, e.updated_at,
           d.id::text, d.name, d.description,
           p.id::text, p.title, p.description,
           m.id::text, m.profile->>'firstName', m.profile->>'lastName', m.profile->>'email',
           u.id::text, u.first_name, u.last_name, u.email
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    LEFT JOIN positions p ON p.id = e.position_id
    LEFT JOIN employees m ON m.id = e.manager_id
    LEFT JOIN users u ON u.id = e.user_id`

func scanEmployee(row pgx.Row) (access.Record, error) {
	var r employeeRow
	err := row.Scan(
		&r.ID, &r.UserID, &r.DepartmentID, &r.PositionID, &r.ManagerID,
		&r.Status, &r.Profile, &r.CreatedAt, &r.UpdatedAt,
		&r.DeptID, &r.DeptName, &r.DeptDescription,
		&r.PosID, &r.PosTitle, &r.PosDescription,
		&r.MgrID, &r.MgrFirst, &r.MgrLast, &r.MgrMail,
		&r.UsrID, &r.UsrFirst, &r.UsrLast, &r.UsrMail,
	)
	if err != nil {
		return nil, err
	}
	return r.record(), nil
}

func buildListWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case filter.ManagerID != "" && filter.EmployeeID != "":
		clauses = append(clauses, fmt.Sprintf("(e.manager_id::text = %s OR e.id::text = %s)", arg(filter.ManagerID), arg(filter.EmployeeID)))
	case filter.ManagerID != "":
		clauses = append(clauses, "e.manager_id::text = "+arg(filter.ManagerID))
	case filter.EmployeeID != "":
		clauses = append(clauses, "e.id::text = "+arg(filter.EmployeeID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := arg(search)
		clauses = append(clauses, fmt.Sprintf(`(e.profile->>'firstName' ILIKE ('%%' || %[1]s::text || '%%')
        OR e.profile->>'lastName' ILIKE ('%%' || %[1]s::text || '%%')
        OR e.profile->>'email' ILIKE ('%%' || %[1]s::text || '%%')
        OR e.profile->>'employeeCode' ILIKE ('%%' || %[1]s::text || '%%'))`, p))
	}
	if filter.DepartmentID != "" {
		clauses = append(clauses, "e.department_id::text = "+arg(filter.DepartmentID))
	}
	if filter.Status != "" {
		clauses = append(clauses, "e.status = "+arg(filter.Status))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]access.Record, error) {
	where, args := buildListWhere(filter)
	query := selectEmployees + where + " ORDER BY e.profile->>'firstName', e.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []access.Record
	for rows.Next() {
		rec, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildListWhere(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees e"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, employeeID string) (access.Record, error) {
	rec, err := scanEmployee(s.DB.QueryRow(ctx, selectEmployees+" WHERE e.id::text = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// buildUpdate writes column fields directly and merges the rest into the
// profile document. An empty query means there is nothing to write.
func buildUpdate(employeeID string, changes access.Record) (string, []any, error) {
	profile := access.Record{}
	var sets []string
	var args []any

	for _, field := range slices.Sorted(maps.Keys(changes)) {
		if _, ok := readOnlyFields[field]; ok {
			continue
		}
		value := changes[field]
		column, isColumn := columnFields[field]
		if !isColumn {
			profile[field] = value
			continue
		}
		if value != nil {
			if _, ok := value.(string); !ok {
				return "", nil, fmt.Errorf("%w: %s must be a string", ErrInvalidValue, field)
			}
		}
		args = append(args, value)
		if column == "status" {
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		} else {
			sets = append(sets, fmt.Sprintf("%s = NULLIF($%d, '')::uuid", column, len(args)))
		}
	}

	if len(profile) > 0 {
		payload, err := json.Marshal(profile)
		if err != nil {
			return "", nil, err
		}
		args = append(args, payload)
		sets = append(sets, fmt.Sprintf("profile = profile || $%d::jsonb", len(args)))
	}
	if len(sets) == 0 {
		return "", nil, nil
	}

	args = append(args, employeeID)
	query := fmt.Sprintf("UPDATE employees SET %s, updated_at = now() WHERE id::text = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func execUpdate(ctx context.Context, db execer, employeeID string, changes access.Record) error {
	query, args, err := buildUpdate(employeeID, changes)
	if err != nil || query == "" {
		return err
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", employeeID, ErrNotFound)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, employeeID string, changes access.Record) error {
	return execUpdate(ctx, s.DB, employeeID, changes)
}

func (s *Store) UpdateMany(ctx context.Context, employeeIDs []string, changes access.Record) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range employeeIDs {
		if err := execUpdate(ctx, tx, id, changes); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
