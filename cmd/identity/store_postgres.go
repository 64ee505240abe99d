package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Error codes attached (via oops) to the causes inside StoreError.
const (
	CodeStoreSchema = "USER_STORE_SCHEMA"
	CodeStoreInsert = "USER_STORE_INSERT"
	CodeStoreQuery  = "USER_STORE_QUERY"
	CodeStoreScan   = "USER_STORE_SCAN"
)

// DB is the subset of *pgxpool.Pool the store needs (pgxmock satisfies it too).
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store over PostgreSQL.
//
// The pool is owned by the caller; this store never closes it.
// Schema/table identifiers are quoted via pgx.Identifier.
type PostgresStore struct {
	db     DB
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "authsvc").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db DB, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		db:     db,
		schema: "authsvc",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.db == nil {
		return nil, fmt.Errorf("identity: nil db")
	}
	return st, nil
}

// EnsureSchema creates the schema and users table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const op = "identity.PostgresStore.EnsureSchema"

	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{s.schema}.Sanitize(),
		`CREATE TABLE IF NOT EXISTS ` + s.users() + ` (
			id            uuid PRIMARY KEY,
			email         text NOT NULL,
			password_hash text NOT NULL,
			created_at    timestamptz NOT NULL DEFAULT now(),
			CONSTRAINT uq_users_email UNIQUE (email)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return StoreError{Op: op, Err: oops.Code(CodeStoreSchema).With("schema", s.schema).Wrap(err)}
		}
	}
	return nil
}

// Insert registers u. A duplicate email is a ConflictError.
func (s *PostgresStore) Insert(ctx context.Context, u User) error {
	const op = "identity.PostgresStore.Insert"

	_, err := s.db.Exec(ctx,
		`INSERT INTO `+s.users()+` (id, email, password_hash) VALUES ($1, $2, $3)`,
		u.ID.String(), u.Email, u.PasswordHash,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return ConflictError{Op: op, Field: "email"}
		}
		return StoreError{Op: op, Err: oops.Code(CodeStoreInsert).Wrap(err)}
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	const op = "identity.PostgresStore.FindByEmail"

	row := s.db.QueryRow(ctx,
		`SELECT id::text, email, password_hash FROM `+s.users()+` WHERE email = $1`,
		email,
	)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, StoreError{Op: op, Err: err}
	}
	return u, true, nil
}

// FindAll returns users in registration order.
func (s *PostgresStore) FindAll(ctx context.Context) ([]User, error) {
	const op = "identity.PostgresStore.FindAll"

	rows, err := s.db.Query(ctx,
		`SELECT id::text, email, password_hash FROM `+s.users()+` ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, StoreError{Op: op, Err: oops.Code(CodeStoreQuery).With("schema", s.schema).Wrap(err)}
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, StoreError{Op: op, Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreError{Op: op, Err: oops.Code(CodeStoreQuery).With("schema", s.schema).Wrap(err)}
	}
	return users, nil
}

func (s *PostgresStore) users() string {
	return pgx.Identifier{s.schema, "users"}.Sanitize()
}

func scanUser(row pgx.Row) (User, error) {
	var (
		rawID string
		u     User
	)
	if err := row.Scan(&rawID, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, err
		}
		return User{}, oops.Code(CodeStoreScan).Wrap(err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return User{}, oops.Code(CodeStoreScan).With("id", rawID).Wrap(err)
	}
	u.ID = id
	return u, nil
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation
}
