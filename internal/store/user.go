// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"blogicum/internal/models"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (username, category slug).
var ErrDuplicate = errors.New("duplicate value")

// psql renders $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash",
	"is_superuser", "totp_secret", "totp_enabled", "created_at", "updated_at",
}

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsSuperuser, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// findOne returns the single user matching where, or nil.
func (s *UserStore) findOne(where sq.Sqlizer, what string) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}
	u, err := scanUser(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return u, nil
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(username string) (*models.User, error) {
	return s.findOne(sq.Eq{"username": username}, "find user by username")
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	return s.findOne(sq.Eq{"id": id}, "find user by id")
}

// List returns all users, oldest first.
func (s *UserStore) List() ([]models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user with a bcrypt-hashed password. Returns
// ErrDuplicate when the username is taken.
func (s *UserStore) Create(username, email, password string, superuser bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query, args, err := psql.Insert("users").
		Columns("username", "email", "password_hash", "is_superuser").
		Values(username, email, string(hash), superuser).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create user: %w", err)
	}

	u, err := scanUser(s.db.QueryRow(query, args...))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateProfile saves the editable profile fields of a user. Returns
// ErrDuplicate when the new username is taken by someone else.
func (s *UserStore) UpdateProfile(u *models.User) error {
	query, args, err := psql.Update("users").
		SetMap(map[string]any{
			"username":   u.Username,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"updated_at": sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": u.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update profile: %w", err)
	}

	err = s.db.QueryRow(query, args...).Scan(&u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// setFields writes the given columns of one user and bumps updated_at.
func (s *UserStore) setFields(userID uuid.UUID, what string, fields map[string]any) error {
	fields["updated_at"] = sq.Expr("NOW()")
	query, args, err := psql.Update("users").SetMap(fields).Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// SetTOTPSecret stores a freshly generated secret during 2FA setup. 2FA
// stays off until EnableTOTP.
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	return s.setFields(userID, "set totp secret", map[string]any{"totp_secret": secret})
}

// EnableTOTP turns 2FA on once the user proved they hold the secret.
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	return s.setFields(userID, "enable totp", map[string]any{"totp_enabled": true})
}

// ResetTOTP clears the secret and turns 2FA off.
func (s *UserStore) ResetTOTP(userID uuid.UUID) error {
	return s.setFields(userID, "reset totp", map[string]any{"totp_secret": nil, "totp_enabled": false})
}

// Delete removes a user by ID. Their posts and comments go with them.
func (s *UserStore) Delete(userID uuid.UUID) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete user: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
