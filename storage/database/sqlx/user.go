package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/user"
)

const userColumns = `id, name, username, email, is_active, roles, password_hash, skills, learning_goals,
learning_style, resume_text, completed_modules, badges, created_at, updated_at, last_login`

type userRow struct {
	ID               string         `db:"id"`
	Name             null.String    `db:"name"`
	Username         null.String    `db:"username"`
	Email            null.String    `db:"email"`
	IsActive         null.Bool      `db:"is_active"`
	Roles            pq.StringArray `db:"roles"`
	PasswordHash     null.Bytes     `db:"password_hash"`
	Skills           pq.StringArray `db:"skills"`
	LearningGoals    pq.StringArray `db:"learning_goals"`
	LearningStyle    null.String    `db:"learning_style"`
	ResumeText       null.String    `db:"resume_text"`
	CompletedModules pq.StringArray `db:"completed_modules"`
	Badges           pq.StringArray `db:"badges"`
	CreatedAt        null.Time      `db:"created_at"`
	UpdatedAt        null.Time      `db:"updated_at"`
	LastLogin        null.Time      `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB, conf *core.Config) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, conf.Database.Engine)}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:               usr.ID,
		Name:             null.NewString(usr.Name, usr.Name != ""),
		Username:         null.NewString(usr.Username, usr.Username != ""),
		Email:            null.NewString(usr.Email, usr.Email != ""),
		IsActive:         null.BoolFromPtr(usr.IsActive),
		Roles:            usr.Roles,
		PasswordHash:     null.BytesFrom(usr.PasswordHash),
		Skills:           usr.Skills,
		LearningGoals:    usr.LearningGoals,
		LearningStyle:    null.NewString(usr.LearningStyle, usr.LearningStyle != ""),
		ResumeText:       null.NewString(usr.ResumeText, usr.ResumeText != ""),
		CompletedModules: usr.CompletedModules,
		Badges:           usr.Badges,
		CreatedAt:        null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:        null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:        null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:               row.ID,
		Name:             row.Name.String,
		Username:         row.Username.String,
		Email:            row.Email.String,
		IsActive:         row.IsActive.Ptr(),
		Roles:            row.Roles,
		PasswordHash:     row.PasswordHash.Bytes,
		Skills:           row.Skills,
		LearningGoals:    row.LearningGoals,
		LearningStyle:    row.LearningStyle.String,
		ResumeText:       row.ResumeText.String,
		CompletedModules: row.CompletedModules,
		Badges:           row.Badges,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
		LastLogin:        row.LastLogin.Time,
	}
}

func (repo userRepository) fromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2) AND id != ALL($3)`

	excludedIDs := make(pq.StringArray, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excludedIDs = append(excludedIDs, u.ID)
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, username, email, excludedIDs); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if username != "" && row.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.toRow(usr)

	q := `
INSERT INTO "user" (` + userColumns + `)
VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :skills, :learning_goals,
        :learning_style, :resume_text, :completed_modules, :badges, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) getUser(ctx context.Context, where string, msg string, args ...interface{}) (user.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE ` + where
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, msg)
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, "id = $1", "finding user by ID", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = $1", "finding user by username", username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", "finding user by email", email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = $1 OR email = $1", "finding user", username)
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	// users with Name, Username or Email matching the search keyword
	if filter.Search != "" {
		val := arg("%" + filter.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", val))
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		roleClauses := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roleClauses = append(roleClauses,
				fmt.Sprintf("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE %s)", arg(role+"%")))
		}
		clauses = append(clauses, "("+strings.Join(roleClauses, " OR ")+")")
	}
	if filter.IsActive != nil {
		clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		clauses = append(clauses, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		clauses = append(clauses, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT ` + userColumns + ` FROM "user"`
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		q += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.fromRows(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if usr.Name != "" {
		set("name", usr.Name)
	}
	if usr.Username != "" {
		set("username", usr.Username)
	}
	if usr.Email != "" {
		set("email", usr.Email)
	}
	if usr.Roles != nil {
		set("roles", pq.StringArray(usr.Roles))
	}
	if len(usr.PasswordHash) > 0 {
		set("password_hash", usr.PasswordHash)
	}
	if isActive != nil {
		set("is_active", *isActive)
	}
	set("updated_at", usr.UpdatedAt.UTC())

	args = append(args, usr.ID)
	q := fmt.Sprintf(
		`UPDATE "user" SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UpdateUserProfile(ctx context.Context, usr user.User) (user.User, error) {
	q := `
UPDATE "user"
SET skills = $2, learning_goals = $3, learning_style = $4, resume_text = $5, updated_at = $6
WHERE id = $1
RETURNING ` + userColumns

	var row userRow
	err := repo.db.GetContext(ctx, &row, q,
		usr.ID,
		pq.StringArray(usr.Skills),
		pq.StringArray(usr.LearningGoals),
		null.NewString(usr.LearningStyle, usr.LearningStyle != ""),
		null.NewString(usr.ResumeText, usr.ResumeText != ""),
		usr.UpdatedAt.UTC(),
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user profile")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) AddCompletedModule(ctx context.Context, userID, moduleID string) (user.User, error) {
	// single guarded write; a no-op when the module is already in the set
	q := `
UPDATE "user"
SET completed_modules = array_append(completed_modules, $2), updated_at = now()
WHERE id = $1 AND NOT (completed_modules @> ARRAY[$2]::varchar[])`
	if _, err := repo.db.ExecContext(ctx, q, userID, moduleID); err != nil {
		return user.User{}, errors.Wrap(err, "recording completed module")
	}
	return repo.GetUserByID(ctx, userID)
}

func (repo userRepository) AddBadges(ctx context.Context, userID string, badges []string) (user.User, error) {
	// single batched set-union write; EXCEPT keeps already held badges out
	q := `
UPDATE "user"
SET badges = badges || ARRAY(SELECT UNNEST($2::varchar[]) EXCEPT SELECT UNNEST(badges)), updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, userID, pq.StringArray(badges)); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "awarding badges")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE "user" SET last_login = $2 WHERE id = $1 RETURNING ` + userColumns

	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, usr.ID, usr.LastLogin.UTC()); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting last login")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.StringArray(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
