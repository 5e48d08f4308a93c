package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/path"
)

const pathColumns = `id, user_id, modules, created_at, updated_at`

// modules live in a single JSONB column; they are written wholesale at
// generation time and never updated piecemeal.
type pathRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Modules   null.JSON `db:"modules"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

type pathRepository struct {
	db *sqlx.DB
}

var _ path.Repository = (*pathRepository)(nil) // interface compliance check

func NewPathRepository(db *sql.DB, conf *core.Config) *pathRepository {
	return &pathRepository{db: sqlx.NewDb(db, conf.Database.Engine)}
}

func (repo pathRepository) toRow(p path.LearningPath) (pathRow, error) {
	mods, err := json.Marshal(p.Modules)
	if err != nil {
		return pathRow{}, errors.Wrap(err, "encoding path modules")
	}
	return pathRow{
		ID:        p.ID,
		UserID:    p.UserID,
		Modules:   null.JSONFrom(mods),
		CreatedAt: null.NewTime(p.CreatedAt.UTC(), !p.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(p.UpdatedAt.UTC(), !p.UpdatedAt.IsZero()),
	}, nil
}

func (repo pathRepository) fromRow(row pathRow) (path.LearningPath, error) {
	p := path.LearningPath{
		ID:        row.ID,
		UserID:    row.UserID,
		Modules:   []path.LearningModule{},
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.Modules.Valid {
		if err := json.Unmarshal(row.Modules.JSON, &p.Modules); err != nil {
			return path.LearningPath{}, errors.Wrap(err, "decoding path modules")
		}
	}
	return p, nil
}

func (repo pathRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return path.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo pathRepository) CreatePath(ctx context.Context, p path.LearningPath) (path.LearningPath, error) {
	row, err := repo.toRow(p)
	if err != nil {
		return path.LearningPath{}, err
	}

	q := `
INSERT INTO learning_path (` + pathColumns + `)
VALUES (:id, :user_id, :modules, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return path.LearningPath{}, errors.Wrap(err, "inserting learning path")
	}
	return p, nil
}

func (repo pathRepository) QueryPathsByOwner(ctx context.Context, userID string) ([]path.LearningPath, error) {
	q := `SELECT ` + pathColumns + ` FROM learning_path WHERE user_id = $1 ORDER BY created_at DESC`

	var rows []pathRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying learning paths")
	}

	paths := make([]path.LearningPath, 0, len(rows))
	for _, row := range rows {
		p, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (repo pathRepository) GetPathByID(ctx context.Context, id, userID string) (path.LearningPath, error) {
	q := `SELECT ` + pathColumns + ` FROM learning_path WHERE id = $1 AND user_id = $2`

	var row pathRow
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		return path.LearningPath{}, repo.trapNoRowsErr(err, "finding learning path")
	}
	return repo.fromRow(row)
}

func (repo pathRepository) DeletePath(ctx context.Context, id, userID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM learning_path WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting learning path")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting learning path")
	}
	if cnt == 0 {
		return path.ErrNotFound
	}
	return nil
}
