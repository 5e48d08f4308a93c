package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/njia/core/path"
)

type pathRepository struct {
	db *pathTable
}

var _ path.Repository = (*pathRepository)(nil) // interface compliance check

func NewPathRepository(db *DB) path.Repository {
	return &pathRepository{db: db.path}
}

func (repo *pathRepository) CreatePath(ctx context.Context, p path.LearningPath) (path.LearningPath, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *pathRepository) QueryPathsByOwner(ctx context.Context, userID string) ([]path.LearningPath, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	paths := make([]path.LearningPath, 0)
	for _, p := range repo.db.table {
		if p.UserID == userID {
			paths = append(paths, *p)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].CreatedAt.After(paths[j].CreatedAt) })
	return paths, nil
}

func (repo *pathRepository) GetPathByID(ctx context.Context, id, userID string) (path.LearningPath, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok && p.UserID == userID {
		return *p, nil
	}
	return path.LearningPath{}, path.ErrNotFound
}

func (repo *pathRepository) DeletePath(ctx context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if p, ok := repo.db.table[id]; ok && p.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return path.ErrNotFound
}
