package dummydb

import (
	"sync"

	"github.com/trezcool/njia/core/path"
	"github.com/trezcool/njia/core/user"
)

type (
	DB struct {
		user *userTable
		path *pathTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	pathTable struct {
		sync.RWMutex
		table map[string]*path.LearningPath
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		path: &pathTable{table: make(map[string]*path.LearningPath)},
	}
	return db, nil
}
