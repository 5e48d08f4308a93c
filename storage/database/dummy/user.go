package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.query() {
		if username != "" && usr.Username == username && !isExcluded(usr, excludedUsers, exclUsrsLen) {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email && !isExcluded(usr, excludedUsers, exclUsrsLen) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if (usr.Username == username) || (usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()

	// users with search keyword matching any Name, Username or Email ?
	if filter.Search != "" {
		var filtered []user.User
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	// users with any of the specified roles
	if users != nil && len(filter.Roles) > 0 {
		var filtered []user.User
		for _, u := range users {
			for _, r := range filter.Roles {
				if u.RoleStartsWith(r) {
					filtered = append(filtered, u)
					break
				}
			}
		}
		users = filtered
	}
	if users != nil && filter.IsActive != nil {
		var filtered []user.User
		for _, u := range users {
			if u.IsActive != nil && *u.IsActive == *filter.IsActive {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	if users != nil && !filter.CreatedFrom.IsZero() {
		var filtered []user.User
		timeUTC := filter.CreatedFrom.UTC()
		for _, u := range users {
			if u.CreatedAt.Equal(timeUTC) || u.CreatedAt.After(timeUTC) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	if users != nil && !filter.CreatedTo.IsZero() {
		var filtered []user.User
		timeUTC := filter.CreatedTo.UTC()
		for _, u := range users {
			if u.CreatedAt.Before(timeUTC) || u.CreatedAt.Equal(timeUTC) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	if len(ordering) > 0 {
		sortUsers(users, ordering[0])
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Name != "" {
		origUsr.Name = usr.Name
	}
	if usr.Username != "" {
		origUsr.Username = usr.Username
	}
	if usr.Email != "" {
		origUsr.Email = usr.Email
	}
	if usr.Roles != nil {
		origUsr.Roles = usr.Roles
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.SetActive(*isActive)
	}
	origUsr.UpdatedAt = usr.UpdatedAt

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) UpdateUserProfile(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	origUsr.Skills = usr.Skills
	origUsr.LearningGoals = usr.LearningGoals
	origUsr.LearningStyle = usr.LearningStyle
	origUsr.ResumeText = usr.ResumeText
	origUsr.UpdatedAt = usr.UpdatedAt

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) AddCompletedModule(ctx context.Context, userID, moduleID string) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[userID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if !usr.HasCompleted(moduleID) {
		usr.CompletedModules = append(usr.CompletedModules, moduleID)
	}
	return *usr, nil
}

func (repo *userRepository) AddBadges(ctx context.Context, userID string, badges []string) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[userID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, b := range badges {
		if !usr.HasBadge(b) {
			usr.Badges = append(usr.Badges, b)
		}
	}
	return *usr, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	origUsr.LastLogin = usr.LastLogin
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func isExcluded(usr user.User, excludedUsers []user.User, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedUsers[i].ID >= usr.ID })
	return idx < n && excludedUsers[idx].ID == usr.ID
}

func sortUsers(users []user.User, ord core.DBOrdering) {
	sort.Slice(users, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "username":
			less = users[i].Username < users[j].Username
		case "email":
			less = users[i].Email < users[j].Email
		default:
			less = users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		if !ord.Ascending {
			return !less
		}
		return less
	})
}
