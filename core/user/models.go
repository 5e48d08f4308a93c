package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/njia/core"
)

// Roles
const (
	RoleAdmin   = "admin:"
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		RoleAdmin:   20,
		RoleStudent: 1,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 2)
	all = append(all, AdminRoles...)
	all = append(all, StudentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Learning styles
const (
	StyleVisual      = "visual"
	StyleAuditory    = "auditory"
	StyleKinesthetic = "kinesthetic"
)

var LearningStyles = []string{StyleVisual, StyleAuditory, StyleKinesthetic}

type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	IsActive     *bool    `json:"is_active"`
	Roles        []string `json:"roles"`
	PasswordHash []byte   `json:"-"`

	// learner profile
	Skills        []string `json:"skills"`
	LearningGoals []string `json:"learning_goals"`
	LearningStyle string   `json:"learning_style,omitempty"`
	ResumeText    string   `json:"resume_text,omitempty"`

	// progress; set semantics, append-only
	CompletedModules []string `json:"completed_modules"`
	Badges           []string `json:"badges"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

func (u *User) HasCompleted(moduleID string) bool {
	for _, id := range u.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

// ProfileUpdate defines the learner profile fields a User may change:
// skills, learning goals, preferred learning style and the plain text
// extracted from their resume. Extraction itself happens upstream.
type ProfileUpdate struct {
	Skills        []string `json:"skills"`
	LearningGoals []string `json:"learning_goals"`
	LearningStyle string   `json:"learning_style" validate:"omitempty,learningstyle"`
	ResumeText    string   `json:"resume_text"`
}

func (pu *ProfileUpdate) Validate(validate *validator.Validate) error {
	pu.Skills = core.CleanStrings(pu.Skills)
	pu.LearningGoals = core.CleanStrings(pu.LearningGoals)
	pu.LearningStyle = core.CleanString(pu.LearningStyle, true /* lower */)
	pu.ResumeText = core.CleanString(pu.ResumeText)
	return validate.Struct(pu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// CompleteModule is the progress-update request payload.
type CompleteModule struct {
	ModuleID string `json:"module_id" validate:"required"`
}

func (cm *CompleteModule) Validate(validate *validator.Validate) error {
	cm.ModuleID = core.CleanString(cm.ModuleID)
	return validate.Struct(cm)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
