package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/njia/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		// UpdateUserProfile only touches the learner profile fields
		// (skills, learning goals, learning style, resume text).
		UpdateUserProfile(ctx context.Context, usr User) (User, error)
		// AddCompletedModule adds moduleID to the user's completed set in a
		// single atomic set-union write (idempotent) and returns the
		// post-write User.
		AddCompletedModule(ctx context.Context, userID, moduleID string) (User, error)
		// AddBadges adds all given badges to the user's badge set in a
		// single atomic set-union write and returns the post-write User.
		AddBadges(ctx context.Context, userID string, badges []string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsername(ctx context.Context, uname string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		UpdateProfile(ctx context.Context, id string, pu ProfileUpdate) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
		// MarkModuleComplete records a completed module and returns the
		// badges newly awarded by this call (empty when none).
		MarkModuleComplete(ctx context.Context, userID, moduleID string) ([]string, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		rules   []badgeRule
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGen(conf)
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		rules:   badgeRules(conf),
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:             nu.Name,
		Username:         nu.Username,
		Email:            nu.Email,
		Roles:            nu.Roles,
		Skills:           []string{},
		LearningGoals:    []string{},
		CompletedModules: []string{},
		Badges:           []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if usr.Roles == nil {
		usr.Roles = StudentRoles
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterUsers(ctx, *filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *service) UpdateProfile(ctx context.Context, id string, pu ProfileUpdate) (User, error) {
	usr := User{
		ID:            id,
		Skills:        pu.Skills,
		LearningGoals: pu.LearningGoals,
		LearningStyle: pu.LearningStyle,
		ResumeText:    pu.ResumeText,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateUserProfile(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.SetLastLogin(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			User  User
			UID   string
			Token string
		}{usr, EncodeUID(usr), makeToken(usr)},
	})
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return err
}

// MarkModuleComplete adds moduleID to the user's completed set (a no-op when
// already completed), evaluates the badge rule table against the post-write
// snapshot and batches any newly earned badges into one extra write.
// The two writes are not transactional; a failed badge write surfaces as an
// error rather than being swallowed.
func (svc *service) MarkModuleComplete(ctx context.Context, userID, moduleID string) ([]string, error) {
	usr, err := svc.repo.AddCompletedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	awarded := newBadges(usr, svc.rules)
	if len(awarded) == 0 {
		return []string{}, nil
	}
	if _, err = svc.repo.AddBadges(ctx, userID, awarded); err != nil {
		return nil, errors.Wrapf(err, "awarding badges %v", awarded)
	}
	return awarded, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
