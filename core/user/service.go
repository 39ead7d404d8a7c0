package user

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/altedy/core"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")
)

type (
	Repository interface {
		GetUserByID(ctx context.Context, id int64) (User, error)
		// UpsertUser replaces the whole record keyed by user id, creating it
		// if absent.
		UpsertUser(ctx context.Context, usr User) error
		// UpdateUserFields applies a targeted partial update; false when no
		// record matched.
		UpdateUserFields(ctx context.Context, id int64, fields core.Fields) (bool, error)
		AppendClassroom(ctx context.Context, id int64, classroomID string) (bool, error)
		AppendManagedClassroom(ctx context.Context, id int64, classroomID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure fetches the user, creating a raw record on first contact.
func (svc *Service) Ensure(ctx context.Context, id int64, username string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	now := time.Now().UTC()
	usr = User{
		ID:        id,
		Username:  username,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.repo.UpsertUser(ctx, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) SetKind(ctx context.Context, id int64, kind Kind) error {
	return svc.update(ctx, id, core.Fields{"type": kind})
}

func (svc *Service) SetEmail(ctx context.Context, id int64, email string) error {
	in := EmailInput{Email: core.CleanString(email, true /* lower */)}
	if err := in.Validate(); err != nil {
		return err
	}
	return svc.update(ctx, id, core.Fields{"email": in.Email})
}

func (svc *Service) SetFullName(ctx context.Context, id int64, name string) error {
	in := FullNameInput{FullName: core.CleanString(name)}
	if err := in.Validate(); err != nil {
		return err
	}
	return svc.update(ctx, id, core.Fields{"full_name": in.FullName})
}

func (svc *Service) SetStatus(ctx context.Context, id int64, status Status) error {
	return svc.update(ctx, id, core.Fields{"status": status})
}

func (svc *Service) AddClassroom(ctx context.Context, id int64, classroomID string) error {
	ok, err := svc.repo.AppendClassroom(ctx, id, classroomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) AddManagedClassroom(ctx context.Context, id int64, classroomID string) error {
	ok, err := svc.repo.AppendManagedClassroom(ctx, id, classroomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) update(ctx context.Context, id int64, fields core.Fields) error {
	fields["updated_at"] = time.Now().UTC()
	ok, err := svc.repo.UpdateUserFields(ctx, id, fields)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
