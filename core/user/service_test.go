package user

import (
	"context"
	"testing"

	"github.com/trezcool/altedy/core"
)

type fakeRepo struct {
	users map[int64]*User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{users: make(map[int64]*User)} }

func (r *fakeRepo) GetUserByID(ctx context.Context, id int64) (User, error) {
	if usr, ok := r.users[id]; ok {
		return *usr, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) UpsertUser(ctx context.Context, usr User) error {
	r.users[usr.ID] = &usr
	return nil
}

func (r *fakeRepo) UpdateUserFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	usr, ok := r.users[id]
	if !ok {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "type":
			usr.Kind = v.(Kind)
		case "status":
			usr.Status = v.(Status)
		case "email":
			usr.Email = v.(string)
		case "full_name":
			usr.FullName = v.(string)
		}
	}
	return true, nil
}

func (r *fakeRepo) AppendClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	usr, ok := r.users[id]
	if !ok {
		return false, nil
	}
	usr.Classrooms = append(usr.Classrooms, classroomID)
	return true, nil
}

func (r *fakeRepo) AppendManagedClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	usr, ok := r.users[id]
	if !ok {
		return false, nil
	}
	usr.ManagedClassrooms = append(usr.ManagedClassrooms, classroomID)
	return true, nil
}

func TestService_Ensure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	// first contact creates a raw record
	usr, err := svc.Ensure(ctx, 42, "jdoe")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if usr.ID != 42 || usr.Username != "jdoe" || usr.Status != StatusNew {
		t.Errorf("Ensure() = %+v; want raw user 42/jdoe", usr)
	}
	if usr.IsRegistered() {
		t.Error("Ensure(): raw user must not be registered")
	}

	// second contact returns the same record untouched
	if err = svc.SetStatus(ctx, 42, StatusMainMenu); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	usr, err = svc.Ensure(ctx, 42, "jdoe")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if usr.Status != StatusMainMenu {
		t.Errorf("Ensure() status = %q, want %q", usr.Status, StatusMainMenu)
	}
}

func TestService_SetEmail(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		want  string // stored value; empty means a validation error is expected
	}{
		{name: "valid", email: "john.doe@example.com", want: "john.doe@example.com"},
		{name: "upper-cased is normalized", email: "John.Doe@Example.COM", want: "john.doe@example.com"},
		{name: "underscore separator", email: "john_doe@example.co", want: "john_doe@example.co"},
		{name: "leading dot", email: ".john@example.com"},
		{name: "consecutive separators", email: "john..doe@example.com"},
		{name: "missing domain extension", email: "john@example"},
		{name: "one-letter extension", email: "john@example.c"},
		{name: "spaces", email: "john doe@example.com"},
		{name: "empty", email: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo)
			if _, err := svc.Ensure(ctx, 1, "u"); err != nil {
				t.Fatalf("Ensure() error = %v", err)
			}

			err := svc.SetEmail(ctx, 1, tt.email)
			if tt.want == "" {
				if !core.IsValidationError(err) {
					t.Fatalf("SetEmail(%q) error = %v, want validation error", tt.email, err)
				}
				if got := repo.users[1].Email; got != "" {
					t.Errorf("SetEmail(%q) stored %q despite error", tt.email, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetEmail(%q) error = %v", tt.email, err)
			}
			if got := repo.users[1].Email; got != tt.want {
				t.Errorf("SetEmail(%q) stored %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestService_SetFullName(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		fullName string
		want     string
	}{
		{name: "two words", fullName: "John Doe", want: "John Doe"},
		{name: "three words", fullName: "John Ronald Reuel", want: "John Ronald Reuel"},
		{name: "single word", fullName: "Madonna", want: "Madonna"},
		{name: "hyphenated", fullName: "Anne-Marie Smith", want: "Anne-Marie Smith"},
		{name: "surrounding spaces trimmed", fullName: "  John Doe  ", want: "John Doe"},
		{name: "four words", fullName: "John Doe Smith Jr"},
		{name: "one-letter word", fullName: "J Doe"},
		{name: "digits", fullName: "John4 Doe"},
		{name: "too long word", fullName: "Johnnnnnnnnnnnnnnnnnnnnnnnnnnnn"},
		{name: "empty", fullName: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo)
			if _, err := svc.Ensure(ctx, 1, "u"); err != nil {
				t.Fatalf("Ensure() error = %v", err)
			}

			err := svc.SetFullName(ctx, 1, tt.fullName)
			if tt.want == "" {
				if !core.IsValidationError(err) {
					t.Fatalf("SetFullName(%q) error = %v, want validation error", tt.fullName, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetFullName(%q) error = %v", tt.fullName, err)
			}
			if got := repo.users[1].FullName; got != tt.want {
				t.Errorf("SetFullName(%q) stored %q, want %q", tt.fullName, got, tt.want)
			}
		})
	}
}

func TestService_updateMissingUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	if err := svc.SetStatus(context.Background(), 404, StatusMainMenu); err != ErrNotFound {
		t.Errorf("SetStatus() error = %v, want %v", err, ErrNotFound)
	}
}
