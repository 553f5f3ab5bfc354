package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/cycle"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"github.com/google/uuid"
)

const (
	minCode = 1_000_000
	maxCode = 9_999_999
)

// generateCode and newID are seams for tests.
var (
	generateCode = func() (string, error) { return common.RandomNumericCode(minCode, maxCode) }
	newID        = uuid.NewString
)

// UserService is the user directory.
type UserService struct {
	st *Store
}

func NewUserService(st *Store) *UserService {
	return &UserService{st: st}
}

// Create registers username with five fresh cycle codes. The returned user
// is the only place the codes are handed out.
func (s *UserService) Create(ctx context.Context, p auth.Privilege, username string) (*models.User, error) {
	if err := s.st.require(p); err != nil {
		return nil, err
	}

	name := models.NormalizeUsername(username)
	if name == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorInvalidInput)
	}

	s.st.usersMu.Lock()
	defer s.st.usersMu.Unlock()

	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return nil, backendErr("get users", err)
	}
	for i := range users {
		if users[i].Matches(username) {
			return nil, common.ErrorAlreadyExists
		}
	}

	codes := make([]string, cycle.Positions)
	for i := range codes {
		if codes[i], err = generateCode(); err != nil {
			return nil, fmt.Errorf("%w: generating code: %v", common.ErrorInternal, err)
		}
	}

	u := models.User{
		ID:         newID(),
		Username:   strings.TrimSpace(username),
		CycleCodes: codes,
		CreatedAt:  s.st.nowMs(),
	}

	if err := s.st.repo.PutUsers(ctx, append(users, u)); err != nil {
		return nil, backendErr("put users", err)
	}

	s.st.log.Info(ctx, "user created", "id", u.ID, "username", u.Username)
	return &u, nil
}

// Delete removes the user with id. Deleting a missing user is not an error.
func (s *UserService) Delete(ctx context.Context, p auth.Privilege, id string) error {
	if err := s.st.require(p); err != nil {
		return err
	}

	s.st.usersMu.Lock()
	defer s.st.usersMu.Unlock()

	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return backendErr("get users", err)
	}

	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return nil
	}

	if err := s.st.repo.PutUsers(ctx, kept); err != nil {
		return backendErr("put users", err)
	}
	s.st.log.Info(ctx, "user deleted", "id", id)
	return nil
}

// FindByUsername looks a user up ignoring case and surrounding whitespace.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.Matches(username) })
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.ID == id })
}

// List returns every user, codes included. Order is storage order.
func (s *UserService) List(ctx context.Context, p auth.Privilege) ([]models.User, error) {
	if err := s.st.require(p); err != nil {
		return nil, err
	}
	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return nil, backendErr("get users", err)
	}
	return users, nil
}

func (s *UserService) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return nil, backendErr("get users", err)
	}
	for i := range users {
		if match(&users[i]) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}
