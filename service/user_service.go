package service

import (
	"context"
	"fmt"
	"time"

	"github.com/baotran/ragchat-be/repository"
	"github.com/baotran/ragchat-be/types"
	"github.com/baotran/ragchat-be/utils"
	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, user *types.User) error
	BatchCreateUser(ctx context.Context, users []*types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByDepartment(ctx context.Context, department string) ([]*types.User, error)
	UpdateUser(ctx context.Context, id string, user *types.User) error
	DeleteUser(ctx context.Context, id string) error
	PaginateUser(ctx context.Context, page int64, limit int64) ([]*types.User, int64, error)
}

type userService struct {
	repo repository.UserRepo
}

func NewUserService(repo repository.UserRepo) UserService {
	return &userService{
		repo: repo,
	}
}

func (s *userService) CreateUser(ctx context.Context, user *types.User) error {
	department, err := types.ParseDepartment(user.Department)
	if err != nil {
		return fmt.Errorf("cannot create user %s: %w", user.Username, err)
	}
	user.Department = department
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = types.USER_ROLE_USER
	}
	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.CreateAt = time.Now().Unix()
	user.UpdateAt = time.Now().Unix()

	return s.repo.CreateUser(ctx, user)
}

func (s *userService) BatchCreateUser(ctx context.Context, users []*types.User) error {
	for _, user := range users {
		department, err := types.ParseDepartment(user.Department)
		if err != nil {
			return fmt.Errorf("cannot create user %s: %w", user.Username, err)
		}
		user.Department = department
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if user.Role == "" {
			user.Role = types.USER_ROLE_USER
		}
		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
		user.CreateAt = time.Now().Unix()
		user.UpdateAt = time.Now().Unix()
	}
	return s.repo.BatchCreateUser(ctx, users)
}

func (s *userService) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

func (s *userService) GetUserByDepartment(ctx context.Context, department string) ([]*types.User, error) {
	canonical, err := types.ParseDepartment(department)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUserByDepartment(ctx, canonical)
}

func (s *userService) UpdateUser(ctx context.Context, id string, user *types.User) error {
	dbUser, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Username != "" {
		dbUser.Username = user.Username
	}
	if user.Password != "" {
		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			return err
		}
		dbUser.Password = hashed
	}
	if user.FullName != "" {
		dbUser.FullName = user.FullName
	}
	if user.Role != "" {
		dbUser.Role = user.Role
	}
	if user.Department != "" {
		department, err := types.ParseDepartment(user.Department)
		if err != nil {
			return err
		}
		dbUser.Department = department
	}
	dbUser.UpdateAt = time.Now().Unix()

	return s.repo.UpdateUser(ctx, id, dbUser)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *userService) PaginateUser(ctx context.Context, page int64, limit int64) ([]*types.User, int64, error) {
	return s.repo.PaginateUser(ctx, page, limit)
}
