package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/baotran/ragchat-be/types"
	"github.com/baotran/ragchat-be/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users map[string]*types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*types.User)}
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *types.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) BatchCreateUser(ctx context.Context, users []*types.User) error {
	for _, user := range users {
		r.users[user.ID] = user
	}
	return nil
}

func (r *memUserRepo) GetUser(ctx context.Context, id string) (*types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return user, nil
}

func (r *memUserRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", username)
}

func (r *memUserRepo) GetUserByDepartment(ctx context.Context, department string) ([]*types.User, error) {
	var out []*types.User
	for _, user := range r.users {
		if user.Department == department {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateUser(ctx context.Context, id string, user *types.User) error {
	r.users[id] = user
	return nil
}

func (r *memUserRepo) DeleteUser(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) PaginateUser(ctx context.Context, page, limit int64) ([]*types.User, int64, error) {
	var out []*types.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func TestCreateUserValidatesDepartment(t *testing.T) {
	svc := NewUserService(newMemUserRepo())

	err := svc.CreateUser(context.Background(), &types.User{
		Username:   "bob",
		Password:   "pw",
		Department: "warehouse",
	})
	assert.ErrorIs(t, err, types.ErrUnknownDepartment)

	// The broadcast segment is not a department a user can belong to.
	err = svc.CreateUser(context.Background(), &types.User{
		Username:   "bob",
		Password:   "pw",
		Department: types.BroadcastSegment,
	})
	assert.ErrorIs(t, err, types.ErrUnknownDepartment)
}

func TestCreateUserCanonicalizesAndHashes(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	user := &types.User{
		Username:   "alice",
		Password:   "s3cret",
		Department: "HR",
	}
	require.NoError(t, svc.CreateUser(context.Background(), user))

	stored, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, types.DepartmentHR, stored.Department)
	assert.Equal(t, types.USER_ROLE_USER, stored.Role)
	assert.NotEmpty(t, stored.ID)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, utils.ComparePassword(stored.Password, "s3cret"))
}

func TestUpdateUserMergesFields(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	user := &types.User{Username: "carol", Password: "pw", Department: types.DepartmentFinance}
	require.NoError(t, svc.CreateUser(context.Background(), user))

	err := svc.UpdateUser(context.Background(), user.ID, &types.User{Department: "Marketing"})
	require.NoError(t, err)

	stored, err := repo.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", stored.Username)
	assert.Equal(t, types.DepartmentMarketing, stored.Department)

	err = svc.UpdateUser(context.Background(), user.ID, &types.User{Department: "invalid"})
	assert.ErrorIs(t, err, types.ErrUnknownDepartment)
}
