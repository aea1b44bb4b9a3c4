package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/testutil"
)

func validSignup() SignupInput {
	return SignupInput{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Cook",
		Password:  "long-enough-1",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(ctx, validSignup())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "long-enough-1", user.Password, "password must be stored hashed")

	t.Run("email taken, case insensitive", func(t *testing.T) {
		in := validSignup()
		in.Email = "COOK@example.com"
		in.Username = "other"
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("username taken", func(t *testing.T) {
		in := validSignup()
		in.Email = "new@example.com"
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("field validation", func(t *testing.T) {
		in := SignupInput{Email: "nope", Username: "bad name", Password: "short"}
		_, err := svc.Register(ctx, in)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"email", "username", "first_name", "last_name", "password"} {
			assert.Contains(t, verr.Fields, field)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	created := testutil.CreateUser(t, db, "alice")

	user, err := svc.Authenticate(ctx, "Alice@Example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", testutil.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	user := testutil.CreateUser(t, db, "alice")

	err := svc.SetPassword(ctx, user.ID, PasswordChange{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	require.NoError(t, svc.SetPassword(ctx, user.ID, PasswordChange{CurrentPassword: testutil.Password, NewPassword: "brand-new-pass"}))

	_, err = svc.Authenticate(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, user.Email, testutil.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListAndGetUsers(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	for _, name := range []string{"a", "b", "c"} {
		testutil.CreateUser(t, db, name)
	}

	users, total, err := svc.ListUsers(ctx, Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)

	_, err = svc.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
