package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrack/internal/auth"
	"flowtrack/internal/db/dbtest"
)

func TestRegisterOnlyOnce(t *testing.T) {
	ctx := context.Background()
	jwtSvc := auth.NewJWT("s3cret")
	svc := &auth.Service{DB: dbtest.Open(t), JWT: jwtSvc}

	_, err := svc.Register(ctx, "owner@example.com", "short")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)

	token, err := svc.Register(ctx, " Owner@Example.com ", "hunter2hunter2")
	require.NoError(t, err)
	uid, err := jwtSvc.Verify(token)
	require.NoError(t, err)
	assert.NotZero(t, uid)

	_, err = svc.Register(ctx, "second@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrConflict)

	login, err := svc.Login(ctx, "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)
	loginUID, err := jwtSvc.Verify(login)
	require.NoError(t, err)
	assert.Equal(t, uid, loginUID)

	_, err = svc.Login(ctx, "owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
