package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

func newLocal() *LocalProvider {
	p := NewLocalProvider(storage.NewMemoryStore(), "test-secret", time.Hour, internal.NewNopLogger())
	p.SetBcryptCost(bcrypt.MinCost)
	return p
}

func TestLocalProvider_SignUpSignInValidate(t *testing.T) {
	ctx := context.Background()
	p := newLocal()

	up, err := p.SignUp(ctx, "sam@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, up.UserID)
	assert.NotEmpty(t, up.AccessToken)

	in, err := p.SignIn(ctx, "SAM@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, up.UserID, in.UserID)

	sess, err := p.Validate(ctx, in.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, up.UserID, sess.UserID)
	assert.Equal(t, "sam@example.com", sess.Email)
}

func TestLocalProvider_Failures(t *testing.T) {
	ctx := context.Background()
	p := newLocal()
	_, err := p.SignUp(ctx, "sam@example.com", "hunter22")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "sam@example.com", "another1")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = p.SignUp(ctx, "short@example.com", "abc")
	assert.True(t, internal.IsKind(err, internal.KindAuth))

	_, err = p.SignIn(ctx, "sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 401, internal.StatusOf(err))
}

func TestLocalProvider_SignOutRevokes(t *testing.T) {
	ctx := context.Background()
	p := newLocal()
	sess, err := p.SignUp(ctx, "sam@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, sess.AccessToken))
	_, err = p.Validate(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, p.SignOut(ctx, "garbage"))
}

func TestLocalProvider_RejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	p := newLocal()
	sess, err := p.SignUp(ctx, "sam@example.com", "hunter22")
	require.NoError(t, err)

	other := NewLocalProvider(storage.NewMemoryStore(), "other-secret", time.Hour, internal.NewNopLogger())
	_, err = other.Validate(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Validate(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
