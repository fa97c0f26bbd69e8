package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		u, err := NewUser(" Maria.G ", "secret123", "Maria G", RoleCashier)
		require.NoError(t, err)

		assert.Equal(t, "maria.g", u.Username)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret123"))
		assert.False(t, u.VerifyPassword("wrong"))
		assert.False(t, u.IsStaff())
		assert.Equal(t, HomePOS, u.Home())
	})

	t.Run("managers land on the dashboard", func(t *testing.T) {
		u, err := NewUser("boss", "secret123", "", RoleManager)
		require.NoError(t, err)
		assert.True(t, u.IsStaff())
		assert.Equal(t, HomeDashboard, u.Home())
		assert.Equal(t, "boss", u.DisplayName())
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("maria", "short", "", RoleCashier)
		require.Error(t, err)

		_, err = NewUser("maria", "onlyletters", "", RoleCashier)
		require.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("maria", "secret123", "", Role("owner"))
		require.Error(t, err)
	})
}

func TestUser_LoginLockout(t *testing.T) {
	u, err := NewUser("maria", "secret123", "", RoleCashier)
	require.NoError(t, err)
	now := time.Now()

	assert.False(t, u.RecordLoginFailure(now, 3, time.Minute))
	assert.False(t, u.RecordLoginFailure(now, 3, time.Minute))
	assert.True(t, u.RecordLoginFailure(now, 3, time.Minute))

	assert.False(t, u.CanLogin(now))
	assert.True(t, u.CanLogin(now.Add(2*time.Minute)))

	u.RecordLoginSuccess(now.Add(2 * time.Minute))
	assert.Nil(t, u.LockedUntil)
	assert.Equal(t, 0, u.FailedAttempts)
	require.NotNil(t, u.LastLoginAt)
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("maria", "secret123", "", RoleCashier)
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("bad", "newsecret1"))
	require.NoError(t, u.ChangePassword("secret123", "newsecret1"))
	assert.True(t, u.VerifyPassword("newsecret1"))
}

func TestUser_Deactivate(t *testing.T) {
	u, err := NewUser("maria", "secret123", "", RoleCashier)
	require.NoError(t, err)

	require.NoError(t, u.Deactivate())
	assert.False(t, u.CanLogin(time.Now()))
	assert.Error(t, u.Deactivate())

	u.Activate()
	assert.True(t, u.CanLogin(time.Now()))
}
