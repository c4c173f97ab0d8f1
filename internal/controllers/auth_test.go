package controllers

import (
	"context"
	"testing"

	"github.com/orgwise/payroll_service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func loginFixture(t *testing.T) (*fakeHierarchyStore, *memoryRedis, *AuthController) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	require.NoError(t, err)

	emp := testEmployee(1, entity.RoleManager, 600, 2017, nil)
	emp.Email = StringPtr("jane@example.com")
	emp.Password = StringPtr(string(hash))

	store := newFakeStore(emp)
	rdb := newMemoryRedis()

	return store, rdb, NewAuthController(createTestDependencies(store, rdb))
}

func TestAuthLogin_Success(t *testing.T) {
	_, rdb, c := loginFixture(t)

	accessToken, refreshToken, err := c.AuthLogin(&entity.LoginRequest{
		Email:    "jane@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	// Both tokens are registered as valid.
	assert.NoError(t, rdb.Get(context.Background(), "access_token:"+accessToken).Err())
	assert.NoError(t, rdb.Get(context.Background(), "refresh_token:"+refreshToken).Err())
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	_, _, c := loginFixture(t)

	_, _, err := c.AuthLogin(&entity.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})

	assert.Error(t, err)
}

func TestAuthLogin_UnknownEmail(t *testing.T) {
	_, _, c := loginFixture(t)

	_, _, err := c.AuthLogin(&entity.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})

	assert.Error(t, err)
}

func TestCheckUserToken_Valid(t *testing.T) {
	_, _, c := loginFixture(t)

	accessToken, _, err := c.AuthLogin(&entity.LoginRequest{
		Email:    "jane@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	claims, err := c.CheckUserToken("Bearer " + accessToken)

	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.ID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, entity.RoleManager, claims.Role)
}

func TestCheckUserToken_Revoked(t *testing.T) {
	_, rdb, c := loginFixture(t)

	accessToken, _, err := c.AuthLogin(&entity.LoginRequest{
		Email:    "jane@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	rdb.Del(context.Background(), "access_token:"+accessToken)

	_, err = c.CheckUserToken("Bearer " + accessToken)

	assert.Error(t, err)
}

func TestCheckUserToken_MissingBearerPrefix(t *testing.T) {
	_, _, c := loginFixture(t)

	_, err := c.CheckUserToken("not-a-bearer-token")

	assert.Error(t, err)
}
