package controllers

import (
	"net/http"
	"strings"
	"testing"

	"ecommerce-service/models"
	"ecommerce-service/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody() models.RegisterRequest {
	return models.RegisterRequest{
		Name:     "Homer Simpson",
		Email:    "homer@example.com",
		Password: "donuts4ever",
	}
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/users/register", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp["id"])

	// 同邮箱二次注册被拒，用户数不变
	w = env.request(t, http.MethodPost, "/api/v1/users/register", registerBody())
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, env.users.Count())
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)

	cases := []models.RegisterRequest{
		{Name: "Homer", Email: "not-an-email", Password: "donuts4ever"},
		{Name: "Homer", Email: "homer@example.com", Password: "short"},
		{Email: "homer@example.com", Password: "donuts4ever"}, // 缺name
	}
	for _, body := range cases {
		w := env.request(t, http.MethodPost, "/api/v1/users/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Zero(t, env.users.Count())
}

func TestLoginReturnsTokenWithoutPassword(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)
	env.request(t, http.MethodPost, "/api/v1/users/register", registerBody())

	w := env.request(t, http.MethodPost, "/api/v1/users/login", models.LoginRequest{
		Email:    "homer@example.com",
		Password: "donuts4ever",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	var resp struct {
		AccessToken string             `json:"accessToken"`
		User        models.UserSummary `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "homer@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	// 签出的token可被解析回同一个用户
	userID, role, err := utils.ParseToken(env.cfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, models.RoleUser, role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)
	env.request(t, http.MethodPost, "/api/v1/users/register", registerBody())

	// 未知邮箱与密码错误返回一模一样的响应体
	wUnknown := env.request(t, http.MethodPost, "/api/v1/users/login", models.LoginRequest{
		Email:    "marge@example.com",
		Password: "donuts4ever",
	})
	wWrongPass := env.request(t, http.MethodPost, "/api/v1/users/login", models.LoginRequest{
		Email:    "homer@example.com",
		Password: "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, wWrongPass.Code)
	assert.Equal(t, strings.TrimSpace(wUnknown.Body.String()), strings.TrimSpace(wWrongPass.Body.String()))
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/users/register", registerBody())
	var created map[string]any
	decodeBody(t, w, &created)
	id := created["id"].(string)

	w = env.request(t, http.MethodGet, "/api/v1/users/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	var user models.User
	decodeBody(t, w, &user)
	assert.Equal(t, "Homer Simpson", user.Name)
	assert.Empty(t, user.Password)

	w = env.request(t, http.MethodGet, "/api/v1/users/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
