package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/okhomenko/plantkeeper/internal/dto"
)

func (s *Suite) TestRegister_Success() {
	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "test@example.com",
		Password: "Password123",
		Name:     "Test User",
	})

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var envelope dto.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	s.True(envelope.Success)

	var auth dto.AuthData
	s.decodeData(&envelope, &auth)

	s.NotEmpty(auth.AccessToken)
	s.NotEmpty(auth.RefreshToken, "Refresh token should be in the body")
	s.Equal("Bearer", auth.TokenType)
	s.NotZero(auth.ExpiresIn)
	s.Equal("test@example.com", auth.User.Email)
	s.Equal("Test User", auth.User.Name)
	s.NotEmpty(auth.User.ID)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.registerUser("duplicate@example.com")

	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:    "duplicate@example.com",
		Password: "Password123",
		Name:     "Second",
	})

	s.Equal(http.StatusConflict, resp.StatusCode)
	s.False(envelope.Success)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:    "invalid-email",
		Password: "Password123",
		Name:     "Test",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.False(envelope.Success)
	s.NotEmpty(envelope.Errors, "Validation failures should list the offending fields")
}

func (s *Suite) TestRegister_ShortPassword() {
	resp, _ := s.doJSON(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:    "test@example.com",
		Password: "short",
		Name:     "Test",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.registerUser("login@example.com")

	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "Password123",
	})

	s.Equal(http.StatusOK, resp.StatusCode)

	var auth dto.AuthData
	s.decodeData(envelope, &auth)

	s.NotEmpty(auth.AccessToken)
	s.NotEmpty(auth.RefreshToken)
	s.Equal("Bearer", auth.TokenType)
	s.Equal("login@example.com", auth.User.Email)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "wrongpassword",
	})

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(envelope.Success)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.registerUser("wrongpass@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "WrongPassword123",
	})

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_RotatesTokens() {
	s.registerUser("refresh@example.com")

	_, loginEnvelope := s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "refresh@example.com",
		Password: "Password123",
	})
	var auth dto.AuthData
	s.decodeData(loginEnvelope, &auth)

	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{
		RefreshToken: auth.RefreshToken,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var rotated dto.AuthData
	s.decodeData(envelope, &rotated)
	s.NotEmpty(rotated.AccessToken)
	s.NotEqual(auth.RefreshToken, rotated.RefreshToken, "Refresh should rotate the refresh token")

	// The displaced token must no longer work.
	resp, _ = s.doJSON(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{
		RefreshToken: auth.RefreshToken,
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_MissingToken() {
	resp, _ := s.doJSON(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	token := s.registerUser("getme@example.com")

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.decodeData(envelope, &user)
	s.Equal("getme@example.com", user.Email)
	s.Equal("Test User", user.Name)
	s.True(user.NotificationsEnabled, "Notifications default to enabled")
}

func (s *Suite) TestGetMe_Unauthorized() {
	resp, _ := s.doJSON(http.MethodGet, "/api/v1/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateProfile() {
	token := s.registerUser("profile@example.com")

	newName := "Renamed User"
	resp, envelope := s.doJSON(http.MethodPut, "/api/v1/auth/profile", token, dto.UpdateProfileRequest{
		Name: &newName,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.decodeData(envelope, &user)
	s.Equal("Renamed User", user.Name)
	s.Equal("profile@example.com", user.Email, "Email stays when not supplied")
}

func (s *Suite) TestChangePassword() {
	token := s.registerUser("changepw@example.com")

	resp, _ := s.doJSON(http.MethodPut, "/api/v1/auth/password", token, dto.ChangePasswordRequest{
		CurrentPassword: "Password123",
		NewPassword:     "NewPassword456",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old password is rejected, new one works.
	resp, _ = s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "changepw@example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "changepw@example.com",
		Password: "NewPassword456",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestChangePassword_WrongCurrent() {
	token := s.registerUser("wrongcurrent@example.com")

	resp, _ := s.doJSON(http.MethodPut, "/api/v1/auth/password", token, dto.ChangePasswordRequest{
		CurrentPassword: "NotThePassword1",
		NewPassword:     "NewPassword456",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_RevokesRefreshToken() {
	s.registerUser("logout@example.com")

	_, loginEnvelope := s.doJSON(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    "logout@example.com",
		Password: "Password123",
	})
	var auth dto.AuthData
	s.decodeData(loginEnvelope, &auth)

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, dto.LogoutRequest{
		RefreshToken: auth.RefreshToken,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	// The revoked refresh token must not mint new sessions.
	resp, _ = s.doJSON(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{
		RefreshToken: auth.RefreshToken,
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
