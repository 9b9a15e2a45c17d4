package acceptance

import (
	"net/http"
	"strconv"

	"github.com/okhomenko/plantkeeper/internal/dto"
)

func (s *Suite) TestLoginRateLimited() {
	payload := dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Password123",
	}

	var resp *http.Response
	for i := 0; i < 101; i++ {
		resp, _ = s.doJSON(http.MethodPost, "/api/v1/auth/login", "", payload)
		if resp.StatusCode == http.StatusTooManyRequests {
			break
		}
		s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	s.Require().Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Equal("0", resp.Header.Get("X-RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Retry-After"))
	s.Require().NoError(err, "Expected a numeric retry-after header")
	s.Positive(retryAfter)
	s.LessOrEqual(retryAfter, 60)
}
