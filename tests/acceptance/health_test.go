package acceptance

import (
	"encoding/json"
	"net/http"
)

func (s *Suite) TestHealthEndpoint() {
	resp, err := http.Get(s.BaseURL + "/health")
	s.Require().NoError(err, "Failed to make request")
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode, "Expected status 200")

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("pass", body.Status)
	s.Equal("pass", body.Checks["postgres"])
	s.Equal("pass", body.Checks["redis"])
}
