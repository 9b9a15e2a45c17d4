package acceptance

import (
	"net/http"
	"time"

	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/service"
)

func (s *Suite) TestRegisterPushToken_Success() {
	token := s.registerUser("push@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/register-token", token, dto.RegisterPushTokenRequest{
		PushToken: "ExponentPushToken[abc123def456]",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/notifications/settings", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var settings dto.NotificationSettings
	s.decodeData(envelope, &settings)
	s.True(settings.Enabled)
	s.True(settings.HasPushToken)
	s.NotNil(settings.PushTokenUpdatedAt)
}

func (s *Suite) TestRegisterPushToken_InvalidFormat() {
	token := s.registerUser("badpush@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/register-token", token, dto.RegisterPushTokenRequest{
		PushToken: "not-an-expo-token",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestClearPushToken() {
	token := s.registerUser("clearpush@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/register-token", token, dto.RegisterPushTokenRequest{
		PushToken: "ExponentPushToken[abc123def456]",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodDelete, "/api/v1/notifications/token", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/notifications/settings", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var settings dto.NotificationSettings
	s.decodeData(envelope, &settings)
	s.False(settings.HasPushToken)
}

func (s *Suite) TestUpdatePreferences() {
	token := s.registerUser("prefs@example.com")

	disabled := false
	resp, _ := s.doJSON(http.MethodPut, "/api/v1/notifications/preferences", token, dto.UpdateNotificationPreferencesRequest{
		Enabled: &disabled,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/notifications/settings", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var settings dto.NotificationSettings
	s.decodeData(envelope, &settings)
	s.False(settings.Enabled)
}

func (s *Suite) TestUpdatePreferences_MissingField() {
	token := s.registerUser("noprefs@example.com")

	resp, _ := s.doJSON(http.MethodPut, "/api/v1/notifications/preferences", token, map[string]string{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestSendTest_NoToken() {
	token := s.registerUser("notoken@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/test", token, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

// waitForWateringRun polls the status endpoint until a scan that started at
// or after since has published its summary. The worker picks scans up from
// the queue, so completion is asynchronous.
func (s *Suite) waitForWateringRun(token string, since time.Time) *service.RunSummary {
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, envelope := s.doJSON(http.MethodGet, "/api/v1/notifications/cron-status", token, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var status struct {
			LastWateringRun *service.RunSummary `json:"last_watering_run"`
		}
		s.decodeData(envelope, &status)

		if status.LastWateringRun != nil && !status.LastWateringRun.StartedAt.Before(since) {
			return status.LastWateringRun
		}
		s.Require().False(time.Now().After(deadline), "Watering scan did not run in time")
		time.Sleep(100 * time.Millisecond)
	}
}

func (s *Suite) TestTriggerWateringCheck() {
	token := s.registerUser("trigger@example.com")

	since := time.Now()
	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/trigger-watering-check", token, nil)
	s.Equal(http.StatusAccepted, resp.StatusCode)

	s.waitForWateringRun(token, since)
}

func (s *Suite) TestWateringScan_SkipsOptedOutAndTokenlessOwners() {
	optedOut := s.registerUser("optedout@example.com")
	tokenless := s.registerUser("nopush@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/notifications/register-token", optedOut, dto.RegisterPushTokenRequest{
		PushToken: "ExponentPushToken[optedout]",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	disabled := false
	resp, _ = s.doJSON(http.MethodPut, "/api/v1/notifications/preferences", optedOut, dto.UpdateNotificationPreferencesRequest{
		Enabled: &disabled,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Both users own a plant that is well past its watering window.
	past := time.Now().AddDate(0, 0, -10).Format(time.RFC3339)
	for _, token := range []string{optedOut, tokenless} {
		plant := s.createPlant(token, "Thirsty Fern", 7)
		resp, _ = s.doJSON(http.MethodPost, "/api/v1/plants/"+plant.ID+"/water", token, dto.WaterPlantRequest{
			WateredAt: &past,
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
	}

	since := time.Now()
	resp, _ = s.doJSON(http.MethodPost, "/api/v1/notifications/trigger-watering-check", optedOut, nil)
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)

	// Neither owner is a candidate: one opted out of reminders, the other
	// never registered a push token.
	summary := s.waitForWateringRun(optedOut, since)
	s.Equal(0, summary.Checked)
	s.Equal(0, summary.Sent)
}

func (s *Suite) TestCronStatus_ListsSchedules() {
	token := s.registerUser("cron@example.com")

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/notifications/cron-status", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var status dto.CronStatus
	s.decodeData(envelope, &status)
	s.Require().Len(status.Schedules, 2)
	s.Equal("watering:scan", status.Schedules[0].Task)
	s.Equal("0 8 * * *", status.Schedules[0].CronSpec)
}
