package acceptance

import (
	"fmt"
	"net/http"
	"time"

	"github.com/okhomenko/plantkeeper/internal/dto"
)

func strPtr(s string) *string { return &s }

func (s *Suite) createPlant(token, name string, frequency int) dto.PlantResponse {
	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/plants", token, dto.CreatePlantRequest{
		Name:              name,
		Species:           strPtr("Monstera deliciosa"),
		Location:          strPtr("Living room"),
		WateringFrequency: frequency,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Plant creation should succeed")

	var plant dto.PlantResponse
	s.decodeData(envelope, &plant)
	return plant
}

func (s *Suite) TestCreatePlant_Success() {
	token := s.registerUser("plants@example.com")

	plant := s.createPlant(token, "Monty", 7)

	s.NotEmpty(plant.ID)
	s.Equal("Monty", plant.Name)
	s.Equal(7, plant.WateringFrequency)
	s.Nil(plant.LastWatered)
	s.False(plant.NeedsWater, "A new plant is not due until the frequency elapses")
	s.WithinDuration(plant.CreatedAt.AddDate(0, 0, 7), plant.NextDue, time.Minute)
}

func (s *Suite) TestCreatePlant_DuplicateName() {
	token := s.registerUser("dupe@example.com")

	s.createPlant(token, "Fernando", 3)

	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/plants", token, dto.CreatePlantRequest{
		Name:              "fernando",
		WateringFrequency: 3,
	})
	s.Equal(http.StatusConflict, resp.StatusCode, "Names are unique per owner, case-insensitively")
	s.False(envelope.Success)
}

func (s *Suite) TestCreatePlant_SameNameDifferentOwners() {
	tokenA := s.registerUser("owner-a@example.com")
	tokenB := s.registerUser("owner-b@example.com")

	s.createPlant(tokenA, "Shared Name", 5)
	plant := s.createPlant(tokenB, "Shared Name", 5)
	s.NotEmpty(plant.ID)
}

func (s *Suite) TestCreatePlant_InvalidFrequency() {
	token := s.registerUser("badfreq@example.com")

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/plants", token, dto.CreatePlantRequest{
		Name:              "Cactus",
		WateringFrequency: 366,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestListPlants_Pagination() {
	token := s.registerUser("list@example.com")

	for i := 0; i < 5; i++ {
		s.createPlant(token, fmt.Sprintf("Plant %d", i), 7)
	}

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/plants?page=1&limit=2", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var plants []dto.PlantResponse
	s.decodeData(envelope, &plants)
	s.Len(plants, 2)

	s.Require().NotNil(envelope.Pagination)
	s.Equal(5, envelope.Pagination.Total)
	s.Equal(3, envelope.Pagination.TotalPages)
}

func (s *Suite) TestListPlants_Search() {
	token := s.registerUser("search@example.com")

	s.createPlant(token, "Monstera", 7)
	s.createPlant(token, "Snake Plant", 14)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/plants?search=monst", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var plants []dto.PlantResponse
	s.decodeData(envelope, &plants)
	s.Require().Len(plants, 1)
	s.Equal("Monstera", plants[0].Name)
}

func (s *Suite) TestGetPlant_OtherUsersPlantIsHidden() {
	tokenA := s.registerUser("hidden-a@example.com")
	tokenB := s.registerUser("hidden-b@example.com")

	plant := s.createPlant(tokenA, "Private Fern", 7)

	resp, _ := s.doJSON(http.MethodGet, "/api/v1/plants/"+plant.ID, tokenB, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode, "Ownership misses read as not found")
}

func (s *Suite) TestUpdatePlant_PartialFields() {
	token := s.registerUser("update@example.com")
	plant := s.createPlant(token, "Before", 7)

	resp, envelope := s.doJSON(http.MethodPut, "/api/v1/plants/"+plant.ID, token, dto.UpdatePlantRequest{
		Name: strPtr("After"),
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var updated dto.PlantResponse
	s.decodeData(envelope, &updated)
	s.Equal("After", updated.Name)
	s.Equal(7, updated.WateringFrequency, "Absent fields stay unchanged")
	s.Equal("Living room", *updated.Location)
}

func (s *Suite) TestDeletePlant() {
	token := s.registerUser("delete@example.com")
	plant := s.createPlant(token, "Doomed", 7)

	resp, _ := s.doJSON(http.MethodDelete, "/api/v1/plants/"+plant.ID, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodGet, "/api/v1/plants/"+plant.ID, token, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestWaterPlant_ResetsDueDate() {
	token := s.registerUser("water@example.com")
	plant := s.createPlant(token, "Thirsty", 7)

	resp, envelope := s.doJSON(http.MethodPost, "/api/v1/plants/"+plant.ID+"/water", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var watered dto.PlantResponse
	s.decodeData(envelope, &watered)
	s.Require().NotNil(watered.LastWatered)
	s.WithinDuration(time.Now(), *watered.LastWatered, time.Minute)
	s.False(watered.NeedsWater)
	s.WithinDuration(watered.LastWatered.AddDate(0, 0, 7), watered.NextDue, time.Minute)
}

func (s *Suite) TestWaterPlant_FutureTimestampRejected() {
	token := s.registerUser("future@example.com")
	plant := s.createPlant(token, "Clockwise", 7)

	future := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	resp, _ := s.doJSON(http.MethodPost, "/api/v1/plants/"+plant.ID+"/water", token, dto.WaterPlantRequest{
		WateredAt: &future,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestWaterPlant_RecordsCareEvent() {
	token := s.registerUser("history@example.com")
	plant := s.createPlant(token, "Archive", 7)

	resp, _ := s.doJSON(http.MethodPost, "/api/v1/plants/"+plant.ID+"/water", token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/plants/"+plant.ID+"/history", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var events []dto.CareEventResponse
	s.decodeData(envelope, &events)
	s.Require().Len(events, 1)
	s.Equal("WATER", events[0].EventType)
	s.True(events[0].Completed)
}

func (s *Suite) TestNeedsWater_BackdatedPlantShowsUp() {
	token := s.registerUser("needswater@example.com")
	plant := s.createPlant(token, "Overdue", 7)

	// Backdate the last watering beyond the frequency window.
	past := time.Now().AddDate(0, 0, -10).Format(time.RFC3339)
	resp, _ := s.doJSON(http.MethodPost, "/api/v1/plants/"+plant.ID+"/water", token, dto.WaterPlantRequest{
		WateredAt: &past,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/plants/needs-water", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var plants []dto.PlantResponse
	s.decodeData(envelope, &plants)
	s.Require().Len(plants, 1)
	s.Equal(plant.ID, plants[0].ID)
	s.True(plants[0].NeedsWater)
	s.Equal(3, plants[0].DaysOverdue)
}

func (s *Suite) TestStats() {
	token := s.registerUser("stats@example.com")

	s.createPlant(token, "One", 4)
	s.createPlant(token, "Two", 8)

	resp, envelope := s.doJSON(http.MethodGet, "/api/v1/plants/stats", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats struct {
		Total                int     `json:"total"`
		NeedsWater           int     `json:"needs_water"`
		AverageFrequencyDays float64 `json:"average_frequency_days"`
	}
	s.decodeData(envelope, &stats)
	s.Equal(2, stats.Total)
	s.Equal(0, stats.NeedsWater)
	s.InDelta(6.0, stats.AverageFrequencyDays, 0.01)
}
