package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tailorworks/alterations-api/tests/testutil"
)

// CalendarAcceptanceTestSuite runs a working day at the shop counter against a live server
type CalendarAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
}

// SetupTest starts a fresh shop and server for each test
func (suite *CalendarAcceptanceTestSuite) SetupTest() {
	testutil.MustSetTestEnvironment(suite.T())
	testutil.SetupShop(suite.T())
	suite.server = httptest.NewServer(testutil.NewAPIRouter(testutil.MockAuth("auth0|owner", testutil.AllScopes...)))
}

// TearDownTest stops the server
func (suite *CalendarAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

// call sends a JSON request and decodes the JSON envelope
func (suite *CalendarAcceptanceTestSuite) call(method, path string, body any) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	return resp.StatusCode, response
}

func data(response map[string]interface{}) map[string]interface{} {
	return response["data"].(map[string]interface{})
}

func (suite *CalendarAcceptanceTestSuite) createOrder(client, due string) string {
	status, response := suite.call(http.MethodPost, "/api/v1/orders", gin.H{
		"clientInfo":  gin.H{"name": client, "phone": "5551234567", "carrier": "verizon"},
		"dueDate":     due,
		"paymentInfo": gin.H{"totalAmount": "120.00", "depositAmount": "40.00"},
		"garments": []gin.H{
			{"garmentInfo": gin.H{"type": "Trousers", "notes": "hem 2cm"}},
		},
	})
	suite.Require().Equal(http.StatusCreated, status)
	return data(response)["id"].(string)
}

// TestCounterWorkflow selects a day, moves a pickup and archives a collected order
func (suite *CalendarAcceptanceTestSuite) TestCounterWorkflow() {
	first := suite.createOrder("Lena Park", "2024-03-14")
	second := suite.createOrder("Omar Haddad", "2024-03-14")

	suite.T().Run("Day shows both pickups", func(t *testing.T) {
		status, response := suite.call(http.MethodPost, "/api/v1/calendar/session/day", gin.H{"date": "2024-03-14"})
		require.Equal(t, http.StatusOK, status)
		events := data(response)["events"].([]interface{})
		assert.Len(t, events, 2)
		state := data(response)["state"].(map[string]interface{})
		assert.Equal(t, "2024-03-14T00:00:00Z", state["selectedDay"])
	})

	suite.T().Run("Saving an unparseable date is rejected", func(t *testing.T) {
		status, _ := suite.call(http.MethodPost, "/api/v1/calendar/session/event", gin.H{"eventId": "pickup-" + first})
		require.Equal(t, http.StatusOK, status)
		status, _ = suite.call(http.MethodPost, "/api/v1/calendar/session/edit", nil)
		require.Equal(t, http.StatusOK, status)

		status, response := suite.call(http.MethodPut, "/api/v1/calendar/session/edit", gin.H{"date": "next tuesday"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", response["error"].(map[string]interface{})["code"])
	})

	suite.T().Run("Moving the pickup keeps only the date", func(t *testing.T) {
		status, response := suite.call(http.MethodPut, "/api/v1/calendar/session/edit", gin.H{"date": "2024-03-16T10:15"})
		require.Equal(t, http.StatusOK, status)
		order := data(response)["order"].(map[string]interface{})
		assert.Equal(t, "2024-03-16", order["dueDate"])

		state := data(response)["state"].(map[string]interface{})
		assert.False(t, state["editing"].(bool))
		selected := state["selectedEvent"].(map[string]interface{})
		assert.Equal(t, "2024-03-16T18:00:00Z", selected["date"])
	})

	suite.T().Run("Archiving from the detail view clears the order", func(t *testing.T) {
		status, response := suite.call(http.MethodPost, "/api/v1/calendar/session/event/archive", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "archived", data(response)["status"])

		status, response = suite.call(http.MethodGet, "/api/v1/calendar/events", nil)
		require.Equal(t, http.StatusOK, status)
		events := response["data"].([]interface{})
		require.Len(t, events, 1)
		assert.Equal(t, "pickup-"+second, events[0].(map[string]interface{})["id"])

		status, response = suite.call(http.MethodGet, "/api/v1/calendar/session", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Nil(t, data(response)["selectedEvent"])
	})
}

// TestCancelledArchiveChangesNothing checks that backing out of the confirmation keeps the order
func (suite *CalendarAcceptanceTestSuite) TestCancelledArchiveChangesNothing() {
	id := suite.createOrder("Lena Park", "2024-03-14")

	status, response := suite.call(http.MethodPost, "/api/v1/calendar/session/archive", gin.H{"eventId": "pickup-" + id})
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal("pickup-"+id, data(response)["id"])

	status, _ = suite.call(http.MethodDelete, "/api/v1/calendar/session/archive", nil)
	suite.Require().Equal(http.StatusOK, status)

	status, response = suite.call(http.MethodPost, "/api/v1/calendar/session/archive/confirm", nil)
	suite.Equal(http.StatusConflict, status)
	suite.Equal("NO_ARCHIVE_PENDING", response["error"].(map[string]interface{})["code"])

	status, response = suite.call(http.MethodGet, "/api/v1/orders/"+id, nil)
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal("pending", data(response)["status"])
}

// TestCalendarFeed checks the subscribed feed follows the schedule
func (suite *CalendarAcceptanceTestSuite) TestCalendarFeed() {
	id := suite.createOrder("Lena Park", "2024-03-14")

	resp, err := http.Get(suite.server.URL + "/api/v1/calendar.ics")
	suite.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	suite.Require().NoError(err)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Type"), "text/calendar")
	feed := string(body)
	suite.True(strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	suite.Contains(feed, "UID:pickup-"+id)
	suite.Contains(feed, "SUMMARY:Pickup - Lena Park")
}

func TestCalendarAcceptanceTestSuite(t *testing.T) {
	if os.Getenv("SKIP_ACCEPTANCE_TESTS") == "true" {
		t.Skip("Skipping calendar acceptance tests")
	}

	suite.Run(t, new(CalendarAcceptanceTestSuite))
}
