package bookings

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

// withIdentity injects the claims the auth middleware would set.
func withIdentity(brandID, creatorID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if brandID != "" {
			c.Set("brand_id", brandID)
		}
		if creatorID != "" {
			c.Set("creator_id", creatorID)
		}
		c.Next()
	}
}

func TestCreateBooking_MissingCreator(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.POST("/bookings", withIdentity("brand-1", ""), CreateBooking)

	body, _ := json.Marshal(map[string]interface{}{
		"bidAmount": 250.0,
	})
	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "validation_error", envelope["error_kind"])
}

func TestCreateBooking_ZeroAmount(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.POST("/bookings", withIdentity("brand-1", ""), CreateBooking)

	body, _ := json.Marshal(map[string]interface{}{
		"creatorId": "creator-1",
		"bidAmount": 0,
	})
	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetBooking_NotAParty(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "brand_id", "creator_id", "status"}).
			AddRow("b-1", "brand-1", "creator-1", models.BookingPending))

	r := testutils.SetupTestRouter()
	r.GET("/bookings/:id", withIdentity("brand-2", ""), GetBooking)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/3f0b1b62-9cfa-4f8e-8f61-0d2f6a9b1c44", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var envelope map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.Equal(t, "authorization_error", envelope["error_kind"])
}

func TestGetBooking_InvalidIDFormat(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.GET("/bookings/:id", withIdentity("brand-1", ""), GetBooking)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/not-a-uuid", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetBooking_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))

	r := testutils.SetupTestRouter()
	r.GET("/bookings/:id", withIdentity("brand-1", ""), GetBooking)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/9a6e6d3c-7c28-4a77-9f51-2b0f3a8e5d10", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReviewContent_UnknownAction(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "brand_id", "creator_id", "status", "content_status"}).
			AddRow("b-1", "brand-1", "creator-1", models.BookingConfirmed, models.ContentSubmitted))

	r := testutils.SetupTestRouter()
	r.POST("/bookings/:id/review-content", withIdentity("brand-1", ""), ReviewContent)

	body, _ := json.Marshal(map[string]string{"action": "maybe"})
	req, _ := http.NewRequest(http.MethodPost, "/bookings/3f0b1b62-9cfa-4f8e-8f61-0d2f6a9b1c44/review-content", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
