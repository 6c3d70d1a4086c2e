package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly/internal/helpers"
	"gatherly/internal/middleware"
	"gatherly/internal/models"
	"gatherly/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", models.NotFound("event"), http.StatusNotFound, "Event not found"},
		{"forbidden", models.Forbidden("You are not authorized to edit this event"), http.StatusForbidden, "You are not authorized to edit this event"},
		{"rule violation", models.RuleViolation("Cannot join a past event"), http.StatusBadRequest, "Cannot join a past event"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to do the thing"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err, "Failed to do the thing")
			assert.Equal(t, tc.wantStatus, w.Code)

			var body models.ApiResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tc.wantMsg, body.Message)
		})
	}
}

func TestRespondError_Validation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ve := models.NewValidationError()
	ve.Add("title", "The title field is required.")
	respondError(c, ve, "Failed to create event")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body models.ApiResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Contains(t, body.Errors, "title")
}

func TestParsePagination(t *testing.T) {
	newCtx := func(query string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/events"+query, nil)
		return c, w
	}

	c, _ := newCtx("")
	page, perPage, ok := parsePagination(c)
	assert.True(t, ok)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPerPage, perPage)

	c, _ = newCtx("?page=3&per_page=25")
	page, perPage, ok = parsePagination(c)
	assert.True(t, ok)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, perPage)

	// camelCase spelling works too
	c, _ = newCtx("?perPage=25")
	_, perPage, ok = parsePagination(c)
	assert.True(t, ok)
	assert.Equal(t, 25, perPage)

	c, _ = newCtx("?per_page=9999")
	_, perPage, ok = parsePagination(c)
	assert.True(t, ok)
	assert.Equal(t, maxPerPage, perPage)

	c, w := newCtx("?page=0")
	_, _, ok = parsePagination(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newCtx("?per_page=abc")
	_, _, ok = parsePagination(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTruthy(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "on", "yes", " Yes "} {
		assert.True(t, truthy(s), s)
	}
	for _, s := range []string{"0", "false", "off", "no", "", "2"} {
		assert.False(t, truthy(s), s)
	}
}

func TestParseObjectID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "not-a-hex-id"}}

	_, ok := parseObjectID(c, "Event not found")
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body models.ApiResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Event not found", body.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	valid := primitive.NewObjectID()
	c.Params = gin.Params{{Key: "id", Value: valid.Hex()}}

	id, ok := parseObjectID(c, "Event not found")
	assert.True(t, ok)
	assert.Equal(t, valid, id)
}

// filterRecorder captures the canonical filters the handler produced.
type filterRecorder struct {
	filters models.EventFilters
	offset  int
	limit   int
}

func (r *filterRecorder) CreateEvent(_ context.Context, e *models.Event) (*models.Event, error) {
	return e, nil
}
func (r *filterRecorder) GetEventByID(_ context.Context, _ primitive.ObjectID) (*models.Event, error) {
	return nil, nil
}
func (r *filterRecorder) ListEvents(_ context.Context, filters models.EventFilters, offset, limit int) ([]*models.Event, int, error) {
	r.filters = filters
	r.offset = offset
	r.limit = limit
	return nil, 0, nil
}
func (r *filterRecorder) UpdateEvent(_ context.Context, _ primitive.ObjectID, _ map[string]interface{}) error {
	return nil
}
func (r *filterRecorder) DeleteEvent(_ context.Context, _ primitive.ObjectID) error { return nil }
func (r *filterRecorder) ListParticipants(_ context.Context, _ primitive.ObjectID) ([]*models.Participation, error) {
	return nil, nil
}
func (r *filterRecorder) IsParticipant(_ context.Context, _ primitive.ObjectID, _ uuid.UUID) (bool, error) {
	return false, nil
}
func (r *filterRecorder) AddParticipant(_ context.Context, _ *models.Participation) error { return nil }
func (r *filterRecorder) RemoveParticipant(_ context.Context, _ primitive.ObjectID, _ uuid.UUID) error {
	return nil
}
func (r *filterRecorder) EnsureEventIndexes(_ context.Context) error { return nil }

type noopNotifications struct{}

func (noopNotifications) InsertNotifications(_ context.Context, _ []*models.Notification) error {
	return nil
}
func (noopNotifications) ListNotifications(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.Notification, int, error) {
	return nil, 0, nil
}
func (noopNotifications) MarkNotificationRead(_ context.Context, _ primitive.ObjectID, _ uuid.UUID) (*models.Notification, error) {
	return nil, nil
}
func (noopNotifications) MarkAllNotificationsRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}
func (noopNotifications) EnsureNotificationIndexes(_ context.Context) error { return nil }

// Query spellings normalize into one canonical filter set before they reach
// the service layer.
func TestListEvents_QueryNormalization(t *testing.T) {
	recorder := &filterRecorder{}
	es := services.NewEventService(recorder, noopNotifications{})

	r := gin.New()
	r.GET("/events", ListEvents(es))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events?eventType=virtual&startDate=2030-01-01&end_date=2030-12-31&isPaid=yes&city=Paris&category=games&page=2&per_page=5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "virtual", recorder.filters.EventType)
	assert.Equal(t, "2030-01-01", recorder.filters.StartDate)
	assert.Equal(t, "2030-12-31", recorder.filters.EndDate)
	assert.Equal(t, "Paris", recorder.filters.City)
	assert.Equal(t, "games", recorder.filters.Category)
	if assert.NotNil(t, recorder.filters.IsPaid) {
		assert.True(t, *recorder.filters.IsPaid)
	}
	assert.Equal(t, string(models.StatusPublished), recorder.filters.Status, "unspecified status defaults to published")
	assert.Equal(t, 5, recorder.offset)
	assert.Equal(t, 5, recorder.limit)

	var body models.ApiResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 5, body.Limit)
}

func TestCreateEvent_RequiresIdentity(t *testing.T) {
	es := services.NewEventService(&filterRecorder{}, noopNotifications{})

	r := gin.New()
	r.POST("/events", CreateEvent(es))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func testIdentitySet(c *gin.Context) helpers.Identity {
	identity := helpers.Identity{ID: uuid.New(), Name: "Alice"}
	c.Set(middleware.IdentityKey, identity)
	return identity
}

func TestCurrentIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := CurrentIdentity(c)
	assert.False(t, ok)

	want := testIdentitySet(c)
	got, ok := CurrentIdentity(c)
	assert.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
}
