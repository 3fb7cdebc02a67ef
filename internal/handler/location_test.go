package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLocationService is a mock implementation of the LocationService interface
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) SaveLocation(ctx context.Context, lat, lon float64) (*models.LocationRecord, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(*models.LocationRecord), args.Error(1)
}

func (m *MockLocationService) SaveIPLocation(ctx context.Context, ip string) (*models.LocationRecord, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(*models.LocationRecord), args.Error(1)
}

func TestLocationHandler_SaveLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	saved := &models.LocationRecord{
		Latitude:  40.71,
		Longitude: -74,
		Timestamp: "2024-01-01T00:00:00.000Z",
		Source:    models.SourceBrowser,
	}

	tests := []struct {
		name           string
		body           string
		callService    bool
		mockRecord     *models.LocationRecord
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "missing longitude",
			body:           `{"latitude": 40.71}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"success": false, "error": "Invalid coordinates", "kind": "invalid_input"},
		},
		{
			name:           "non-numeric latitude",
			body:           `{"latitude": "north", "longitude": -74}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"success": false, "error": "Invalid coordinates", "kind": "invalid_input"},
		},
		{
			name:           "malformed body",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"success": false, "error": "Invalid coordinates", "kind": "invalid_input"},
		},
		{
			name:           "saved",
			body:           `{"latitude": 40.71, "longitude": -74}`,
			callService:    true,
			mockRecord:     saved,
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"success": true,
				"location": map[string]interface{}{
					"latitude":  40.71,
					"longitude": float64(-74),
					"timestamp": "2024-01-01T00:00:00.000Z",
					"source":    "browser",
				},
			},
		},
		{
			name:           "out of range coordinates",
			body:           `{"latitude": 140.71, "longitude": -74}`,
			callService:    true,
			mockError:      locationlog.NewError(locationlog.KindInvalidInput, "invalid latitude: 140.710000", nil),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"success": false, "error": "invalid latitude: 140.710000", "kind": "invalid_input"},
		},
		{
			name:           "conflict",
			body:           `{"latitude": 40.71, "longitude": -74}`,
			callService:    true,
			mockError:      locationlog.NewError(locationlog.KindConflict, "log was modified concurrently", nil),
			expectedStatus: http.StatusConflict,
			expectedBody:   map[string]interface{}{"success": false, "error": "log was modified concurrently", "kind": "conflict"},
		},
		{
			name:           "upstream unavailable",
			body:           `{"latitude": 40.71, "longitude": -74}`,
			callService:    true,
			mockError:      locationlog.NewError(locationlog.KindUpstreamUnavailable, "failed to fetch log", assert.AnError),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   map[string]interface{}{"success": false, "error": "failed to fetch log", "kind": "upstream_unavailable"},
		},
		{
			name:        "upstream rejected the write",
			body:        `{"latitude": 40.71, "longitude": -74}`,
			callService: true,
			mockError: &locationlog.Error{
				Kind:    locationlog.KindUpstreamUnavailable,
				Message: "failed to write log",
				Status:  http.StatusForbidden,
				Err:     &locationlog.StatusError{StatusCode: http.StatusForbidden, Message: "Resource not accessible"},
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody: map[string]interface{}{
				"success":        false,
				"error":          "failed to write log",
				"kind":           "upstream_unavailable",
				"upstreamStatus": float64(http.StatusForbidden),
			},
		},
		{
			name:           "not configured",
			body:           `{"latitude": 40.71, "longitude": -74}`,
			callService:    true,
			mockError:      locationlog.NewError(locationlog.KindNotConfigured, "store is not configured", nil),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"success": false, "error": "store is not configured", "kind": "not_configured"},
		},
		{
			name:           "unexpected error",
			body:           `{"latitude": 40.71, "longitude": -74}`,
			callService:    true,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"success": false, "error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockLocationService)
			handler := NewLocationHandler(mockSvc)

			if tt.callService {
				mockSvc.On("SaveLocation", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64")).Return(tt.mockRecord, tt.mockError)
			}

			// Create request
			req := httptest.NewRequest(http.MethodPost, "/api/save-location", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Create Gin context
			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.SaveLocation(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			var actualBody interface{}
			err := json.Unmarshal(w.Body.Bytes(), &actualBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, actualBody)

			if tt.callService {
				mockSvc.AssertExpectations(t)
			} else {
				mockSvc.AssertNotCalled(t, "SaveLocation", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestLocationHandler_SaveIPLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockRecord     *models.LocationRecord
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name: "saved",
			mockRecord: &models.LocationRecord{
				Latitude:  37.5,
				Longitude: -122.5,
				Timestamp: "2024-01-01T00:00:00.000Z",
				Source:    models.SourceIP,
				City:      "Mountain View",
				Country:   "United States",
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"success": true,
				"location": map[string]interface{}{
					"latitude":  37.5,
					"longitude": -122.5,
					"timestamp": "2024-01-01T00:00:00.000Z",
					"source":    "ip",
					"city":      "Mountain View",
					"country":   "United States",
				},
			},
		},
		{
			name:           "coordinates not resolvable",
			mockError:      locationlog.NewError(locationlog.KindInvalidInput, "could not determine coordinates for ip 192.0.2.1", nil),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"success": false, "error": "could not determine coordinates for ip 192.0.2.1", "kind": "invalid_input"},
		},
		{
			name:           "lookup failed",
			mockError:      locationlog.NewError(locationlog.KindUpstreamUnavailable, "ip lookup failed", assert.AnError),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   map[string]interface{}{"success": false, "error": "ip lookup failed", "kind": "upstream_unavailable"},
		},
		{
			name:           "corrupt log",
			mockError:      locationlog.NewError(locationlog.KindCorruptLog, "stored log cannot be decoded", nil),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"success": false, "error": "stored log cannot be decoded", "kind": "corrupt_log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockLocationService)
			handler := NewLocationHandler(mockSvc)
			mockSvc.On("SaveIPLocation", mock.Anything, "192.0.2.1").Return(tt.mockRecord, tt.mockError)

			// Create request
			req := httptest.NewRequest(http.MethodGet, "/api/save-ip-location", nil)
			w := httptest.NewRecorder()

			// Create Gin context
			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.SaveIPLocation(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			var actualBody interface{}
			err := json.Unmarshal(w.Body.Bytes(), &actualBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, actualBody)

			mockSvc.AssertExpectations(t)
		})
	}
}
