package specialupdate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/services/specialaccount"
)

// MockService реализует интерфейс specialupdate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id string, tier models.Plan,
	isActive bool, expiration *time.Time, notes string) (*models.SpecialAccountRecord, error) {
	args := m.Called(ctx, id, tier, isActive, expiration, notes)
	if res := args.Get(0); res != nil {
		return res.(*models.SpecialAccountRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSpecialUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная деактивация записи",
			id:   "acc-1",
			body: `{"tier":"premium","is_active":false}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "acc-1", models.PlanPremium, false, (*time.Time)(nil), "").
					Return(&models.SpecialAccountRecord{
						ID:       "acc-1",
						Email:    "vip@example.com",
						Tier:     models.PlanPremium,
						IsActive: false,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"special_account"`,
		},
		{
			name: "запись не найдена",
			id:   "missing",
			body: `{"tier":"pro","is_active":true}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "missing", models.PlanPro, true, (*time.Time)(nil), "").
					Return(nil, specialaccount.ErrSpecialAccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"special account not found"`,
		},
		{
			name:           "недопустимый тариф",
			id:             "acc-1",
			body:           `{"tier":"platinum","is_active":true}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Tier must be one of`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/admin/special-accounts/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
