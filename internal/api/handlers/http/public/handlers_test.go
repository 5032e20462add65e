package public_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/Elyson25/clean-air-now/internal/api/handlers/http/public"
	mock_public "github.com/Elyson25/clean-air-now/internal/api/handlers/http/public/mocks"
	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/service"
	"github.com/Elyson25/clean-air-now/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

func TestRegister_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mock_public.NewMockAuth(ctrl)
	h := public.NewHandler(newTestLogger(), auth, nil, nil)

	wantReq := domain.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
	}
	wantResult := &service.AuthResult{
		User:  &domain.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"},
		Token: "jwt-token",
	}

	auth.EXPECT().
		Register(gomock.Any(), wantReq).
		Return(wantResult, nil).
		Times(1)

	reqBody := `{"name":"Ana","email":"ana@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected %d got %d body=%s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	got := decodeJSON[service.AuthResult](t, rr)
	if got.Token != "jwt-token" {
		t.Fatalf("unexpected token: %q", got.Token)
	}
	if got.User == nil || got.User.Name != "Ana" {
		t.Fatalf("unexpected user: %+v", got.User)
	}
}

func TestRegister_InvalidJSON_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mock_public.NewMockAuth(ctrl)
	h := public.NewHandler(newTestLogger(), auth, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString("{bad json"))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestRegister_DuplicateEmail_409(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mock_public.NewMockAuth(ctrl)
	h := public.NewHandler(newTestLogger(), auth, nil, nil)

	auth.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service.Auth.Register: %w", e.ErrConflict)).
		Times(1)

	reqBody := `{"name":"Ana","email":"ana@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected %d got %d body=%s", http.StatusConflict, rr.Code, rr.Body.String())
	}
}

func TestLogin_BadCredentials_401(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mock_public.NewMockAuth(ctrl)
	h := public.NewHandler(newTestLogger(), auth, nil, nil)

	auth.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service.Auth.Login: %w: invalid email or password", e.ErrUnauthorized)).
		Times(1)

	reqBody := `{"email":"ana@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d body=%s", http.StatusUnauthorized, rr.Code, rr.Body.String())
	}
}

func TestResetPassword_ExpiredToken_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mock_public.NewMockAuth(ctrl)
	h := public.NewHandler(newTestLogger(), auth, nil, nil)

	auth.EXPECT().
		ResetPassword(gomock.Any(), "sometoken", domain.ResetPasswordRequest{Password: "newpass1"}).
		Return(nil, fmt.Errorf("service.Auth.ResetPassword: %w", e.ErrTokenExpired)).
		Times(1)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/resetpassword/sometoken", bytes.NewBufferString(`{"password":"newpass1"}`))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("token", "sometoken")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	h.ResetPassword(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestCurrentAirQuality_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	air := mock_public.NewMockAirQuality(ctrl)
	h := public.NewHandler(newTestLogger(), nil, air, nil)

	wantPoint := domain.GeoPoint{Lon: -73.0, Lat: 40.0}
	wantReading := &aqi.Reading{
		AQI:        4,
		Components: map[string]float64{"pm2_5": 42.1},
		ObservedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	air.EXPECT().
		Lookup(gomock.Any(), wantPoint).
		Return(wantReading, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/airquality?lat=40.0&lon=-73.0", nil)
	rr := httptest.NewRecorder()

	h.CurrentAirQuality(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}

	got := decodeJSON[aqi.Reading](t, rr)
	if got.AQI != 4 {
		t.Fatalf("unexpected reading: %+v", got)
	}
}

func TestCurrentAirQuality_MissingParams_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	air := mock_public.NewMockAirQuality(ctrl)
	h := public.NewHandler(newTestLogger(), nil, air, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/airquality?lat=40.0", nil)
	rr := httptest.NewRecorder()

	h.CurrentAirQuality(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestCurrentAirQuality_OutOfRange_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	air := mock_public.NewMockAirQuality(ctrl)
	h := public.NewHandler(newTestLogger(), nil, air, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/airquality?lat=91.0&lon=0.0", nil)
	rr := httptest.NewRecorder()

	h.CurrentAirQuality(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestCurrentAirQuality_NoData_204(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	air := mock_public.NewMockAirQuality(ctrl)
	h := public.NewHandler(newTestLogger(), nil, air, nil)

	air.EXPECT().
		Lookup(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/airquality?lat=40.0&lon=-73.0", nil)
	rr := httptest.NewRecorder()

	h.CurrentAirQuality(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected %d got %d body=%s", http.StatusNoContent, rr.Code, rr.Body.String())
	}
}

func TestPublicReports_ProjectsEvents(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_public.NewMockReports(ctrl)
	h := public.NewHandler(newTestLogger(), nil, nil, reports)

	rep := &domain.Report{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		AuthorName:  "Ana",
		Description: "smoke",
		Status:      domain.ReportSubmitted,
		Point:       domain.GeoPoint{Lon: 1, Lat: 2},
	}

	reports.EXPECT().
		Public(gomock.Any()).
		Return([]*domain.Report{rep}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/public", nil)
	rr := httptest.NewRecorder()

	h.PublicReports(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}

	got := decodeJSON[[]domain.ReportEvent](t, rr)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].AuthorName != "Ana" || got[0].ID != rep.ID {
		t.Fatalf("unexpected event: %+v", got[0])
	}

	// The projection must never include the author's user id.
	var raw []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, leaked := raw[0]["user_id"]; leaked {
		t.Fatalf("user_id leaked into public projection: %v", raw[0])
	}
}
