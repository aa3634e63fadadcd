package ordersapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/cache/rediscache"
	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apimocks "github.com/BearBump/FoodTrack/internal/api/ordersapi/mocks"
)

func newServer(t *testing.T, svc Service, hub *broadcast.Hub, rl *RateLimit) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(svc, hub).WithRateLimit(rl).Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestPlaceOrder_Created(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("PlaceOrder", mock.Anything, models.PlaceOrderInput{
		UserID: 3, CustomerName: "Ravi", Item: "Vada Pav",
		Destination: &models.Point{Lat: 28.61, Lng: 77.2},
	}).Return(&models.Order{ID: 10, UserID: 3, Item: "Vada Pav", Status: models.OrderStatusPlaced}, nil).Once()

	srv := newServer(t, svc, nil, nil)
	resp, body := do(t, http.MethodPost, srv.URL+"/api/orders",
		`{"userId":3,"customerName":"Ravi","item":"Vada Pav","destination":{"lat":28.61,"lng":77.2}}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var o models.Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	require.Equal(t, int64(10), o.ID)
	require.Equal(t, models.OrderStatusPlaced, o.Status)
	require.Contains(t, body, `"eta":null`)
}

func TestPlaceOrder_BadBody(t *testing.T) {
	srv := newServer(t, apimocks.NewMockService(t), nil, nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/orders", `{"userId":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/orders", `{"userId":1,"item":"x","bogus":true}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrInvalidTransition, http.StatusConflict},
		{identity.ErrUnknownUser, http.StatusForbidden},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		svc := apimocks.NewMockService(t)
		svc.On("UpdateStatus", mock.Anything, int64(5), "Cancelled", "").Return(nil, c.err).Once()
		srv := newServer(t, svc, nil, nil)

		resp, body := do(t, http.MethodPatch, srv.URL+"/api/orders/5/status", `{"status":"Cancelled"}`)
		require.Equal(t, c.code, resp.StatusCode, c.err.Error())
		if c.code == http.StatusInternalServerError {
			require.NotContains(t, body, "db exploded")
		}
	}
}

func TestUpdateLocation(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("UpdateLocation", mock.Anything, int64(5), 28.63, 77.22).
		Return(&models.Order{ID: 5, ETAMinutes: models.IntPtr(2)}, nil).Once()
	srv := newServer(t, svc, nil, nil)

	resp, body := do(t, http.MethodPatch, srv.URL+"/api/orders/5/location", `{"latitude":28.63,"longitude":77.22}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"eta":2`)

	resp, _ = do(t, http.MethodPatch, srv.URL+"/api/orders/5/location", `{"latitude":28.63}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReadRoutes(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("GetOrder", mock.Anything, int64(5)).Return(&models.Order{ID: 5}, nil).Once()
	svc.On("GetTimeline", mock.Anything, int64(5)).Return([]*models.OrderHistory{
		{ID: 1, OrderID: 5, Status: models.OrderStatusPlaced},
		{ID: 2, OrderID: 5, Status: models.OrderStatusConfirmed},
	}, nil).Once()
	svc.On("ListUserOrders", mock.Anything, int64(3), 10, 20).Return([]*models.Order{{ID: 5}}, nil).Once()
	svc.On("GetRecommendations", mock.Anything, int64(3)).
		Return([]models.Recommendation{{Item: "Dosa", Count: 2}}, nil).Once()
	srv := newServer(t, svc, nil, nil)

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/orders/5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/orders/5/timeline", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h []models.OrderHistory
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	require.Len(t, h, 2)
	require.Equal(t, models.OrderStatusConfirmed, h[1].Status)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/users/3/orders?limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/users/3/recommendations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[{"item":"Dosa","count":2}]`, body)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/orders/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpsRoutes(t *testing.T) {
	srv := newServer(t, apimocks.NewMockService(t), nil, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit_MutatingRoutesOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })

	svc := apimocks.NewMockService(t)
	svc.On("UpdateStatus", mock.Anything, int64(5), "Confirmed", "").
		Return(&models.Order{ID: 5}, nil).Twice()
	svc.On("GetOrder", mock.Anything, int64(5)).Return(&models.Order{ID: 5}, nil).Times(3)

	srv := newServer(t, svc, nil, NewRateLimit(rediscache.NewRateLimiter(rc.Client()), 2))

	for i := 0; i < 2; i++ {
		resp, _ := do(t, http.MethodPatch, srv.URL+"/api/orders/5/status", `{"status":"Confirmed"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := do(t, http.MethodPatch, srv.URL+"/api/orders/5/status", `{"status":"Confirmed"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))

	for i := 0; i < 3; i++ {
		resp, _ := do(t, http.MethodGet, srv.URL+"/api/orders/5", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })

	svc := apimocks.NewMockService(t)
	svc.On("UpdateStatus", mock.Anything, int64(5), "Confirmed", "").Return(&models.Order{ID: 5}, nil).Once()
	srv := newServer(t, svc, nil, NewRateLimit(rediscache.NewRateLimiter(rc.Client()), 1))

	codes := make([]int, 0, 2)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/orders/5/status", strings.NewReader(`{"status":"Confirmed"}`))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_TrustedProxyKeysOnForwardedFor(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })

	svc := apimocks.NewMockService(t)
	svc.On("UpdateStatus", mock.Anything, int64(5), "Confirmed", "").Return(&models.Order{ID: 5}, nil).Twice()
	api := New(svc, nil).
		WithRateLimit(NewRateLimit(rediscache.NewRateLimiter(rc.Client()), 1)).
		WithTrustedProxy(true)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/orders/5/status", strings.NewReader(`{"status":"Confirmed"}`))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimit_BackendDownLetsRequestsThrough(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("UpdateStatus", mock.Anything, int64(5), "Confirmed", "").Return(&models.Order{ID: 5}, nil).Once()
	srv := newServer(t, svc, nil, NewRateLimit(failingLimiter{}, 1))

	resp, _ := do(t, http.MethodPatch, srv.URL+"/api/orders/5/status", `{"status":"Confirmed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRateLimit_DisabledWhenZero(t *testing.T) {
	require.Nil(t, NewRateLimit(failingLimiter{}, 0))
	require.Nil(t, NewRateLimit(nil, 10))
}

func TestSubscribe_StreamsOrderEvents(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("GetOrder", mock.Anything, int64(5)).Return(&models.Order{ID: 5}, nil).Once()
	hub := broadcast.NewHub()
	srv := newServer(t, svc, hub, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders/5"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers(broadcast.Topic(5)) == 1 }, time.Second, 5*time.Millisecond)

	ev, err := broadcast.NewStatusEvent(broadcast.OrderStatusUpdated{OrderID: 5, Status: "Preparing", UpdatedBy: "tracking-scheduler"})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), 5, ev))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"type":"OrderStatusUpdated"`)
	require.Contains(t, string(raw), `"status":"Preparing"`)
}

func TestSubscribe_UnknownOrder(t *testing.T) {
	svc := apimocks.NewMockService(t)
	svc.On("GetOrder", mock.Anything, int64(9)).Return(nil, models.ErrNotFound).Once()
	srv := newServer(t, svc, broadcast.NewHub(), nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders/9"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
