// Package ordersapi exposes the order operations and the live tracking
// websocket over HTTP. Handlers only decode input, call the service and map
// errors to status codes.
package ordersapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Service interface {
	PlaceOrder(ctx context.Context, in models.PlaceOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string, updatedBy string) (*models.Order, error)
	UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Order, error)
	GetTimeline(ctx context.Context, orderID int64) ([]*models.OrderHistory, error)
	GetRecommendations(ctx context.Context, userID int64) ([]models.Recommendation, error)
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error)
}

type API struct {
	svc     Service
	hub     *broadcast.Hub
	limiter *RateLimit
	proxied bool
	log     *slog.Logger
}

func New(svc Service, hub *broadcast.Hub) *API {
	return &API{
		svc: svc,
		hub: hub,
		log: slog.With("component", "orders_api"),
	}
}

// WithRateLimit guards the mutating routes. A nil limiter disables it.
func (a *API) WithRateLimit(rl *RateLimit) *API {
	a.limiter = rl
	return a
}

// WithTrustedProxy makes the router take the client address from
// X-Forwarded-For / X-Real-IP. Enable it only behind a proxy that sets them,
// otherwise clients pick their own rate-limit key.
func (a *API) WithTrustedProxy(trusted bool) *API {
	a.proxied = trusted
	return a
}

// Router builds the chi router with every API, websocket and ops route.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	if a.proxied {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if a.limiter != nil {
				r.Use(a.limiter.Middleware)
			}
			r.Post("/orders", a.placeOrder)
			r.Patch("/orders/{id}/status", a.updateStatus)
			r.Patch("/orders/{id}/location", a.updateLocation)
		})
		r.Get("/orders/{id}", a.getOrder)
		r.Get("/orders/{id}/timeline", a.getTimeline)
		r.Get("/users/{id}/orders", a.listUserOrders)
		r.Get("/users/{id}/recommendations", a.getRecommendations)
	})

	r.Get("/ws/orders/{id}", a.subscribe)
	return r
}

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type placeOrderRequest struct {
	UserID       int64     `json:"userId"`
	CustomerName string    `json:"customerName"`
	Item         string    `json:"item"`
	Destination  *pointDTO `json:"destination,omitempty"`
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (a *API) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !a.decode(w, r, &req) {
		return
	}
	in := models.PlaceOrderInput{
		UserID:       req.UserID,
		CustomerName: req.CustomerName,
		Item:         req.Item,
	}
	if req.Destination != nil {
		in.Destination = &models.Point{Lat: req.Destination.Lat, Lng: req.Destination.Lng}
	}
	o, err := a.svc.PlaceOrder(r.Context(), in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	o, err := a.svc.GetOrder(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	o, err := a.svc.UpdateStatus(r.Context(), id, req.Status, req.UpdatedBy)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) updateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req updateLocationRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		a.writeError(w, errors.Wrap(models.ErrValidation, "latitude and longitude are required"))
		return
	}
	o, err := a.svc.UpdateLocation(r.Context(), id, *req.Latitude, *req.Longitude)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) getTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	h, err := a.svc.GetTimeline(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (a *API) listUserOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	out, err := a.svc.ListUserOrders(r.Context(), id, limit, offset)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getRecommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	out, err := a.svc.GetRecommendations(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if a.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "live tracking disabled"})
		return
	}
	if _, err := a.svc.GetOrder(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.hub.Serve(w, r, broadcast.Topic(id)); err != nil {
		// the upgrader has already answered the client
		a.log.Debug("websocket subscribe failed", "order_id", id, "error", err.Error())
	}
}

func (a *API) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.writeError(w, errors.Wrap(models.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.writeError(w, errors.Wrapf(models.ErrValidation, "invalid body: %v", err))
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, identity.ErrUnknownUser):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		a.log.Error("request failed", "error", msg)
		msg = "internal error"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
