package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/auth"
	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/core/service"
)

type HTTPHandler struct {
	orders    *service.OrderService
	lifecycle *service.LifecycleService
	lots      *service.LotService
	listings  *service.ListingService
	logger    *zap.Logger
}

func NewHTTPHandler(orders *service.OrderService, lifecycle *service.LifecycleService, lots *service.LotService, listings *service.ListingService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		orders:    orders,
		lifecycle: lifecycle,
		lots:      lots,
		listings:  listings,
		logger:    logger,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/orders/{id}/status", h.UpdateOrderStatus)

	mux.HandleFunc("POST /api/lots", h.CreateLot)
	mux.HandleFunc("GET /api/lots", h.ListLots)
	mux.HandleFunc("GET /api/lots/{id}", h.GetLot)
	mux.HandleFunc("PATCH /api/lots/{id}", h.UpdateLot)

	mux.HandleFunc("POST /api/listings", h.CreateListing)
	mux.HandleFunc("GET /api/listings/{id}", h.GetListing)
}

type placeOrderRequest struct {
	ListingID string `json:"listing_id"`
	LotID     string `json:"lot_id"`
	Quantity  int    `json:"quantity"`
	RequestID string `json:"request_id"`
}

type placeOrderResponse struct {
	OrderID  string                `json:"order_id"`
	TotalJPY int64                 `json:"total_jpy"`
	Listing  domain.ListingSummary `json:"listing"`
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Validation("INVALID_REQUEST", "invalid request body"))
		return
	}

	result, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderInput{
		BuyerID:   actor.UserID,
		ListingID: req.ListingID,
		LotID:     req.LotID,
		Quantity:  req.Quantity,
		RequestID: req.RequestID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:  result.Order.ID,
		TotalJPY: result.Order.TotalJPY,
		Listing:  result.Listing,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Validation("INVALID_REQUEST", "invalid request body"))
		return
	}

	order, err := h.lifecycle.UpdateStatus(r.Context(), r.PathValue("id"), actor, domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(order))
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	order, err := h.lifecycle.GetOrder(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(order))
}

type createLotRequest struct {
	PartNumber   string `json:"part_number"`
	Manufacturer string `json:"manufacturer"`
	DateCode     string `json:"date_code"`
	Source       string `json:"source"`
	Condition    string `json:"condition"`
	AvailableQty int    `json:"available_qty"`
	Location     string `json:"location"`
}

func (h *HTTPHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	var req createLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Validation("INVALID_REQUEST", "invalid request body"))
		return
	}

	lot, err := h.lots.CreateLot(r.Context(), actor, service.CreateLotInput{
		PartNumber:   req.PartNumber,
		Manufacturer: req.Manufacturer,
		DateCode:     req.DateCode,
		Source:       domain.LotSource(req.Source),
		Condition:    domain.LotCondition(req.Condition),
		AvailableQty: req.AvailableQty,
		Location:     req.Location,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lotView(lot))
}

type updateLotRequest struct {
	PartNumber   *string `json:"part_number"`
	Manufacturer *string `json:"manufacturer"`
	DateCode     *string `json:"date_code"`
	Source       *string `json:"source"`
	Condition    *string `json:"condition"`
	AvailableQty *int    `json:"available_qty"`
	Location     *string `json:"location"`
}

func (h *HTTPHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	var req updateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Validation("INVALID_REQUEST", "invalid request body"))
		return
	}

	patch := domain.LotPatch{
		PartNumber:   req.PartNumber,
		Manufacturer: req.Manufacturer,
		DateCode:     req.DateCode,
		AvailableQty: req.AvailableQty,
		Location:     req.Location,
	}
	if req.Source != nil {
		source := domain.LotSource(*req.Source)
		patch.Source = &source
	}
	if req.Condition != nil {
		condition := domain.LotCondition(*req.Condition)
		patch.Condition = &condition
	}

	lot, err := h.lots.UpdateLot(r.Context(), r.PathValue("id"), actor, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lotView(lot))
}

func (h *HTTPHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lot, err := h.lots.GetLot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lotView(lot))
}

func (h *HTTPHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	sellerID := r.URL.Query().Get("seller_id")
	if sellerID == "" {
		sellerID = auth.FromRequest(r).UserID
	}

	lots, err := h.lots.ListAvailableLots(r.Context(), sellerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]lotResponse, 0, len(lots))
	for i := range lots {
		views = append(views, lotView(&lots[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

type createListingRequest struct {
	PartNumber   string `json:"part_number"`
	Manufacturer string `json:"manufacturer"`
	Quantity     int    `json:"quantity"`
	UnitPriceJPY int64  `json:"unit_price_jpy"`
}

func (h *HTTPHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromRequest(r)

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Validation("INVALID_REQUEST", "invalid request body"))
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), actor, service.CreateListingInput{
		PartNumber:   req.PartNumber,
		Manufacturer: req.Manufacturer,
		Quantity:     req.Quantity,
		UnitPriceJPY: req.UnitPriceJPY,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing.Summary())
}

func (h *HTTPHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	summary, err := h.listings.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type orderResponse struct {
	ID           string     `json:"id"`
	BuyerID      string     `json:"buyer_id"`
	SellerID     string     `json:"seller_id"`
	ListingID    string     `json:"listing_id"`
	LotID        string     `json:"lot_id"`
	Quantity     int        `json:"quantity"`
	UnitPriceJPY int64      `json:"unit_price_jpy"`
	TotalJPY     int64      `json:"total_jpy"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty"`
}

func orderView(o *domain.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		BuyerID:      o.BuyerID,
		SellerID:     o.SellerID,
		ListingID:    o.ListingID,
		LotID:        o.LotID,
		Quantity:     o.Quantity,
		UnitPriceJPY: o.UnitPriceJPY,
		TotalJPY:     o.TotalJPY,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		PaidAt:       o.PaidAt,
		CanceledAt:   o.CanceledAt,
		FulfilledAt:  o.FulfilledAt,
	}
}

type lotResponse struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller_id"`
	PartNumber   string    `json:"part_number"`
	Manufacturer string    `json:"manufacturer"`
	DateCode     string    `json:"date_code,omitempty"`
	Source       string    `json:"source"`
	Condition    string    `json:"condition"`
	AvailableQty int       `json:"available_qty"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func lotView(l *domain.InventoryLot) lotResponse {
	return lotResponse{
		ID:           l.ID,
		SellerID:     l.SellerID,
		PartNumber:   l.PartNumber,
		Manufacturer: l.Manufacturer,
		DateCode:     l.DateCode,
		Source:       string(l.Source),
		Condition:    string(l.Condition),
		AvailableQty: l.AvailableQty,
		Location:     l.Location,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

type errorResponse struct {
	ErrorCode     string `json:"error_code"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err)
	}

	resp := errorResponse{ErrorCode: de.Code, Message: de.Message}
	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindInternal:
		resp.CorrelationID = uuid.New().String()
		resp.Message = "internal error"
		h.logger.Error("request failed",
			zap.String("correlation_id", resp.CorrelationID),
			zap.Error(err),
		)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
