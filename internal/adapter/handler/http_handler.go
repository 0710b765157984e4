package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rl1809/multiship/internal/core/domain"
	"github.com/rl1809/multiship/internal/core/service"
	"github.com/rl1809/multiship/internal/port"
)

const defaultNearbyLimit = 10

type HTTPHandler struct {
	multiship *service.MultishipService
	commerce  port.CommerceClient
	stores    port.StoreRepository
	log       *zap.Logger
}

func NewHTTPHandler(multiship *service.MultishipService, commerce port.CommerceClient, stores port.StoreRepository, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		multiship: multiship,
		commerce:  commerce,
		stores:    stores,
		log:       log,
	}
}

type DeliveryOptionRequest struct {
	BasketID           string `json:"basket_id"`
	ItemID             string `json:"item_id"`
	Pickup             bool   `json:"pickup"`
	StoreID            string `json:"store_id,omitempty"`
	DefaultInventoryID string `json:"default_inventory_id,omitempty"`
}

type ReconcileRequest struct {
	BasketID string `json:"basket_id"`
}

type BasketResponse struct {
	Basket   *domain.Basket `json:"basket"`
	Subtotal string         `json:"subtotal"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// DeliveryOption flips one basket item between ship-to-address and store
// pickup, then runs the empty-shipment cleanup pass.
func (h *HTTPHandler) DeliveryOption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DeliveryOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.BasketID == "" || req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required fields"})
		return
	}

	ctx := r.Context()
	basket, err := h.commerce.GetBasket(ctx, req.BasketID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	item := basket.Item(req.ItemID)
	if item == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "product item not found"})
		return
	}

	var store *domain.Store
	if req.StoreID != "" {
		store, err = h.stores.GetStore(ctx, req.StoreID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if store == nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "store not found"})
			return
		}
	}

	if err := h.multiship.UpdateDeliveryOption(ctx, basket, item, req.Pickup, store, req.DefaultInventoryID); err != nil {
		h.writeError(w, err)
		return
	}

	// best-effort cleanup of shipments the toggle left empty
	fresh, err := h.commerce.GetBasket(ctx, req.BasketID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.multiship.RemoveEmptyShipments(ctx, fresh); err != nil {
		h.log.Warn("empty shipment cleanup failed",
			zap.String("basket_id", req.BasketID),
			zap.Error(err))
	}

	h.respondBasket(w, r, req.BasketID)
}

// Reconcile runs the full background reconciliation pass: remove or
// consolidate empty shipments, then assign default methods to shipments
// missing one.
func (h *HTTPHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.BasketID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required fields"})
		return
	}

	ctx := r.Context()
	basket, err := h.commerce.GetBasket(ctx, req.BasketID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.multiship.RemoveEmptyShipments(ctx, basket); err != nil {
		h.writeError(w, err)
		return
	}

	basket, err = h.commerce.GetBasket(ctx, req.BasketID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.multiship.UpdateShipmentsWithoutMethods(ctx, basket); err != nil {
		h.writeError(w, err)
		return
	}

	h.respondBasket(w, r, req.BasketID)
}

// StoresNearby serves the store locator's "use my location" flow.
func (h *HTTPHandler) StoresNearby(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid lat/lng"})
		return
	}

	limit := defaultNearbyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	stores, err := h.stores.FindNearby(r.Context(), lat, lng, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

// Inventory returns the effective (normalized) inventory for a product,
// optionally scoped to one store's inventory list.
func (h *HTTPHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing product_id"})
		return
	}

	ctx := r.Context()
	var (
		store        *domain.Store
		inventoryIDs []string
	)
	if storeID := r.URL.Query().Get("store_id"); storeID != "" {
		found, err := h.stores.GetStore(ctx, storeID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if found == nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "store not found"})
			return
		}
		store = found
		if store.InventoryID != "" {
			inventoryIDs = append(inventoryIDs, store.InventoryID)
		}
	}

	products, err := h.commerce.GetProducts(ctx, []string{productID}, inventoryIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(products) == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}

	product := service.EffectiveInventory(products[0], nil, store)
	response := map[string]any{
		"product_id": product.ID,
		"inventory":  product.Inventory,
	}
	if store != nil {
		response["store_inventory"] = product.StoreInventory(store.InventoryID)
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) respondBasket(w http.ResponseWriter, r *http.Request, basketID string) {
	basket, err := h.commerce.GetBasket(r.Context(), basketID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BasketResponse{
		Basket:   basket,
		Subtotal: basket.Subtotal().StringFixed(2),
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrInvalidBasketOrItems),
		errors.Is(err, service.ErrNoStoreSelected),
		errors.Is(err, service.ErrStoreMissingInventoryID):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrNoBasket):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrNoPickupMethod):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrShipmentNotResolved):
		status = http.StatusBadGateway
		message = err.Error()
	default:
		h.log.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
