package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/response"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/service"
)

const (
	insertSuccessMessage = "Product inserted successfully"
	insertFailureError   = "error uploading file"
)

type ProductHandler struct {
	products service.ProductService
	images   service.ImageService
	now      func() time.Time
}

func NewProductHandler(products service.ProductService, images service.ImageService) *ProductHandler {
	return &ProductHandler{products: products, images: images, now: time.Now}
}

type insertResponse struct {
	Message string `json:"message"`
	Image   string `json:"image"`
}

type insertFailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list products failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	response.Raw(w, r, http.StatusOK, products)
}

// Detail answers 404 with an empty body when the product does not exist.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, found, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	response.Raw(w, r, http.StatusOK, product)
}

// Update is a read despite its name. It differs from Detail only in writing
// a JSON null body on 404.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	product, found, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !found {
		response.Raw(w, r, http.StatusNotFound, nil)
		return
	}
	response.Raw(w, r, http.StatusOK, product)
}

func (h *ProductHandler) lookup(w http.ResponseWriter, r *http.Request) (domain.Product, bool, bool) {
	productID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return domain.Product{}, false, false
	}
	product, found, err := h.products.GetProductByID(r.Context(), productID)
	if err != nil {
		slog.ErrorContext(r.Context(), "load product failed", "product_id", productID, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return domain.Product{}, false, false
	}
	return product, found, true
}

func (h *ProductHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return
		}
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	filename, err := h.images.StoreProductImage(r.Context(), product.Image)
	if err != nil {
		h.insertFailed(w, r, err)
		return
	}

	product.ID = 0
	product.Image = filename
	product.InputDate = domain.DateOf(h.now())
	if err := h.products.Save(r.Context(), &product); err != nil {
		h.insertFailed(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "product.insert",
		TargetType: "product",
		TargetID:   strconv.FormatUint(uint64(product.ID), 10),
		Action:     "insert",
		Outcome:    "success",
		Reason:     "product_inserted",
	}, "image", filename)
	response.Raw(w, r, http.StatusOK, insertResponse{Message: insertSuccessMessage, Image: filename})
}

// insertFailed writes the uniform insert failure body. An image already
// written before the failure stays on disk.
func (h *ProductHandler) insertFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "product insert failed", "error", err)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "product.insert",
		TargetType: "product",
		Action:     "insert",
		Outcome:    "failure",
		Reason:     insertFailureReason(err),
	})
	response.Raw(w, r, http.StatusInternalServerError, insertFailureResponse{
		Message: err.Error(),
		Error:   insertFailureError,
	})
}

func insertFailureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrImagePayloadMalformed):
		return "image_payload_malformed"
	case errors.Is(err, service.ErrImageWriteFailed):
		return "image_write_failed"
	default:
		return "persistence_failed"
	}
}

func parsePathID(input string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
