package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/niteshkumardubey/bill-craft/domain"
	"github.com/niteshkumardubey/bill-craft/internal/catalog"
	"github.com/niteshkumardubey/bill-craft/internal/database"
	"github.com/niteshkumardubey/bill-craft/internal/directory"
	"github.com/niteshkumardubey/bill-craft/internal/invoice"
	"github.com/niteshkumardubey/bill-craft/internal/ledger"
	"github.com/niteshkumardubey/bill-craft/internal/money"
	"github.com/niteshkumardubey/bill-craft/internal/report"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	catalog   *catalog.Catalog
	directory *directory.Directory
	ledger    *ledger.Ledger
	engine    *invoice.Engine
	log       *logrus.Logger
}

// New constructs a Handler.
func New(db *sqlx.DB, log *logrus.Logger) *Handler {
	return &Handler{
		db:        db,
		catalog:   catalog.New(db),
		directory: directory.New(db),
		ledger:    ledger.New(db),
		engine:    invoice.NewEngine(db, log),
		log:       log,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.addProduct)
		r.Get("/", h.listProducts)
		r.Get("/search", h.searchProducts)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.addCustomer)
		r.Get("/", h.listCustomers)
		r.Put("/{id}", h.updateCustomer)
	})

	r.Route("/stock", func(r chi.Router) {
		r.Post("/adjust", h.adjustStock)
		r.Get("/low", h.lowStock)
		r.Get("/{productID}", h.currentStock)
		r.Get("/{productID}/movements", h.stockMovements)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Post("/", h.createInvoice)
		r.Get("/", h.listInvoices)
		r.Get("/{id}", h.getInvoice)
		r.Get("/{id}/export", h.exportInvoiceCSV)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/sales", h.salesSummary)
		r.Get("/sales/export", h.exportSalesXLSX)
	})

	r.Post("/backup", h.backup)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Product handlers

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.AddProductParams
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.catalog.Add(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Find(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req catalog.UpdateProductParams
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.catalog.Update(r.Context(), id, req); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Customer handlers

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	var req directory.AddCustomerParams
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.directory.Add(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.directory.List(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req directory.UpdateCustomerParams
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.directory.Update(r.Context(), id, req); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Stock handlers

type adjustStockRequest struct {
	ProductID int64  `json:"product_id"`
	Change    int64  `json:"change"`
	Reason    string `json:"reason"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "adjustment"
	}
	id, err := h.ledger.Record(r.Context(), req.ProductID, req.Change, reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"movement_id": id})
}

func (h *Handler) currentStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	stock, err := h.ledger.Stock(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"product_id": id, "stock": stock})
}

func (h *Handler) stockMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	moves, err := h.ledger.Movements(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moves)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.LowStock(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Invoice handlers

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.CreateParams
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.engine.Create(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	inv, items, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invoice": inv, "items": items})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.engine.List(r.Context(), r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) exportInvoiceCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	inv, items, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%d.csv", id))
	if err := report.WriteInvoiceCSV(w, inv, items); err != nil {
		h.log.WithError(err).Error("invoice csv export failed")
	}
}

// Report handlers

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summary(r.Context(), r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) exportSalesXLSX(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")
	invoices, err := h.engine.List(r.Context(), start, end)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	summary, err := h.engine.Summary(r.Context(), start, end)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=sales_report.xlsx")
	if err := report.WriteSalesXLSX(w, invoices, summary); err != nil {
		h.log.WithError(err).Error("sales xlsx export failed")
	}
}

// Backup

type backupRequest struct {
	Path string `json:"path"`
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := database.Backup(r.Context(), h.db, req.Path); err != nil {
		respondError(w, http.StatusInternalServerError, "backup failed: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "backed up", "path": req.Path})
}

// Helpers

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondDomainError maps the error taxonomy onto HTTP statuses. Storage
// failures fall through as 500 with the message intact.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"have":       stockErr.Have,
			"need":       stockErr.Need,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateInvoiceNumber):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidTaxRate),
		errors.Is(err, domain.ErrInvalidMovement),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrNoFields):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
