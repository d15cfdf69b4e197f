package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/core/service"
	"github.com/rl1809/stockmap/internal/port"
)

type HTTPHandler struct {
	inventory  *service.InventoryService
	history    *service.HistoryService
	exporter   port.ReportExporter
	sessionTTL time.Duration
	log        logrus.FieldLogger
}

type NameHTTPRequest struct {
	Name string `json:"name"`
}

type ProductHTTPRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type HTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SearchHTTPResponse struct {
	Success  bool   `json:"success"`
	Street   string `json:"street"`
	Lot      string `json:"lot"`
	Quantity int    `json:"quantity"`
}

type InventoryHTTPResponse struct {
	Streets []domain.Street `json:"streets"`
}

type MovementHTTPResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Street    string    `json:"street"`
	Lot       string    `json:"lot"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type MovementsHTTPResponse struct {
	Movements []MovementHTTPResponse `json:"movements"`
}

func NewHTTPHandler(inventory *service.InventoryService, history *service.HistoryService, exporter port.ReportExporter, sessionTTL time.Duration, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{
		inventory:  inventory,
		history:    history,
		exporter:   exporter,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Router wires every endpoint behind session resolution and request logging.
// Routes match on the escaped path so street and lot names may contain '/'
// or be '.' when percent-encoded.
func (h *HTTPHandler) Router() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return sessionMiddleware(h.sessionTTL, next)
	})
	api.HandleFunc("/streets", h.AddStreet).Methods(http.MethodPost)
	api.HandleFunc("/streets/{street}/lots", h.AddLot).Methods(http.MethodPost)
	api.HandleFunc("/streets/{street}/lots/{lot}/product", h.AssignProduct).Methods(http.MethodPut)
	api.HandleFunc("/streets/{street}/lots/{lot}/product", h.EditProduct).Methods(http.MethodPatch)
	api.HandleFunc("/streets/{street}/lots/{lot}/product", h.DeleteProduct).Methods(http.MethodDelete)
	api.HandleFunc("/streets/{street}/lots/{lot}/sold", h.MarkSold).Methods(http.MethodPost)
	api.HandleFunc("/streets/{street}/lots/{lot}/depreciated", h.MarkDepreciated).Methods(http.MethodPost)
	api.HandleFunc("/inventory", h.GetInventory).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/report", h.Report).Methods(http.MethodGet)
	api.HandleFunc("/movements", h.Movements).Methods(http.MethodGet)

	return loggingMiddleware(h.log, r)
}

func (h *HTTPHandler) AddStreet(w http.ResponseWriter, r *http.Request) {
	var req NameHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.inventory.AddStreet(r.Context(), sessionFromRequest(r), req.Name), http.StatusCreated, "street added")
}

func (h *HTTPHandler) AddLot(w http.ResponseWriter, r *http.Request) {
	var req NameHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	street := pathVar(r, "street")
	h.respond(w, r, h.inventory.AddLot(r.Context(), sessionFromRequest(r), street, req.Name), http.StatusCreated, "lot added")
}

func (h *HTTPHandler) AssignProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.inventory.AssignProduct(r.Context(), sessionFromRequest(r), pathVar(r, "street"), pathVar(r, "lot"), req.Product, req.Quantity)
	h.respond(w, r, err, http.StatusOK, "product assigned")
}

func (h *HTTPHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductHTTPRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.inventory.EditProduct(r.Context(), sessionFromRequest(r), pathVar(r, "street"), pathVar(r, "lot"), req.Product, req.Quantity)
	h.respond(w, r, err, http.StatusOK, "product updated")
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.inventory.DeleteProduct(r.Context(), sessionFromRequest(r), pathVar(r, "street"), pathVar(r, "lot"))
	h.respond(w, r, err, http.StatusOK, "product removed")
}

func (h *HTTPHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	err := h.inventory.MarkSold(r.Context(), sessionFromRequest(r), pathVar(r, "street"), pathVar(r, "lot"))
	h.respond(w, r, err, http.StatusOK, "marked sold")
}

func (h *HTTPHandler) MarkDepreciated(w http.ResponseWriter, r *http.Request) {
	err := h.inventory.MarkDepreciated(r.Context(), sessionFromRequest(r), pathVar(r, "street"), pathVar(r, "lot"))
	h.respond(w, r, err, http.StatusOK, "marked depreciated")
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.Inventory(r.Context(), sessionFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	streets := inv.Streets
	if streets == nil {
		streets = []domain.Street{}
	}
	writeJSON(w, http.StatusOK, InventoryHTTPResponse{Streets: streets})
}

func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	product := r.URL.Query().Get("product")
	loc, err := h.inventory.FindByProduct(r.Context(), sessionFromRequest(r), product)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchHTTPResponse{
		Success:  true,
		Street:   loc.Street,
		Lot:      loc.Lot,
		Quantity: loc.Quantity,
	})
}

func (h *HTTPHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventory.Report(r.Context(), sessionFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportReport(r.Context(), report, &buf); err != nil {
		h.writeError(w, r, errors.Wrap(err, "export report"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.exporter.FileName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("write report")
	}
}

func (h *HTTPHandler) Movements(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, HTTPResponse{Success: false, Message: "invalid limit"})
			return
		}
		limit = n
	}

	movements, err := h.history.List(r.Context(), sessionFromRequest(r), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := MovementsHTTPResponse{Movements: make([]MovementHTTPResponse, 0, len(movements))}
	for _, m := range movements {
		res.Movements = append(res.Movements, MovementHTTPResponse{
			ID:        m.ID,
			Kind:      string(m.Kind),
			Street:    m.Street,
			Lot:       m.Lot,
			Product:   m.Product,
			Quantity:  m.Quantity,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathVar returns a route variable with its percent-encoding removed.
func pathVar(r *http.Request, name string) string {
	raw := mux.Vars(r)[name]
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func (h *HTTPHandler) respond(w http.ResponseWriter, r *http.Request, err error, status int, message string) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, HTTPResponse{Success: true, Message: message})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		message = "internal error"
	}
	writeJSON(w, status, HTTPResponse{Success: false, Message: message})
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err), errors.Is(err, service.ErrSessionRequired), errors.Is(err, service.ErrSessionTooLong):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
