package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/core/ports"
)

// APIHandler handles HTTP requests for domain management.
type APIHandler struct {
	svc  ports.RegistrarService
	repo ports.DomainRepository
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(svc ports.RegistrarService, repo ports.DomainRepository) *APIHandler {
	return &APIHandler{svc: svc, repo: repo}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux, apiToken string) {
	// Public Routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Middleware
	auth := AuthMiddleware(apiToken)
	limit := RateLimitMiddleware(newRateLimiter(5, 10))

	protected := func(f http.HandlerFunc) http.Handler {
		return limit(auth(f))
	}

	mux.Handle("GET /domains", protected(h.ListDomains))
	mux.Handle("GET /domains/{name}", protected(h.GetDomain))
	mux.Handle("POST /domains/{name}", protected(h.CreateDomain))
	mux.Handle("DELETE /domains/{name}", protected(h.DeleteDomain))
	mux.Handle("GET /domains/{name}/available", protected(h.CheckAvailable))
	mux.Handle("PUT /domains/{name}/nameservers", protected(h.SetNameservers))
	mux.Handle("PUT /domains/{name}/contacts/{role}", protected(h.SetContact))
	mux.Handle("GET /domains/{name}/security-email", protected(h.GetSecurityEmail))
	mux.Handle("POST /domains/{name}/hold", protected(h.PlaceHold))
	mux.Handle("DELETE /domains/{name}/hold", protected(h.RevertHold))
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	checks := h.svc.HealthCheck(r.Context())

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, resp)
}

// ListDomains returns every locally tracked domain record.
func (h *APIHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, records)
}

// GetDomain returns the assembled view of one domain: local lifecycle state
// plus registry-derived properties.
func (h *APIHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Info(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, detail)
}

// CreateDomain ensures the domain exists in the registry, materializing it
// with default contacts if needed.
func (h *APIHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EnsureExists(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteDomain deletes the domain from the registry. Only held domains may
// be deleted.
func (h *APIHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAvailable reports whether the name can still be registered.
func (h *APIHandler) CheckAvailable(w http.ResponseWriter, r *http.Request) {
	avail, err := h.svc.Available(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"available": avail})
}

// SetNameservers replaces the domain's desired nameserver set and returns
// the reconciliation outcome, including soft failures.
func (h *APIHandler) SetNameservers(w http.ResponseWriter, r *http.Request) {
	var desired []domain.Nameserver
	if err := json.NewDecoder(r.Body).Decode(&desired); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SetNameservers(r.Context(), r.PathValue("name"), desired)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// SetContact binds a contact to the domain in the role given by the path.
func (h *APIHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	role := domain.ContactRole(r.PathValue("role"))
	if !role.Valid() {
		http.Error(w, "unknown contact role", http.StatusBadRequest)
		return
	}

	var contact domain.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if contact.Role == "" {
		contact.Role = role
	}

	if err := h.svc.SetContact(r.Context(), r.PathValue("name"), &contact, role); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSecurityEmail returns the domain's security contact email.
func (h *APIHandler) GetSecurityEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.svc.SecurityEmail(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"security_email": email})
}

// PlaceHold places a client hold on the domain.
func (h *APIHandler) PlaceHold(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.PlaceHold(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevertHold lifts a client hold from the domain.
func (h *APIHandler) RevertHold(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RevertHold(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeServiceError maps core errors onto HTTP statuses: validation
// problems are the client's fault, illegal transitions are conflicts,
// connectivity trouble asks the caller to retry.
func writeServiceError(w http.ResponseWriter, err error) {
	var illegal *domain.IllegalTransitionError
	var regErr *domain.RegistryError

	switch {
	case errors.As(err, &illegal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrDomainNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &regErr) && regErr.IsConnectionError():
		http.Error(w, "registry temporarily unavailable, try again", http.StatusBadGateway)
	case errors.As(err, &regErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, domain.ErrTooManyNameservers),
		errors.Is(err, domain.ErrWrongContactRole):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// Validation errors from the core are raised before any remote
		// call and read as client errors; everything else is a 500.
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"invalid hostname", "nameserver", "domain name", "label", "contact role"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
