package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"
	"github.com/dmitrijs2005/cyclelogin/internal/timex"
	"github.com/go-chi/chi/v5"
)

var okResponse = api.OKResponse{OK: true}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "OK"})
}

func (h *Handler) exchangeDevPIN(w http.ResponseWriter, r *http.Request) {
	var req api.DevTokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, exp, err := h.svc.Issuer.Exchange(req.PIN)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid dev PIN")
		return
	}
	writeJSON(w, http.StatusOK, api.DevTokenResponse{Token: token, ExpiresAt: timex.UnixMilli(exp)})
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req api.ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.ValidateRequest(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) incrementVisitCount(w http.ResponseWriter, r *http.Request) {
	n, c, err := h.svc.Counter.IncrementAndGetCycle(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CounterResponse{Count: n, Cycle: c})
}

func (h *Handler) getVisitCount(w http.ResponseWriter, r *http.Request) {
	n, c, err := h.svc.Counter.CurrentCycle(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CounterResponse{Count: n, Cycle: c})
}

func (h *Handler) recordVisit(w http.ResponseWriter, r *http.Request) {
	var v api.Visit
	if err := decodeBody(r, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.svc.Visits.Record(r.Context(), v); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, okResponse)
}

func (h *Handler) amendLastDuration(w http.ResponseWriter, r *http.Request) {
	var req api.AmendDurationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amended, err := h.svc.Visits.AmendLastDuration(r.Context(), req.Username, req.DurationMs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AmendDurationResponse{OK: true, Amended: amended})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context(), privilegeFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Users.Create(r.Context(), privilegeFrom(r), req.Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateUserResponse{OK: true, User: *u, CycleCodes: u.CycleCodes})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.Delete(r.Context(), privilegeFrom(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *Handler) updateLicense(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateLicenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Licenses.Apply(r.Context(), privilegeFrom(r), chi.URLParam(r, "id"), services.LicenseChangeFrom(&req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UpdateLicenseResponse{OK: true, User: *u})
}

func (h *Handler) bulkAddLicense(w http.ResponseWriter, r *http.Request) {
	var req api.BulkAddLicenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.svc.Licenses.BulkAddDays(r.Context(), privilegeFrom(r), req.DaysOrDefault())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BulkAddLicenseResponse{OK: true, Count: n})
}

func (h *Handler) listVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.Visits.List(r.Context(), privilegeFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(visits))
}

func (h *Handler) visitsByUser(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Visits.GroupByUser(r.Context(), privilegeFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) resetVisitCount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Counter.Reset(r.Context(), privilegeFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

// nonNil keeps empty lists as [] on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
