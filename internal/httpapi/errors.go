package httpapi

import (
	"errors"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/awqaf/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error   string             `json:"error"`
	Code    string             `json:"code,omitempty"`
	Details []validationDetail `json:"details,omitempty"`
}

type validationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "invalid_request")
}

// fail maps a service error onto a status code. Unclassified errors are
// logged and reported as 500 without their text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, entity, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, message(err, errs.ErrInvalid))
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, message(err, errs.ErrNotFound), "not_found")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, message(err, errs.ErrConflict), "conflict")
	case errors.Is(err, errs.ErrUnprocessable):
		writeErr(w, http.StatusUnprocessableEntity, message(err, errs.ErrUnprocessable), "unprocessable")
	default:
		s.log.Error("request failed", "entity", entity, "op", op, "req_id", chimw.GetReqID(r.Context()), "err", err)
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
		return
	}
	s.log.Debug("request rejected", "entity", entity, "op", op, "req_id", chimw.GetReqID(r.Context()), "err", err)
}

// message strips the sentinel prefix so clients see "account 7 not found"
// style text rather than "not_found: ...".
func message(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[:i] + msg[i+len(prefix):]
	}
	return msg
}
