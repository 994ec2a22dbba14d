package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"cadastro/db"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrIdentityPresent = errors.New("a new record cannot already have an id")
	ErrIdentityMissing = errors.New("id is required")
	ErrInvalidId       = errors.New("id must be an integer")
	ErrMalformedBody   = errors.New("malformed request body")
	ErrAbsent          = errors.New("record not found")

	errTooManyRequests = errors.New("too many requests")
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// StatusPolicy maps validation failures and absent lookups to HTTP responses.
//
// The default answers 400 for validation failures and 404 for absent records.
// Legacy reproduces the statuses clients of the previous service depend on:
// 404 for a create carrying an id, a per-resource status for an update without
// one, and 200 with a null body for an absent record.
type StatusPolicy struct {
	Legacy bool
}

func (p StatusPolicy) rejectCreate(w http.ResponseWriter, r *http.Request) {
	if p.Legacy {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeError(w, r, http.StatusBadRequest, ErrIdentityPresent)
}

func (p StatusPolicy) rejectUpdate(w http.ResponseWriter, r *http.Request, legacyStatus int) {
	if p.Legacy {
		w.WriteHeader(legacyStatus)
		return
	}
	writeError(w, r, http.StatusBadRequest, ErrIdentityMissing)
}

func writeLookup[T any](p StatusPolicy, w http.ResponseWriter, r *http.Request, lookup db.Lookup[T]) {
	entity, found := lookup.Get()
	if found {
		writeJSON(w, r, http.StatusOK, entity)
		return
	}
	if p.Legacy {
		writeJSON(w, r, http.StatusOK, nil)
		return
	}
	writeError(w, r, http.StatusNotFound, ErrAbsent)
}

// storeError answers a failed store call. Unexpected errors become a generic 500.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, r, http.StatusNotFound, db.ErrNotFound)
	case errors.Is(err, db.ErrUnknownPessoa):
		writeError(w, r, http.StatusBadRequest, db.ErrUnknownPessoa)
	default:
		logger(r.Context()).ErrorContext(r.Context(), "store call failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError {
		logger(r.Context()).DebugContext(r.Context(), "request rejected", "status", status, "error", err)
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logger(r.Context()).ErrorContext(r.Context(), "encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(payload); err != nil {
		logger(r.Context()).WarnContext(r.Context(), "write response", "error", err)
	}
}

func decode(r *http.Request, v any) error {
	bytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedBody, err)
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedBody, err)
	}
	return nil
}

func parseId(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidId, ps.ByName("id"))
	}
	return id, nil
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// logger returns the request scoped logger installed by the middleware chain.
func logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
