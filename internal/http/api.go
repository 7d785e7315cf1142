package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

const DefaultBasePath = "/api/lookups"

// Catalog lists the kinds to mount. *kinds.Registry satisfies it.
type Catalog interface {
	Bindings() []*kinds.Binding
	Descriptors() []kinds.Descriptor
}

// Middleware wraps the handler of one route. kind is the kind key and
// route a dotted name such as "create.one".
type Middleware func(kind, route string, next http.Handler) http.Handler

// OptionsAPI registers the lifecycle endpoints of every enabled kind.
type OptionsAPI struct {
	basePath   string
	catalog    Catalog
	logger     interfaces.Logger
	middleware Middleware
}

type APIOption func(*OptionsAPI)

func NewOptionsAPI(catalog Catalog, opts ...APIOption) *OptionsAPI {
	api := &OptionsAPI{
		basePath: DefaultBasePath,
		catalog:  catalog,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api/lookups").
func WithBasePath(path string) APIOption {
	return func(api *OptionsAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithLogger(logger interfaces.Logger) APIOption {
	return func(api *OptionsAPI) {
		api.logger = logging.Ensure(logger)
	}
}

// WithMiddleware wraps every kind route, e.g. for request metrics.
func WithMiddleware(mw Middleware) APIOption {
	return func(api *OptionsAPI) {
		api.middleware = mw
	}
}

func (api *OptionsAPI) BasePath() string { return joinPath(api.basePath, "") }

// Register attaches the endpoints to mux.
func (api *OptionsAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil || api.catalog == nil {
		return fmt.Errorf("http: options api has no catalog")
	}

	base := joinPath(api.basePath, "")
	mux.HandleFunc("GET "+joinPath(base, "kinds"), api.handleKinds)
	for _, binding := range api.catalog.Bindings() {
		if binding == nil || binding.Operations == nil {
			continue
		}
		api.registerKindRoutes(mux, joinPath(base, binding.Descriptor.Slug), binding)
	}
	return nil
}

func (api *OptionsAPI) registerKindRoutes(mux *http.ServeMux, root string, binding *kinds.Binding) {
	h := kindHandlers{ops: binding.Operations, kind: binding.Descriptor.Key, logger: api.logger}

	handle := func(method, path, route string, fn http.HandlerFunc) {
		var handler http.Handler = fn
		if api.middleware != nil {
			handler = api.middleware(h.kind, route, handler)
		}
		mux.Handle(method+" "+root+path, handler)
	}

	handle("POST", "/create/one", "create.one", h.createOne)
	handle("POST", "/create/many", "create.many", h.createMany)

	handle("GET", "/read/one/{id}", "read.one", h.readOne)
	handle("GET", "/read/all", "read.all", h.readAll)
	handle("GET", "/read/hard/all", "read.hard.all", h.readHardAll)
	handle("POST", "/read/many", "read.many", h.readMany)

	handle("PUT", "/update/one", "update.one", h.updateOne)
	handle("PUT", "/update/many", "update.many", h.updateMany)
	handle("PUT", "/update/hard/one", "update.hard.one", h.hardUpdateOne)
	handle("PUT", "/update/hard/all", "update.hard.all", h.hardUpdateMany)

	handle("DELETE", "/soft/delete/one/{id}", "soft.delete.one", h.softDeleteOne)
	handle("POST", "/soft/delete/many", "soft.delete.many", h.softDeleteMany)

	handle("DELETE", "/hard/delete/{id}", "hard.delete.one", h.hardDeleteOne)
	handle("POST", "/hard/delete/many", "hard.delete.many", h.hardDeleteMany)
	handle("DELETE", "/hard/delete/all", "hard.delete.all", h.hardDeleteAll)
}

func (api *OptionsAPI) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.catalog.Descriptors())
}

type kindHandlers struct {
	ops    options.Operations
	kind   string
	logger interfaces.Logger
}

func (h kindHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("http.request.failed", "kind", h.kind, "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("http.request.rejected", "kind", h.kind, "method", r.Method, "path", r.URL.Path, "status", status, "error", payload.Error)
	}
	writeJSON(w, status, payload)
}

func (h kindHandlers) decodeRecord(w http.ResponseWriter, r *http.Request) (options.Record, error) {
	record := h.ops.NewRecord()
	if err := decodeJSON(w, r, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (h kindHandlers) decodeRecords(w http.ResponseWriter, r *http.Request) ([]options.Record, error) {
	var raw []json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return nil, err
	}
	records := make([]options.Record, len(raw))
	for i, item := range raw {
		record := h.ops.NewRecord()
		if err := json.Unmarshal(item, record); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", errBadRequest, i, err)
		}
		records[i] = record
	}
	return records, nil
}

func (h kindHandlers) decodeIDs(w http.ResponseWriter, r *http.Request) (idsPayload, error) {
	var payload idsPayload
	err := decodeJSON(w, r, &payload)
	return payload, err
}

func (h kindHandlers) one(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, options.Record) (options.Record, error)) {
	record, err := h.decodeRecord(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := fn(r.Context(), record)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

func (h kindHandlers) many(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, []options.Record) ([]options.Record, error)) {
	records, err := h.decodeRecords(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := fn(r.Context(), records)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, nonNil(out))
}

func (h kindHandlers) createOne(w http.ResponseWriter, r *http.Request) {
	h.one(w, r, http.StatusCreated, h.ops.Create)
}

func (h kindHandlers) createMany(w http.ResponseWriter, r *http.Request) {
	h.many(w, r, http.StatusCreated, h.ops.CreateMany)
}

func (h kindHandlers) readOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	record, err := h.ops.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h kindHandlers) readAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.ops.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (h kindHandlers) readHardAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.ops.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (h kindHandlers) readMany(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodeIDs(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.ops.GetMany(r.Context(), payload.IDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (h kindHandlers) updateOne(w http.ResponseWriter, r *http.Request) {
	h.one(w, r, http.StatusOK, h.ops.Update)
}

func (h kindHandlers) updateMany(w http.ResponseWriter, r *http.Request) {
	h.many(w, r, http.StatusOK, h.ops.UpdateMany)
}

func (h kindHandlers) hardUpdateOne(w http.ResponseWriter, r *http.Request) {
	h.one(w, r, http.StatusOK, h.ops.HardUpdate)
}

func (h kindHandlers) hardUpdateMany(w http.ResponseWriter, r *http.Request) {
	h.many(w, r, http.StatusOK, h.ops.HardUpdateMany)
}

func (h kindHandlers) softDeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	record, err := h.ops.SoftDelete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h kindHandlers) softDeleteMany(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodeIDs(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.ops.SoftDeleteMany(r.Context(), payload.IDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (h kindHandlers) hardDeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.ops.HardDelete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: 1})
}

func (h kindHandlers) hardDeleteMany(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodeIDs(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	removed, err := h.ops.HardDeleteMany(r.Context(), payload.IDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: removed})
}

func (h kindHandlers) hardDeleteAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.ops.HardDeleteAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: removed})
}

func nonNil(records []options.Record) []options.Record {
	if records == nil {
		return []options.Record{}
	}
	return records
}
