/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver/middleware"
	"github.com/devtoolbox/mockapi/log"
	"github.com/devtoolbox/mockapi/query"
	"github.com/devtoolbox/mockapi/restapi"
)

// URL parameters of the resource routes.
const (
	URLParamResource = "resource"
	URLParamID       = "id"
)

// TimeSlotQuery is a name of the time slot with the duration of filtering, sorting and paginating.
const TimeSlotQuery = "query_ms"

// MaxLimitFunc returns the page size cap of the resource.
type MaxLimitFunc func(resource string) int

// ResourceSummary describes a single collection in the resources listing.
type ResourceSummary struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// ResourcesResponseData is a body of the resources listing.
type ResourcesResponseData struct {
	Resources []ResourceSummary `json:"resources"`
}

// ResourceHandlers serves fixture collections.
type ResourceHandlers struct {
	store       *fixtures.Store
	maxLimit    MaxLimitFunc
	errorDomain string
}

// NewResourceHandlers creates ResourceHandlers. A nil maxLimit applies only the global cap.
func NewResourceHandlers(store *fixtures.Store, maxLimit MaxLimitFunc, errorDomain string) *ResourceHandlers {
	if maxLimit == nil {
		maxLimit = func(string) int { return 0 }
	}
	return &ResourceHandlers{store: store, maxLimit: maxLimit, errorDomain: errorDomain}
}

// Routes registers resource routes in the router.
func (h *ResourceHandlers) Routes(router chi.Router) {
	router.Get("/", h.ListResources)
	router.Get("/{"+URLParamResource+"}", h.List)
	router.Get("/{"+URLParamResource+"}/{"+URLParamID+"}", h.Get)
}

// ListResources responds with names and sizes of all collections.
func (h *ResourceHandlers) ListResources(rw http.ResponseWriter, r *http.Request) {
	names := h.store.Names()
	respData := ResourcesResponseData{Resources: make([]ResourceSummary, 0, len(names))}
	for _, name := range names {
		collection, _ := h.store.Collection(name)
		respData.Resources = append(respData.Resources, ResourceSummary{Name: name, Total: len(collection)})
	}
	restapi.RespondJSON(rw, respData, middleware.GetLoggerFromContext(r.Context()))
}

// List responds with a filtered, sorted and paginated page of the collection.
// The items are placed under the key named after the resource.
func (h *ResourceHandlers) List(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	resource := chi.URLParam(r, URLParamResource)
	collection, ok := h.store.Collection(resource)
	if !ok {
		h.respondResourceNotFound(rw, resource, logger)
		return
	}

	startTime := time.Now()
	res := query.Process(collection, query.ParseParams(r.URL.RawQuery), query.Opts{MaxLimit: h.maxLimit(resource)})
	if lp := middleware.GetLoggingParamsFromContext(r.Context()); lp != nil {
		lp.AddTimeSlotDurationInMs(TimeSlotQuery, time.Since(startTime))
	}

	restapi.RespondJSON(rw, map[string]interface{}{
		resource:     res.Items,
		"total":      res.Total,
		"page":       res.Page,
		"limit":      res.Limit,
		"totalPages": res.TotalPages,
	}, logger)
}

// Get responds with a single record found by its id.
func (h *ResourceHandlers) Get(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	resource := chi.URLParam(r, URLParamResource)
	if _, ok := h.store.Collection(resource); !ok {
		h.respondResourceNotFound(rw, resource, logger)
		return
	}
	id := chi.URLParam(r, URLParamID)
	rec, ok := h.store.FindByID(resource, id)
	if !ok {
		apiErr := restapi.NewNotFoundError(h.errorDomain).AddContext(URLParamResource, resource).AddContext(URLParamID, id)
		restapi.RespondError(rw, http.StatusNotFound, apiErr, logger)
		return
	}
	restapi.RespondJSON(rw, rec, logger)
}

func (h *ResourceHandlers) respondResourceNotFound(rw http.ResponseWriter, resource string, logger log.FieldLogger) {
	apiErr := restapi.NewNotFoundError(h.errorDomain).AddContext(URLParamResource, resource)
	restapi.RespondError(rw, http.StatusNotFound, apiErr, logger)
}
