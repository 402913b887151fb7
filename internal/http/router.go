package http

import (
	"net/http"

	"cane-backend/internal/auth"
	"cane-backend/internal/handlers"
	"cane-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts. Optional handlers may be nil
// (catalog without Postgres, uploads without a bucket); their routes are then
// not registered.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Entries *handlers.EntryHandler
	Events  *handlers.EntryEventHandler
	Reports *handlers.ReportHandler
	Health  *handlers.HealthHandler

	Catalog *handlers.CatalogHandler
	Uploads *handlers.UploadHandler
}

// NewRouter mounts every route on a gorilla/mux router
//
// Parameters:
//   - h: handlers to mount; nil Catalog or Uploads skips their routes
//   - authMiddleware: authenticates /api and /ws and checks capabilities
//
// Returns:
//   - *mux.Router: router ready to be wrapped by the outer middleware
func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	require := func(c auth.Capability, fn http.HandlerFunc) http.Handler {
		return authMiddleware.RequireCapability(c)(fn)
	}

	// Public routes
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if h.Health != nil {
		r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
		r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
		r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", h.Auth.Me).Methods("GET")

	// Entry workflow
	entries := api.PathPrefix("/entries").Subrouter()
	entries.Handle("", require(auth.CapSubmitRegistration, h.Entries.CreateRegistration)).Methods("POST")
	entries.Handle("", require(auth.CapViewEntries, h.Entries.ListEntries)).Methods("GET")
	entries.Handle("/stats", require(auth.CapViewEntries, h.Entries.Stats)).Methods("GET")
	entries.Handle("/by-mill/{millId}", require(auth.CapViewEntries, h.Entries.ListByMill)).Methods("GET")
	entries.Handle("/{id}", require(auth.CapViewEntries, h.Entries.GetEntry)).Methods("GET")
	entries.Handle("/{id}/arrival", require(auth.CapSubmitArrival, h.Entries.AttachArrival)).Methods("PUT")
	entries.Handle("/{id}/comparison", require(auth.CapVerifyEntries, h.Entries.Comparison)).Methods("GET")
	entries.Handle("/{id}/status", require(auth.CapApproveEntries, h.Entries.SetStatus)).Methods("PATCH")
	entries.Handle("/{id}/events", require(auth.CapViewEntries, h.Events.ListEvents)).Methods("GET")

	if h.Reports != nil {
		entries.Handle("/{id}/slip.pdf", require(auth.CapViewEntries, h.Reports.EntrySlip)).Methods("GET")
		api.Handle("/reports/entries.xlsx", require(auth.CapExportReports, h.Reports.EntriesXLSX)).Methods("GET")
	}

	if h.Uploads != nil {
		api.HandleFunc("/uploads", h.Uploads.Upload).Methods("POST")
	}

	// Users - Super Admin and Admin only
	users := api.PathPrefix("/users").Subrouter()
	users.Use(authMiddleware.RequireCapability(auth.CapManageUsers))
	users.HandleFunc("", h.Users.CreateUser).Methods("POST")
	users.HandleFunc("", h.Users.ListUsers).Methods("GET")
	users.HandleFunc("/{id}", h.Users.GetUser).Methods("GET")
	users.HandleFunc("/{id}", h.Users.UpdateUser).Methods("PUT")
	users.HandleFunc("/{id}", h.Users.DeleteUser).Methods("DELETE")

	if h.Catalog != nil {
		registerCatalog(api, h.Catalog, require)
	}

	// Live feed; browsers pass the token as ?token= since they cannot set headers
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware.Authenticate)
	ws.Handle("/entries", require(auth.CapViewEntries, h.Events.Live)).Methods("GET")

	return r
}

// registerCatalog mounts reference data: anyone signed in may read it, only
// catalog managers may change it
func registerCatalog(api *mux.Router, c *handlers.CatalogHandler, require func(auth.Capability, http.HandlerFunc) http.Handler) {
	type crud struct {
		prefix, key       string
		create, list, get http.HandlerFunc
		update, remove    http.HandlerFunc
	}
	resources := []crud{
		{"/mills", "{id}", c.CreateMill, c.ListMills, c.GetMill, c.UpdateMill, c.DeleteMill},
		{"/loading-points", "{id}", c.CreateLoadingPoint, c.ListLoadingPoints, c.GetLoadingPoint, c.UpdateLoadingPoint, c.DeleteLoadingPoint},
		{"/haulages", "{id}", c.CreateHaulage, c.ListHaulages, c.GetHaulage, c.UpdateHaulage, c.DeleteHaulage},
		{"/devices", "{imei}", c.CreateDevice, c.ListDevices, c.GetDevice, c.UpdateDevice, c.DeleteDevice},
	}

	for _, res := range resources {
		sub := api.PathPrefix(res.prefix).Subrouter()
		sub.HandleFunc("", res.list).Methods("GET")
		sub.HandleFunc("/"+res.key, res.get).Methods("GET")
		sub.Handle("", require(auth.CapManageCatalog, res.create)).Methods("POST")
		sub.Handle("/"+res.key, require(auth.CapManageCatalog, res.update)).Methods("PUT")
		sub.Handle("/"+res.key, require(auth.CapManageCatalog, res.remove)).Methods("DELETE")
	}
}
