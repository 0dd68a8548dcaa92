package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/adeputra/pharmacy-inventory/internal/auth"
	"github.com/adeputra/pharmacy-inventory/internal/dashboard"
	"github.com/adeputra/pharmacy-inventory/internal/medicine"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
	"github.com/adeputra/pharmacy-inventory/internal/transport/middleware"
	"github.com/adeputra/pharmacy-inventory/internal/transport/swagger"
	"github.com/adeputra/pharmacy-inventory/internal/user"
)

type Handlers struct {
	Base      *transport.BaseHandler
	Auth      *auth.Handler
	RBAC      *auth.RBAC
	User      *user.Handler
	Medicine  *medicine.Handler
	Stock     *stock.Handler
	Dashboard *dashboard.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Every API route past the probes carries the client telemetry
		// header: in the JSON body for bodied requests, as query
		// parameters for GET and DELETE.
		r.Group(func(r chi.Router) {
			r.Use(h.Base.RequestHeaderMiddleware)

			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/forgot-password", h.Auth.ForgotPassword)
				sr.Post("/reset-password", h.Auth.ResetPassword)

				sr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.Middleware)
					ar.Post("/logout", h.Auth.Logout)
				})
			})

			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.Middleware)

				pr.Get("/users/me", h.Auth.Me)
				pr.Put("/users/me/password", h.User.ChangeOwnPassword)

				pr.Route("/users", func(ur chi.Router) {
					ur.With(h.RBAC.RequirePermission(auth.PermUserView)).Get("/", h.User.List)
					ur.With(h.RBAC.RequirePermission(auth.PermUserCreate)).Post("/", h.User.Create)
					ur.With(h.RBAC.RequirePermission(auth.PermUserView)).Get("/{id}", h.User.Get)
					ur.With(h.RBAC.RequirePermission(auth.PermUserUpdate)).Put("/{id}", h.User.Update)
					ur.With(h.RBAC.RequirePermission(auth.PermUserUpdate)).Patch("/{id}/role", h.User.UpdateRole)
					ur.With(h.RBAC.RequirePermission(auth.PermUserUpdate)).Put("/{id}/password", h.User.UpdatePassword)
					ur.With(h.RBAC.RequirePermission(auth.PermUserDelete)).Delete("/{id}", h.User.Delete)
				})

				pr.Route("/medicines", func(mr chi.Router) {
					mr.Get("/", h.Medicine.List)
					mr.With(h.RBAC.RequirePermission(auth.PermMedicineExport)).Get("/export", h.Medicine.Export)
					mr.With(h.RBAC.RequirePermission(auth.PermMedicineCreate)).Post("/", h.Medicine.Create)
					mr.Get("/{id}", h.Medicine.Get)
					mr.With(h.RBAC.RequirePermission(auth.PermMedicineUpdate)).Put("/{id}", h.Medicine.Update)
					mr.With(h.RBAC.RequirePermission(auth.PermMedicineDelete)).Delete("/{id}", h.Medicine.Delete)

					mr.With(h.RBAC.RequirePermission(auth.PermMedicineUpdate)).Post("/{id}/images", h.Medicine.UploadImages)
					mr.Get("/{id}/images/{imageID}", h.Medicine.ViewImage)
					mr.Delete("/{id}/images/{imageID}", h.Medicine.DeleteImage)

					mr.With(h.RBAC.RequirePermission(auth.PermStockIn)).Post("/{id}/stock-in", h.Stock.StockIn)
					mr.With(h.RBAC.RequirePermission(auth.PermStockOut)).Post("/{id}/stock-out", h.Stock.StockOut)

					mr.With(h.RBAC.RequirePermission(auth.PermMedicineView)).Get("/{id}/stock-histories", h.Stock.HistoryByMedicine)
					mr.With(h.RBAC.RequirePermission(auth.PermMedicineView)).Get("/{id}/stock-histories/export", h.Stock.ExportByMedicine)
				})

				pr.Get("/stock-histories", h.Stock.AllHistories)
				pr.Get("/stock-histories/export", h.Stock.ExportAll)

				pr.Route("/dashboard", func(dr chi.Router) {
					dr.Get("/summary", h.Dashboard.Summary)
					dr.Get("/stock-chart", h.Dashboard.StockChart)
					dr.Get("/stock-chart/export", h.Dashboard.ExportChart)
				})
			})
		})
	})
}
