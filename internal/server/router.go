package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/handlers"
	"github.com/orzalan/quoting-app/internal/httpx"
	"github.com/orzalan/quoting-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, quotePrefix string) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	engine := services.NewPricingEngine()

	// Product endpoints. List/Create via /products, Update/Delete via
	// /products/update & /products/delete for simplicity.
	ph := handlers.NewProductHandler(db)
	mux.HandleFunc("/products", listCreate(ph.List, ph.Create))
	mux.HandleFunc("/products/update", postOnly(ph.Update))
	mux.HandleFunc("/products/delete", postOnly(ph.Delete))

	// Client endpoints
	ch := handlers.NewClientHandler(db)
	mux.HandleFunc("/clients", listCreate(ch.List, ch.Create))
	mux.HandleFunc("/clients/update", postOnly(ch.Update))
	mux.HandleFunc("/clients/delete", postOnly(ch.Delete))

	// Quote endpoints
	qs := services.NewQuoteService(db, engine, quotePrefix)
	qh := handlers.NewQuoteHandler(db, qs, engine)
	mux.HandleFunc("/quotes", listCreate(qh.List, qh.Create))
	mux.HandleFunc("/quotes/get", qh.Get)
	mux.HandleFunc("/quotes/update", postOnly(qh.Update))
	mux.HandleFunc("/quotes/status", postOnly(qh.SetStatus))
	mux.HandleFunc("/quotes/totals", postOnly(qh.Totals))
	mux.HandleFunc("/quotes/line-defaults", qh.LineDefaults)

	// BOM estimation
	bh := handlers.NewBomHandler(services.NewBomGenerator())
	mux.HandleFunc("/bom", postOnly(bh.Generate))

	// Catalog import/export
	cah := handlers.NewCatalogHandler(services.NewCatalogService(db))
	mux.HandleFunc("/catalog/import", postOnly(cah.Import))
	mux.HandleFunc("/catalog/export.csv", cah.ExportCSV)
	mux.HandleFunc("/catalog/export.xlsx", cah.ExportXLSX)

	return withRecover(withLogging(mux))
}

func listCreate(list, create http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
