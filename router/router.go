package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Health 是 /health 的响应
type Health struct {
	Status string `json:"status"`
	Room   string `json:"room,omitempty"`
	Users  int    `json:"users"`
}

// Router 创建本地状态服务的路由，snapshot 返回当前房间状态
func Router(snapshot func() ws.State, version string) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// https://github.com/gorilla/mux/issues/416
		accessLogger(r, 404, 0, 0)
		w.WriteHeader(http.StatusNotFound)
	})
	router.Use(hlog.AccessHandler(accessLogger))
	router.Use(handlers.CORS(handlers.AllowedMethods([]string{"GET"})))
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Screego-Client-Version", version)
			next.ServeHTTP(w, r)
		})
	})

	router.Methods("GET").Path("/health").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := snapshot()
		w.Header().Set("Content-Type", "application/json")
		health := Health{Status: "up", Room: state.ID, Users: len(state.Users)}
		if !state.Connected {
			health.Status = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
	router.Methods("GET").Path("/room").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot())
	})
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	return router
}

// Start 在 address 上启动状态服务，直到服务器关闭
func Start(address string, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              address,
		Handler:           handlers.RecoveryHandler()(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("address", address).Msg("status server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server")
		}
	}()
	return srv
}

func accessLogger(r *http.Request, status, size int, dur time.Duration) {
	log.Debug().
		Str("host", r.Host).
		Int("status", status).
		Int("size", size).
		Str("ip", r.RemoteAddr).
		Str("path", r.URL.Path).
		Str("duration", dur.String()).
		Msg("HTTP")
}
