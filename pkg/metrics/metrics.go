// Package metrics expone contadores Prometheus en un servidor HTTP lateral,
// separado del API para no mezclar tráfico interno con el de la app.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores de negocio.
var (
	PedidosCreados = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chefmanager_pedidos_creados_total",
		Help: "Pedidos creados (borradores incluidos).",
	})
	Recepciones = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chefmanager_recepciones_total",
		Help: "Recepciones confirmadas (lotes registrados).",
	})
	Movimientos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chefmanager_movimientos_total",
		Help: "Movimientos del ledger por tipo.",
	}, []string{"tipo"})
)

// Server servidor lateral con /metrics y /health.
type Server struct {
	srv *http.Server
}

// NewServer construye el servidor de métricas en addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start bloquea sirviendo hasta Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown apaga el servidor respetando el contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
