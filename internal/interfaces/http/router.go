package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/auth"
	"github.com/chefmanager/chefmanager-api/internal/application/catalogo"
	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/application/recepcion"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.UseCase
	CatalogoUC  *catalogo.UseCase
	PedidosUC   *pedidos.UseCase
	RecepcionUC *recepcion.UseCase
	LedgerUC    *inventario.LedgerUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo (protegido, cualquier rol autenticado)
	catalogoHandler := NewCatalogoHandler(deps.CatalogoUC)
	protected.Get("/productos", catalogoHandler.ListProducts)
	protected.Get("/unidades", catalogoHandler.ListUnits)

	// Pedidos (protegido; crear y cancelar requieren permiso pedir)
	pedidosGroup := protected.Group("/pedidos")
	pedidoHandler := NewPedidoHandler(deps.PedidosUC)
	pedidosGroup.Get("/", pedidoHandler.List)
	pedidosGroup.Get("/pendientes", pedidoHandler.ListPending)
	pedidosGroup.Get("/:id", pedidoHandler.GetByID)
	pedidosGroup.Post("/", RequirePermission(PermPedir), pedidoHandler.Submit)
	pedidosGroup.Post("/borrador", RequirePermission(PermPedir), pedidoHandler.SaveDraft)
	pedidosGroup.Post("/:id/enviar", RequirePermission(PermPedir), pedidoHandler.SubmitDraft)
	pedidosGroup.Post("/:id/cancelar", RequirePermission(PermPedir), pedidoHandler.Cancel)

	// Recepción (protegido, permiso recibir)
	recepcionGroup := protected.Group("/recepcion")
	recepcionHandler := NewRecepcionHandler(deps.RecepcionUC)
	recepcionGroup.Get("/codigo", recepcionHandler.PreviewCode)
	recepcionGroup.Post("/", RequirePermission(PermRecibir), recepcionHandler.Receive)

	// Inventario (protegido; consumo requiere permiso consumir)
	invGroup := protected.Group("/inventario")
	inventarioHandler := NewInventarioHandler(deps.LedgerUC)
	invGroup.Get("/", inventarioHandler.List)
	invGroup.Get("/stats", inventarioHandler.Stats)
	invGroup.Get("/codigo/:codigo", inventarioHandler.GetByCode)
	invGroup.Get("/:id/movimientos", inventarioHandler.Movements)
	invGroup.Post("/:id/consumo", RequirePermission(PermConsumir), inventarioHandler.Deplete)

	// Movimientos recientes de la unidad
	protected.Get("/movimientos", inventarioHandler.RecentMovements)
}
