package router

import (
	"net/http"
	"time"

	"goficha/internal/api/caixa"
	"goficha/internal/api/estoque"
	"goficha/internal/api/ficha"
	"goficha/internal/api/produto"
	"goficha/internal/api/reserva"
	"goficha/internal/api/venda"
	"goficha/internal/pkg/cache"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "goficha/docs"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Caixa   *caixa.Handler
	Produto *produto.Handler
	Estoque *estoque.Handler
	Ficha   *ficha.Handler
	Venda   *venda.Handler
	Reserva *reserva.Handler
}

// Options controla autenticação e limitação das rotas públicas.
type Options struct {
	TokenService    middleware.TokenService
	Cache           cache.Client
	RateLimitMax    int
	RateLimitPeriod time.Duration
	AllowedOrigins  []string
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", PingHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/v1", func(r chi.Router) {
		// Sem autenticação: cadastro e login de caixa
		r.Post("/caixas", h.Caixa.RegistrarHandler)
		r.Post("/auth/login", h.Caixa.LoginHandler)

		// Fluxo público de reserva, limitado por IP
		r.Route("/publico", func(r chi.Router) {
			r.Use(middleware.RateLimiter(opts.Cache, opts.RateLimitMax, opts.RateLimitPeriod, opts.Logger))
			r.Get("/qrcodes/{codigo}/produtos", h.Reserva.CatalogoHandler)
			r.Post("/reservas", h.Reserva.CriarReservaHandler)
			r.Get("/reservas", h.Reserva.ConsultarReservasHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(opts.TokenService))

			r.Route("/produtos", func(r chi.Router) {
				r.Get("/", h.Produto.ListarProdutosHandler)
				r.Post("/", h.Produto.CriarProdutoHandler)
				r.Get("/{id}", h.Produto.BuscarProdutoHandler)
				r.Put("/{id}", h.Produto.AtualizarProdutoHandler)
				r.Get("/{id}/reconciliacao", h.Produto.ReconciliarHandler)
			})

			r.Route("/movimentacoes", func(r chi.Router) {
				r.Get("/", h.Estoque.ListarMovimentacoesHandler)
				r.Post("/", h.Estoque.RegistrarMovimentacaoHandler)
				r.Get("/{id}", h.Estoque.BuscarMovimentacaoHandler)
				r.Put("/{id}", h.Estoque.AtualizarMovimentacaoHandler)
				r.Delete("/{id}", h.Estoque.ExcluirMovimentacaoHandler)
			})

			r.Route("/fichas", func(r chi.Router) {
				r.Post("/", h.Ficha.CriarFichaHandler)
				r.Get("/numero/{numero}", h.Ficha.BuscarFichaPorNumeroHandler)
				r.Get("/{id}", h.Ficha.BuscarFichaHandler)
				r.Delete("/{id}", h.Ficha.ExcluirFichaHandler)
				r.Post("/{id}/recargas", h.Ficha.RecarregarHandler)
				r.Get("/{id}/recargas", h.Ficha.ListarRecargasHandler)
				r.Get("/{id}/vendas", h.Ficha.ListarVendasHandler)
			})

			r.Route("/vendas", func(r chi.Router) {
				r.Post("/", h.Venda.CriarVendaHandler)
				r.Get("/{id}", h.Venda.BuscarVendaHandler)
				r.Put("/{id}", h.Venda.AtualizarVendaHandler)
				r.Delete("/{id}", h.Venda.ExcluirVendaHandler)
			})

			r.Route("/reservas", func(r chi.Router) {
				r.Post("/vincular", h.Reserva.VincularFichaHandler)
				r.Post("/{id}/confirmar", h.Reserva.ConfirmarReservaHandler)
				r.Post("/{id}/cancelar", h.Reserva.CancelarReservaHandler)
				r.Post("/{id}/finalizar", h.Reserva.FinalizarReservaHandler)
			})

			r.Route("/qrcodes", func(r chi.Router) {
				r.Post("/", h.Reserva.CriarQRCodeHandler)
				r.Get("/{id}", h.Reserva.BuscarQRCodeHandler)
				r.Put("/{id}", h.Reserva.AtualizarQRCodeHandler)
				r.Get("/{id}/reservas", h.Reserva.ListarReservasQRCodeHandler)
				r.Get("/{id}/pdf", h.Reserva.PDFQRCodeHandler)
			})
		})
	})

	return r
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
