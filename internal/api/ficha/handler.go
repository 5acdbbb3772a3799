package ficha

import (
	"context"
	"net/http"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// FichaService define as operações do livro de saldo expostas via HTTP.
type FichaService interface {
	CriarFicha(ctx context.Context, nova domain.NovaFicha) (domain.Ficha, error)
	BuscarFicha(ctx context.Context, id string) (domain.Ficha, error)
	BuscarFichaPorNumero(ctx context.Context, numero string) (domain.Ficha, error)
	RecarregarFicha(ctx context.Context, fichaID string, rec domain.NovaRecarga) (domain.Ficha, error)
	ListarRecargas(ctx context.Context, fichaID string) ([]domain.Recarga, error)
	ExcluirFicha(ctx context.Context, fichaID, caixaID string) error
}

// VendasDaFicha lista as vendas lançadas em uma ficha.
type VendasDaFicha interface {
	ListarVendasPorFicha(ctx context.Context, fichaID string) ([]domain.Venda, error)
}

// Handler agrupa os handlers de ficha.
type Handler struct {
	Service FichaService
	Vendas  VendasDaFicha
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc FichaService, vendas VendasDaFicha, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Vendas:  vendas,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// CriarFichaHandler lida com a requisição POST /v1/fichas.
// @Summary Abre uma ficha
// @Description O saldo inicial, se positivo, é registrado como recarga.
// @Tags fichas
// @Accept json
// @Produce json
// @Param ficha body domain.NovaFicha true "Número e saldo inicial"
// @Success 201 {object} domain.Ficha
// @Failure 409 {object} domain.ErrorResponse "Número já utilizado"
// @Security Bearer
// @Router /fichas [post]
func (h *Handler) CriarFichaHandler(w http.ResponseWriter, r *http.Request) {
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var nova domain.NovaFicha
	if err := apiutil.Decodificar(r, &nova); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	nova.CaixaID = caixaID

	ficha, err := h.Service.CriarFicha(r.Context(), nova)
	h.handleServiceResponse(w, r, ficha, err, http.StatusCreated)
}

// BuscarFichaHandler lida com a requisição GET /v1/fichas/{id}.
// @Summary Busca uma ficha
// @Tags fichas
// @Produce json
// @Param id path string true "ID da ficha"
// @Success 200 {object} domain.Ficha
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /fichas/{id} [get]
func (h *Handler) BuscarFichaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	ficha, err := h.Service.BuscarFicha(r.Context(), id)
	h.handleServiceResponse(w, r, ficha, err, http.StatusOK)
}

// BuscarFichaPorNumeroHandler lida com a requisição GET /v1/fichas/numero/{numero}.
// @Summary Busca uma ficha pelo número
// @Tags fichas
// @Produce json
// @Param numero path string true "Número da ficha"
// @Success 200 {object} domain.Ficha
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /fichas/numero/{numero} [get]
func (h *Handler) BuscarFichaPorNumeroHandler(w http.ResponseWriter, r *http.Request) {
	ficha, err := h.Service.BuscarFichaPorNumero(r.Context(), chi.URLParam(r, "numero"))
	h.handleServiceResponse(w, r, ficha, err, http.StatusOK)
}

// ExcluirFichaHandler lida com a requisição DELETE /v1/fichas/{id}.
// @Summary Desativa uma ficha
// @Description Exclusão lógica, registrando o caixa autenticado.
// @Tags fichas
// @Param id path string true "ID da ficha"
// @Success 204 "No Content"
// @Failure 401 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Ficha já excluída"
// @Security Bearer
// @Router /fichas/{id} [delete]
func (h *Handler) ExcluirFichaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	err = h.Service.ExcluirFicha(r.Context(), id, caixaID)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// RecarregarHandler lida com a requisição POST /v1/fichas/{id}/recargas.
// @Summary Adiciona saldo à ficha
// @Tags fichas
// @Accept json
// @Produce json
// @Param id path string true "ID da ficha"
// @Param recarga body domain.NovaRecarga true "Valor da recarga"
// @Success 201 {object} domain.Ficha
// @Failure 400 {object} domain.ErrorResponse "Valor inválido"
// @Security Bearer
// @Router /fichas/{id}/recargas [post]
func (h *Handler) RecarregarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var rec domain.NovaRecarga
	if err := apiutil.Decodificar(r, &rec); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	rec.CaixaID = caixaID

	ficha, err := h.Service.RecarregarFicha(r.Context(), id, rec)
	h.handleServiceResponse(w, r, ficha, err, http.StatusCreated)
}

// ListarRecargasHandler lida com a requisição GET /v1/fichas/{id}/recargas.
// @Summary Lista as recargas de uma ficha
// @Tags fichas
// @Produce json
// @Param id path string true "ID da ficha"
// @Success 200 {array} domain.Recarga
// @Security Bearer
// @Router /fichas/{id}/recargas [get]
func (h *Handler) ListarRecargasHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	recargas, err := h.Service.ListarRecargas(r.Context(), id)
	h.handleServiceResponse(w, r, recargas, err, http.StatusOK)
}

// ListarVendasHandler lida com a requisição GET /v1/fichas/{id}/vendas.
// @Summary Lista as vendas de uma ficha
// @Tags fichas
// @Produce json
// @Param id path string true "ID da ficha"
// @Success 200 {array} domain.Venda
// @Security Bearer
// @Router /fichas/{id}/vendas [get]
func (h *Handler) ListarVendasHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	vendas, err := h.Vendas.ListarVendasPorFicha(r.Context(), id)
	h.handleServiceResponse(w, r, vendas, err, http.StatusOK)
}
