package estoque

import (
	"context"
	"net/http"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"
)

// EstoqueService define as operações do livro de estoque expostas via HTTP.
type EstoqueService interface {
	RegistrarMovimentacao(ctx context.Context, nova domain.NovaMovimentacao) (domain.MovimentacaoEstoque, error)
	AtualizarMovimentacao(ctx context.Context, id string, upd domain.AtualizacaoMovimentacao) (domain.MovimentacaoEstoque, error)
	ExcluirMovimentacao(ctx context.Context, id string) error
	BuscarMovimentacao(ctx context.Context, id string) (domain.MovimentacaoEstoque, error)
	ListarMovimentacoes(ctx context.Context, filtro domain.MovimentacaoFiltro) ([]domain.MovimentacaoEstoque, error)
}

// Handler agrupa os handlers de movimentação de estoque.
type Handler struct {
	Service EstoqueService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EstoqueService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// RegistrarMovimentacaoHandler lida com a requisição POST /v1/movimentacoes.
// @Summary Registra entrada ou saída de estoque
// @Tags estoque
// @Accept json
// @Produce json
// @Param movimentacao body domain.NovaMovimentacao true "Movimentação"
// @Success 201 {object} domain.MovimentacaoEstoque
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security Bearer
// @Router /movimentacoes [post]
func (h *Handler) RegistrarMovimentacaoHandler(w http.ResponseWriter, r *http.Request) {
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var nova domain.NovaMovimentacao
	if err := apiutil.Decodificar(r, &nova); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	nova.CaixaID = caixaID

	mov, err := h.Service.RegistrarMovimentacao(r.Context(), nova)
	h.handleServiceResponse(w, r, mov, err, http.StatusCreated)
}

// ListarMovimentacoesHandler lida com a requisição GET /v1/movimentacoes.
// @Summary Lista movimentações de estoque
// @Tags estoque
// @Produce json
// @Param produto_id query string false "Filtro por produto"
// @Param tipo query string false "E ou S"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {array} domain.MovimentacaoEstoque
// @Security Bearer
// @Router /movimentacoes [get]
func (h *Handler) ListarMovimentacoesHandler(w http.ResponseWriter, r *http.Request) {
	page, err := apiutil.QueryInt(r, "page", 1)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	limit, err := apiutil.QueryInt(r, "limit", 0)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	movs, err := h.Service.ListarMovimentacoes(r.Context(), domain.MovimentacaoFiltro{
		ProdutoID: r.URL.Query().Get("produto_id"),
		Tipo:      domain.TipoMovimentacao(r.URL.Query().Get("tipo")),
		Page:      page,
		Limit:     limit,
	})
	h.handleServiceResponse(w, r, movs, err, http.StatusOK)
}

// BuscarMovimentacaoHandler lida com a requisição GET /v1/movimentacoes/{id}.
// @Summary Busca uma movimentação
// @Tags estoque
// @Produce json
// @Param id path string true "ID da movimentação"
// @Success 200 {object} domain.MovimentacaoEstoque
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /movimentacoes/{id} [get]
func (h *Handler) BuscarMovimentacaoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	mov, err := h.Service.BuscarMovimentacao(r.Context(), id)
	h.handleServiceResponse(w, r, mov, err, http.StatusOK)
}

// AtualizarMovimentacaoHandler lida com a requisição PUT /v1/movimentacoes/{id}.
// @Summary Corrige quantidade ou tipo de uma movimentação
// @Description Movimentações de venda só podem ser alteradas pela venda.
// @Tags estoque
// @Accept json
// @Produce json
// @Param id path string true "ID da movimentação"
// @Param movimentacao body domain.AtualizacaoMovimentacao true "Nova quantidade e tipo"
// @Success 200 {object} domain.MovimentacaoEstoque
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security Bearer
// @Router /movimentacoes/{id} [put]
func (h *Handler) AtualizarMovimentacaoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var upd domain.AtualizacaoMovimentacao
	if err := apiutil.Decodificar(r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	mov, err := h.Service.AtualizarMovimentacao(r.Context(), id, upd)
	h.handleServiceResponse(w, r, mov, err, http.StatusOK)
}

// ExcluirMovimentacaoHandler lida com a requisição DELETE /v1/movimentacoes/{id}.
// @Summary Exclui uma movimentação e reverte seu efeito no estoque
// @Tags estoque
// @Param id path string true "ID da movimentação"
// @Success 204 "No Content"
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security Bearer
// @Router /movimentacoes/{id} [delete]
func (h *Handler) ExcluirMovimentacaoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	err = h.Service.ExcluirMovimentacao(r.Context(), id)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
