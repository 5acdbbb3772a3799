package produto

import (
	"context"
	"net/http"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"
)

// ProdutoService define o contrato que o Handler espera da camada de Serviço.
type ProdutoService interface {
	CriarProduto(ctx context.Context, novo domain.NovoProduto) (domain.Produto, error)
	AtualizarProduto(ctx context.Context, upd domain.AtualizacaoProduto) (domain.Produto, error)
	BuscarProduto(ctx context.Context, id string) (domain.Produto, error)
	ListarProdutos(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error)
	Reconciliar(ctx context.Context, produtoID string) (domain.Reconciliacao, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProdutoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProdutoService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// CriarProdutoHandler lida com a requisição POST /v1/produtos.
// @Summary Cadastra um produto
// @Description O estoque inicial, se informado, é lançado como movimentação de entrada.
// @Tags produtos
// @Accept json
// @Produce json
// @Param produto body domain.NovoProduto true "Dados do produto"
// @Success 201 {object} domain.Produto
// @Failure 400 {object} domain.ErrorResponse
// @Security Bearer
// @Router /produtos [post]
func (h *Handler) CriarProdutoHandler(w http.ResponseWriter, r *http.Request) {
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var novo domain.NovoProduto
	if err := apiutil.Decodificar(r, &novo); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	novo.CaixaID = caixaID

	produto, err := h.Service.CriarProduto(r.Context(), novo)
	h.handleServiceResponse(w, r, produto, err, http.StatusCreated)
}

// ListarProdutosHandler lida com a requisição GET /v1/produtos.
// @Summary Lista produtos
// @Tags produtos
// @Produce json
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Param nome query string false "Filtro por nome"
// @Param categoria query string false "Filtro por categoria"
// @Success 200 {array} domain.Produto
// @Security Bearer
// @Router /produtos [get]
func (h *Handler) ListarProdutosHandler(w http.ResponseWriter, r *http.Request) {
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

	produtos, err := h.Service.ListarProdutos(r.Context(), domain.ProdutoFiltro{
		Page:      page,
		Limit:     limit,
		Nome:      r.URL.Query().Get("nome"),
		Categoria: r.URL.Query().Get("categoria"),
	})
	h.handleServiceResponse(w, r, produtos, err, http.StatusOK)
}

// BuscarProdutoHandler lida com a requisição GET /v1/produtos/{id}.
// @Summary Busca um produto
// @Tags produtos
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Produto
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /produtos/{id} [get]
func (h *Handler) BuscarProdutoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	produto, err := h.Service.BuscarProduto(r.Context(), id)
	h.handleServiceResponse(w, r, produto, err, http.StatusOK)
}

// AtualizarProdutoHandler lida com a requisição PUT /v1/produtos/{id}.
// @Summary Atualiza um produto
// @Description Atualização parcial. Um novo estoque gera a movimentação pela diferença.
// @Tags produtos
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param produto body domain.AtualizacaoProduto true "Campos a alterar"
// @Success 200 {object} domain.Produto
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security Bearer
// @Router /produtos/{id} [put]
func (h *Handler) AtualizarProdutoHandler(w http.ResponseWriter, r *http.Request) {
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

	var upd domain.AtualizacaoProduto
	if err := apiutil.Decodificar(r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	upd.ID = id
	upd.CaixaID = caixaID

	produto, err := h.Service.AtualizarProduto(r.Context(), upd)
	h.handleServiceResponse(w, r, produto, err, http.StatusOK)
}

// ReconciliarHandler lida com a requisição GET /v1/produtos/{id}/reconciliacao.
// @Summary Compara o estoque com o líquido das movimentações
// @Tags produtos
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Reconciliacao
// @Security Bearer
// @Router /produtos/{id}/reconciliacao [get]
func (h *Handler) ReconciliarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	rec, err := h.Service.Reconciliar(r.Context(), id)
	h.handleServiceResponse(w, r, rec, err, http.StatusOK)
}
