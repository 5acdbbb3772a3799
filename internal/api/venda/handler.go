package venda

import (
	"context"
	"net/http"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"
)

// VendaService define o contrato de vendas esperado pelo Handler.
type VendaService interface {
	CriarVenda(ctx context.Context, nova domain.NovaVenda) (domain.Venda, error)
	AtualizarVenda(ctx context.Context, vendaID string, novaQuantidade int) (domain.Venda, error)
	ExcluirVenda(ctx context.Context, vendaID string) error
	BuscarVenda(ctx context.Context, vendaID string) (domain.Venda, error)
}

// Handler agrupa os handlers de venda.
type Handler struct {
	Service VendaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc VendaService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// CriarVendaHandler lida com a requisição POST /v1/vendas.
// @Summary Registra uma venda
// @Description Baixa o estoque e debita a ficha na mesma transação.
// @Tags vendas
// @Accept json
// @Produce json
// @Param venda body domain.NovaVenda true "Produto, quantidade e ficha"
// @Success 201 {object} domain.Venda
// @Failure 409 {object} domain.ErrorResponse "Estoque ou saldo insuficiente"
// @Security Bearer
// @Router /vendas [post]
func (h *Handler) CriarVendaHandler(w http.ResponseWriter, r *http.Request) {
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var nova domain.NovaVenda
	if err := apiutil.Decodificar(r, &nova); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	nova.CaixaID = caixaID

	venda, err := h.Service.CriarVenda(r.Context(), nova)
	h.handleServiceResponse(w, r, venda, err, http.StatusCreated)
}

// BuscarVendaHandler lida com a requisição GET /v1/vendas/{id}.
// @Summary Busca uma venda
// @Tags vendas
// @Produce json
// @Param id path string true "ID da venda"
// @Success 200 {object} domain.Venda
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /vendas/{id} [get]
func (h *Handler) BuscarVendaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	venda, err := h.Service.BuscarVenda(r.Context(), id)
	h.handleServiceResponse(w, r, venda, err, http.StatusOK)
}

// AtualizarVendaHandler lida com a requisição PUT /v1/vendas/{id}.
// @Summary Altera a quantidade de uma venda
// @Description A diferença é aplicada no estoque e na ficha pelo preço registrado na venda.
// @Tags vendas
// @Accept json
// @Produce json
// @Param id path string true "ID da venda"
// @Param venda body domain.AtualizacaoVenda true "Nova quantidade"
// @Success 200 {object} domain.Venda
// @Failure 409 {object} domain.ErrorResponse "Estoque ou saldo insuficiente"
// @Security Bearer
// @Router /vendas/{id} [put]
func (h *Handler) AtualizarVendaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var upd domain.AtualizacaoVenda
	if err := apiutil.Decodificar(r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	venda, err := h.Service.AtualizarVenda(r.Context(), id, upd.Quantidade)
	h.handleServiceResponse(w, r, venda, err, http.StatusOK)
}

// ExcluirVendaHandler lida com a requisição DELETE /v1/vendas/{id}.
// @Summary Estorna uma venda
// @Description Devolve o estoque e credita o total na ficha.
// @Tags vendas
// @Param id path string true "ID da venda"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /vendas/{id} [delete]
func (h *Handler) ExcluirVendaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	err = h.Service.ExcluirVenda(r.Context(), id)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
