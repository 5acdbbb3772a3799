package reserva

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ReservaService define o contrato de reservas e QR codes esperado pelos handlers.
type ReservaService interface {
	CriarReserva(ctx context.Context, nova domain.NovaReserva) (domain.ComprovanteReserva, error)
	VincularFicha(ctx context.Context, v domain.VinculoFicha) (domain.ResultadoVinculo, error)
	ConfirmarReserva(ctx context.Context, reservaID, fichaID, caixaID string) (domain.ReservaProduto, error)
	CancelarReserva(ctx context.Context, reservaID string) (domain.ReservaProduto, error)
	FinalizarReserva(ctx context.Context, reservaID string) (domain.ReservaProduto, error)
	ListarPorCPF(ctx context.Context, cpf string) (domain.ResumoReservas, error)

	CriarQRCode(ctx context.Context, novo domain.NovoQRCode) (domain.QRCodeReserva, error)
	BuscarQRCode(ctx context.Context, id string) (domain.QRCodeReserva, error)
	AtualizarQRCode(ctx context.Context, id string, upd domain.AtualizacaoQRCode) (domain.QRCodeReserva, error)
	CatalogoQRCode(ctx context.Context, codigo string) (domain.CatalogoQRCode, error)
	ListarReservasQRCode(ctx context.Context, qrcodeID string) ([]domain.LinhaReservaQRCode, error)
	GerarPDFQRCode(ctx context.Context, qrcodeID string) ([]byte, string, error)
}

// ConfirmacaoReserva é o corpo opcional da confirmação.
// Sem FichaID, vale a ficha já vinculada à reserva.
type ConfirmacaoReserva struct {
	FichaID string `json:"ficha_id" validate:"omitempty,uuid"`
}

// Handler agrupa os handlers de reserva, tanto os do caixa quanto os públicos.
type Handler struct {
	Service ReservaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReservaService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// --- Rotas públicas ---

// CatalogoHandler lida com a requisição GET /v1/publico/qrcodes/{codigo}/produtos.
// @Summary Catálogo de produtos reserváveis de um QR code
// @Tags publico
// @Produce json
// @Param codigo path string true "Código do QR"
// @Success 200 {object} domain.CatalogoQRCode
// @Failure 404 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse "QR code inativo ou ainda não iniciado"
// @Failure 410 {object} domain.ErrorResponse "QR code expirado"
// @Router /publico/qrcodes/{codigo}/produtos [get]
func (h *Handler) CatalogoHandler(w http.ResponseWriter, r *http.Request) {
	catalogo, err := h.Service.CatalogoQRCode(r.Context(), chi.URLParam(r, "codigo"))
	h.handleServiceResponse(w, r, catalogo, err, http.StatusOK)
}

// CriarReservaHandler lida com a requisição POST /v1/publico/reservas.
// @Summary Reserva produtos a partir de um QR code
// @Description Todos os itens são reservados ou nenhum.
// @Tags publico
// @Accept json
// @Produce json
// @Param reserva body domain.NovaReserva true "Dados do cliente e itens"
// @Success 201 {object} domain.ComprovanteReserva
// @Failure 422 {object} domain.ErrorResponse "Limite por pessoa excedido"
// @Failure 409 {object} domain.ErrorResponse "Reserva duplicada ou indisponível"
// @Router /publico/reservas [post]
func (h *Handler) CriarReservaHandler(w http.ResponseWriter, r *http.Request) {
	var nova domain.NovaReserva
	if err := apiutil.Decodificar(r, &nova); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	comprovante, err := h.Service.CriarReserva(r.Context(), nova)
	h.handleServiceResponse(w, r, comprovante, err, http.StatusCreated)
}

// ConsultarReservasHandler lida com a requisição GET /v1/publico/reservas?cpf=.
// @Summary Consulta as reservas ativas de um CPF
// @Tags publico
// @Produce json
// @Param cpf query string true "CPF, 11 dígitos"
// @Success 200 {object} domain.ResumoReservas
// @Failure 400 {object} domain.ErrorResponse
// @Router /publico/reservas [get]
func (h *Handler) ConsultarReservasHandler(w http.ResponseWriter, r *http.Request) {
	cpf := r.URL.Query().Get("cpf")
	if !cpfValido(cpf) {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("CPF deve conter 11 dígitos."), http.StatusOK)
		return
	}

	resumo, err := h.Service.ListarPorCPF(r.Context(), cpf)
	h.handleServiceResponse(w, r, resumo, err, http.StatusOK)
}

func cpfValido(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, c := range cpf {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// --- Rotas do caixa ---

// VincularFichaHandler lida com a requisição POST /v1/reservas/vincular.
// @Summary Converte reservas pendentes em vendas numa ficha
// @Description Cria a ficha quando FichaID não é informado. Tudo ou nada.
// @Tags reservas
// @Accept json
// @Produce json
// @Param vinculo body domain.VinculoFicha true "CPF, reservas e ficha"
// @Success 201 {object} domain.ResultadoVinculo
// @Failure 409 {object} domain.ErrorResponse "Saldo ou estoque insuficiente"
// @Security Bearer
// @Router /reservas/vincular [post]
func (h *Handler) VincularFichaHandler(w http.ResponseWriter, r *http.Request) {
	caixaID, err := apiutil.CaixaID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var v domain.VinculoFicha
	if err := apiutil.Decodificar(r, &v); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	v.CaixaID = caixaID

	resultado, err := h.Service.VincularFicha(r.Context(), v)
	h.handleServiceResponse(w, r, resultado, err, http.StatusCreated)
}

// ConfirmarReservaHandler lida com a requisição POST /v1/reservas/{id}/confirmar.
// @Summary Confirma uma reserva pendente gerando a venda
// @Tags reservas
// @Accept json
// @Produce json
// @Param id path string true "ID da reserva"
// @Param confirmacao body ConfirmacaoReserva false "Ficha a debitar"
// @Success 200 {object} domain.ReservaProduto
// @Failure 409 {object} domain.ErrorResponse "Reserva já processada"
// @Security Bearer
// @Router /reservas/{id}/confirmar [post]
func (h *Handler) ConfirmarReservaHandler(w http.ResponseWriter, r *http.Request) {
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

	var req ConfirmacaoReserva
	if r.ContentLength != 0 {
		if err := apiutil.Decodificar(r, &req); err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
			return
		}
	}

	reserva, err := h.Service.ConfirmarReserva(r.Context(), id, req.FichaID, caixaID)
	h.handleServiceResponse(w, r, reserva, err, http.StatusOK)
}

// CancelarReservaHandler lida com a requisição POST /v1/reservas/{id}/cancelar.
// @Summary Cancela uma reserva pendente
// @Tags reservas
// @Produce json
// @Param id path string true "ID da reserva"
// @Success 200 {object} domain.ReservaProduto
// @Failure 409 {object} domain.ErrorResponse "Reserva já processada"
// @Security Bearer
// @Router /reservas/{id}/cancelar [post]
func (h *Handler) CancelarReservaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	reserva, err := h.Service.CancelarReserva(r.Context(), id)
	h.handleServiceResponse(w, r, reserva, err, http.StatusOK)
}

// FinalizarReservaHandler lida com a requisição POST /v1/reservas/{id}/finalizar.
// @Summary Finaliza uma reserva confirmada
// @Tags reservas
// @Produce json
// @Param id path string true "ID da reserva"
// @Success 200 {object} domain.ReservaProduto
// @Failure 409 {object} domain.ErrorResponse "Reserva já processada"
// @Security Bearer
// @Router /reservas/{id}/finalizar [post]
func (h *Handler) FinalizarReservaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	reserva, err := h.Service.FinalizarReserva(r.Context(), id)
	h.handleServiceResponse(w, r, reserva, err, http.StatusOK)
}

// CriarQRCodeHandler lida com a requisição POST /v1/qrcodes.
// @Summary Cria um QR code de reserva
// @Description Sem datas, vale a partir de agora por 7 dias.
// @Tags qrcodes
// @Accept json
// @Produce json
// @Param qrcode body domain.NovoQRCode true "Produtos e janela de validade"
// @Success 201 {object} domain.QRCodeReserva
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Security Bearer
// @Router /qrcodes [post]
func (h *Handler) CriarQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	var novo domain.NovoQRCode
	if err := apiutil.Decodificar(r, &novo); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	qr, err := h.Service.CriarQRCode(r.Context(), novo)
	h.handleServiceResponse(w, r, qr, err, http.StatusCreated)
}

// BuscarQRCodeHandler lida com a requisição GET /v1/qrcodes/{id}.
// @Summary Busca um QR code
// @Tags qrcodes
// @Produce json
// @Param id path string true "ID do QR code"
// @Success 200 {object} domain.QRCodeReserva
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /qrcodes/{id} [get]
func (h *Handler) BuscarQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	qr, err := h.Service.BuscarQRCode(r.Context(), id)
	h.handleServiceResponse(w, r, qr, err, http.StatusOK)
}

// AtualizarQRCodeHandler lida com a requisição PUT /v1/qrcodes/{id}.
// @Summary Altera janela, produtos ou ativação de um QR code
// @Tags qrcodes
// @Accept json
// @Produce json
// @Param id path string true "ID do QR code"
// @Param qrcode body domain.AtualizacaoQRCode true "Campos a alterar"
// @Success 200 {object} domain.QRCodeReserva
// @Security Bearer
// @Router /qrcodes/{id} [put]
func (h *Handler) AtualizarQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var upd domain.AtualizacaoQRCode
	if err := apiutil.Decodificar(r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	qr, err := h.Service.AtualizarQRCode(r.Context(), id, upd)
	h.handleServiceResponse(w, r, qr, err, http.StatusOK)
}

// ListarReservasQRCodeHandler lida com a requisição GET /v1/qrcodes/{id}/reservas.
// @Summary Lista as reservas feitas por um QR code
// @Tags qrcodes
// @Produce json
// @Param id path string true "ID do QR code"
// @Success 200 {array} domain.LinhaReservaQRCode
// @Security Bearer
// @Router /qrcodes/{id}/reservas [get]
func (h *Handler) ListarReservasQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	linhas, err := h.Service.ListarReservasQRCode(r.Context(), id)
	h.handleServiceResponse(w, r, linhas, err, http.StatusOK)
}

// PDFQRCodeHandler lida com a requisição GET /v1/qrcodes/{id}/pdf.
// @Summary Folha imprimível com o QR code e a lista de produtos
// @Tags qrcodes
// @Produce application/pdf
// @Param id path string true "ID do QR code"
// @Success 200 {file} file
// @Failure 404 {object} domain.ErrorResponse
// @Security Bearer
// @Router /qrcodes/{id}/pdf [get]
func (h *Handler) PDFQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.ParamID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	conteudo, nomeArquivo, err := h.Service.GerarPDFQRCode(r.Context(), id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nomeArquivo))
	w.Header().Set("Content-Length", strconv.Itoa(len(conteudo)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(conteudo); err != nil {
		h.Logger.Error("Falha ao enviar PDF do QR code "+id, err)
	}
}
