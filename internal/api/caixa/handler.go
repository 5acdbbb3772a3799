package caixa

import (
	"context"
	"net/http"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"
)

// CaixaService define o contrato para as operações de cadastro e login.
type CaixaService interface {
	Registrar(ctx context.Context, registro domain.RegistroCaixa) (domain.Caixa, error)
	Login(ctx context.Context, nome, senha string) (string, error)
}

// LoginResponse é a resposta do login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa os handlers de caixa.
type Handler struct {
	Service CaixaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CaixaService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	apiutil.Responder{Logger: h.Logger}.Enviar(w, r, data, err, successStatus)
}

// RegistrarHandler lida com a requisição POST /v1/caixas.
// @Summary Cadastra um caixa
// @Tags caixas
// @Accept json
// @Produce json
// @Param caixa body domain.RegistroCaixa true "Nome e senha do caixa"
// @Success 201 {object} domain.Caixa
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Nome já cadastrado"
// @Router /caixas [post]
func (h *Handler) RegistrarHandler(w http.ResponseWriter, r *http.Request) {
	var registro domain.RegistroCaixa
	if err := apiutil.Decodificar(r, &registro); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	caixa, err := h.Service.Registrar(r.Context(), registro)
	h.handleServiceResponse(w, r, caixa, err, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/auth/login.
// @Summary Autentica um caixa
// @Tags caixas
// @Accept json
// @Produce json
// @Param credenciais body domain.LoginCaixa true "Credenciais"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginCaixa
	if err := apiutil.Decodificar(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	tokenString, err := h.Service.Login(r.Context(), req.Nome, req.Senha)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, LoginResponse{Token: tokenString}, nil, http.StatusOK)
}
