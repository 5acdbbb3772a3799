package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError é a interface central para todos os erros customizados do GoFicha.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Genéricos ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., número de ficha duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Erros do Livro de Estoque e de Saldo ---

// InsufficientStockError indica que a operação deixaria o estoque do produto negativo.
type InsufficientStockError struct {
	Msg        string
	ProdutoID  string
	Disponivel int
	Solicitado int
}

func (e *InsufficientStockError) Error() string    { return e.Msg }
func (e *InsufficientStockError) Category() string { return "ESTOQUE_INSUFICIENTE" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente.
func NewInsufficientStockError(msg, produtoID string, disponivel, solicitado int) AppError {
	return &InsufficientStockError{Msg: msg, ProdutoID: produtoID, Disponivel: disponivel, Solicitado: solicitado}
}

// InsufficientBalanceError indica que o débito deixaria o saldo da ficha negativo.
type InsufficientBalanceError struct {
	FichaID    string
	Saldo      decimal.Decimal
	Necessario decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Saldo insuficiente na ficha. Saldo atual: %s, necessário: %s",
		e.Saldo.StringFixed(2), e.Necessario.StringFixed(2))
}
func (e *InsufficientBalanceError) Category() string { return "SALDO_INSUFICIENTE" }
func (e *InsufficientBalanceError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *InsufficientBalanceError) Unwrap() error    { return nil }

// NewInsufficientBalanceError cria um erro de saldo insuficiente.
func NewInsufficientBalanceError(fichaID string, saldo, necessario decimal.Decimal) AppError {
	return &InsufficientBalanceError{FichaID: fichaID, Saldo: saldo, Necessario: necessario}
}

// InvalidSaleError indica uma venda incoerente (movimentação que não é saída, edição direta etc).
type InvalidSaleError struct {
	Msg string
}

func (e *InvalidSaleError) Error() string    { return e.Msg }
func (e *InvalidSaleError) Category() string { return "VENDA_INVALIDA" }
func (e *InvalidSaleError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InvalidSaleError) Unwrap() error    { return nil }

func NewInvalidSaleError(msg string) AppError {
	return &InvalidSaleError{Msg: msg}
}

// InvalidAmountError indica um valor monetário não positivo onde um positivo é exigido.
type InvalidAmountError struct {
	Msg string
}

func (e *InvalidAmountError) Error() string    { return e.Msg }
func (e *InvalidAmountError) Category() string { return "VALOR_INVALIDO" }
func (e *InvalidAmountError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *InvalidAmountError) Unwrap() error    { return nil }

func NewInvalidAmountError(msg string) AppError {
	return &InvalidAmountError{Msg: msg}
}

// --- Erros de Reserva ---

// ReservationLimitExceededError indica quantidade acima do limite por item do produto.
type ReservationLimitExceededError struct {
	Produto string
	Limite  int
}

func (e *ReservationLimitExceededError) Error() string {
	return fmt.Sprintf("Quantidade de %s excede o limite de %d por item", e.Produto, e.Limite)
}
func (e *ReservationLimitExceededError) Category() string { return "LIMITE_RESERVA_EXCEDIDO" }
func (e *ReservationLimitExceededError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *ReservationLimitExceededError) Unwrap() error    { return nil }

func NewReservationLimitExceededError(produto string, limite int) AppError {
	return &ReservationLimitExceededError{Produto: produto, Limite: limite}
}

// ReservationUnavailableError indica que o produto não aceita reservas ou o pool não comporta o pedido.
type ReservationUnavailableError struct {
	Produto    string
	Disponivel int
}

func (e *ReservationUnavailableError) Error() string {
	return fmt.Sprintf("Quantidade indisponível para %s. Disponível: %d", e.Produto, e.Disponivel)
}
func (e *ReservationUnavailableError) Category() string { return "RESERVA_INDISPONIVEL" }
func (e *ReservationUnavailableError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ReservationUnavailableError) Unwrap() error    { return nil }

func NewReservationUnavailableError(produto string, disponivel int) AppError {
	return &ReservationUnavailableError{Produto: produto, Disponivel: disponivel}
}

// DuplicateReservationError indica que já existe uma reserva ativa para o par (CPF, produto).
type DuplicateReservationError struct {
	Produto string
}

func (e *DuplicateReservationError) Error() string {
	return fmt.Sprintf("Já existe uma reserva ativa para %s com este CPF", e.Produto)
}
func (e *DuplicateReservationError) Category() string { return "RESERVA_DUPLICADA" }
func (e *DuplicateReservationError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *DuplicateReservationError) Unwrap() error    { return nil }

func NewDuplicateReservationError(produto string) AppError {
	return &DuplicateReservationError{Produto: produto}
}

// AlreadyProcessedError indica uma transição de estado inválida da reserva.
type AlreadyProcessedError struct {
	ReservaID string
	Status    string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("Reserva %s já processada (status atual: %s)", e.ReservaID, e.Status)
}
func (e *AlreadyProcessedError) Category() string { return "RESERVA_JA_PROCESSADA" }
func (e *AlreadyProcessedError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *AlreadyProcessedError) Unwrap() error    { return nil }

func NewAlreadyProcessedError(reservaID, status string) AppError {
	return &AlreadyProcessedError{ReservaID: reservaID, Status: status}
}

// --- Erros de QR Code ---

type QrCodeInactiveError struct{ Codigo string }

func (e *QrCodeInactiveError) Error() string    { return fmt.Sprintf("QR code %s inativo", e.Codigo) }
func (e *QrCodeInactiveError) Category() string { return "QRCODE_INATIVO" }
func (e *QrCodeInactiveError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *QrCodeInactiveError) Unwrap() error    { return nil }

type QrCodeExpiredError struct{ Codigo string }

func (e *QrCodeExpiredError) Error() string    { return fmt.Sprintf("QR code %s expirado", e.Codigo) }
func (e *QrCodeExpiredError) Category() string { return "QRCODE_EXPIRADO" }
func (e *QrCodeExpiredError) HTTPStatus() int  { return http.StatusGone } // 410
func (e *QrCodeExpiredError) Unwrap() error    { return nil }

type QrCodeNotStartedError struct{ Codigo string }

func (e *QrCodeNotStartedError) Error() string {
	return fmt.Sprintf("QR code %s ainda não está disponível", e.Codigo)
}
func (e *QrCodeNotStartedError) Category() string { return "QRCODE_NAO_INICIADO" }
func (e *QrCodeNotStartedError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *QrCodeNotStartedError) Unwrap() error    { return nil }

func NewQrCodeInactiveError(codigo string) AppError   { return &QrCodeInactiveError{Codigo: codigo} }
func NewQrCodeExpiredError(codigo string) AppError    { return &QrCodeExpiredError{Codigo: codigo} }
func NewQrCodeNotStartedError(codigo string) AppError { return &QrCodeNotStartedError{Codigo: codigo} }

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// IsAppError retorna true se err (ou algum erro encapsulado) já é um AppError.
func IsAppError(err error) bool {
	var appErr AppError
	return stderrors.As(err, &appErr)
}

// Is re-exporta errors.Is para que os pacotes que importam este não precisem de alias.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As re-exporta errors.As.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
