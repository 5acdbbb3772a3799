// Package apiutil reúne o que todos os handlers HTTP compartilham:
// resposta padronizada, decodificação validada e leitura de parâmetros.
package apiutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"
	"goficha/internal/pkg/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Responder escreve respostas JSON e traduz erros de serviço em {code, category, message}.
type Responder struct {
	Logger logger.Logger
}

// Enviar processa o resultado do serviço e envia a resposta padronizada ao cliente.
func (rs Responder) Enviar(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		rs.Logger.Debug("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				rs.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		rs.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		rs.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// Decodificar lê o corpo JSON em dst e aplica as regras de validação da struct.
func Decodificar(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return validation.Struct(dst)
}

// ParamID lê um parâmetro de rota que deve ser um UUID.
func ParamID(r *http.Request, nome string) (string, error) {
	valor := chi.URLParam(r, nome)
	if _, err := uuid.Parse(valor); err != nil {
		return "", apperror.NewValidationError(fmt.Sprintf("Parâmetro '%s' deve ser um UUID válido.", nome))
	}
	return valor, nil
}

// CaixaID devolve o caixa autenticado pelo middleware de JWT.
func CaixaID(r *http.Request) (string, error) {
	claims, ok := middleware.GetCaixaClaimsFromContext(r.Context())
	if !ok || claims.CaixaID == "" {
		return "", apperror.NewUnauthorizedError("Caixa não autenticado.")
	}
	return claims.CaixaID, nil
}

// QueryInt lê um inteiro opcional da query string; ausente vale padrao.
func QueryInt(r *http.Request, nome string, padrao int) (int, error) {
	valor := r.URL.Query().Get(nome)
	if valor == "" {
		return padrao, nil
	}
	n, err := strconv.Atoi(valor)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("Parâmetro '%s' deve ser um número inteiro.", nome))
	}
	return n, nil
}
