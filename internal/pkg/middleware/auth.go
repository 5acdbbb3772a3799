package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/token"
)

// ContextKey é o tipo das chaves que o middleware grava no contexto.
type ContextKey int

const (
	CaixaClaimsKey ContextKey = iota
)

// CaixaClaims representa o caixa autenticado extraído do JWT.
type CaixaClaims struct {
	CaixaID string
	Nome    string
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa as claims do caixa ao contexto.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) <= len("Bearer ") {
				writeError(w, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeError(w, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			ctx := WithCaixa(r.Context(), CaixaClaims{CaixaID: claims.CaixaID, Nome: claims.Nome})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCaixa anexa as claims ao contexto. Também usado pelos testes de handler.
func WithCaixa(ctx context.Context, claims CaixaClaims) context.Context {
	return context.WithValue(ctx, CaixaClaimsKey, claims)
}

// GetCaixaClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetCaixaClaimsFromContext(ctx context.Context) (CaixaClaims, bool) {
	claims, ok := ctx.Value(CaixaClaimsKey).(CaixaClaims)
	return claims, ok
}

func writeError(w http.ResponseWriter, err apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	_ = jsonEncode(w, domain.ErrorResponse{
		Code:     err.HTTPStatus(),
		Category: err.Category(),
		Message:  err.Error(),
	})
}

func jsonEncode(w http.ResponseWriter, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}
