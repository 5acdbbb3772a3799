package caixaservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/token"
	"goficha/internal/repository/memstore"
	"goficha/internal/service/caixaservice"
)

// MockTokenService é uma implementação mock de token.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(caixaID string, nome string) (string, error) {
	args := m.Called(caixaID, nome)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

func TestRegistrarELogin(t *testing.T) {
	store := memstore.New()
	svc := caixaservice.NewService(store, token.NewService("segredo", time.Hour), logger.NewLogger("error"))
	ctx := context.Background()

	caixa, err := svc.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa 1", Senha: "senha-forte"})
	require.NoError(t, err)
	assert.NotEmpty(t, caixa.ID)
	assert.NotEqual(t, "senha-forte", caixa.SenhaHash)

	tk, err := svc.Login(ctx, "Caixa 1", "senha-forte")
	require.NoError(t, err)
	claims, err := token.NewService("segredo", time.Hour).ValidateToken(tk)
	require.NoError(t, err)
	assert.Equal(t, caixa.ID, claims.CaixaID)
}

func TestRegistrar_NomeDuplicado(t *testing.T) {
	svc := caixaservice.NewService(memstore.New(), new(MockTokenService), logger.NewLogger("error"))
	ctx := context.Background()

	_, err := svc.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa 1", Senha: "123456"})
	require.NoError(t, err)
	_, err = svc.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa 1", Senha: "654321"})
	var conflito *apperror.ConflictError
	assert.ErrorAs(t, err, &conflito)
}

func TestLogin_CredenciaisInvalidas(t *testing.T) {
	tokens := new(MockTokenService)
	svc := caixaservice.NewService(memstore.New(), tokens, logger.NewLogger("error"))
	ctx := context.Background()
	_, err := svc.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa 1", Senha: "123456"})
	require.NoError(t, err)

	var naoAutorizado *apperror.UnauthorizedError
	_, err = svc.Login(ctx, "Caixa 1", "errada")
	assert.ErrorAs(t, err, &naoAutorizado)
	_, err = svc.Login(ctx, "Caixa 9", "123456")
	assert.ErrorAs(t, err, &naoAutorizado)
	_, err = svc.Login(ctx, "", "")
	assert.ErrorAs(t, err, &naoAutorizado)

	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestLogin_FalhaAoGerarToken(t *testing.T) {
	tokens := new(MockTokenService)
	svc := caixaservice.NewService(memstore.New(), tokens, logger.NewLogger("error"))
	ctx := context.Background()
	caixa, err := svc.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa 1", Senha: "123456"})
	require.NoError(t, err)

	tokens.On("GenerateToken", caixa.ID, "Caixa 1").Return("", errors.New("chave ausente"))

	_, err = svc.Login(ctx, "Caixa 1", "123456")
	var interno *apperror.InternalError
	assert.ErrorAs(t, err, &interno)
	tokens.AssertExpectations(t)
}
