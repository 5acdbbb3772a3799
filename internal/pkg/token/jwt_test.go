package token_test

import (
	"testing"
	"time"

	"goficha/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GerarEValidar(t *testing.T) {
	svc := token.NewService("segredo-de-teste", time.Hour)

	tk, err := svc.GenerateToken("caixa-1", "Caixa Central")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tk)
	require.NoError(t, err)
	assert.Equal(t, "caixa-1", claims.CaixaID)
	assert.Equal(t, "Caixa Central", claims.Nome)
	assert.Equal(t, "GoFicha-API", claims.Issuer)
}

func TestService_TokenExpirado(t *testing.T) {
	svc := token.NewService("segredo-de-teste", -time.Minute)

	tk, err := svc.GenerateToken("caixa-1", "Caixa Central")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tk)
	assert.Error(t, err)
}

func TestService_ChaveDiferente(t *testing.T) {
	tk, err := token.NewService("chave-a", time.Hour).GenerateToken("caixa-1", "X")
	require.NoError(t, err)

	_, err = token.NewService("chave-b", time.Hour).ValidateToken(tk)
	assert.Error(t, err)
}
