package apiutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goficha/internal/api/apiutil"
	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnviar_ErroDeNegocio(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/vendas", nil)

	apiutil.Responder{Logger: logger.NewLogger("error")}.Enviar(rec, req, nil,
		apperror.NewInsufficientStockError("Estoque insuficiente", "p1", 0, 1), http.StatusCreated)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var corpo domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&corpo))
	assert.Equal(t, "ESTOQUE_INSUFICIENTE", corpo.Category)
	assert.Equal(t, http.StatusConflict, corpo.Code)
}

func TestEnviar_Sucesso(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)

	apiutil.Responder{Logger: logger.NewLogger("error")}.Enviar(rec, req, map[string]string{"ok": "sim"}, nil, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":"sim"}`, rec.Body.String())
}

func TestDecodificar_AplicaValidacao(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"cpf":"123","nome_completo":"Ana Lima","qr_codigo":"X","itens":[]}`))
	var nova domain.NovaReserva
	err := apiutil.Decodificar(req, &nova)

	var validacao *apperror.ValidationError
	require.ErrorAs(t, err, &validacao)
	assert.Contains(t, validacao.Msg, "cpf")

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{quebrado`))
	assert.ErrorAs(t, apiutil.Decodificar(req, &nova), &validacao)
}

func TestParamID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nao-e-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	_, err := apiutil.ParamID(req, "id")
	var validacao *apperror.ValidationError
	assert.ErrorAs(t, err, &validacao)
}

func TestCaixaID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := apiutil.CaixaID(req)
	var naoAutorizado *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &naoAutorizado)

	req = req.WithContext(middleware.WithCaixa(req.Context(), middleware.CaixaClaims{CaixaID: "c1", Nome: "Caixa"}))
	id, err := apiutil.CaixaID(req)
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
}
