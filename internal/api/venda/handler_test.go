package venda_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goficha/internal/api/venda"
	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVendaService é uma implementação mock de venda.VendaService
type MockVendaService struct {
	mock.Mock
}

func (m *MockVendaService) CriarVenda(ctx context.Context, nova domain.NovaVenda) (domain.Venda, error) {
	args := m.Called(ctx, nova)
	return args.Get(0).(domain.Venda), args.Error(1)
}

func (m *MockVendaService) AtualizarVenda(ctx context.Context, vendaID string, novaQuantidade int) (domain.Venda, error) {
	args := m.Called(ctx, vendaID, novaQuantidade)
	return args.Get(0).(domain.Venda), args.Error(1)
}

func (m *MockVendaService) ExcluirVenda(ctx context.Context, vendaID string) error {
	args := m.Called(ctx, vendaID)
	return args.Error(0)
}

func (m *MockVendaService) BuscarVenda(ctx context.Context, vendaID string) (domain.Venda, error) {
	args := m.Called(ctx, vendaID)
	return args.Get(0).(domain.Venda), args.Error(1)
}

func servir(svc *MockVendaService, caixaID string) http.Handler {
	h := venda.NewHandler(svc, logger.NewLogger("error"))
	r := chi.NewRouter()
	if caixaID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithCaixa(req.Context(), middleware.CaixaClaims{CaixaID: caixaID, Nome: "Caixa 1"})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Post("/v1/vendas", h.CriarVendaHandler)
	r.Get("/v1/vendas/{id}", h.BuscarVendaHandler)
	r.Put("/v1/vendas/{id}", h.AtualizarVendaHandler)
	r.Delete("/v1/vendas/{id}", h.ExcluirVendaHandler)
	return r
}

func TestCriarVendaHandler_UsaCaixaDoToken(t *testing.T) {
	svc := new(MockVendaService)
	produtoID, fichaID := uuid.NewString(), uuid.NewString()

	esperada := domain.NovaVenda{ProdutoID: produtoID, Quantidade: 2, FichaID: fichaID, CaixaID: "caixa-9"}
	svc.On("CriarVenda", mock.Anything, esperada).
		Return(domain.Venda{ID: "v1", FichaID: fichaID, Total: decimal.RequireFromString("5.00")}, nil)

	corpo, _ := json.Marshal(map[string]interface{}{"produto_id": produtoID, "quantidade": 2, "ficha_id": fichaID})
	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vendas", bytes.NewReader(corpo)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var v domain.Venda
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, "v1", v.ID)
	svc.AssertExpectations(t)
}

func TestCriarVendaHandler_SemCaixa(t *testing.T) {
	svc := new(MockVendaService)

	rec := httptest.NewRecorder()
	servir(svc, "").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vendas", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "CriarVenda", mock.Anything, mock.Anything)
}

func TestCriarVendaHandler_SaldoInsuficiente(t *testing.T) {
	svc := new(MockVendaService)
	produtoID, fichaID := uuid.NewString(), uuid.NewString()

	svc.On("CriarVenda", mock.Anything, mock.Anything).Return(domain.Venda{},
		apperror.NewInsufficientBalanceError(fichaID, decimal.RequireFromString("1.00"), decimal.RequireFromString("5.00")))

	corpo, _ := json.Marshal(map[string]interface{}{"produto_id": produtoID, "quantidade": 2, "ficha_id": fichaID})
	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vendas", bytes.NewReader(corpo)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var erro domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&erro))
	assert.Equal(t, "SALDO_INSUFICIENTE", erro.Category)
	assert.Contains(t, erro.Message, "necessário: 5.00")
}

func TestAtualizarVendaHandler(t *testing.T) {
	svc := new(MockVendaService)
	id := uuid.NewString()
	svc.On("AtualizarVenda", mock.Anything, id, 4).Return(domain.Venda{ID: id}, nil)

	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/vendas/"+id, bytes.NewBufferString(`{"quantidade":4}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAtualizarVendaHandler_QuantidadeZero(t *testing.T) {
	svc := new(MockVendaService)

	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/vendas/"+uuid.NewString(), bytes.NewBufferString(`{"quantidade":0}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "AtualizarVenda", mock.Anything, mock.Anything, mock.Anything)
}

func TestExcluirVendaHandler(t *testing.T) {
	svc := new(MockVendaService)
	id := uuid.NewString()
	svc.On("ExcluirVenda", mock.Anything, id).Return(nil)

	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/vendas/"+id, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBuscarVendaHandler_IDInvalido(t *testing.T) {
	svc := new(MockVendaService)

	rec := httptest.NewRecorder()
	servir(svc, "caixa-9").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/vendas/nao-e-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "BuscarVenda", mock.Anything, mock.Anything)
}
