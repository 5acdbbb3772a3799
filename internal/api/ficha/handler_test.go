package ficha_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"goficha/internal/api/ficha"
	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFichaService é uma implementação mock de ficha.FichaService
type MockFichaService struct {
	mock.Mock
}

func (m *MockFichaService) CriarFicha(ctx context.Context, nova domain.NovaFicha) (domain.Ficha, error) {
	args := m.Called(ctx, nova)
	return args.Get(0).(domain.Ficha), args.Error(1)
}

func (m *MockFichaService) BuscarFicha(ctx context.Context, id string) (domain.Ficha, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Ficha), args.Error(1)
}

func (m *MockFichaService) BuscarFichaPorNumero(ctx context.Context, numero string) (domain.Ficha, error) {
	args := m.Called(ctx, numero)
	return args.Get(0).(domain.Ficha), args.Error(1)
}

func (m *MockFichaService) RecarregarFicha(ctx context.Context, fichaID string, rec domain.NovaRecarga) (domain.Ficha, error) {
	args := m.Called(ctx, fichaID, rec)
	return args.Get(0).(domain.Ficha), args.Error(1)
}

func (m *MockFichaService) ListarRecargas(ctx context.Context, fichaID string) ([]domain.Recarga, error) {
	args := m.Called(ctx, fichaID)
	return args.Get(0).([]domain.Recarga), args.Error(1)
}

func (m *MockFichaService) ExcluirFicha(ctx context.Context, fichaID, caixaID string) error {
	args := m.Called(ctx, fichaID, caixaID)
	return args.Error(0)
}

// MockVendas é uma implementação mock de ficha.VendasDaFicha
type MockVendas struct {
	mock.Mock
}

func (m *MockVendas) ListarVendasPorFicha(ctx context.Context, fichaID string) ([]domain.Venda, error) {
	args := m.Called(ctx, fichaID)
	return args.Get(0).([]domain.Venda), args.Error(1)
}

func servir(svc *MockFichaService, vendas *MockVendas) http.Handler {
	h := ficha.NewHandler(svc, vendas, logger.NewLogger("error"))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithCaixa(req.Context(), middleware.CaixaClaims{CaixaID: "caixa-1", Nome: "Caixa 1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/v1/fichas", h.CriarFichaHandler)
	r.Get("/v1/fichas/numero/{numero}", h.BuscarFichaPorNumeroHandler)
	r.Delete("/v1/fichas/{id}", h.ExcluirFichaHandler)
	r.Post("/v1/fichas/{id}/recargas", h.RecarregarHandler)
	r.Get("/v1/fichas/{id}/vendas", h.ListarVendasHandler)
	return r
}

func TestCriarFichaHandler(t *testing.T) {
	svc := new(MockFichaService)
	svc.On("CriarFicha", mock.Anything, mock.MatchedBy(func(n domain.NovaFicha) bool {
		return n.Numero == "42" && n.SaldoInicial.Equal(decimal.RequireFromString("20")) && n.CaixaID == "caixa-1"
	})).Return(domain.Ficha{ID: "f1", Numero: "42", Saldo: decimal.RequireFromString("20"), Ativo: true}, nil)

	rec := httptest.NewRecorder()
	servir(svc, new(MockVendas)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/fichas",
		bytes.NewBufferString(`{"numero":"42","saldo_inicial":20}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCriarFichaHandler_NumeroDuplicado(t *testing.T) {
	svc := new(MockFichaService)
	svc.On("CriarFicha", mock.Anything, mock.Anything).
		Return(domain.Ficha{}, apperror.NewConflictError("Já existe uma ficha com o número 42."))

	rec := httptest.NewRecorder()
	servir(svc, new(MockVendas)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/fichas",
		bytes.NewBufferString(`{"numero":"42"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBuscarFichaPorNumeroHandler(t *testing.T) {
	svc := new(MockFichaService)
	svc.On("BuscarFichaPorNumero", mock.Anything, "A-17").Return(domain.Ficha{ID: "f1", Numero: "A-17"}, nil)

	rec := httptest.NewRecorder()
	servir(svc, new(MockVendas)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fichas/numero/A-17", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"numero":"A-17"`)
}

func TestExcluirFichaHandler_RegistraCaixaDoToken(t *testing.T) {
	svc := new(MockFichaService)
	id := uuid.NewString()
	svc.On("ExcluirFicha", mock.Anything, id, "caixa-1").Return(nil)

	rec := httptest.NewRecorder()
	servir(svc, new(MockVendas)).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/fichas/"+id, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestRecarregarHandler_ValorInvalido(t *testing.T) {
	svc := new(MockFichaService)
	id := uuid.NewString()
	svc.On("RecarregarFicha", mock.Anything, id, mock.Anything).
		Return(domain.Ficha{}, apperror.NewInvalidAmountError("O valor da recarga deve ser maior que zero."))

	rec := httptest.NewRecorder()
	servir(svc, new(MockVendas)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/fichas/"+id+"/recargas",
		bytes.NewBufferString(`{"valor":0}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALOR_INVALIDO")
}

func TestListarVendasHandler(t *testing.T) {
	vendas := new(MockVendas)
	id := uuid.NewString()
	vendas.On("ListarVendasPorFicha", mock.Anything, id).Return([]domain.Venda{{ID: "v1", FichaID: id}}, nil)

	rec := httptest.NewRecorder()
	servir(new(MockFichaService), vendas).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fichas/"+id+"/vendas", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	vendas.AssertExpectations(t)
}
