package produto_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"goficha/internal/api/produto"
	"goficha/internal/domain"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProdutoService é uma implementação mock de produto.ProdutoService
type MockProdutoService struct {
	mock.Mock
}

func (m *MockProdutoService) CriarProduto(ctx context.Context, novo domain.NovoProduto) (domain.Produto, error) {
	args := m.Called(ctx, novo)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockProdutoService) AtualizarProduto(ctx context.Context, upd domain.AtualizacaoProduto) (domain.Produto, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockProdutoService) BuscarProduto(ctx context.Context, id string) (domain.Produto, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockProdutoService) ListarProdutos(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	args := m.Called(ctx, filtro)
	return args.Get(0).([]domain.Produto), args.Error(1)
}

func (m *MockProdutoService) Reconciliar(ctx context.Context, produtoID string) (domain.Reconciliacao, error) {
	args := m.Called(ctx, produtoID)
	return args.Get(0).(domain.Reconciliacao), args.Error(1)
}

func servir(svc *MockProdutoService) http.Handler {
	h := produto.NewHandler(svc, logger.NewLogger("error"))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithCaixa(req.Context(), middleware.CaixaClaims{CaixaID: "caixa-1", Nome: "Caixa 1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/v1/produtos", h.ListarProdutosHandler)
	r.Post("/v1/produtos", h.CriarProdutoHandler)
	r.Put("/v1/produtos/{id}", h.AtualizarProdutoHandler)
	r.Get("/v1/produtos/{id}/reconciliacao", h.ReconciliarHandler)
	return r
}

func TestListarProdutosHandler_Filtros(t *testing.T) {
	svc := new(MockProdutoService)
	svc.On("ListarProdutos", mock.Anything, domain.ProdutoFiltro{Page: 2, Limit: 5, Nome: "pão", Categoria: "padaria"}).
		Return([]domain.Produto{{ID: "p1", Nome: "Pão de queijo"}}, nil)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/produtos?page=2&limit=5&nome=p%C3%A3o&categoria=padaria", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListarProdutosHandler_PaginaInvalida(t *testing.T) {
	svc := new(MockProdutoService)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/produtos?page=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListarProdutos", mock.Anything, mock.Anything)
}

func TestCriarProdutoHandler(t *testing.T) {
	svc := new(MockProdutoService)
	svc.On("CriarProduto", mock.Anything, mock.MatchedBy(func(n domain.NovoProduto) bool {
		return n.Nome == "Refrigerante" && n.EstoqueInicial == 24 && n.CaixaID == "caixa-1"
	})).Return(domain.Produto{ID: "p1", Nome: "Refrigerante", Estoque: 24}, nil)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/produtos",
		bytes.NewBufferString(`{"nome":"Refrigerante","unidade":"UN","preco":"6.50","estoque_inicial":24}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCriarProdutoHandler_UnidadeInvalida(t *testing.T) {
	svc := new(MockProdutoService)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/produtos",
		bytes.NewBufferString(`{"nome":"Refrigerante","unidade":"CX","preco":"6.50"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CriarProduto", mock.Anything, mock.Anything)
}

func TestAtualizarProdutoHandler_EstoqueAlvo(t *testing.T) {
	svc := new(MockProdutoService)
	id := uuid.NewString()
	svc.On("AtualizarProduto", mock.Anything, mock.MatchedBy(func(u domain.AtualizacaoProduto) bool {
		return u.ID == id && u.Estoque != nil && *u.Estoque == 10 && u.CaixaID == "caixa-1"
	})).Return(domain.Produto{ID: id, Estoque: 10}, nil)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/produtos/"+id, bytes.NewBufferString(`{"estoque":10}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestReconciliarHandler(t *testing.T) {
	svc := new(MockProdutoService)
	id := uuid.NewString()
	svc.On("Reconciliar", mock.Anything, id).Return(domain.Reconciliacao{ProdutoID: id, Estoque: 16, Liquido: 16}, nil)

	rec := httptest.NewRecorder()
	servir(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/produtos/"+id+"/reconciliacao", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"diferenca":0`)
}
