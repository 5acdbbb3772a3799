//go:build integration

package pgstore_test

// Testes contra PostgreSQL real via testcontainers.
// Rodar com: go test -tags integration ./internal/repository/pgstore/... -v

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/cache"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/token"
	"goficha/internal/repository/pgstore"
	"goficha/internal/service/caixaservice"
	"goficha/internal/service/estoqueservice"
	"goficha/internal/service/fichaservice"
	"goficha/internal/service/reservaservice"
	"goficha/internal/service/vendaservice"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type ambiente struct {
	estoque  *estoqueservice.Service
	fichas   *fichaservice.Service
	vendas   *vendaservice.Service
	reservas *reservaservice.Service
	caixaID  string
}

func novoAmbiente(t *testing.T) ambiente {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("goficha_test"),
		tcPostgres.WithUsername("goficha"),
		tcPostgres.WithPassword("goficha"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.NewLogger("error")
	db, err := database.NewPostgresDB(dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "../../../sql"))

	store := pgstore.New(db, 5*time.Second, log)
	estoque := estoqueservice.NewService(store, log)
	fichas := fichaservice.NewService(store, log)
	vendas := vendaservice.NewService(store, estoque, fichas, log)
	reservas := reservaservice.NewService(store, vendas, fichas, cache.NewNoopClient(),
		reservaservice.Config{URLPublica: "http://loja.local"}, log)

	caixas := caixaservice.NewService(store, token.NewService("segredo", time.Hour), log)
	c, err := caixas.Registrar(ctx, domain.RegistroCaixa{Nome: "Caixa integração", Senha: "segredo1"})
	require.NoError(t, err)

	return ambiente{estoque: estoque, fichas: fichas, vendas: vendas, reservas: reservas, caixaID: c.ID}
}

func TestIntegracao_VendaDebitaEstoqueESaldo(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	p, err := amb.estoque.CriarProduto(ctx, domain.NovoProduto{
		Nome: "Pastel", Unidade: domain.UnidadeUnidade, Preco: decimal.RequireFromString("7.50"),
		EstoqueInicial: 10, CaixaID: amb.caixaID,
	})
	require.NoError(t, err)

	f, err := amb.fichas.CriarFicha(ctx, domain.NovaFicha{Numero: "1", SaldoInicial: decimal.RequireFromString("20"), CaixaID: amb.caixaID})
	require.NoError(t, err)

	v, err := amb.vendas.CriarVenda(ctx, domain.NovaVenda{ProdutoID: p.ID, Quantidade: 2, FichaID: f.ID, CaixaID: amb.caixaID})
	require.NoError(t, err)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("15.00")))

	_, err = amb.vendas.CriarVenda(ctx, domain.NovaVenda{ProdutoID: p.ID, Quantidade: 1, FichaID: f.ID, CaixaID: amb.caixaID})
	var saldo *apperror.InsufficientBalanceError
	assert.ErrorAs(t, err, &saldo)

	atual, err := amb.estoque.BuscarProduto(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, atual.Estoque)

	rec, err := amb.estoque.Reconciliar(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, rec.Diferenca)

	ficha, err := amb.fichas.BuscarFicha(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ficha.Saldo.Equal(decimal.RequireFromString("5.00")))
}

func TestIntegracao_VendasConcorrentesNaoDeixamEstoqueNegativo(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	p, err := amb.estoque.CriarProduto(ctx, domain.NovoProduto{
		Nome: "Último bolo", Unidade: domain.UnidadeUnidade, Preco: decimal.RequireFromString("10"),
		EstoqueInicial: 3, CaixaID: amb.caixaID,
	})
	require.NoError(t, err)

	const compradores = 8
	fichaIDs := make([]string, compradores)
	for i := range fichaIDs {
		f, err := amb.fichas.CriarFicha(ctx, domain.NovaFicha{
			Numero: "C" + string(rune('A'+i)), SaldoInicial: decimal.RequireFromString("50"), CaixaID: amb.caixaID,
		})
		require.NoError(t, err)
		fichaIDs[i] = f.ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sucessos int
	)
	for _, fichaID := range fichaIDs {
		wg.Add(1)
		go func(fichaID string) {
			defer wg.Done()
			_, err := amb.vendas.CriarVenda(ctx, domain.NovaVenda{ProdutoID: p.ID, Quantidade: 1, FichaID: fichaID, CaixaID: amb.caixaID})
			if err == nil {
				mu.Lock()
				sucessos++
				mu.Unlock()
				return
			}
			var estoque *apperror.InsufficientStockError
			assert.ErrorAs(t, err, &estoque)
		}(fichaID)
	}
	wg.Wait()

	assert.Equal(t, 3, sucessos)
	atual, err := amb.estoque.BuscarProduto(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, atual.Estoque)
}

func TestIntegracao_NumeroDeFichaUnico(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	_, err := amb.fichas.CriarFicha(ctx, domain.NovaFicha{Numero: "77", CaixaID: amb.caixaID})
	require.NoError(t, err)

	_, err = amb.fichas.CriarFicha(ctx, domain.NovaFicha{Numero: "77", CaixaID: amb.caixaID})
	var conflito *apperror.ConflictError
	assert.ErrorAs(t, err, &conflito)
}

func TestIntegracao_ReservaEVinculo(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	p, err := amb.estoque.CriarProduto(ctx, domain.NovoProduto{
		Nome: "Frango assado", Unidade: domain.UnidadeUnidade, Preco: decimal.RequireFromString("40"),
		EstoqueInicial: 5, DisponivelReserva: true, LimiteReserva: 2, QuantidadeReservaDisponivel: 3,
		CaixaID: amb.caixaID,
	})
	require.NoError(t, err)

	qr, err := amb.reservas.CriarQRCode(ctx, domain.NovoQRCode{Descricao: "Domingo", ProdutoIDs: []string{p.ID}})
	require.NoError(t, err)

	_, err = amb.reservas.CriarReserva(ctx, domain.NovaReserva{
		CPF: "12345678901", NomeCompleto: "Ana Lima", QRCodigo: qr.Codigo,
		Itens: []domain.ItemReserva{{ProdutoID: p.ID, Quantidade: 2}},
	})
	require.NoError(t, err)

	// O pool tem 3 e 2 já estão reservados
	_, err = amb.reservas.CriarReserva(ctx, domain.NovaReserva{
		CPF: "98765432100", NomeCompleto: "Bruno Reis", QRCodigo: qr.Codigo,
		Itens: []domain.ItemReserva{{ProdutoID: p.ID, Quantidade: 2}},
	})
	var indisponivel *apperror.ReservationUnavailableError
	assert.ErrorAs(t, err, &indisponivel)

	res, err := amb.reservas.VincularFicha(ctx, domain.VinculoFicha{
		CPF: "12345678901", Numero: "R-1", SaldoInicial: decimal.RequireFromString("100"),
		RegistrarRecarga: true, CaixaID: amb.caixaID,
	})
	require.NoError(t, err)
	assert.True(t, res.Ficha.Saldo.Equal(decimal.RequireFromString("20")))
	require.Len(t, res.Vendas, 1)

	linhas, err := amb.reservas.ListarReservasQRCode(ctx, qr.ID)
	require.NoError(t, err)
	require.Len(t, linhas, 1)
	assert.Equal(t, domain.StatusFinalizada, linhas[0].Status)

	recargas, err := amb.fichas.ListarRecargas(ctx, res.Ficha.ID)
	require.NoError(t, err)
	assert.Len(t, recargas, 1)
}

func TestIntegracao_ReservasConcorrentesPelaUltimaUnidade(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	p, err := amb.estoque.CriarProduto(ctx, domain.NovoProduto{
		Nome: "Bolo de milho", Unidade: domain.UnidadeUnidade, Preco: decimal.RequireFromString("12"),
		EstoqueInicial: 5, DisponivelReserva: true, LimiteReserva: 1, QuantidadeReservaDisponivel: 1,
		CaixaID: amb.caixaID,
	})
	require.NoError(t, err)
	qr, err := amb.reservas.CriarQRCode(ctx, domain.NovoQRCode{Descricao: "Sábado", ProdutoIDs: []string{p.ID}})
	require.NoError(t, err)

	const clientes = 8
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		sucessos     int
		indisponivel int
	)
	for i := 0; i < clientes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := amb.reservas.CriarReserva(ctx, domain.NovaReserva{
				CPF: fmt.Sprintf("%011d", i+1), NomeCompleto: "Cliente", QRCodigo: qr.Codigo,
				Itens: []domain.ItemReserva{{ProdutoID: p.ID, Quantidade: 1}},
			})
			var semPool *apperror.ReservationUnavailableError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sucessos++
			case apperror.As(err, &semPool):
				indisponivel++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, sucessos)
	assert.Equal(t, clientes-1, indisponivel)

	linhas, err := amb.reservas.ListarReservasQRCode(ctx, qr.ID)
	require.NoError(t, err)
	assert.Len(t, linhas, 1)
}

func TestIntegracao_EstornoDaVendaCancelaReserva(t *testing.T) {
	amb := novoAmbiente(t)
	ctx := context.Background()

	p, err := amb.estoque.CriarProduto(ctx, domain.NovoProduto{
		Nome: "Pamonha", Unidade: domain.UnidadeUnidade, Preco: decimal.RequireFromString("6"),
		EstoqueInicial: 5, DisponivelReserva: true, LimiteReserva: 2, QuantidadeReservaDisponivel: 2,
		CaixaID: amb.caixaID,
	})
	require.NoError(t, err)
	qr, err := amb.reservas.CriarQRCode(ctx, domain.NovoQRCode{Descricao: "Domingo", ProdutoIDs: []string{p.ID}})
	require.NoError(t, err)
	ficha, err := amb.fichas.CriarFicha(ctx, domain.NovaFicha{
		Numero: "E-1", SaldoInicial: decimal.RequireFromString("30"), CaixaID: amb.caixaID,
	})
	require.NoError(t, err)

	nova := domain.NovaReserva{
		CPF: "12345678901", NomeCompleto: "Ana Lima", QRCodigo: qr.Codigo,
		Itens: []domain.ItemReserva{{ProdutoID: p.ID, Quantidade: 2}},
	}
	comprovante, err := amb.reservas.CriarReserva(ctx, nova)
	require.NoError(t, err)
	confirmada, err := amb.reservas.ConfirmarReserva(ctx, comprovante.Reservas[0].ID, ficha.ID, amb.caixaID)
	require.NoError(t, err)
	require.NotNil(t, confirmada.VendaID)

	_, err = amb.vendas.AtualizarVenda(ctx, *confirmada.VendaID, 1)
	var vendaInvalida *apperror.InvalidSaleError
	assert.ErrorAs(t, err, &vendaInvalida)

	require.NoError(t, amb.vendas.ExcluirVenda(ctx, *confirmada.VendaID))

	linhas, err := amb.reservas.ListarReservasQRCode(ctx, qr.ID)
	require.NoError(t, err)
	require.Len(t, linhas, 1)
	assert.Equal(t, domain.StatusCancelada, linhas[0].Status)

	var jaProcessada *apperror.AlreadyProcessedError
	_, err = amb.reservas.FinalizarReserva(ctx, confirmada.ID)
	assert.ErrorAs(t, err, &jaProcessada)

	_, err = amb.reservas.CriarReserva(ctx, nova)
	assert.NoError(t, err)
}
