package fichaservice_test

import (
	"context"
	"testing"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/repository/memstore"
	"goficha/internal/service/fichaservice"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func novoServico(t *testing.T) (*fichaservice.Service, *memstore.Memory) {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		_, err := tx.Caixas().Criar(ctx, domain.Caixa{ID: "caixa-1", Nome: "Caixa Principal"})
		return err
	}))
	return fichaservice.NewService(store, logger.NewLogger("error")), store
}

func TestCriarFicha_SaldoInicialViraRecarga(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	ficha, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: " 42 ", SaldoInicial: dec("25.50"), CaixaID: "caixa-1"})
	require.NoError(t, err)
	assert.Equal(t, "42", ficha.Numero)
	assert.True(t, ficha.Saldo.Equal(dec("25.50")))
	assert.True(t, ficha.Ativo)

	recargas, err := svc.ListarRecargas(ctx, ficha.ID)
	require.NoError(t, err)
	require.Len(t, recargas, 1)
	assert.Equal(t, "Saldo inicial", recargas[0].Observacao)
	require.NotNil(t, recargas[0].CaixaID)
	assert.Equal(t, "caixa-1", *recargas[0].CaixaID)
}

func TestCriarFicha_NumeroDuplicado(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	_, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: "7"})
	require.NoError(t, err)
	_, err = svc.CriarFicha(ctx, domain.NovaFicha{Numero: "7"})
	var conflito *apperror.ConflictError
	assert.ErrorAs(t, err, &conflito)
}

func TestRecarregarFicha(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()
	ficha, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: "1", SaldoInicial: dec("10")})
	require.NoError(t, err)

	t.Run("valor zero é recusado", func(t *testing.T) {
		_, err := svc.RecarregarFicha(ctx, ficha.ID, domain.NovaRecarga{Valor: decimal.Zero})
		var valorErr *apperror.InvalidAmountError
		assert.ErrorAs(t, err, &valorErr)
	})

	t.Run("caixa desconhecido não impede a recarga", func(t *testing.T) {
		atual, err := svc.RecarregarFicha(ctx, ficha.ID, domain.NovaRecarga{Valor: dec("5.25"), CaixaID: "caixa-fantasma"})
		require.NoError(t, err)
		assert.True(t, atual.Saldo.Equal(dec("15.25")))

		recargas, err := svc.ListarRecargas(ctx, ficha.ID)
		require.NoError(t, err)
		require.Len(t, recargas, 2)
		for _, r := range recargas {
			assert.Nil(t, r.CaixaID)
		}
	})
}

func TestDebitar_SaldoNuncaNegativo(t *testing.T) {
	svc, store := novoServico(t)
	ctx := context.Background()
	ficha, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: "9", SaldoInicial: dec("10.00")})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		_, err := svc.Debitar(ctx, tx, ficha.ID, dec("10.01"))
		return err
	})
	var saldoErr *apperror.InsufficientBalanceError
	require.ErrorAs(t, err, &saldoErr)
	assert.Equal(t, "Saldo insuficiente na ficha. Saldo atual: 10.00, necessário: 10.01", saldoErr.Error())

	err = store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		f, err := svc.Debitar(ctx, tx, ficha.ID, dec("10.00"))
		if err != nil {
			return err
		}
		assert.True(t, f.Saldo.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestExcluirFicha(t *testing.T) {
	svc, store := novoServico(t)
	ctx := context.Background()
	ficha, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: "3", SaldoInicial: dec("4")})
	require.NoError(t, err)

	var naoAutorizado *apperror.UnauthorizedError
	assert.ErrorAs(t, svc.ExcluirFicha(ctx, ficha.ID, ""), &naoAutorizado)

	require.NoError(t, svc.ExcluirFicha(ctx, ficha.ID, "caixa-1"))

	excluida, err := svc.BuscarFicha(ctx, ficha.ID)
	require.NoError(t, err)
	assert.False(t, excluida.Ativo)
	require.NotNil(t, excluida.DeletadoEm)
	require.NotNil(t, excluida.DeletadoPorCaixaID)
	assert.Equal(t, "caixa-1", *excluida.DeletadoPorCaixaID)

	var conflito *apperror.ConflictError
	assert.ErrorAs(t, svc.ExcluirFicha(ctx, ficha.ID, "caixa-1"), &conflito)

	// ficha excluída não aceita débitos
	err = store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		_, err := svc.Debitar(ctx, tx, ficha.ID, dec("1"))
		return err
	})
	var validacao *apperror.ValidationError
	assert.ErrorAs(t, err, &validacao)
}

func TestBuscarFichaPorNumero(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()
	criada, err := svc.CriarFicha(ctx, domain.NovaFicha{Numero: "A-10"})
	require.NoError(t, err)

	achada, err := svc.BuscarFichaPorNumero(ctx, "A-10")
	require.NoError(t, err)
	assert.Equal(t, criada.ID, achada.ID)

	_, err = svc.BuscarFichaPorNumero(ctx, "nao-existe")
	var naoEncontrado *apperror.NotFoundError
	assert.ErrorAs(t, err, &naoEncontrado)
}
