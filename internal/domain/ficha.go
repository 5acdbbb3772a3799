package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ficha é uma conta pré-paga identificada por um número. O Saldo nunca fica
// negativo e só é alterado pelo livro de saldo (fichaservice).
type Ficha struct {
	ID                 string          `json:"id"`
	Numero             string          `json:"numero"`
	Saldo              decimal.Decimal `json:"saldo"`
	Ativo              bool            `json:"ativo"`
	DeletadoEm         *time.Time      `json:"deletado_em,omitempty"`
	DeletadoPorCaixaID *string         `json:"deletado_por_caixa_id,omitempty"`
	CriadoEm           time.Time       `json:"criado_em"`
}

// NovaFicha é o payload de criação de uma ficha.
type NovaFicha struct {
	Numero       string          `json:"numero" validate:"required,max=50"`
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"gte=0"`
	CaixaID      string          `json:"-"`
}

// FichaRepository é o contrato de persistência de fichas.
type FichaRepository interface {
	Criar(ctx context.Context, ficha Ficha) (Ficha, error)
	BuscarPorID(ctx context.Context, id string) (Ficha, error)
	BuscarParaAtualizar(ctx context.Context, id string) (Ficha, error)
	BuscarPorNumero(ctx context.Context, numero string) (Ficha, error)
	AtualizarSaldo(ctx context.Context, id string, saldo decimal.Decimal) error
	MarcarExcluida(ctx context.Context, id, caixaID string, quando time.Time) error
}
