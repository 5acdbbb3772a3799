package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Recarga é o registro de auditoria de um crédito aplicado a uma ficha.
type Recarga struct {
	ID         string          `json:"id"`
	FichaID    string          `json:"ficha_id"`
	Valor      decimal.Decimal `json:"valor"`
	CaixaID    *string         `json:"caixa_id,omitempty"`
	ProdutoID  *string         `json:"produto_id,omitempty"`
	Observacao string          `json:"observacao,omitempty"`
	Data       time.Time       `json:"data"`
}

// NovaRecarga é o payload de uma recarga de saldo.
type NovaRecarga struct {
	Valor      decimal.Decimal `json:"valor"`
	ProdutoID  string          `json:"produto_id,omitempty" validate:"omitempty,uuid"`
	Observacao string          `json:"observacao,omitempty" validate:"max=255"`
	CaixaID    string          `json:"-"`
}

// RecargaRepository é o contrato de persistência do histórico de recargas.
type RecargaRepository interface {
	Criar(ctx context.Context, recarga Recarga) (Recarga, error)
	ListarPorFicha(ctx context.Context, fichaID string) ([]Recarga, error)
}
