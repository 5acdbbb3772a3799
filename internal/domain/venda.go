package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Venda vincula uma movimentação de saída a uma ficha.
// PrecoUnitario é capturado no momento da venda e Total = PrecoUnitario * quantidade.
type Venda struct {
	ID             string              `json:"id"`
	FichaID        string              `json:"ficha_id"`
	MovimentacaoID string              `json:"movimentacao_id"`
	Movimentacao   MovimentacaoEstoque `json:"movimentacao"`
	PrecoUnitario  decimal.Decimal     `json:"preco_unitario"`
	Total          decimal.Decimal     `json:"total"`
	Data           time.Time           `json:"data"`
}

// NovaVenda é o payload de registro de uma venda.
type NovaVenda struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,gt=0"`
	FichaID    string `json:"ficha_id" validate:"required,uuid"`
	CaixaID    string `json:"-"`
}

// AtualizacaoVenda é o payload de ajuste de quantidade de uma venda.
type AtualizacaoVenda struct {
	Quantidade int `json:"quantidade" validate:"required,gt=0"`
}

// VendaRepository é o contrato de persistência de vendas.
// As leituras já trazem a movimentação vinculada preenchida.
type VendaRepository interface {
	Criar(ctx context.Context, venda Venda) (Venda, error)
	BuscarPorID(ctx context.Context, id string) (Venda, error)
	ExistePorMovimentacao(ctx context.Context, movimentacaoID string) (bool, error)
	AtualizarTotal(ctx context.Context, id string, total decimal.Decimal) error
	Excluir(ctx context.Context, id string) error
	ListarPorFicha(ctx context.Context, fichaID string) ([]Venda, error)
}
