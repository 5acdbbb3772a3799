package domain

import (
	"context"
	"time"
)

// TipoMovimentacao indica o sentido de uma movimentação de estoque.
type TipoMovimentacao string

const (
	TipoEntrada TipoMovimentacao = "E"
	TipoSaida   TipoMovimentacao = "S"
)

// Valido retorna true para Entrada ou Saída.
func (t TipoMovimentacao) Valido() bool {
	return t == TipoEntrada || t == TipoSaida
}

// Efeito retorna o efeito assinado de quantidade unidades deste tipo sobre o estoque.
func (t TipoMovimentacao) Efeito(quantidade int) int {
	if t == TipoSaida {
		return -quantidade
	}
	return quantidade
}

// MovimentacaoEstoque registra uma mudança de estoque de um produto.
type MovimentacaoEstoque struct {
	ID         string           `json:"id"`
	ProdutoID  string           `json:"produto_id"`
	CaixaID    string           `json:"caixa_id"`
	Quantidade int              `json:"quantidade"`
	Tipo       TipoMovimentacao `json:"tipo"`
	Data       time.Time        `json:"data"`
}

// NovaMovimentacao é o payload para registrar uma movimentação avulsa.
type NovaMovimentacao struct {
	ProdutoID  string           `json:"produto_id" validate:"required,uuid"`
	Tipo       TipoMovimentacao `json:"tipo" validate:"required,oneof=E S"`
	Quantidade int              `json:"quantidade" validate:"required,gt=0"`
	CaixaID    string           `json:"-"`
}

// AtualizacaoMovimentacao é o payload para editar quantidade e/ou tipo.
type AtualizacaoMovimentacao struct {
	Quantidade int              `json:"quantidade" validate:"required,gt=0"`
	Tipo       TipoMovimentacao `json:"tipo" validate:"omitempty,oneof=E S"`
}

// MovimentacaoFiltro define filtros para listagem de movimentações.
type MovimentacaoFiltro struct {
	ProdutoID string
	Tipo      TipoMovimentacao
	Page      int
	Limit     int
}

// Reconciliacao compara o contador desnormalizado com o líquido do livro.
type Reconciliacao struct {
	ProdutoID string `json:"produto_id"`
	Estoque   int    `json:"estoque"`
	Entradas  int    `json:"entradas"`
	Saidas    int    `json:"saidas"`
	Liquido   int    `json:"liquido"`
	Diferenca int    `json:"diferenca"`
}

// MovimentacaoRepository é o contrato de persistência das movimentações.
type MovimentacaoRepository interface {
	Criar(ctx context.Context, mov MovimentacaoEstoque) (MovimentacaoEstoque, error)
	BuscarPorID(ctx context.Context, id string) (MovimentacaoEstoque, error)
	BuscarParaAtualizar(ctx context.Context, id string) (MovimentacaoEstoque, error)
	Atualizar(ctx context.Context, mov MovimentacaoEstoque) (MovimentacaoEstoque, error)
	Excluir(ctx context.Context, id string) error
	Listar(ctx context.Context, filtro MovimentacaoFiltro) ([]MovimentacaoEstoque, error)
	// Totais retorna a soma das entradas e das saídas persistidas do produto.
	Totais(ctx context.Context, produtoID string) (entradas int, saidas int, err error)
}
