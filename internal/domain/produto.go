package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Unidade é a unidade de medida de um produto.
type Unidade string

const (
	UnidadeUnidade    Unidade = "UN"
	UnidadePacote     Unidade = "PCT"
	UnidadeLitros     Unidade = "L"
	UnidadeQuilograma Unidade = "KG"
)

// Valida retorna true se a unidade é uma das unidades conhecidas.
func (u Unidade) Valida() bool {
	switch u {
	case UnidadeUnidade, UnidadePacote, UnidadeLitros, UnidadeQuilograma:
		return true
	}
	return false
}

// LimiteReservaPadrao é o limite de itens por reserva quando o produto não define outro.
const LimiteReservaPadrao = 2

// Produto é a entidade central do catálogo.
//
// Estoque é um contador desnormalizado: deve sempre ser igual ao líquido
// (entradas - saídas) das movimentações persistidas do produto, nunca negativo,
// e só é escrito pelo livro de estoque (estoqueservice).
//
// QuantidadeReservaDisponivel é um pool separado, reservado para reservas
// antecipadas; reservas nunca tocam Estoque até a conversão em venda.
type Produto struct {
	ID                          string          `json:"id"`
	Nome                        string          `json:"nome"`
	Unidade                     Unidade         `json:"unidade"`
	Preco                       decimal.Decimal `json:"preco"`
	Estoque                     int             `json:"estoque"`
	Categoria                   string          `json:"categoria"`
	DisponivelReserva           bool            `json:"disponivel_reserva"`
	LimiteReserva               int             `json:"limite_reserva"`
	QuantidadeReservaDisponivel int             `json:"quantidade_reserva_disponivel"`
	DataCriacao                 time.Time       `json:"data_criacao"`
}

// NovoProduto é o payload de criação de produto.
// EstoqueInicial, quando maior que zero, vira uma movimentação de entrada.
type NovoProduto struct {
	Nome                        string          `json:"nome" validate:"required,max=200"`
	Unidade                     Unidade         `json:"unidade" validate:"required,oneof=UN PCT L KG"`
	Preco                       decimal.Decimal `json:"preco" validate:"gte=0"`
	Categoria                   string          `json:"categoria" validate:"max=100"`
	EstoqueInicial              int             `json:"estoque_inicial" validate:"gte=0"`
	DisponivelReserva           bool            `json:"disponivel_reserva"`
	LimiteReserva               int             `json:"limite_reserva" validate:"gte=0"`
	QuantidadeReservaDisponivel int             `json:"quantidade_reserva_disponivel" validate:"gte=0"`
	CaixaID                     string          `json:"-"`
}

// AtualizacaoProduto é o payload de atualização parcial de produto.
// Estoque, quando informado, é o estoque alvo: a diferença vira uma movimentação.
type AtualizacaoProduto struct {
	ID                          string           `json:"-"`
	Nome                        *string          `json:"nome" validate:"omitempty,max=200"`
	Unidade                     *Unidade         `json:"unidade" validate:"omitempty,oneof=UN PCT L KG"`
	Preco                       *decimal.Decimal `json:"preco"`
	Categoria                   *string          `json:"categoria" validate:"omitempty,max=100"`
	Estoque                     *int             `json:"estoque" validate:"omitempty,gte=0"`
	DisponivelReserva           *bool            `json:"disponivel_reserva"`
	LimiteReserva               *int             `json:"limite_reserva" validate:"omitempty,gt=0"`
	QuantidadeReservaDisponivel *int             `json:"quantidade_reserva_disponivel" validate:"omitempty,gte=0"`
	CaixaID                     string           `json:"-"`
}

// ProdutoFiltro define os parâmetros de busca e paginação de produtos.
type ProdutoFiltro struct {
	Page      int
	Limit     int
	Nome      string
	Categoria string
}

// ProdutoRepository é o contrato de persistência de produtos.
// Atualizar nunca altera a coluna de estoque; para isso existe AtualizarEstoque.
type ProdutoRepository interface {
	Criar(ctx context.Context, produto Produto) (Produto, error)
	BuscarPorID(ctx context.Context, id string) (Produto, error)
	// BuscarParaAtualizar bloqueia a linha do produto até o fim da transação.
	BuscarParaAtualizar(ctx context.Context, id string) (Produto, error)
	ListarPorIDs(ctx context.Context, ids []string) ([]Produto, error)
	Listar(ctx context.Context, filtro ProdutoFiltro) ([]Produto, error)
	Atualizar(ctx context.Context, produto Produto) (Produto, error)
	AtualizarEstoque(ctx context.Context, id string, estoque int) error
}
