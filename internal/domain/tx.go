package domain

import "context"

// Tx expõe os repositórios vinculados a uma única transação.
// Todas as leituras e escritas feitas por eles são confirmadas ou descartadas juntas.
type Tx interface {
	Produtos() ProdutoRepository
	Movimentacoes() MovimentacaoRepository
	Fichas() FichaRepository
	Vendas() VendaRepository
	Recargas() RecargaRepository
	Reservas() ReservaRepository
	QRCodes() QRCodeRepository
	Caixas() CaixaRepository
}

// TxManager abre uma transação, executa fn e faz commit se fn retornar nil.
// Qualquer erro (ou panic) descarta todas as escritas feitas dentro de fn.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
