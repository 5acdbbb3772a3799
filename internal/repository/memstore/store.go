// Package memstore é uma implementação em memória de domain.TxManager,
// usada em desenvolvimento (STORE_DRIVER=memory) e nos testes de serviço.
package memstore

import (
	"context"
	"sync"

	"goficha/internal/domain"
)

// Memory serializa as transações com um mutex. Cada WithinTx trabalha sobre
// uma cópia dos dados, que só substitui o estado quando fn retorna nil.
type Memory struct {
	mu   sync.Mutex
	data *dados
}

type dados struct {
	caixas   map[string]domain.Caixa
	produtos map[string]domain.Produto
	movs     map[string]domain.MovimentacaoEstoque
	fichas   map[string]domain.Ficha
	vendas   map[string]domain.Venda
	recargas []domain.Recarga
	reservas map[string]domain.ReservaProduto
	qrcodes  map[string]domain.QRCodeReserva
}

func novosDados() *dados {
	return &dados{
		caixas:   map[string]domain.Caixa{},
		produtos: map[string]domain.Produto{},
		movs:     map[string]domain.MovimentacaoEstoque{},
		fichas:   map[string]domain.Ficha{},
		vendas:   map[string]domain.Venda{},
		reservas: map[string]domain.ReservaProduto{},
		qrcodes:  map[string]domain.QRCodeReserva{},
	}
}

func copiar[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *dados) clone() *dados {
	c := &dados{
		caixas:   copiar(d.caixas),
		produtos: copiar(d.produtos),
		movs:     copiar(d.movs),
		fichas:   copiar(d.fichas),
		vendas:   copiar(d.vendas),
		recargas: append([]domain.Recarga(nil), d.recargas...),
		reservas: copiar(d.reservas),
		qrcodes:  make(map[string]domain.QRCodeReserva, len(d.qrcodes)),
	}
	for k, q := range d.qrcodes {
		q.ProdutoIDs = append([]string(nil), q.ProdutoIDs...)
		c.qrcodes[k] = q
	}
	return c
}

func New() *Memory {
	return &Memory{data: novosDados()}
}

// WithinTx executa fn com acesso exclusivo ao store.
// fn não deve chamar WithinTx de novo (o mutex não é reentrante).
func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := m.data.clone()
	if err := fn(ctx, &tx{d: snapshot}); err != nil {
		return err
	}
	m.data = snapshot
	return nil
}

type tx struct {
	d *dados
}

func (t *tx) Produtos() domain.ProdutoRepository           { return produtos{t.d} }
func (t *tx) Movimentacoes() domain.MovimentacaoRepository { return movimentacoes{t.d} }
func (t *tx) Fichas() domain.FichaRepository               { return fichas{t.d} }
func (t *tx) Vendas() domain.VendaRepository               { return vendas{t.d} }
func (t *tx) Recargas() domain.RecargaRepository           { return recargas{t.d} }
func (t *tx) Reservas() domain.ReservaRepository           { return reservas{t.d} }
func (t *tx) QRCodes() domain.QRCodeRepository             { return qrcodes{t.d} }
func (t *tx) Caixas() domain.CaixaRepository               { return caixas{t.d} }
