package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"

	"github.com/shopspring/decimal"
)

// paginar aplica page/limit (1-based) sobre uma fatia já ordenada.
func paginar[T any](itens []T, page, limit int) []T {
	if limit <= 0 {
		return itens
	}
	if page < 1 {
		page = 1
	}
	inicio := (page - 1) * limit
	if inicio >= len(itens) {
		return []T{}
	}
	fim := inicio + limit
	if fim > len(itens) {
		fim = len(itens)
	}
	return itens[inicio:fim]
}

// --- Caixas ---

type caixas struct{ d *dados }

func (r caixas) Criar(_ context.Context, c domain.Caixa) (domain.Caixa, error) {
	for _, existente := range r.d.caixas {
		if existente.Nome == c.Nome {
			return domain.Caixa{}, errors.NewConflictError(fmt.Sprintf("Já existe um caixa com o nome '%s'", c.Nome))
		}
	}
	r.d.caixas[c.ID] = c
	return c, nil
}

func (r caixas) BuscarPorID(_ context.Context, id string) (domain.Caixa, error) {
	c, ok := r.d.caixas[id]
	if !ok {
		return domain.Caixa{}, errors.NewNotFoundError(fmt.Sprintf("Caixa '%s' não encontrado", id))
	}
	return c, nil
}

func (r caixas) BuscarPorNome(_ context.Context, nome string) (domain.Caixa, error) {
	for _, c := range r.d.caixas {
		if c.Nome == nome {
			return c, nil
		}
	}
	return domain.Caixa{}, errors.NewNotFoundError(fmt.Sprintf("Caixa '%s' não encontrado", nome))
}

// --- Produtos ---

type produtos struct{ d *dados }

func (r produtos) Criar(_ context.Context, p domain.Produto) (domain.Produto, error) {
	r.d.produtos[p.ID] = p
	return p, nil
}

func (r produtos) BuscarPorID(_ context.Context, id string) (domain.Produto, error) {
	p, ok := r.d.produtos[id]
	if !ok {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", id))
	}
	return p, nil
}

func (r produtos) BuscarParaAtualizar(ctx context.Context, id string) (domain.Produto, error) {
	return r.BuscarPorID(ctx, id)
}

func (r produtos) ListarPorIDs(_ context.Context, ids []string) ([]domain.Produto, error) {
	out := []domain.Produto{}
	for _, id := range ids {
		if p, ok := r.d.produtos[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r produtos) Listar(_ context.Context, f domain.ProdutoFiltro) ([]domain.Produto, error) {
	out := []domain.Produto{}
	for _, p := range r.d.produtos {
		if f.Nome != "" && !strings.Contains(strings.ToLower(p.Nome), strings.ToLower(f.Nome)) {
			continue
		}
		if f.Categoria != "" && p.Categoria != f.Categoria {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return paginar(out, f.Page, f.Limit), nil
}

func (r produtos) Atualizar(_ context.Context, p domain.Produto) (domain.Produto, error) {
	atual, ok := r.d.produtos[p.ID]
	if !ok {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", p.ID))
	}
	// estoque só muda por AtualizarEstoque
	p.Estoque = atual.Estoque
	p.DataCriacao = atual.DataCriacao
	r.d.produtos[p.ID] = p
	return p, nil
}

func (r produtos) AtualizarEstoque(_ context.Context, id string, estoque int) error {
	p, ok := r.d.produtos[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", id))
	}
	if estoque < 0 {
		return errors.NewInternalError("violação de restrição: estoque negativo", nil)
	}
	p.Estoque = estoque
	r.d.produtos[id] = p
	return nil
}

// --- Movimentações ---

type movimentacoes struct{ d *dados }

func (r movimentacoes) Criar(_ context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	if _, ok := r.d.produtos[m.ProdutoID]; !ok {
		return domain.MovimentacaoEstoque{}, errors.NewInternalError("violação de chave estrangeira: produto", nil)
	}
	r.d.movs[m.ID] = m
	return m, nil
}

func (r movimentacoes) BuscarPorID(_ context.Context, id string) (domain.MovimentacaoEstoque, error) {
	m, ok := r.d.movs[id]
	if !ok {
		return domain.MovimentacaoEstoque{}, errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", id))
	}
	return m, nil
}

func (r movimentacoes) BuscarParaAtualizar(ctx context.Context, id string) (domain.MovimentacaoEstoque, error) {
	return r.BuscarPorID(ctx, id)
}

func (r movimentacoes) Atualizar(_ context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	atual, ok := r.d.movs[m.ID]
	if !ok {
		return domain.MovimentacaoEstoque{}, errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", m.ID))
	}
	atual.Quantidade = m.Quantidade
	atual.Tipo = m.Tipo
	r.d.movs[m.ID] = atual
	return atual, nil
}

func (r movimentacoes) Excluir(_ context.Context, id string) error {
	if _, ok := r.d.movs[id]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", id))
	}
	for _, v := range r.d.vendas {
		if v.MovimentacaoID == id {
			return errors.NewInternalError("violação de chave estrangeira: venda", nil)
		}
	}
	delete(r.d.movs, id)
	return nil
}

func (r movimentacoes) Listar(_ context.Context, f domain.MovimentacaoFiltro) ([]domain.MovimentacaoEstoque, error) {
	out := []domain.MovimentacaoEstoque{}
	for _, m := range r.d.movs {
		if f.ProdutoID != "" && m.ProdutoID != f.ProdutoID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.Equal(out[j].Data) {
			return out[i].ID < out[j].ID
		}
		return out[i].Data.After(out[j].Data)
	})
	return paginar(out, f.Page, f.Limit), nil
}

func (r movimentacoes) Totais(_ context.Context, produtoID string) (int, int, error) {
	var entradas, saidas int
	for _, m := range r.d.movs {
		if m.ProdutoID != produtoID {
			continue
		}
		if m.Tipo == domain.TipoEntrada {
			entradas += m.Quantidade
		} else {
			saidas += m.Quantidade
		}
	}
	return entradas, saidas, nil
}

// --- Fichas ---

type fichas struct{ d *dados }

func (r fichas) Criar(_ context.Context, f domain.Ficha) (domain.Ficha, error) {
	for _, existente := range r.d.fichas {
		if existente.Numero == f.Numero {
			return domain.Ficha{}, errors.NewConflictError(fmt.Sprintf("Já existe uma ficha com o número %s.", f.Numero))
		}
	}
	r.d.fichas[f.ID] = f
	return f, nil
}

func (r fichas) BuscarPorID(_ context.Context, id string) (domain.Ficha, error) {
	f, ok := r.d.fichas[id]
	if !ok {
		return domain.Ficha{}, errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", id))
	}
	return f, nil
}

func (r fichas) BuscarParaAtualizar(ctx context.Context, id string) (domain.Ficha, error) {
	return r.BuscarPorID(ctx, id)
}

func (r fichas) BuscarPorNumero(_ context.Context, numero string) (domain.Ficha, error) {
	for _, f := range r.d.fichas {
		if f.Numero == numero {
			return f, nil
		}
	}
	return domain.Ficha{}, errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", numero))
}

func (r fichas) AtualizarSaldo(_ context.Context, id string, saldo decimal.Decimal) error {
	f, ok := r.d.fichas[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", id))
	}
	if saldo.IsNegative() {
		return errors.NewInternalError("violação de restrição: saldo negativo", nil)
	}
	f.Saldo = saldo
	r.d.fichas[id] = f
	return nil
}

func (r fichas) MarcarExcluida(_ context.Context, id, caixaID string, quando time.Time) error {
	f, ok := r.d.fichas[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", id))
	}
	f.Ativo = false
	f.DeletadoEm = &quando
	f.DeletadoPorCaixaID = &caixaID
	r.d.fichas[id] = f
	return nil
}

// --- Vendas ---

type vendas struct{ d *dados }

// comMovimentacao preenche o agregado com a movimentação atual.
func (r vendas) comMovimentacao(v domain.Venda) domain.Venda {
	v.Movimentacao = r.d.movs[v.MovimentacaoID]
	return v
}

func (r vendas) Criar(_ context.Context, v domain.Venda) (domain.Venda, error) {
	if _, ok := r.d.movs[v.MovimentacaoID]; !ok {
		return domain.Venda{}, errors.NewInternalError("violação de chave estrangeira: movimentação", nil)
	}
	for _, existente := range r.d.vendas {
		if existente.MovimentacaoID == v.MovimentacaoID {
			return domain.Venda{}, errors.NewInvalidSaleError("Movimentação já vinculada a outra venda.")
		}
	}
	v.Movimentacao = domain.MovimentacaoEstoque{}
	r.d.vendas[v.ID] = v
	return r.comMovimentacao(v), nil
}

func (r vendas) BuscarPorID(_ context.Context, id string) (domain.Venda, error) {
	v, ok := r.d.vendas[id]
	if !ok {
		return domain.Venda{}, errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	return r.comMovimentacao(v), nil
}

func (r vendas) ExistePorMovimentacao(_ context.Context, movimentacaoID string) (bool, error) {
	for _, v := range r.d.vendas {
		if v.MovimentacaoID == movimentacaoID {
			return true, nil
		}
	}
	return false, nil
}

func (r vendas) AtualizarTotal(_ context.Context, id string, total decimal.Decimal) error {
	v, ok := r.d.vendas[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	v.Total = total
	r.d.vendas[id] = v
	return nil
}

func (r vendas) Excluir(_ context.Context, id string) error {
	if _, ok := r.d.vendas[id]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	delete(r.d.vendas, id)
	for rid, rp := range r.d.reservas {
		if rp.VendaID != nil && *rp.VendaID == id {
			rp.VendaID = nil
			r.d.reservas[rid] = rp
		}
	}
	return nil
}

func (r vendas) ListarPorFicha(_ context.Context, fichaID string) ([]domain.Venda, error) {
	out := []domain.Venda{}
	for _, v := range r.d.vendas {
		if v.FichaID == fichaID {
			out = append(out, r.comMovimentacao(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.Equal(out[j].Data) {
			return out[i].ID < out[j].ID
		}
		return out[i].Data.After(out[j].Data)
	})
	return out, nil
}

// --- Recargas ---

type recargas struct{ d *dados }

func (r recargas) Criar(_ context.Context, rec domain.Recarga) (domain.Recarga, error) {
	if !rec.Valor.IsPositive() {
		return domain.Recarga{}, errors.NewInternalError("violação de restrição: valor da recarga", nil)
	}
	r.d.recargas = append(r.d.recargas, rec)
	return rec, nil
}

func (r recargas) ListarPorFicha(_ context.Context, fichaID string) ([]domain.Recarga, error) {
	out := []domain.Recarga{}
	for i := len(r.d.recargas) - 1; i >= 0; i-- {
		if r.d.recargas[i].FichaID == fichaID {
			out = append(out, r.d.recargas[i])
		}
	}
	return out, nil
}

// --- Reservas ---

type reservas struct{ d *dados }

func (r reservas) Criar(_ context.Context, rp domain.ReservaProduto) (domain.ReservaProduto, error) {
	if rp.Status.Ativa() {
		for _, existente := range r.d.reservas {
			if existente.CPF == rp.CPF && existente.ProdutoID == rp.ProdutoID && existente.Status.Ativa() {
				return domain.ReservaProduto{}, errors.NewDuplicateReservationError(rp.ProdutoID)
			}
		}
	}
	r.d.reservas[rp.ID] = rp
	return rp, nil
}

func (r reservas) BuscarPorID(_ context.Context, id string) (domain.ReservaProduto, error) {
	rp, ok := r.d.reservas[id]
	if !ok {
		return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", id))
	}
	return rp, nil
}

func (r reservas) BuscarParaAtualizar(ctx context.Context, id string) (domain.ReservaProduto, error) {
	return r.BuscarPorID(ctx, id)
}

func (r reservas) BuscarPorVenda(_ context.Context, vendaID string) (domain.ReservaProduto, error) {
	for _, rp := range r.d.reservas {
		if rp.VendaID != nil && *rp.VendaID == vendaID {
			return rp, nil
		}
	}
	return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Nenhuma reserva vinculada à venda %s.", vendaID))
}

func (r reservas) ExisteAtiva(_ context.Context, cpf, produtoID string) (bool, error) {
	for _, rp := range r.d.reservas {
		if rp.CPF == cpf && rp.ProdutoID == produtoID && rp.Status.Ativa() {
			return true, nil
		}
	}
	return false, nil
}

func (r reservas) SomarAtivas(_ context.Context, produtoID string) (int, error) {
	total := 0
	for _, rp := range r.d.reservas {
		if rp.ProdutoID == produtoID && rp.Status.Ativa() {
			total += rp.Quantidade
		}
	}
	return total, nil
}

func (r reservas) filtrar(pred func(domain.ReservaProduto) bool) []domain.ReservaProduto {
	out := []domain.ReservaProduto{}
	for _, rp := range r.d.reservas {
		if pred(rp) {
			out = append(out, rp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataReserva.Equal(out[j].DataReserva) {
			return out[i].ID < out[j].ID
		}
		return out[i].DataReserva.After(out[j].DataReserva)
	})
	return out
}

func (r reservas) ListarPorCPF(_ context.Context, cpf string, status ...domain.StatusReserva) ([]domain.ReservaProduto, error) {
	return r.filtrar(func(rp domain.ReservaProduto) bool {
		if rp.CPF != cpf {
			return false
		}
		if len(status) == 0 {
			return true
		}
		for _, s := range status {
			if rp.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r reservas) ListarPorQRCode(_ context.Context, qrcodeID string) ([]domain.ReservaProduto, error) {
	return r.filtrar(func(rp domain.ReservaProduto) bool { return rp.QRCodeReservaID == qrcodeID }), nil
}

func (r reservas) Atualizar(_ context.Context, rp domain.ReservaProduto) (domain.ReservaProduto, error) {
	atual, ok := r.d.reservas[rp.ID]
	if !ok {
		return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", rp.ID))
	}
	if rp.Status.Ativa() {
		for id, outra := range r.d.reservas {
			if id != rp.ID && outra.CPF == atual.CPF && outra.ProdutoID == atual.ProdutoID && outra.Status.Ativa() {
				return domain.ReservaProduto{}, errors.NewDuplicateReservationError(atual.ProdutoID)
			}
		}
	}
	atual.Status = rp.Status
	atual.FichaID = rp.FichaID
	atual.VendaID = rp.VendaID
	atual.DataConfirmacao = rp.DataConfirmacao
	atual.Observacoes = rp.Observacoes
	r.d.reservas[rp.ID] = atual
	return atual, nil
}

// --- QR codes ---

type qrcodes struct{ d *dados }

func (r qrcodes) Criar(_ context.Context, q domain.QRCodeReserva) (domain.QRCodeReserva, error) {
	for _, existente := range r.d.qrcodes {
		if existente.Codigo == q.Codigo {
			return domain.QRCodeReserva{}, errors.NewConflictError(fmt.Sprintf("QR code %s já existe.", q.Codigo))
		}
	}
	q.ProdutoIDs = append([]string(nil), q.ProdutoIDs...)
	r.d.qrcodes[q.ID] = q
	return q, nil
}

func (r qrcodes) BuscarPorID(_ context.Context, id string) (domain.QRCodeReserva, error) {
	q, ok := r.d.qrcodes[id]
	if !ok {
		return domain.QRCodeReserva{}, errors.NewNotFoundError(fmt.Sprintf("QR code %s não encontrado.", id))
	}
	q.ProdutoIDs = append([]string(nil), q.ProdutoIDs...)
	return q, nil
}

func (r qrcodes) BuscarPorCodigo(ctx context.Context, codigo string) (domain.QRCodeReserva, error) {
	for id, q := range r.d.qrcodes {
		if q.Codigo == codigo {
			return r.BuscarPorID(ctx, id)
		}
	}
	return domain.QRCodeReserva{}, errors.NewNotFoundError(fmt.Sprintf("QR code %s não encontrado.", codigo))
}

func (r qrcodes) Atualizar(_ context.Context, q domain.QRCodeReserva) (domain.QRCodeReserva, error) {
	atual, ok := r.d.qrcodes[q.ID]
	if !ok {
		return domain.QRCodeReserva{}, errors.NewNotFoundError(fmt.Sprintf("QR code %s não encontrado.", q.ID))
	}
	atual.Descricao = q.Descricao
	atual.DataInicio = q.DataInicio
	atual.DataExpiracao = q.DataExpiracao
	atual.Ativo = q.Ativo
	atual.ProdutoIDs = append([]string(nil), q.ProdutoIDs...)
	r.d.qrcodes[q.ID] = atual
	return atual, nil
}
