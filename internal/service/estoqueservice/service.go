package estoqueservice

import (
	"context"
	"fmt"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"

	"github.com/google/uuid"
)

const (
	paginaPadrao = 20
	paginaMaxima = 100
)

// Service é o livro de estoque: o único componente que escreve Produto.Estoque.
// Os métodos que recebem um domain.Tx rodam dentro da transação do chamador;
// os demais abrem a sua própria.
type Service struct {
	txm    domain.TxManager
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(txm domain.TxManager, logger logger.Logger) *Service {
	return &Service{txm: txm, logger: logger}
}

func (s *Service) traduzir(msg string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}

// Registrar grava uma movimentação e aplica o seu efeito ao estoque do produto.
func (s *Service) Registrar(ctx context.Context, tx domain.Tx, produtoID string, tipo domain.TipoMovimentacao, quantidade int, caixaID string) (domain.MovimentacaoEstoque, error) {
	if !tipo.Valido() {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError(fmt.Sprintf("Tipo de movimentação inválido: %q.", tipo))
	}
	if quantidade <= 0 {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}
	if caixaID == "" {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError("O caixa da movimentação é obrigatório.")
	}

	produto, err := tx.Produtos().BuscarParaAtualizar(ctx, produtoID)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}

	if tipo == domain.TipoSaida && produto.Estoque < quantidade {
		s.logger.Warn("Saída recusada por estoque insuficiente.", map[string]interface{}{
			"produto_id": produtoID, "estoque": produto.Estoque, "quantidade": quantidade,
		})
		return domain.MovimentacaoEstoque{}, apperror.NewInsufficientStockError(
			fmt.Sprintf("Estoque insuficiente para realizar movimentação de saída de %s. Disponível: %d", produto.Nome, produto.Estoque),
			produtoID, produto.Estoque, quantidade)
	}
	novoEstoque := produto.Estoque + tipo.Efeito(quantidade)
	if novoEstoque < 0 {
		return domain.MovimentacaoEstoque{}, apperror.NewInsufficientStockError(
			"Estoque insuficiente para realizar a movimentação.", produtoID, produto.Estoque, quantidade)
	}

	mov, err := tx.Movimentacoes().Criar(ctx, domain.MovimentacaoEstoque{
		ID:         uuid.NewString(),
		ProdutoID:  produtoID,
		CaixaID:    caixaID,
		Quantidade: quantidade,
		Tipo:       tipo,
		Data:       time.Now(),
	})
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}

	if err := tx.Produtos().AtualizarEstoque(ctx, produtoID, novoEstoque); err != nil {
		return domain.MovimentacaoEstoque{}, err
	}

	s.logger.Debug("Movimentação aplicada ao estoque.", map[string]interface{}{
		"movimentacao_id": mov.ID, "produto_id": produtoID, "estoque": novoEstoque,
	})
	return mov, nil
}

// Atualizar altera quantidade e/ou tipo de uma movimentação existente.
// O estoque resultante é estoque - efeito(antigo) + efeito(novo) e não pode ficar negativo.
func (s *Service) Atualizar(ctx context.Context, tx domain.Tx, movimentacaoID string, novaQuantidade int, novoTipo domain.TipoMovimentacao) (domain.MovimentacaoEstoque, error) {
	if novaQuantidade <= 0 {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}

	mov, err := tx.Movimentacoes().BuscarParaAtualizar(ctx, movimentacaoID)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	if novoTipo == "" {
		novoTipo = mov.Tipo
	}
	if !novoTipo.Valido() {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError(fmt.Sprintf("Tipo de movimentação inválido: %q.", novoTipo))
	}

	produto, err := tx.Produtos().BuscarParaAtualizar(ctx, mov.ProdutoID)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}

	novoEstoque := produto.Estoque - mov.Tipo.Efeito(mov.Quantidade) + novoTipo.Efeito(novaQuantidade)
	if novoEstoque < 0 {
		msg := "Estoque insuficiente para aumentar a movimentação de saída."
		if mov.Tipo == domain.TipoEntrada && novoTipo == domain.TipoEntrada {
			msg = "Estoque insuficiente para reduzir a movimentação de entrada."
		} else if mov.Tipo != novoTipo {
			msg = "Estoque insuficiente para inverter o tipo da movimentação."
		}
		s.logger.Warn("Atualização de movimentação recusada.", map[string]interface{}{
			"movimentacao_id": movimentacaoID, "estoque": produto.Estoque, "estoque_resultante": novoEstoque,
		})
		return domain.MovimentacaoEstoque{}, apperror.NewInsufficientStockError(msg, produto.ID, produto.Estoque, novaQuantidade)
	}

	mov.Quantidade = novaQuantidade
	mov.Tipo = novoTipo
	atualizada, err := tx.Movimentacoes().Atualizar(ctx, mov)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	if err := tx.Produtos().AtualizarEstoque(ctx, produto.ID, novoEstoque); err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	return atualizada, nil
}

// Excluir remove a movimentação revertendo o seu efeito.
// Uma entrada cujo estoque já foi consumido não pode ser apagada.
func (s *Service) Excluir(ctx context.Context, tx domain.Tx, movimentacaoID string) (domain.MovimentacaoEstoque, error) {
	mov, err := tx.Movimentacoes().BuscarParaAtualizar(ctx, movimentacaoID)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	produto, err := tx.Produtos().BuscarParaAtualizar(ctx, mov.ProdutoID)
	if err != nil {
		return domain.MovimentacaoEstoque{}, err
	}

	novoEstoque := produto.Estoque - mov.Tipo.Efeito(mov.Quantidade)
	if novoEstoque < 0 {
		return domain.MovimentacaoEstoque{}, apperror.NewInsufficientStockError(
			"Estoque insuficiente para apagar movimentação de entrada.", produto.ID, produto.Estoque, mov.Quantidade)
	}

	if err := tx.Movimentacoes().Excluir(ctx, mov.ID); err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	if err := tx.Produtos().AtualizarEstoque(ctx, produto.ID, novoEstoque); err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	return mov, nil
}

// RegistrarMovimentacao registra uma movimentação avulsa (fora de venda).
func (s *Service) RegistrarMovimentacao(ctx context.Context, nova domain.NovaMovimentacao) (domain.MovimentacaoEstoque, error) {
	s.logger.Debug("Iniciando registro de movimentação no serviço.", map[string]interface{}{
		"produto_id": nova.ProdutoID, "tipo": nova.Tipo, "quantidade": nova.Quantidade,
	})

	var mov domain.MovimentacaoEstoque
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		mov, err = s.Registrar(ctx, tx, nova.ProdutoID, nova.Tipo, nova.Quantidade, nova.CaixaID)
		return err
	})
	if err != nil {
		return domain.MovimentacaoEstoque{}, s.traduzir("Falha interna ao registrar movimentação.", err)
	}

	s.logger.Info("Movimentação registrada com sucesso.", map[string]interface{}{"movimentacao_id": mov.ID})
	return mov, nil
}

func exigirSemVenda(ctx context.Context, tx domain.Tx, movimentacaoID string) error {
	vinculada, err := tx.Vendas().ExistePorMovimentacao(ctx, movimentacaoID)
	if err != nil {
		return err
	}
	if vinculada {
		return apperror.NewInvalidSaleError("Movimentação vinculada a uma venda: altere ou exclua pela venda.")
	}
	return nil
}

// AtualizarMovimentacao edita uma movimentação avulsa.
func (s *Service) AtualizarMovimentacao(ctx context.Context, id string, upd domain.AtualizacaoMovimentacao) (domain.MovimentacaoEstoque, error) {
	s.logger.Debug("Iniciando atualização de movimentação.", map[string]interface{}{"movimentacao_id": id})

	var mov domain.MovimentacaoEstoque
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if err := exigirSemVenda(ctx, tx, id); err != nil {
			return err
		}
		var err error
		mov, err = s.Atualizar(ctx, tx, id, upd.Quantidade, upd.Tipo)
		return err
	})
	if err != nil {
		return domain.MovimentacaoEstoque{}, s.traduzir("Falha interna ao atualizar movimentação.", err)
	}

	s.logger.Info("Movimentação atualizada com sucesso.", map[string]interface{}{"movimentacao_id": id})
	return mov, nil
}

// ExcluirMovimentacao apaga uma movimentação avulsa.
func (s *Service) ExcluirMovimentacao(ctx context.Context, id string) error {
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if err := exigirSemVenda(ctx, tx, id); err != nil {
			return err
		}
		_, err := s.Excluir(ctx, tx, id)
		return err
	})
	if err != nil {
		return s.traduzir("Falha interna ao excluir movimentação.", err)
	}

	s.logger.Info("Movimentação excluída com sucesso.", map[string]interface{}{"movimentacao_id": id})
	return nil
}

func (s *Service) BuscarMovimentacao(ctx context.Context, id string) (domain.MovimentacaoEstoque, error) {
	var mov domain.MovimentacaoEstoque
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		mov, err = tx.Movimentacoes().BuscarPorID(ctx, id)
		return err
	})
	if err != nil {
		return domain.MovimentacaoEstoque{}, s.traduzir("Falha interna ao buscar movimentação.", err)
	}
	return mov, nil
}

func normalizarPagina(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = paginaPadrao
	}
	if limit > paginaMaxima {
		limit = paginaMaxima
	}
	return page, limit
}

func (s *Service) ListarMovimentacoes(ctx context.Context, filtro domain.MovimentacaoFiltro) ([]domain.MovimentacaoEstoque, error) {
	filtro.Page, filtro.Limit = normalizarPagina(filtro.Page, filtro.Limit)
	if filtro.Tipo != "" && !filtro.Tipo.Valido() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Tipo de movimentação inválido: %q.", filtro.Tipo))
	}

	var movs []domain.MovimentacaoEstoque
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		movs, err = tx.Movimentacoes().Listar(ctx, filtro)
		return err
	})
	if err != nil {
		return nil, s.traduzir("Falha interna ao listar movimentações.", err)
	}
	return movs, nil
}
