package vendaservice

import (
	"context"
	"strings"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LivroEstoque é o que a venda precisa do livro de estoque.
type LivroEstoque interface {
	Registrar(ctx context.Context, tx domain.Tx, produtoID string, tipo domain.TipoMovimentacao, quantidade int, caixaID string) (domain.MovimentacaoEstoque, error)
	Atualizar(ctx context.Context, tx domain.Tx, movimentacaoID string, novaQuantidade int, novoTipo domain.TipoMovimentacao) (domain.MovimentacaoEstoque, error)
	Excluir(ctx context.Context, tx domain.Tx, movimentacaoID string) (domain.MovimentacaoEstoque, error)
}

// LivroSaldo é o que a venda precisa do livro de saldo.
type LivroSaldo interface {
	Debitar(ctx context.Context, tx domain.Tx, fichaID string, valor decimal.Decimal) (domain.Ficha, error)
	Creditar(ctx context.Context, tx domain.Tx, fichaID string, valor decimal.Decimal) (domain.Ficha, error)
}

// Service acopla uma saída de estoque a um débito de ficha.
// Toda operação roda numa única transação: ou as três escritas acontecem, ou nenhuma.
type Service struct {
	txm     domain.TxManager
	estoque LivroEstoque
	saldo   LivroSaldo
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Vendas.
func NewService(txm domain.TxManager, estoque LivroEstoque, saldo LivroSaldo, logger logger.Logger) *Service {
	return &Service{txm: txm, estoque: estoque, saldo: saldo, logger: logger}
}

func (s *Service) traduzir(msg string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}

// Validar garante que a movimentação da venda é uma saída.
func Validar(venda domain.Venda) error {
	if venda.Movimentacao.Tipo != domain.TipoSaida {
		return apperror.NewInvalidSaleError("A movimentação de uma venda deve ser do tipo saída.")
	}
	if venda.Movimentacao.Quantidade <= 0 {
		return apperror.NewInvalidSaleError("A venda deve ter quantidade maior que zero.")
	}
	return nil
}

// reservaDaVenda devolve, bloqueada, a reserva convertida na venda, se houver.
func reservaDaVenda(ctx context.Context, tx domain.Tx, vendaID string) (domain.ReservaProduto, bool, error) {
	rp, err := tx.Reservas().BuscarPorVenda(ctx, vendaID)
	var naoEncontrada *apperror.NotFoundError
	if apperror.As(err, &naoEncontrada) {
		return domain.ReservaProduto{}, false, nil
	}
	if err != nil {
		return domain.ReservaProduto{}, false, err
	}
	return rp, true, nil
}

// Criar registra a venda dentro da transação do chamador:
// saída de estoque, débito do total na ficha e o registro da venda.
func (s *Service) Criar(ctx context.Context, tx domain.Tx, produtoID string, quantidade int, caixaID, fichaID string) (domain.Venda, error) {
	if fichaID == "" {
		return domain.Venda{}, apperror.NewValidationError("A ficha da venda é obrigatória.")
	}

	mov, err := s.estoque.Registrar(ctx, tx, produtoID, domain.TipoSaida, quantidade, caixaID)
	if err != nil {
		return domain.Venda{}, err
	}

	// o produto já está bloqueado pela movimentação
	produto, err := tx.Produtos().BuscarPorID(ctx, produtoID)
	if err != nil {
		return domain.Venda{}, err
	}
	total := produto.Preco.Mul(decimal.NewFromInt(int64(quantidade))).Round(2)

	if _, err := s.saldo.Debitar(ctx, tx, fichaID, total); err != nil {
		return domain.Venda{}, err
	}

	venda := domain.Venda{
		ID:             uuid.NewString(),
		FichaID:        fichaID,
		MovimentacaoID: mov.ID,
		Movimentacao:   mov,
		PrecoUnitario:  produto.Preco,
		Total:          total,
		Data:           mov.Data,
	}
	if err := Validar(venda); err != nil {
		return domain.Venda{}, err
	}

	criada, err := tx.Vendas().Criar(ctx, venda)
	if err != nil {
		return domain.Venda{}, err
	}
	criada.Movimentacao = mov
	return criada, nil
}

// CriarVenda registra uma venda a partir do caixa.
func (s *Service) CriarVenda(ctx context.Context, nova domain.NovaVenda) (domain.Venda, error) {
	s.logger.Debug("Iniciando registro de venda no serviço.", map[string]interface{}{
		"produto_id": nova.ProdutoID, "ficha_id": nova.FichaID, "quantidade": nova.Quantidade,
	})

	var venda domain.Venda
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		venda, err = s.Criar(ctx, tx, nova.ProdutoID, nova.Quantidade, nova.CaixaID, nova.FichaID)
		return err
	})
	if err != nil {
		return domain.Venda{}, s.traduzir("Falha interna ao registrar venda.", err)
	}

	s.logger.Info("Venda registrada com sucesso.", map[string]interface{}{
		"venda_id": venda.ID, "total": venda.Total.StringFixed(2),
	})
	return venda, nil
}

// AtualizarVenda altera a quantidade: movimentação, total e saldo mudam juntos.
// O total é recalculado com o preço unitário capturado na venda.
// Vendas originadas de reserva não mudam de quantidade: a reserva guarda a mesma quantidade.
func (s *Service) AtualizarVenda(ctx context.Context, vendaID string, novaQuantidade int) (domain.Venda, error) {
	s.logger.Debug("Iniciando atualização de venda.", map[string]interface{}{"venda_id": vendaID, "quantidade": novaQuantidade})

	var venda domain.Venda
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		venda, err = tx.Vendas().BuscarPorID(ctx, vendaID)
		if err != nil {
			return err
		}
		if err := Validar(venda); err != nil {
			return err
		}
		if _, vinculada, err := reservaDaVenda(ctx, tx, venda.ID); err != nil {
			return err
		} else if vinculada {
			return apperror.NewInvalidSaleError("Venda originada de reserva não pode ter a quantidade alterada. Estorne a venda e registre uma nova.")
		}

		mov, err := s.estoque.Atualizar(ctx, tx, venda.MovimentacaoID, novaQuantidade, domain.TipoSaida)
		if err != nil {
			return err
		}

		novoTotal := venda.PrecoUnitario.Mul(decimal.NewFromInt(int64(novaQuantidade))).Round(2)
		diferenca := novoTotal.Sub(venda.Total)
		switch {
		case diferenca.IsPositive():
			_, err = s.saldo.Debitar(ctx, tx, venda.FichaID, diferenca)
		case diferenca.IsNegative():
			_, err = s.saldo.Creditar(ctx, tx, venda.FichaID, diferenca.Neg())
		}
		if err != nil {
			return err
		}

		if err := tx.Vendas().AtualizarTotal(ctx, venda.ID, novoTotal); err != nil {
			return err
		}
		venda.Movimentacao = mov
		venda.Total = novoTotal
		return nil
	})
	if err != nil {
		return domain.Venda{}, s.traduzir("Falha interna ao atualizar venda.", err)
	}

	s.logger.Info("Venda atualizada com sucesso.", map[string]interface{}{"venda_id": vendaID, "total": venda.Total.StringFixed(2)})
	return venda, nil
}

// ExcluirVenda estorna a venda: devolve o estoque e credita o total na ficha.
// Se a venda veio de uma reserva, a reserva é cancelada junto e sai do pool.
func (s *Service) ExcluirVenda(ctx context.Context, vendaID string) error {
	var reservaCancelada string
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		venda, err := tx.Vendas().BuscarPorID(ctx, vendaID)
		if err != nil {
			return err
		}

		rp, vinculada, err := reservaDaVenda(ctx, tx, venda.ID)
		if err != nil {
			return err
		}
		if vinculada {
			rp.Status = domain.StatusCancelada
			rp.VendaID = nil
			rp.Observacoes = strings.TrimSpace(rp.Observacoes + " Venda " + venda.ID + " estornada.")
			if _, err := tx.Reservas().Atualizar(ctx, rp); err != nil {
				return err
			}
			reservaCancelada = rp.ID
		}

		if err := tx.Vendas().Excluir(ctx, venda.ID); err != nil {
			return err
		}
		if _, err := s.estoque.Excluir(ctx, tx, venda.MovimentacaoID); err != nil {
			return err
		}
		_, err = s.saldo.Creditar(ctx, tx, venda.FichaID, venda.Total)
		return err
	})
	if err != nil {
		return s.traduzir("Falha interna ao estornar venda.", err)
	}

	if reservaCancelada != "" {
		s.logger.Info("Reserva cancelada pelo estorno da venda.", map[string]interface{}{
			"reserva_id": reservaCancelada, "venda_id": vendaID,
		})
	}
	s.logger.Info("Venda estornada com sucesso.", map[string]interface{}{"venda_id": vendaID})
	return nil
}

func (s *Service) BuscarVenda(ctx context.Context, vendaID string) (domain.Venda, error) {
	var venda domain.Venda
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		venda, err = tx.Vendas().BuscarPorID(ctx, vendaID)
		return err
	})
	if err != nil {
		return domain.Venda{}, s.traduzir("Falha interna ao buscar venda.", err)
	}
	return venda, nil
}

func (s *Service) ListarVendasPorFicha(ctx context.Context, fichaID string) ([]domain.Venda, error) {
	var vendas []domain.Venda
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.Fichas().BuscarPorID(ctx, fichaID); err != nil {
			return err
		}
		var err error
		vendas, err = tx.Vendas().ListarPorFicha(ctx, fichaID)
		return err
	})
	if err != nil {
		return nil, s.traduzir("Falha interna ao listar vendas.", err)
	}
	return vendas, nil
}
