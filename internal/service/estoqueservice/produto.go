package estoqueservice

import (
	"context"
	"strings"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"

	"github.com/google/uuid"
)

// CriarProduto cadastra o produto. Um estoque inicial vira uma entrada no livro.
func (s *Service) CriarProduto(ctx context.Context, novo domain.NovoProduto) (domain.Produto, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"nome": novo.Nome})

	nome := strings.TrimSpace(novo.Nome)
	if nome == "" {
		return domain.Produto{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if !novo.Unidade.Valida() {
		return domain.Produto{}, apperror.NewValidationError("Unidade inválida. Use UN, PCT, L ou KG.")
	}
	if novo.Preco.IsNegative() {
		return domain.Produto{}, apperror.NewValidationError("O preço não pode ser negativo.")
	}
	if novo.EstoqueInicial < 0 || novo.QuantidadeReservaDisponivel < 0 || novo.LimiteReserva < 0 {
		return domain.Produto{}, apperror.NewValidationError("Quantidades não podem ser negativas.")
	}

	limite := novo.LimiteReserva
	if limite == 0 {
		limite = domain.LimiteReservaPadrao
	}

	var produto domain.Produto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		produto, err = tx.Produtos().Criar(ctx, domain.Produto{
			ID:                          uuid.NewString(),
			Nome:                        nome,
			Unidade:                     novo.Unidade,
			Preco:                       novo.Preco.Round(2),
			Categoria:                   strings.TrimSpace(novo.Categoria),
			DisponivelReserva:           novo.DisponivelReserva,
			LimiteReserva:               limite,
			QuantidadeReservaDisponivel: novo.QuantidadeReservaDisponivel,
			DataCriacao:                 time.Now(),
		})
		if err != nil {
			return err
		}

		if novo.EstoqueInicial > 0 {
			if _, err := s.Registrar(ctx, tx, produto.ID, domain.TipoEntrada, novo.EstoqueInicial, novo.CaixaID); err != nil {
				return err
			}
			produto.Estoque = novo.EstoqueInicial
		}
		return nil
	})
	if err != nil {
		return domain.Produto{}, s.traduzir("Falha interna ao criar produto.", err)
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"produto_id": produto.ID, "estoque": produto.Estoque})
	return produto, nil
}

// AtualizarProduto aplica uma atualização parcial. Um estoque alvo diferente
// do atual gera uma movimentação de entrada ou saída pela diferença.
func (s *Service) AtualizarProduto(ctx context.Context, upd domain.AtualizacaoProduto) (domain.Produto, error) {
	s.logger.Debug("Iniciando atualização de produto no serviço.", map[string]interface{}{"produto_id": upd.ID})

	var produto domain.Produto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		atual, err := tx.Produtos().BuscarParaAtualizar(ctx, upd.ID)
		if err != nil {
			return err
		}

		if upd.Nome != nil {
			nome := strings.TrimSpace(*upd.Nome)
			if nome == "" {
				return apperror.NewValidationError("O nome do produto é obrigatório.")
			}
			atual.Nome = nome
		}
		if upd.Unidade != nil {
			if !upd.Unidade.Valida() {
				return apperror.NewValidationError("Unidade inválida. Use UN, PCT, L ou KG.")
			}
			atual.Unidade = *upd.Unidade
		}
		if upd.Preco != nil {
			if upd.Preco.IsNegative() {
				return apperror.NewValidationError("O preço não pode ser negativo.")
			}
			atual.Preco = upd.Preco.Round(2)
		}
		if upd.Categoria != nil {
			atual.Categoria = strings.TrimSpace(*upd.Categoria)
		}
		if upd.DisponivelReserva != nil {
			atual.DisponivelReserva = *upd.DisponivelReserva
		}
		if upd.LimiteReserva != nil {
			if *upd.LimiteReserva <= 0 {
				return apperror.NewValidationError("O limite de reserva deve ser maior que zero.")
			}
			atual.LimiteReserva = *upd.LimiteReserva
		}
		if upd.QuantidadeReservaDisponivel != nil {
			if *upd.QuantidadeReservaDisponivel < 0 {
				return apperror.NewValidationError("A quantidade disponível para reserva não pode ser negativa.")
			}
			atual.QuantidadeReservaDisponivel = *upd.QuantidadeReservaDisponivel
		}

		produto, err = tx.Produtos().Atualizar(ctx, atual)
		if err != nil {
			return err
		}

		if upd.Estoque != nil && *upd.Estoque != produto.Estoque {
			alvo := *upd.Estoque
			if alvo < 0 {
				return apperror.NewValidationError("O estoque não pode ser negativo.")
			}
			tipo, qtd := domain.TipoEntrada, alvo-produto.Estoque
			if qtd < 0 {
				tipo, qtd = domain.TipoSaida, -qtd
			}
			if _, err := s.Registrar(ctx, tx, produto.ID, tipo, qtd, upd.CaixaID); err != nil {
				return err
			}
			produto.Estoque = alvo
		}
		return nil
	})
	if err != nil {
		return domain.Produto{}, s.traduzir("Falha interna ao atualizar produto.", err)
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"produto_id": produto.ID})
	return produto, nil
}

func (s *Service) BuscarProduto(ctx context.Context, id string) (domain.Produto, error) {
	var produto domain.Produto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		produto, err = tx.Produtos().BuscarPorID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Produto{}, s.traduzir("Falha interna ao buscar produto.", err)
	}
	return produto, nil
}

func (s *Service) ListarProdutos(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	filtro.Page, filtro.Limit = normalizarPagina(filtro.Page, filtro.Limit)

	var produtos []domain.Produto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		produtos, err = tx.Produtos().Listar(ctx, filtro)
		return err
	})
	if err != nil {
		return nil, s.traduzir("Falha interna ao listar produtos.", err)
	}
	return produtos, nil
}

// Reconciliar recalcula o líquido do livro e compara com o contador do produto.
// Diferenca diferente de zero indica deriva e é registrada como aviso.
func (s *Service) Reconciliar(ctx context.Context, produtoID string) (domain.Reconciliacao, error) {
	var rec domain.Reconciliacao
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		produto, err := tx.Produtos().BuscarPorID(ctx, produtoID)
		if err != nil {
			return err
		}
		entradas, saidas, err := tx.Movimentacoes().Totais(ctx, produtoID)
		if err != nil {
			return err
		}
		rec = domain.Reconciliacao{
			ProdutoID: produtoID,
			Estoque:   produto.Estoque,
			Entradas:  entradas,
			Saidas:    saidas,
			Liquido:   entradas - saidas,
			Diferenca: produto.Estoque - (entradas - saidas),
		}
		return nil
	})
	if err != nil {
		return domain.Reconciliacao{}, s.traduzir("Falha interna ao reconciliar estoque.", err)
	}

	if rec.Diferenca != 0 {
		s.logger.Warn("Deriva entre estoque e livro de movimentações.", map[string]interface{}{
			"produto_id": produtoID, "estoque": rec.Estoque, "liquido": rec.Liquido,
		})
	}
	return rec, nil
}
