package vendarepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"

	"github.com/shopspring/decimal"
)

const selectVenda = `
        SELECT v.id, v.ficha_id, v.movimentacao_id, v.preco_unitario, v.total, v.data,
               m.id, m.produto_id, m.caixa_id, m.quantidade, m.tipo, m.data
        FROM vendas v
        JOIN movimentacoes_estoque m ON m.id = v.movimentacao_id`

// VendaRepository implementa domain.VendaRepository.
// As leituras fazem JOIN com a movimentação para devolver o agregado completo.
type VendaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewVendaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *VendaRepository {
	return &VendaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVenda(s scanner) (domain.Venda, error) {
	var v domain.Venda
	m := &v.Movimentacao
	err := s.Scan(&v.ID, &v.FichaID, &v.MovimentacaoID, &v.PrecoUnitario, &v.Total, &v.Data,
		&m.ID, &m.ProdutoID, &m.CaixaID, &m.Quantidade, &m.Tipo, &m.Data)
	return v, err
}

// Criar persiste a venda. A movimentação já deve existir na mesma transação.
func (r *VendaRepository) Criar(ctx context.Context, v domain.Venda) (domain.Venda, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO vendas (id, ficha_id, movimentacao_id, preco_unitario, total, data)
        VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.DB.ExecContext(ctxTimeout, query,
		v.ID, v.FichaID, v.MovimentacaoID, v.PrecoUnitario, v.Total, v.Data); err != nil {
		if database.IsUniqueViolation(err, "") {
			return domain.Venda{}, errors.NewInvalidSaleError("Movimentação já vinculada a outra venda.")
		}
		r.logger.Error("Falha ao inserir venda no DB.", err)
		return domain.Venda{}, errors.NewDBError("Falha ao inserir venda", err)
	}

	r.logger.Debug("Venda inserida.", map[string]interface{}{"venda_id": v.ID, "ficha_id": v.FichaID})
	return v, nil
}

func (r *VendaRepository) BuscarPorID(ctx context.Context, id string) (domain.Venda, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	v, err := scanVenda(r.DB.QueryRowContext(ctxTimeout, selectVenda+` WHERE v.id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Venda{}, errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar venda no DB.", err)
		return domain.Venda{}, errors.NewDBError("Falha ao buscar venda", err)
	}
	return v, nil
}

// ExistePorMovimentacao indica se a movimentação pertence a alguma venda.
func (r *VendaRepository) ExistePorMovimentacao(ctx context.Context, movimentacaoID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM vendas WHERE movimentacao_id = $1)`, movimentacaoID).Scan(&existe)
	if err != nil {
		r.logger.Error("Falha ao verificar venda da movimentação.", err)
		return false, errors.NewDBError("Falha ao verificar venda", err)
	}
	return existe, nil
}

func (r *VendaRepository) AtualizarTotal(ctx context.Context, id string, total decimal.Decimal) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `UPDATE vendas SET total = $1 WHERE id = $2`, total, id)
	if err != nil {
		r.logger.Error("Falha ao atualizar total da venda.", err)
		return errors.NewDBError("Falha ao atualizar venda", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	return nil
}

// Excluir remove apenas a linha da venda; a movimentação é tratada pelo livro de estoque.
func (r *VendaRepository) Excluir(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM vendas WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao excluir venda no DB.", err)
		return errors.NewDBError("Falha ao excluir venda", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	return nil
}

func (r *VendaRepository) ListarPorFicha(ctx context.Context, fichaID string) ([]domain.Venda, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, selectVenda+` WHERE v.ficha_id = $1 ORDER BY v.data DESC`, fichaID)
	if err != nil {
		r.logger.Error("Falha ao listar vendas da ficha.", err)
		return nil, errors.NewDBError("Falha ao listar vendas", err)
	}
	defer rows.Close()

	vendas := []domain.Venda{}
	for rows.Next() {
		v, err := scanVenda(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler venda", err)
		}
		vendas = append(vendas, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar vendas", err)
	}
	return vendas, nil
}
