package reservarepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"

	"github.com/lib/pq"
)

const (
	colunas = `id, cpf, nome_completo, produto_id, quantidade, qrcode_reserva_id, ficha_id,
        venda_id, status, data_reserva, data_confirmacao, observacoes`

	// índice parcial que garante uma reserva ativa por (cpf, produto)
	indiceReservaAtiva = "reservas_ativas_cpf_produto_uidx"
)

// ReservaRepository implementa domain.ReservaRepository.
type ReservaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewReservaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *ReservaRepository {
	return &ReservaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReserva(s scanner) (domain.ReservaProduto, error) {
	var rp domain.ReservaProduto
	err := s.Scan(&rp.ID, &rp.CPF, &rp.NomeCompleto, &rp.ProdutoID, &rp.Quantidade, &rp.QRCodeReservaID,
		&rp.FichaID, &rp.VendaID, &rp.Status, &rp.DataReserva, &rp.DataConfirmacao, &rp.Observacoes)
	return rp, err
}

// Criar insere a reserva. A violação do índice parcial vira DuplicateReservationError.
func (r *ReservaRepository) Criar(ctx context.Context, rp domain.ReservaProduto) (domain.ReservaProduto, error) {
	r.logger.Debug("Inserindo reserva no repositório.", map[string]interface{}{
		"produto_id": rp.ProdutoID,
		"quantidade": rp.Quantidade,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO reservas_produto (` + colunas + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + colunas

	created, err := scanReserva(r.DB.QueryRowContext(ctxTimeout, query,
		rp.ID, rp.CPF, rp.NomeCompleto, rp.ProdutoID, rp.Quantidade, rp.QRCodeReservaID,
		rp.FichaID, rp.VendaID, rp.Status, rp.DataReserva, rp.DataConfirmacao, rp.Observacoes))
	if database.IsUniqueViolation(err, indiceReservaAtiva) {
		return domain.ReservaProduto{}, errors.NewDuplicateReservationError(rp.ProdutoID)
	}
	if err != nil {
		r.logger.Error("Falha ao inserir reserva no DB.", err)
		return domain.ReservaProduto{}, errors.NewDBError("Falha ao inserir reserva", err)
	}
	return created, nil
}

func (r *ReservaRepository) buscar(ctx context.Context, id string, lock bool) (domain.ReservaProduto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM reservas_produto WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	rp, err := scanReserva(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar reserva no DB.", err)
		return domain.ReservaProduto{}, errors.NewDBError("Falha ao buscar reserva", err)
	}
	return rp, nil
}

func (r *ReservaRepository) BuscarPorID(ctx context.Context, id string) (domain.ReservaProduto, error) {
	return r.buscar(ctx, id, false)
}

func (r *ReservaRepository) BuscarParaAtualizar(ctx context.Context, id string) (domain.ReservaProduto, error) {
	return r.buscar(ctx, id, true)
}

func (r *ReservaRepository) BuscarPorVenda(ctx context.Context, vendaID string) (domain.ReservaProduto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM reservas_produto WHERE venda_id = $1 FOR UPDATE`

	rp, err := scanReserva(r.DB.QueryRowContext(ctxTimeout, query, vendaID))
	if err == sql.ErrNoRows {
		return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Nenhuma reserva vinculada à venda %s.", vendaID))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar reserva da venda no DB.", err)
		return domain.ReservaProduto{}, errors.NewDBError("Falha ao buscar reserva da venda", err)
	}
	return rp, nil
}

func (r *ReservaRepository) ExisteAtiva(ctx context.Context, cpf, produtoID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT EXISTS (
            SELECT 1 FROM reservas_produto
            WHERE cpf = $1 AND produto_id = $2 AND status IN ('pendente', 'confirmada'))`

	var existe bool
	if err := r.DB.QueryRowContext(ctxTimeout, query, cpf, produtoID).Scan(&existe); err != nil {
		r.logger.Error("Falha ao verificar reserva ativa.", err)
		return false, errors.NewDBError("Falha ao verificar reserva ativa", err)
	}
	return existe, nil
}

func (r *ReservaRepository) SomarAtivas(ctx context.Context, produtoID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COALESCE(SUM(quantidade), 0) FROM reservas_produto
        WHERE produto_id = $1 AND status IN ('pendente', 'confirmada')`

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, query, produtoID).Scan(&total); err != nil {
		r.logger.Error("Falha ao somar reservas ativas.", err)
		return 0, errors.NewDBError("Falha ao somar reservas ativas", err)
	}
	return total, nil
}

// ListarPorCPF lista as reservas do CPF, mais recentes primeiro, opcionalmente filtradas por status.
func (r *ReservaRepository) ListarPorCPF(ctx context.Context, cpf string, status ...domain.StatusReserva) ([]domain.ReservaProduto, error) {
	query := `SELECT ` + colunas + ` FROM reservas_produto WHERE cpf = $1`
	args := []interface{}{cpf}
	if len(status) > 0 {
		s := make([]string, len(status))
		for i, st := range status {
			s[i] = string(st)
		}
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(s))
	}
	query += ` ORDER BY data_reserva DESC`

	return r.listar(ctx, query, args...)
}

func (r *ReservaRepository) ListarPorQRCode(ctx context.Context, qrcodeID string) ([]domain.ReservaProduto, error) {
	query := `SELECT ` + colunas + ` FROM reservas_produto WHERE qrcode_reserva_id = $1 ORDER BY data_reserva DESC`
	return r.listar(ctx, query, qrcodeID)
}

func (r *ReservaRepository) listar(ctx context.Context, query string, args ...interface{}) ([]domain.ReservaProduto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar reservas.", err)
		return nil, errors.NewDBError("Falha ao listar reservas", err)
	}
	defer rows.Close()

	reservas := []domain.ReservaProduto{}
	for rows.Next() {
		rp, err := scanReserva(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler reserva", err)
		}
		reservas = append(reservas, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar reservas", err)
	}
	return reservas, nil
}

// Atualizar grava o estado da reserva (status, vínculos e observações).
func (r *ReservaRepository) Atualizar(ctx context.Context, rp domain.ReservaProduto) (domain.ReservaProduto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE reservas_produto
        SET status = $1, ficha_id = $2, venda_id = $3, data_confirmacao = $4, observacoes = $5
        WHERE id = $6
        RETURNING ` + colunas

	updated, err := scanReserva(r.DB.QueryRowContext(ctxTimeout, query,
		rp.Status, rp.FichaID, rp.VendaID, rp.DataConfirmacao, rp.Observacoes, rp.ID))
	if err == sql.ErrNoRows {
		return domain.ReservaProduto{}, errors.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", rp.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar reserva no DB.", err)
		return domain.ReservaProduto{}, errors.NewDBError("Falha ao atualizar reserva", err)
	}

	r.logger.Debug("Reserva atualizada.", map[string]interface{}{"reserva_id": rp.ID, "status": rp.Status})
	return updated, nil
}
