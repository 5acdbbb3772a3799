package qrcoderepo

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

const selectQRCode = `
        SELECT q.id, q.codigo, q.descricao, q.data_inicio, q.data_expiracao, q.ativo, q.data_criacao,
               COALESCE(array_agg(p.produto_id::text) FILTER (WHERE p.produto_id IS NOT NULL), '{}')
        FROM qrcodes_reserva q
        LEFT JOIN qrcode_reserva_produtos p ON p.qrcode_id = q.id`

// QRCodeRepository implementa domain.QRCodeRepository.
// Os produtos liberados ficam na tabela de junção qrcode_reserva_produtos.
type QRCodeRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewQRCodeRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *QRCodeRepository {
	return &QRCodeRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

func (r *QRCodeRepository) Criar(ctx context.Context, qr domain.QRCodeReserva) (domain.QRCodeReserva, error) {
	r.logger.Debug("Inserindo QR code no repositório.", map[string]interface{}{"codigo": qr.Codigo})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO qrcodes_reserva (id, codigo, descricao, data_inicio, data_expiracao, ativo, data_criacao)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		qr.ID, qr.Codigo, qr.Descricao, qr.DataInicio, qr.DataExpiracao, qr.Ativo, qr.DataCriacao)
	if database.IsUniqueViolation(err, "") {
		return domain.QRCodeReserva{}, errors.NewConflictError(fmt.Sprintf("QR code %s já existe.", qr.Codigo))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir QR code no DB.", err)
		return domain.QRCodeReserva{}, errors.NewDBError("Falha ao inserir QR code", err)
	}

	if err := r.gravarProdutos(ctxTimeout, qr.ID, qr.ProdutoIDs); err != nil {
		return domain.QRCodeReserva{}, err
	}
	return qr, nil
}

func (r *QRCodeRepository) gravarProdutos(ctx context.Context, qrID string, produtoIDs []string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM qrcode_reserva_produtos WHERE qrcode_id = $1`, qrID); err != nil {
		r.logger.Error("Falha ao limpar produtos do QR code.", err)
		return errors.NewDBError("Falha ao gravar produtos do QR code", err)
	}
	if len(produtoIDs) == 0 {
		return nil
	}

	query := `
        INSERT INTO qrcode_reserva_produtos (qrcode_id, produto_id)
        SELECT $1, unnest($2::uuid[])
        ON CONFLICT DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, qrID, pq.Array(produtoIDs)); err != nil {
		r.logger.Error("Falha ao vincular produtos ao QR code.", err)
		return errors.NewDBError("Falha ao gravar produtos do QR code", err)
	}
	return nil
}

func (r *QRCodeRepository) buscar(ctx context.Context, campo, valor string) (domain.QRCodeReserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := selectQRCode + ` WHERE q.` + campo + ` = $1 GROUP BY q.id`

	var qr domain.QRCodeReserva
	err := r.DB.QueryRowContext(ctxTimeout, query, valor).Scan(
		&qr.ID, &qr.Codigo, &qr.Descricao, &qr.DataInicio, &qr.DataExpiracao, &qr.Ativo, &qr.DataCriacao,
		pq.Array(&qr.ProdutoIDs),
	)
	if err == sql.ErrNoRows {
		return domain.QRCodeReserva{}, errors.NewNotFoundError(fmt.Sprintf("QR code %s não encontrado.", valor))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar QR code no DB.", err)
		return domain.QRCodeReserva{}, errors.NewDBError("Falha ao buscar QR code", err)
	}
	return qr, nil
}

func (r *QRCodeRepository) BuscarPorID(ctx context.Context, id string) (domain.QRCodeReserva, error) {
	return r.buscar(ctx, "id", id)
}

func (r *QRCodeRepository) BuscarPorCodigo(ctx context.Context, codigo string) (domain.QRCodeReserva, error) {
	return r.buscar(ctx, "codigo", codigo)
}

// Atualizar grava descrição, janela, estado e substitui a lista de produtos.
func (r *QRCodeRepository) Atualizar(ctx context.Context, qr domain.QRCodeReserva) (domain.QRCodeReserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE qrcodes_reserva
        SET descricao = $1, data_inicio = $2, data_expiracao = $3, ativo = $4
        WHERE id = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query, qr.Descricao, qr.DataInicio, qr.DataExpiracao, qr.Ativo, qr.ID)
	if err != nil {
		r.logger.Error("Falha ao atualizar QR code no DB.", err)
		return domain.QRCodeReserva{}, errors.NewDBError("Falha ao atualizar QR code", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return domain.QRCodeReserva{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return domain.QRCodeReserva{}, errors.NewNotFoundError(fmt.Sprintf("QR code %s não encontrado.", qr.ID))
	}

	if err := r.gravarProdutos(ctxTimeout, qr.ID, qr.ProdutoIDs); err != nil {
		return domain.QRCodeReserva{}, err
	}
	return qr, nil
}
