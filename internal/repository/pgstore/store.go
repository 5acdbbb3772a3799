package pgstore

import (
	"context"
	"database/sql"
	"time"

	"goficha/internal/domain"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
	"goficha/internal/repository/caixarepo"
	"goficha/internal/repository/ficharepo"
	"goficha/internal/repository/movimentacaorepo"
	"goficha/internal/repository/produtorepo"
	"goficha/internal/repository/qrcoderepo"
	"goficha/internal/repository/recargarepo"
	"goficha/internal/repository/reservarepo"
	"goficha/internal/repository/vendarepo"
)

// Store implementa domain.TxManager sobre PostgreSQL: cada WithinTx abre um
// *sql.Tx e entrega repositórios ligados a ele.
type Store struct {
	db        *sql.DB
	dbTimeout time.Duration
	logger    logger.Logger
}

func New(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *Store {
	return &Store{db: db, dbTimeout: dbTimeout, logger: logger}
}

// WithinTx executa fn numa transação; qualquer erro retornado faz rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	return database.WithTransaction(ctx, s.db, func(sqlTx *sql.Tx) error {
		return fn(ctx, &txRepos{q: sqlTx, timeout: s.dbTimeout, logger: s.logger})
	})
}

type txRepos struct {
	q       database.Querier
	timeout time.Duration
	logger  logger.Logger
}

func (t *txRepos) Produtos() domain.ProdutoRepository {
	return produtorepo.NewProdutoRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Movimentacoes() domain.MovimentacaoRepository {
	return movimentacaorepo.NewMovimentacaoRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Fichas() domain.FichaRepository {
	return ficharepo.NewFichaRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Vendas() domain.VendaRepository {
	return vendarepo.NewVendaRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Recargas() domain.RecargaRepository {
	return recargarepo.NewRecargaRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Reservas() domain.ReservaRepository {
	return reservarepo.NewReservaRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) QRCodes() domain.QRCodeRepository {
	return qrcoderepo.NewQRCodeRepository(t.q, t.timeout, t.logger)
}

func (t *txRepos) Caixas() domain.CaixaRepository {
	return caixarepo.NewCaixaRepository(t.q, t.timeout, t.logger)
}
