package fichaservice

import (
	"context"
	"strings"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service é o livro de saldo: o único componente que escreve Ficha.Saldo.
type Service struct {
	txm    domain.TxManager
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Fichas.
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

func exigirAtiva(f domain.Ficha) error {
	if !f.Ativo {
		return apperror.NewValidationError("Ficha " + f.Numero + " está inativa.")
	}
	return nil
}

// Debitar retira valor do saldo da ficha dentro da transação do chamador.
// Falha com InsufficientBalanceError se o saldo ficaria negativo.
func (s *Service) Debitar(ctx context.Context, tx domain.Tx, fichaID string, valor decimal.Decimal) (domain.Ficha, error) {
	if valor.IsNegative() {
		return domain.Ficha{}, apperror.NewInvalidAmountError("O valor do débito não pode ser negativo.")
	}

	ficha, err := tx.Fichas().BuscarParaAtualizar(ctx, fichaID)
	if err != nil {
		return domain.Ficha{}, err
	}
	if err := exigirAtiva(ficha); err != nil {
		return domain.Ficha{}, err
	}

	novoSaldo := ficha.Saldo.Sub(valor)
	if novoSaldo.IsNegative() {
		s.logger.Warn("Débito recusado por saldo insuficiente.", map[string]interface{}{
			"ficha_id": fichaID, "saldo": ficha.Saldo.String(), "valor": valor.String(),
		})
		return domain.Ficha{}, apperror.NewInsufficientBalanceError(fichaID, ficha.Saldo, valor)
	}

	if err := tx.Fichas().AtualizarSaldo(ctx, fichaID, novoSaldo); err != nil {
		return domain.Ficha{}, err
	}
	ficha.Saldo = novoSaldo
	return ficha, nil
}

// Creditar devolve valor ao saldo (estornos e reduções de venda).
// Não gera Recarga: não é uma recarga do cliente.
func (s *Service) Creditar(ctx context.Context, tx domain.Tx, fichaID string, valor decimal.Decimal) (domain.Ficha, error) {
	if valor.IsNegative() {
		return domain.Ficha{}, apperror.NewInvalidAmountError("O valor do crédito não pode ser negativo.")
	}

	ficha, err := tx.Fichas().BuscarParaAtualizar(ctx, fichaID)
	if err != nil {
		return domain.Ficha{}, err
	}

	ficha.Saldo = ficha.Saldo.Add(valor)
	if err := tx.Fichas().AtualizarSaldo(ctx, fichaID, ficha.Saldo); err != nil {
		return domain.Ficha{}, err
	}
	return ficha, nil
}

// Recarregar soma valor ao saldo e registra a Recarga na mesma transação do chamador.
func (s *Service) Recarregar(ctx context.Context, tx domain.Tx, fichaID string, rec domain.NovaRecarga) (domain.Ficha, error) {
	if !rec.Valor.IsPositive() {
		return domain.Ficha{}, apperror.NewInvalidAmountError("O valor da recarga deve ser maior que zero.")
	}
	valor := rec.Valor.Round(2)

	ficha, err := tx.Fichas().BuscarParaAtualizar(ctx, fichaID)
	if err != nil {
		return domain.Ficha{}, err
	}
	if err := exigirAtiva(ficha); err != nil {
		return domain.Ficha{}, err
	}

	ficha.Saldo = ficha.Saldo.Add(valor)
	if err := tx.Fichas().AtualizarSaldo(ctx, fichaID, ficha.Saldo); err != nil {
		return domain.Ficha{}, err
	}

	registro := domain.Recarga{
		ID:         uuid.NewString(),
		FichaID:    fichaID,
		Valor:      valor,
		Observacao: rec.Observacao,
		Data:       time.Now(),
	}
	// caixa desconhecido não impede a recarga, só deixa o registro sem caixa
	if rec.CaixaID != "" {
		if _, err := tx.Caixas().BuscarPorID(ctx, rec.CaixaID); err == nil {
			caixaID := rec.CaixaID
			registro.CaixaID = &caixaID
		} else {
			s.logger.Warn("Caixa da recarga não encontrado; registrando sem caixa.", map[string]interface{}{"caixa_id": rec.CaixaID})
		}
	}
	if rec.ProdutoID != "" {
		produtoID := rec.ProdutoID
		registro.ProdutoID = &produtoID
	}
	if _, err := tx.Recargas().Criar(ctx, registro); err != nil {
		return domain.Ficha{}, err
	}

	return ficha, nil
}

// RecarregarFicha é a operação de recarga exposta ao caixa.
func (s *Service) RecarregarFicha(ctx context.Context, fichaID string, rec domain.NovaRecarga) (domain.Ficha, error) {
	s.logger.Debug("Iniciando recarga de ficha.", map[string]interface{}{"ficha_id": fichaID, "valor": rec.Valor.String()})

	var ficha domain.Ficha
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		ficha, err = s.Recarregar(ctx, tx, fichaID, rec)
		return err
	})
	if err != nil {
		return domain.Ficha{}, s.traduzir("Falha interna ao recarregar ficha.", err)
	}

	s.logger.Info("Ficha recarregada com sucesso.", map[string]interface{}{"ficha_id": fichaID, "saldo": ficha.Saldo.String()})
	return ficha, nil
}

// Criar cria a ficha dentro da transação do chamador. Um saldo inicial
// positivo é lançado como Recarga quando registrarRecarga é true.
func (s *Service) Criar(ctx context.Context, tx domain.Tx, nova domain.NovaFicha, registrarRecarga bool) (domain.Ficha, error) {
	numero := strings.TrimSpace(nova.Numero)
	if numero == "" {
		return domain.Ficha{}, apperror.NewValidationError("O número da ficha é obrigatório.")
	}
	if nova.SaldoInicial.IsNegative() {
		return domain.Ficha{}, apperror.NewInvalidAmountError("O saldo inicial não pode ser negativo.")
	}

	ficha, err := tx.Fichas().Criar(ctx, domain.Ficha{
		ID:       uuid.NewString(),
		Numero:   numero,
		Saldo:    decimal.Zero,
		Ativo:    true,
		CriadoEm: time.Now(),
	})
	if err != nil {
		return domain.Ficha{}, err
	}

	if !nova.SaldoInicial.IsPositive() {
		return ficha, nil
	}
	if registrarRecarga {
		return s.Recarregar(ctx, tx, ficha.ID, domain.NovaRecarga{
			Valor:      nova.SaldoInicial,
			Observacao: "Saldo inicial",
			CaixaID:    nova.CaixaID,
		})
	}

	ficha.Saldo = nova.SaldoInicial.Round(2)
	if err := tx.Fichas().AtualizarSaldo(ctx, ficha.ID, ficha.Saldo); err != nil {
		return domain.Ficha{}, err
	}
	return ficha, nil
}

// CriarFicha cria uma ficha; o saldo inicial, se houver, é registrado como recarga.
func (s *Service) CriarFicha(ctx context.Context, nova domain.NovaFicha) (domain.Ficha, error) {
	s.logger.Debug("Iniciando criação de ficha.", map[string]interface{}{"numero": nova.Numero})

	var ficha domain.Ficha
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		ficha, err = s.Criar(ctx, tx, nova, true)
		return err
	})
	if err != nil {
		return domain.Ficha{}, s.traduzir("Falha interna ao criar ficha.", err)
	}

	s.logger.Info("Ficha criada com sucesso.", map[string]interface{}{"ficha_id": ficha.ID, "numero": ficha.Numero})
	return ficha, nil
}

func (s *Service) BuscarFicha(ctx context.Context, id string) (domain.Ficha, error) {
	var ficha domain.Ficha
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		ficha, err = tx.Fichas().BuscarPorID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Ficha{}, s.traduzir("Falha interna ao buscar ficha.", err)
	}
	return ficha, nil
}

func (s *Service) BuscarFichaPorNumero(ctx context.Context, numero string) (domain.Ficha, error) {
	var ficha domain.Ficha
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		ficha, err = tx.Fichas().BuscarPorNumero(ctx, strings.TrimSpace(numero))
		return err
	})
	if err != nil {
		return domain.Ficha{}, s.traduzir("Falha interna ao buscar ficha.", err)
	}
	return ficha, nil
}

func (s *Service) ListarRecargas(ctx context.Context, fichaID string) ([]domain.Recarga, error) {
	var recargas []domain.Recarga
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.Fichas().BuscarPorID(ctx, fichaID); err != nil {
			return err
		}
		var err error
		recargas, err = tx.Recargas().ListarPorFicha(ctx, fichaID)
		return err
	})
	if err != nil {
		return nil, s.traduzir("Falha interna ao listar recargas.", err)
	}
	return recargas, nil
}

// ExcluirFicha faz a exclusão lógica da ficha, registrando o caixa autenticado.
func (s *Service) ExcluirFicha(ctx context.Context, fichaID, caixaID string) error {
	if caixaID == "" {
		return apperror.NewUnauthorizedError("Exclusão de ficha exige um caixa autenticado.")
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		ficha, err := tx.Fichas().BuscarParaAtualizar(ctx, fichaID)
		if err != nil {
			return err
		}
		if !ficha.Ativo {
			return apperror.NewConflictError("Ficha " + ficha.Numero + " já foi excluída.")
		}
		return tx.Fichas().MarcarExcluida(ctx, fichaID, caixaID, time.Now())
	})
	if err != nil {
		return s.traduzir("Falha interna ao excluir ficha.", err)
	}

	s.logger.Info("Ficha excluída com sucesso.", map[string]interface{}{"ficha_id": fichaID, "caixa_id": caixaID})
	return nil
}
