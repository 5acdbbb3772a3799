package caixaservice

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/token"

	"github.com/google/uuid"
)

// Service define o serviço de cadastro e autenticação de caixas.
type Service struct {
	txm      domain.TxManager
	tokenSvc token.TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do Serviço de Caixas.
func NewService(txm domain.TxManager, tokenSvc token.TokenService, logger logger.Logger) *Service {
	return &Service{
		txm:      txm,
		tokenSvc: tokenSvc,
		logger:   logger,
	}
}

// Registrar cadastra um novo caixa, guardando apenas o hash bcrypt da senha.
func (s *Service) Registrar(ctx context.Context, registro domain.RegistroCaixa) (domain.Caixa, error) {
	nome := strings.TrimSpace(registro.Nome)
	if nome == "" || registro.Senha == "" {
		return domain.Caixa{}, apperror.NewValidationError("Nome e senha são obrigatórios.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(registro.Senha), bcrypt.DefaultCost)
	if err != nil {
		return domain.Caixa{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	var caixa domain.Caixa
	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		caixa, err = tx.Caixas().Criar(ctx, domain.Caixa{
			ID:        uuid.NewString(),
			Nome:      nome,
			SenhaHash: string(hash),
			CriadoEm:  time.Now(),
		})
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return domain.Caixa{}, err
		}
		s.logger.Error("Falha ao registrar caixa.", err)
		return domain.Caixa{}, apperror.NewInternalError("Falha interna ao registrar caixa.", err)
	}

	s.logger.Info("Caixa registrado com sucesso.", map[string]interface{}{"caixa_id": caixa.ID, "nome": caixa.Nome})
	return caixa, nil
}

// Login autentica o caixa e devolve um JWT.
func (s *Service) Login(ctx context.Context, nome, senha string) (string, error) {
	if nome == "" || senha == "" {
		return "", apperror.NewUnauthorizedError("Nome e senha são obrigatórios.")
	}

	var caixa domain.Caixa
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		caixa, err = tx.Caixas().BuscarPorNome(ctx, strings.TrimSpace(nome))
		return err
	})
	if err != nil {
		// caixa inexistente responde como senha errada
		var naoEncontrado *apperror.NotFoundError
		if apperror.As(err, &naoEncontrado) {
			s.logger.Warn("Login recusado: caixa desconhecido.", map[string]interface{}{"nome": nome})
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(caixa.SenhaHash), []byte(senha)); err != nil {
		s.logger.Warn("Login recusado: senha incorreta.", map[string]interface{}{"caixa_id": caixa.ID})
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(caixa.ID, caixa.Nome)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Caixa autenticado.", map[string]interface{}{"caixa_id": caixa.ID})
	return tokenString, nil
}
