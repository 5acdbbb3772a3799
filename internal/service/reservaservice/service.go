package reservaservice

import (
	"context"
	"fmt"
	"sort"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/cache"
	"goficha/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vendedor cria a venda de uma reserva dentro da transação do chamador.
type Vendedor interface {
	Criar(ctx context.Context, tx domain.Tx, produtoID string, quantidade int, caixaID, fichaID string) (domain.Venda, error)
}

// Fichario cria e recarrega fichas dentro da transação do chamador.
type Fichario interface {
	Criar(ctx context.Context, tx domain.Tx, nova domain.NovaFicha, registrarRecarga bool) (domain.Ficha, error)
	Recarregar(ctx context.Context, tx domain.Tx, fichaID string, rec domain.NovaRecarga) (domain.Ficha, error)
}

// Config reúne os parâmetros do serviço que vêm da configuração da aplicação.
type Config struct {
	CatalogoTTL time.Duration
	URLPublica  string
}

// Service conduz a máquina de estados das reservas:
// pendente -> confirmada -> finalizada, pendente -> finalizada (vínculo) e pendente -> cancelada.
type Service struct {
	txm    domain.TxManager
	vendas Vendedor
	fichas Fichario
	cache  cache.Client
	cfg    Config
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Reservas.
func NewService(txm domain.TxManager, vendas Vendedor, fichas Fichario, cacheClient cache.Client, cfg Config, logger logger.Logger) *Service {
	if cfg.CatalogoTTL <= 0 {
		cfg.CatalogoTTL = time.Minute
	}
	return &Service{
		txm:    txm,
		vendas: vendas,
		fichas: fichas,
		cache:  cacheClient,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) traduzir(msg string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}

// verificarJanela aplica as regras de ativo, início e expiração do QR code.
func verificarJanela(qr domain.QRCodeReserva, agora time.Time) error {
	if !qr.Ativo {
		return apperror.NewQrCodeInactiveError(qr.Codigo)
	}
	if !qr.DataInicio.IsZero() && agora.Before(qr.DataInicio) {
		return apperror.NewQrCodeNotStartedError(qr.Codigo)
	}
	if !qr.DataExpiracao.IsZero() && agora.After(qr.DataExpiracao) {
		return apperror.NewQrCodeExpiredError(qr.Codigo)
	}
	return nil
}

func contem(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// bloquearProdutos bloqueia as linhas dos produtos em ordem de ID.
// Todo caminho que também toca a ficha bloqueia os produtos antes dela.
func bloquearProdutos(ctx context.Context, tx domain.Tx, ids []string) (map[string]domain.Produto, error) {
	ordenados := make([]string, 0, len(ids))
	produtos := make(map[string]domain.Produto, len(ids))
	for _, id := range ids {
		if _, ok := produtos[id]; !ok {
			produtos[id] = domain.Produto{}
			ordenados = append(ordenados, id)
		}
	}
	sort.Strings(ordenados)

	for _, id := range ordenados {
		p, err := tx.Produtos().BuscarParaAtualizar(ctx, id)
		if err != nil {
			return nil, err
		}
		produtos[id] = p
	}
	return produtos, nil
}

func totalItem(preco decimal.Decimal, quantidade int) decimal.Decimal {
	return preco.Mul(decimal.NewFromInt(int64(quantidade))).Round(2)
}

// CriarReserva registra todos os itens do pedido numa única transação.
// A disponibilidade é conferida com a linha do produto bloqueada, então
// pedidos concorrentes pela última unidade do pool são serializados.
func (s *Service) CriarReserva(ctx context.Context, nova domain.NovaReserva) (domain.ComprovanteReserva, error) {
	s.logger.Debug("Iniciando criação de reserva.", map[string]interface{}{"qr_codigo": nova.QRCodigo, "itens": len(nova.Itens)})

	if len(nova.Itens) == 0 {
		return domain.ComprovanteReserva{}, apperror.NewValidationError("Informe ao menos um produto para reservar.")
	}

	agora := time.Now()
	comprovante := domain.ComprovanteReserva{
		NomeCompleto: nova.NomeCompleto,
		CPF:          nova.CPF,
		Reservas:     []domain.ItemReservado{},
		Total:        decimal.Zero,
		DataReserva:  agora,
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		qr, err := tx.QRCodes().BuscarPorCodigo(ctx, nova.QRCodigo)
		if err != nil {
			return err
		}
		if err := verificarJanela(qr, agora); err != nil {
			return err
		}

		ids := make([]string, 0, len(nova.Itens))
		for _, item := range nova.Itens {
			if item.Quantidade <= 0 {
				return apperror.NewValidationError("A quantidade reservada deve ser maior que zero.")
			}
			if !contem(qr.ProdutoIDs, item.ProdutoID) {
				return apperror.NewValidationError(fmt.Sprintf("Produto %s não está disponível neste QR code.", item.ProdutoID))
			}
			ids = append(ids, item.ProdutoID)
		}
		produtos, err := bloquearProdutos(ctx, tx, ids)
		if err != nil {
			return err
		}

		for _, item := range nova.Itens {
			produto := produtos[item.ProdutoID]
			if !produto.DisponivelReserva {
				return apperror.NewValidationError(fmt.Sprintf("Produto %s não está disponível para reserva.", produto.Nome))
			}
			if item.Quantidade > produto.LimiteReserva {
				return apperror.NewReservationLimitExceededError(produto.Nome, produto.LimiteReserva)
			}

			ativas, err := tx.Reservas().SomarAtivas(ctx, produto.ID)
			if err != nil {
				return err
			}
			disponivel := produto.QuantidadeReservaDisponivel - ativas
			if item.Quantidade > disponivel {
				if disponivel < 0 {
					disponivel = 0
				}
				return apperror.NewReservationUnavailableError(produto.Nome, disponivel)
			}

			existe, err := tx.Reservas().ExisteAtiva(ctx, nova.CPF, produto.ID)
			if err != nil {
				return err
			}
			if existe {
				return apperror.NewDuplicateReservationError(produto.Nome)
			}

			reserva, err := tx.Reservas().Criar(ctx, domain.ReservaProduto{
				ID:              uuid.NewString(),
				CPF:             nova.CPF,
				NomeCompleto:    nova.NomeCompleto,
				ProdutoID:       produto.ID,
				Quantidade:      item.Quantidade,
				QRCodeReservaID: qr.ID,
				Status:          domain.StatusPendente,
				DataReserva:     agora,
			})
			if err != nil {
				return err
			}

			total := totalItem(produto.Preco, item.Quantidade)
			comprovante.Reservas = append(comprovante.Reservas, domain.ItemReservado{
				ID:            reserva.ID,
				ProdutoID:     produto.ID,
				Produto:       produto.Nome,
				Quantidade:    item.Quantidade,
				PrecoUnitario: produto.Preco,
				PrecoTotal:    total,
			})
			comprovante.Total = comprovante.Total.Add(total)
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			s.logger.Warn("Reserva recusada.", map[string]interface{}{"qr_codigo": nova.QRCodigo, "motivo": err.Error()})
		}
		return domain.ComprovanteReserva{}, s.traduzir("Falha interna ao criar reserva.", err)
	}

	s.invalidarCatalogo(ctx, nova.QRCodigo)
	s.logger.Info("Reserva criada com sucesso.", map[string]interface{}{
		"qr_codigo": nova.QRCodigo, "itens": len(comprovante.Reservas), "total": comprovante.Total.StringFixed(2),
	})
	return comprovante, nil
}

// pendentesParaVinculo carrega e bloqueia, em ordem de ID, as reservas pendentes a converter.
func pendentesParaVinculo(ctx context.Context, tx domain.Tx, cpf string, ids []string) ([]domain.ReservaProduto, error) {
	if len(ids) == 0 {
		lista, err := tx.Reservas().ListarPorCPF(ctx, cpf, domain.StatusPendente)
		if err != nil {
			return nil, err
		}
		for _, rp := range lista {
			ids = append(ids, rp.ID)
		}
	}
	if len(ids) == 0 {
		return nil, apperror.NewNotFoundError("Nenhuma reserva pendente para o CPF informado.")
	}

	ids = append([]string(nil), ids...)
	sort.Strings(ids)

	reservas := make([]domain.ReservaProduto, 0, len(ids))
	vistos := map[string]bool{}
	for _, id := range ids {
		if vistos[id] {
			continue
		}
		vistos[id] = true

		rp, err := tx.Reservas().BuscarParaAtualizar(ctx, id)
		if err != nil {
			return nil, err
		}
		if rp.CPF != cpf {
			return nil, apperror.NewValidationError(fmt.Sprintf("Reserva %s não pertence ao CPF informado.", id))
		}
		if rp.Status != domain.StatusPendente {
			return nil, apperror.NewAlreadyProcessedError(rp.ID, string(rp.Status))
		}
		reservas = append(reservas, rp)
	}
	return reservas, nil
}

// VincularFicha converte as reservas pendentes do CPF em vendas numa ficha,
// nova ou existente, e as marca como finalizadas. Tudo ou nada.
func (s *Service) VincularFicha(ctx context.Context, v domain.VinculoFicha) (domain.ResultadoVinculo, error) {
	s.logger.Debug("Iniciando vínculo de reservas a ficha.", map[string]interface{}{
		"ficha_id": v.FichaID, "numero": v.Numero, "reservas": len(v.ReservaIDs),
	})

	if v.SaldoInicial.IsNegative() {
		return domain.ResultadoVinculo{}, apperror.NewInvalidAmountError("O saldo inicial não pode ser negativo.")
	}

	var resultado domain.ResultadoVinculo
	codigos := map[string]bool{}
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		reservas, err := pendentesParaVinculo(ctx, tx, v.CPF, v.ReservaIDs)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(reservas))
		for _, rp := range reservas {
			ids = append(ids, rp.ProdutoID)
		}
		produtos, err := bloquearProdutos(ctx, tx, ids)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, rp := range reservas {
			total = total.Add(totalItem(produtos[rp.ProdutoID].Preco, rp.Quantidade))
		}

		// produtos já bloqueados; o saldo é conferido antes de criar ou recarregar a ficha
		var ficha domain.Ficha
		if v.FichaID == "" {
			if v.SaldoInicial.LessThan(total) {
				return apperror.NewInsufficientBalanceError("", v.SaldoInicial, total)
			}
			ficha, err = s.fichas.Criar(ctx, tx, domain.NovaFicha{
				Numero:       v.Numero,
				SaldoInicial: v.SaldoInicial,
				CaixaID:      v.CaixaID,
			}, v.RegistrarRecarga)
			if err != nil {
				return err
			}
		} else {
			ficha, err = tx.Fichas().BuscarPorID(ctx, v.FichaID)
			if err != nil {
				return err
			}
			if ficha.Saldo.Add(v.SaldoInicial).LessThan(total) {
				return apperror.NewInsufficientBalanceError(ficha.ID, ficha.Saldo.Add(v.SaldoInicial), total)
			}
			if v.SaldoInicial.IsPositive() {
				ficha, err = s.fichas.Recarregar(ctx, tx, ficha.ID, domain.NovaRecarga{
					Valor:      v.SaldoInicial,
					Observacao: "Recarga no vínculo de reservas",
					CaixaID:    v.CaixaID,
				})
				if err != nil {
					return err
				}
			}
		}

		agora := time.Now()
		resultado.Vendas = make([]domain.Venda, 0, len(reservas))
		resultado.Reservas = make([]domain.ReservaProduto, 0, len(reservas))
		for _, rp := range reservas {
			venda, err := s.vendas.Criar(ctx, tx, rp.ProdutoID, rp.Quantidade, v.CaixaID, ficha.ID)
			if err != nil {
				return err
			}

			fichaID, vendaID := ficha.ID, venda.ID
			rp.Status = domain.StatusFinalizada
			rp.DataConfirmacao = &agora
			rp.FichaID = &fichaID
			rp.VendaID = &vendaID
			atualizada, err := tx.Reservas().Atualizar(ctx, rp)
			if err != nil {
				return err
			}

			resultado.Vendas = append(resultado.Vendas, venda)
			resultado.Reservas = append(resultado.Reservas, atualizada)
			resultado.Total = resultado.Total.Add(venda.Total)
		}

		resultado.Ficha, err = tx.Fichas().BuscarPorID(ctx, ficha.ID)
		if err != nil {
			return err
		}
		return s.codigosDasReservas(ctx, tx, reservas, codigos)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			s.logger.Warn("Vínculo de reservas recusado.", map[string]interface{}{"motivo": err.Error()})
		}
		return domain.ResultadoVinculo{}, s.traduzir("Falha interna ao vincular reservas à ficha.", err)
	}

	for codigo := range codigos {
		s.invalidarCatalogo(ctx, codigo)
	}
	s.logger.Info("Reservas vinculadas à ficha com sucesso.", map[string]interface{}{
		"ficha_id": resultado.Ficha.ID, "vendas": len(resultado.Vendas), "total": resultado.Total.StringFixed(2),
	})
	return resultado, nil
}

// ConfirmarReserva converte uma reserva pendente em venda na ficha informada
// (ou na ficha já vinculada à reserva). Saldo e estoque são conferidos agora.
func (s *Service) ConfirmarReserva(ctx context.Context, reservaID, fichaID, caixaID string) (domain.ReservaProduto, error) {
	s.logger.Debug("Iniciando confirmação de reserva.", map[string]interface{}{"reserva_id": reservaID, "ficha_id": fichaID})

	var reserva domain.ReservaProduto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		rp, err := tx.Reservas().BuscarParaAtualizar(ctx, reservaID)
		if err != nil {
			return err
		}
		if rp.Status != domain.StatusPendente {
			return apperror.NewAlreadyProcessedError(rp.ID, string(rp.Status))
		}

		alvo := fichaID
		if alvo == "" && rp.FichaID != nil {
			alvo = *rp.FichaID
		}
		if alvo == "" {
			return apperror.NewValidationError("Informe a ficha para confirmar a reserva.")
		}

		venda, err := s.vendas.Criar(ctx, tx, rp.ProdutoID, rp.Quantidade, caixaID, alvo)
		if err != nil {
			return err
		}

		agora := time.Now()
		vendaID := venda.ID
		rp.Status = domain.StatusConfirmada
		rp.DataConfirmacao = &agora
		rp.FichaID = &alvo
		rp.VendaID = &vendaID
		reserva, err = tx.Reservas().Atualizar(ctx, rp)
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			s.logger.Warn("Confirmação de reserva recusada.", map[string]interface{}{"reserva_id": reservaID, "motivo": err.Error()})
		}
		return domain.ReservaProduto{}, s.traduzir("Falha interna ao confirmar reserva.", err)
	}

	s.logger.Info("Reserva confirmada com sucesso.", map[string]interface{}{"reserva_id": reservaID})
	return reserva, nil
}

// transicionar muda o status de uma reserva que esteja em de; qualquer outro estado é AlreadyProcessed.
func (s *Service) transicionar(ctx context.Context, reservaID string, de, para domain.StatusReserva) (domain.ReservaProduto, string, error) {
	var reserva domain.ReservaProduto
	var codigo string
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		rp, err := tx.Reservas().BuscarParaAtualizar(ctx, reservaID)
		if err != nil {
			return err
		}
		if rp.Status != de {
			return apperror.NewAlreadyProcessedError(rp.ID, string(rp.Status))
		}

		rp.Status = para
		if para == domain.StatusFinalizada && rp.DataConfirmacao == nil {
			agora := time.Now()
			rp.DataConfirmacao = &agora
		}
		reserva, err = tx.Reservas().Atualizar(ctx, rp)
		if err != nil {
			return err
		}

		if qr, err := tx.QRCodes().BuscarPorID(ctx, rp.QRCodeReservaID); err == nil {
			codigo = qr.Codigo
		}
		return nil
	})
	return reserva, codigo, err
}

// CancelarReserva cancela uma reserva pendente, devolvendo a quantidade ao pool.
func (s *Service) CancelarReserva(ctx context.Context, reservaID string) (domain.ReservaProduto, error) {
	reserva, codigo, err := s.transicionar(ctx, reservaID, domain.StatusPendente, domain.StatusCancelada)
	if err != nil {
		return domain.ReservaProduto{}, s.traduzir("Falha interna ao cancelar reserva.", err)
	}

	if codigo != "" {
		s.invalidarCatalogo(ctx, codigo)
	}
	s.logger.Info("Reserva cancelada.", map[string]interface{}{"reserva_id": reservaID})
	return reserva, nil
}

// FinalizarReserva registra a entrega de uma reserva confirmada.
// A venda já existe, então não há efeito nos livros.
func (s *Service) FinalizarReserva(ctx context.Context, reservaID string) (domain.ReservaProduto, error) {
	reserva, codigo, err := s.transicionar(ctx, reservaID, domain.StatusConfirmada, domain.StatusFinalizada)
	if err != nil {
		return domain.ReservaProduto{}, s.traduzir("Falha interna ao finalizar reserva.", err)
	}

	if codigo != "" {
		s.invalidarCatalogo(ctx, codigo)
	}
	s.logger.Info("Reserva finalizada.", map[string]interface{}{"reserva_id": reservaID})
	return reserva, nil
}

// ListarPorCPF retorna as reservas ativas do CPF e o total estimado pelo preço atual.
func (s *Service) ListarPorCPF(ctx context.Context, cpf string) (domain.ResumoReservas, error) {
	resumo := domain.ResumoReservas{Total: decimal.Zero}
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		resumo.Reservas, err = tx.Reservas().ListarPorCPF(ctx, cpf, domain.StatusPendente, domain.StatusConfirmada)
		if err != nil {
			return err
		}
		precos, err := precosDosProdutos(ctx, tx, resumo.Reservas)
		if err != nil {
			return err
		}
		for _, rp := range resumo.Reservas {
			resumo.Total = resumo.Total.Add(totalItem(precos[rp.ProdutoID].Preco, rp.Quantidade))
		}
		return nil
	})
	if err != nil {
		return domain.ResumoReservas{}, s.traduzir("Falha interna ao listar reservas.", err)
	}
	return resumo, nil
}

func precosDosProdutos(ctx context.Context, tx domain.Tx, reservas []domain.ReservaProduto) (map[string]domain.Produto, error) {
	ids := make([]string, 0, len(reservas))
	for _, rp := range reservas {
		ids = append(ids, rp.ProdutoID)
	}
	produtos, err := tx.Produtos().ListarPorIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[string]domain.Produto, len(produtos))
	for _, p := range produtos {
		porID[p.ID] = p
	}
	return porID, nil
}

func (s *Service) codigosDasReservas(ctx context.Context, tx domain.Tx, reservas []domain.ReservaProduto, codigos map[string]bool) error {
	for _, rp := range reservas {
		if rp.QRCodeReservaID == "" {
			continue
		}
		qr, err := tx.QRCodes().BuscarPorID(ctx, rp.QRCodeReservaID)
		if err != nil {
			return err
		}
		codigos[qr.Codigo] = true
	}
	return nil
}
