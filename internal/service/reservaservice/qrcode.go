package reservaservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/cache"
	"goficha/internal/pkg/pdf"

	"github.com/google/uuid"
)

const validadePadraoQRCode = 7 * 24 * time.Hour

func chaveCatalogo(codigo string) string { return "catalogo:" + codigo }

// gerarCodigo retorna um código no formato RESERVA-XXXXXXXXXXXX.
func gerarCodigo() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RESERVA-" + strings.ToUpper(hex[:12])
}

func semDuplicados(ids []string) []string {
	vistos := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !vistos[id] {
			vistos[id] = true
			out = append(out, id)
		}
	}
	return out
}

func exigirProdutos(ctx context.Context, tx domain.Tx, ids []string) error {
	produtos, err := tx.Produtos().ListarPorIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(produtos) != len(ids) {
		encontrados := make(map[string]bool, len(produtos))
		for _, p := range produtos {
			encontrados[p.ID] = true
		}
		for _, id := range ids {
			if !encontrados[id] {
				return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", id))
			}
		}
	}
	return nil
}

func validarJanela(inicio, expiracao time.Time) error {
	if !expiracao.After(inicio) {
		return apperror.NewValidationError("A data de expiração deve ser posterior à data de início.")
	}
	return nil
}

// CriarQRCode cria um QR code ativo. Sem datas, vale a partir de agora por 7 dias.
func (s *Service) CriarQRCode(ctx context.Context, novo domain.NovoQRCode) (domain.QRCodeReserva, error) {
	ids := semDuplicados(novo.ProdutoIDs)
	if len(ids) == 0 {
		return domain.QRCodeReserva{}, apperror.NewValidationError("Informe ao menos um produto para o QR code.")
	}

	agora := time.Now()
	inicio := agora
	if novo.DataInicio != nil {
		inicio = *novo.DataInicio
	}
	expiracao := inicio.Add(validadePadraoQRCode)
	if novo.DataExpiracao != nil {
		expiracao = *novo.DataExpiracao
	}
	if err := validarJanela(inicio, expiracao); err != nil {
		return domain.QRCodeReserva{}, err
	}

	var qr domain.QRCodeReserva
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if err := exigirProdutos(ctx, tx, ids); err != nil {
			return err
		}
		var err error
		qr, err = tx.QRCodes().Criar(ctx, domain.QRCodeReserva{
			ID:            uuid.NewString(),
			Codigo:        gerarCodigo(),
			Descricao:     strings.TrimSpace(novo.Descricao),
			DataInicio:    inicio,
			DataExpiracao: expiracao,
			Ativo:         true,
			ProdutoIDs:    ids,
			DataCriacao:   agora,
		})
		return err
	})
	if err != nil {
		return domain.QRCodeReserva{}, s.traduzir("Falha interna ao criar QR code.", err)
	}

	s.logger.Info("QR code de reserva criado.", map[string]interface{}{"qrcode_id": qr.ID, "codigo": qr.Codigo})
	return qr, nil
}

func (s *Service) BuscarQRCode(ctx context.Context, id string) (domain.QRCodeReserva, error) {
	var qr domain.QRCodeReserva
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		qr, err = tx.QRCodes().BuscarPorID(ctx, id)
		return err
	})
	if err != nil {
		return domain.QRCodeReserva{}, s.traduzir("Falha interna ao buscar QR code.", err)
	}
	return qr, nil
}

// AtualizarQRCode altera descrição, janela, estado e produtos do QR code.
func (s *Service) AtualizarQRCode(ctx context.Context, id string, upd domain.AtualizacaoQRCode) (domain.QRCodeReserva, error) {
	var qr domain.QRCodeReserva
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		atual, err := tx.QRCodes().BuscarPorID(ctx, id)
		if err != nil {
			return err
		}

		if upd.Descricao != nil {
			atual.Descricao = strings.TrimSpace(*upd.Descricao)
		}
		if upd.DataInicio != nil {
			atual.DataInicio = *upd.DataInicio
		}
		if upd.DataExpiracao != nil {
			atual.DataExpiracao = *upd.DataExpiracao
		}
		if err := validarJanela(atual.DataInicio, atual.DataExpiracao); err != nil {
			return err
		}
		if upd.Ativo != nil {
			atual.Ativo = *upd.Ativo
		}
		if upd.ProdutoIDs != nil {
			ids := semDuplicados(upd.ProdutoIDs)
			if len(ids) == 0 {
				return apperror.NewValidationError("Informe ao menos um produto para o QR code.")
			}
			if err := exigirProdutos(ctx, tx, ids); err != nil {
				return err
			}
			atual.ProdutoIDs = ids
		}

		qr, err = tx.QRCodes().Atualizar(ctx, atual)
		return err
	})
	if err != nil {
		return domain.QRCodeReserva{}, s.traduzir("Falha interna ao atualizar QR code.", err)
	}

	s.invalidarCatalogo(ctx, qr.Codigo)
	s.logger.Info("QR code de reserva atualizado.", map[string]interface{}{"qrcode_id": qr.ID, "ativo": qr.Ativo})
	return qr, nil
}

// CatalogoQRCode monta a lista pública de produtos reserváveis do QR code.
// O resultado fica em cache até expirar ou até uma reserva mudar o pool.
func (s *Service) CatalogoQRCode(ctx context.Context, codigo string) (domain.CatalogoQRCode, error) {
	agora := time.Now()

	if bruto, err := s.cache.Get(ctx, chaveCatalogo(codigo)); err == nil {
		var catalogo domain.CatalogoQRCode
		if err := json.Unmarshal([]byte(bruto), &catalogo); err == nil {
			if agora.After(catalogo.DataExpiracao) {
				return domain.CatalogoQRCode{}, apperror.NewQrCodeExpiredError(codigo)
			}
			s.logger.Debug("Catálogo servido do cache.", map[string]interface{}{"codigo": codigo})
			return catalogo, nil
		}
	} else if !apperror.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Falha ao ler catálogo do cache.", map[string]interface{}{"codigo": codigo, "erro": err.Error()})
	}

	var catalogo domain.CatalogoQRCode
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		qr, err := tx.QRCodes().BuscarPorCodigo(ctx, codigo)
		if err != nil {
			return err
		}
		if err := verificarJanela(qr, agora); err != nil {
			return err
		}

		produtos, err := tx.Produtos().ListarPorIDs(ctx, qr.ProdutoIDs)
		if err != nil {
			return err
		}

		catalogo = domain.CatalogoQRCode{
			Codigo:        qr.Codigo,
			Descricao:     qr.Descricao,
			DataExpiracao: qr.DataExpiracao,
			Produtos:      []domain.ProdutoCatalogo{},
		}
		for _, p := range produtos {
			if !p.DisponivelReserva {
				continue
			}
			ativas, err := tx.Reservas().SomarAtivas(ctx, p.ID)
			if err != nil {
				return err
			}
			disponivel := p.QuantidadeReservaDisponivel - ativas
			if disponivel < 0 {
				disponivel = 0
			}
			catalogo.Produtos = append(catalogo.Produtos, domain.ProdutoCatalogo{
				ID:            p.ID,
				Nome:          p.Nome,
				Unidade:       p.Unidade,
				Preco:         p.Preco,
				Categoria:     p.Categoria,
				LimiteReserva: p.LimiteReserva,
				Disponivel:    disponivel,
			})
		}
		return nil
	})
	if err != nil {
		return domain.CatalogoQRCode{}, s.traduzir("Falha interna ao montar catálogo.", err)
	}

	if bruto, err := json.Marshal(catalogo); err == nil {
		if err := s.cache.Set(ctx, chaveCatalogo(codigo), string(bruto), s.cfg.CatalogoTTL); err != nil {
			s.logger.Warn("Falha ao gravar catálogo no cache.", map[string]interface{}{"codigo": codigo, "erro": err.Error()})
		}
	}
	return catalogo, nil
}

func (s *Service) invalidarCatalogo(ctx context.Context, codigo string) {
	if err := s.cache.Delete(ctx, chaveCatalogo(codigo)); err != nil {
		s.logger.Warn("Falha ao invalidar catálogo no cache.", map[string]interface{}{"codigo": codigo, "erro": err.Error()})
	}
}

// ListarReservasQRCode devolve uma linha por reserva, com o preço atual do produto.
func (s *Service) ListarReservasQRCode(ctx context.Context, qrcodeID string) ([]domain.LinhaReservaQRCode, error) {
	var linhas []domain.LinhaReservaQRCode
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.QRCodes().BuscarPorID(ctx, qrcodeID); err != nil {
			return err
		}
		reservas, err := tx.Reservas().ListarPorQRCode(ctx, qrcodeID)
		if err != nil {
			return err
		}
		produtos, err := precosDosProdutos(ctx, tx, reservas)
		if err != nil {
			return err
		}

		linhas = make([]domain.LinhaReservaQRCode, 0, len(reservas))
		for _, rp := range reservas {
			p := produtos[rp.ProdutoID]
			linhas = append(linhas, domain.LinhaReservaQRCode{
				ID:            rp.ID,
				NomeCompleto:  rp.NomeCompleto,
				CPF:           rp.CPF,
				Produto:       p.Nome,
				Quantidade:    rp.Quantidade,
				PrecoUnitario: p.Preco,
				PrecoTotal:    totalItem(p.Preco, rp.Quantidade),
				Status:        rp.Status,
				DataReserva:   rp.DataReserva,
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.traduzir("Falha interna ao listar reservas do QR code.", err)
	}
	return linhas, nil
}

// GerarPDFQRCode devolve a folha de impressão do QR code e o nome do arquivo.
// Os dados são lidos numa transação; o PDF é gerado depois, fora dela.
func (s *Service) GerarPDFQRCode(ctx context.Context, qrcodeID string) ([]byte, string, error) {
	var qr domain.QRCodeReserva
	var produtos []domain.Produto
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		qr, err = tx.QRCodes().BuscarPorID(ctx, qrcodeID)
		if err != nil {
			return err
		}
		produtos, err = tx.Produtos().ListarPorIDs(ctx, qr.ProdutoIDs)
		return err
	})
	if err != nil {
		return nil, "", s.traduzir("Falha interna ao carregar QR code.", err)
	}

	url := strings.TrimRight(s.cfg.URLPublica, "/") + "/reservas/" + qr.Codigo
	conteudo, err := pdf.FolhaQRCode(qr, produtos, url)
	if err != nil {
		return nil, "", s.traduzir("Falha ao gerar PDF do QR code.", err)
	}
	return conteudo, fmt.Sprintf("qr_code_reserva_%s.pdf", qr.Codigo), nil
}
