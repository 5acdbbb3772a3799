package pdf

import (
	"bytes"
	"fmt"
	"image/png"

	"goficha/internal/domain"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
)

// tamanho do QR em pixels antes de ir para o PDF
const qrPixels = 512

// FolhaQRCode gera uma folha A4 com o QR code da campanha de reservas,
// a janela de validade e a lista de produtos reserváveis.
// urlReserva é o conteúdo codificado no QR (link público da página de reserva).
func FolhaQRCode(qrc domain.QRCodeReserva, produtos []domain.Produto, urlReserva string) ([]byte, error) {
	img, err := qrPNG(urlReserva)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetTitle("Reserva "+qrc.Codigo, true)
	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	contentW := pageW - 30
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(contentW, 10, tr("Reserva Antecipada"), "", 1, "C", false, 0, "")
	if qrc.Descricao != "" {
		doc.SetFont("Helvetica", "", 12)
		doc.CellFormat(contentW, 7, tr(qrc.Descricao), "", 1, "C", false, 0, "")
	}
	doc.Ln(4)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(qrc.Codigo, opts, bytes.NewReader(img))
	size := 90.0
	doc.ImageOptions(qrc.Codigo, (pageW-size)/2, doc.GetY(), size, size, true, opts, 0, "")
	doc.Ln(4)

	doc.SetFont("Courier", "B", 12)
	doc.CellFormat(contentW, 6, qrc.Codigo, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentW, 6, tr(fmt.Sprintf("Válido de %s até %s",
		qrc.DataInicio.Format("02/01/2006 15:04"), qrc.DataExpiracao.Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	doc.Ln(6)

	colNome := contentW * 0.6
	colPreco := contentW * 0.2
	colLimite := contentW * 0.2

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(colNome, 7, "Produto", "B", 0, "L", false, 0, "")
	doc.CellFormat(colPreco, 7, tr("Preço"), "B", 0, "R", false, 0, "")
	doc.CellFormat(colLimite, 7, "Limite", "B", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, p := range produtos {
		doc.CellFormat(colNome, 6, tr(p.Nome), "", 0, "L", false, 0, "")
		doc.CellFormat(colPreco, 6, "R$ "+p.Preco.StringFixed(2), "", 0, "R", false, 0, "")
		doc.CellFormat(colLimite, 6, fmt.Sprintf("%d %s", p.LimiteReserva, p.Unidade), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: falha ao gerar folha do QR code: %w", err)
	}
	return buf.Bytes(), nil
}

func qrPNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("pdf: falha ao codificar QR: %w", err)
	}
	code, err = barcode.Scale(code, qrPixels, qrPixels)
	if err != nil {
		return nil, fmt.Errorf("pdf: falha ao redimensionar QR: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("pdf: falha ao gerar PNG do QR: %w", err)
	}
	return buf.Bytes(), nil
}
