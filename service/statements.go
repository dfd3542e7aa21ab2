package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/conv"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// statementLine is one paid commission of a payout
type statementLine struct {
	CommissionID uint64
	OrderID      string
	ProductName  string
	SaleAmount   decimal.Decimal
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

var statementWidths = []int{25, 45, 60, 30, 30}

// PayoutStatement renders the pdf statement of a payout
func (service *Service) PayoutStatement(id uint64) (*model.GeneratedFile, error) {
	payout, err := service.GetPayout(id)
	if err != nil {
		return nil, err
	}
	affiliate, err := service.GetAffiliateByID(payout.AffiliateID)
	if err != nil {
		return nil, err
	}
	lines := make([]statementLine, 0)
	db := service.repo.ConnReaderAdmin.Table("payout_items pi").
		Select("pi.commission_id, c.order_id, c.product_name, c.sale_amount, pi.amount, c.created_at").
		Joins("JOIN commissions c ON c.id = pi.commission_id").
		Where("pi.payout_id = ?", id).
		Order("pi.id").
		Scan(&lines)
	if db.Error != nil {
		return nil, classify(db.Error, "payout items", "load payout items")
	}

	data, err := renderStatement(payout, affiliate, lines, service.cfg.Commission.Currency)
	if err != nil {
		return nil, err
	}
	return &model.GeneratedFile{Type: "pdf", DataType: "application/pdf", Data: data}, nil
}

func renderStatement(payout *model.Payout, affiliate *model.Affiliate, lines []statementLine, currency string) ([]byte, error) {
	buf := bytes.Buffer{}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(40, 10, fmt.Sprintf("Payout statement #%d", payout.ID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Affiliate: %s (%s)", affiliate.Username, affiliate.Email), "0", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", payout.CreatedAt.Format("2 Jan 2006")), "0", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(95, 6, fmt.Sprintf("Payment method: %s", payout.PaymentMethod), "0", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", payout.Status), "0", 0, "R", false, 0, "")
	pdf.Ln(6)
	if payout.TransactionID != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Transaction: %s", payout.TransactionID), "0", 0, "L", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, str := range []string{"Commission", "Order", "Product", "Sale", "Amount"} {
		pdf.CellFormat(float64(statementWidths[i]), 7, str, "1", 0, "", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	for _, line := range lines {
		row := []string{
			fmt.Sprintf("%d", line.CommissionID),
			line.OrderID,
			line.ProductName,
			conv.FmtMoney(line.SaleAmount),
			conv.FmtMoney(line.Amount),
		}
		for i, str := range row {
			align := "L"
			if i >= 3 {
				align = "R"
			}
			pdf.CellFormat(float64(statementWidths[i]), 7, str, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total (%s) %s", currency, conv.FmtMoney(payout.Amount)), "", 0, "R", false, 0, "")

	err := pdf.Output(&buf)
	return buf.Bytes(), err
}

func statementKey(payout *model.Payout) string {
	return fmt.Sprintf("statements/%d/%s/payout-%d.pdf", payout.AffiliateID, payout.CreatedAt.Format("2006-01"), payout.ID)
}

// archiveStatement uploads the statement of a completed payout and stores its key
func (service *Service) archiveStatement(id uint64) {
	logger := log.With().Str("section", "payouts").Str("action", "archive_statement").Uint64("payout_id", id).Logger()
	file, err := service.PayoutStatement(id)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to render payout statement")
		return
	}
	payout, err := service.GetPayout(id)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load payout")
		return
	}
	key := statementKey(payout)
	location, err := service.uploader.Upload(key, file.DataType, file.Data)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to upload payout statement")
		return
	}
	if err := service.repo.Conn.Model(&model.Payout{}).Where("id = ?", id).Update("statement_key", key).Error; err != nil {
		logger.Error().Err(err).Msg("Unable to save statement key")
		return
	}
	logger.Info().Str("location", location).Msg("Payout statement archived")
}
