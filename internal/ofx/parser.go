// Package ofx reads bank and credit card statements in OFX/QFX format.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An opening tag alone on its line with the closing bracket missing.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// Processor reference suffixes such as "AMAZON.COM*RT4Y7HG2".
	referenceSuffixRegex = regexp.MustCompile(`\*[A-Z0-9]+$`)
	// Store numbers such as "STARBUCKS STORE #1234".
	storeNumberRegex = regexp.MustCompile(`(?i)\s+(STORE\s+)?#\s*\d+$`)
)

var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"RECURRING PAYMENT ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Parser turns OFX statements into charges.
type Parser struct {
	// DefaultCurrency is used when a statement does not declare one.
	DefaultCurrency string
}

// NewParser creates a new OFX parser.
func NewParser(defaultCurrency string) *Parser {
	return &Parser{DefaultCurrency: defaultCurrency}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// ParseFile reads every bank and credit card statement in reader and
// returns the debits. Credits, such as refunds and deposits, are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Charge, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		charges   []model.Charge
		statements int
	)

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements++
			charges = append(charges, p.debits(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String())...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements++
			charges = append(charges, p.debits(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String())...)
		}
	}

	if statements == 0 {
		return nil, fmt.Errorf("%w: file holds no bank or credit card statements", common.ErrNoCharges)
	}

	slog.Debug("Parsed OFX file",
		"statements", statements,
		"charges", len(charges))

	return charges, nil
}

func (p *Parser) debits(list *ofxgo.TransactionList, accountID, currency string) []model.Charge {
	if list == nil {
		return nil
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "XXX" {
		currency = p.DefaultCurrency
	}

	var charges []model.Charge
	for _, tx := range list.Transactions {
		amount, _ := tx.TrnAmt.Float64()
		if amount >= 0 {
			continue
		}

		charges = append(charges, model.Charge{
			ID:        string(tx.FiTID),
			Date:      tx.DtPosted.Time,
			Payee:     payeeName(tx),
			Amount:    -amount,
			AccountID: accountID,
			Currency:  currency,
		})
	}
	return charges
}

// payeeName returns the cleanest merchant name the transaction carries.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericDescriptions[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 6 && name[2] == '/' && name[5] == ' ' {
		name = name[6:]
	}

	name = referenceSuffixRegex.ReplaceAllString(name, "")
	name = storeNumberRegex.ReplaceAllString(name, "")

	return strings.TrimSpace(name)
}
