// Package sheets appends synced transactions to a Google Sheets ledger.
// The ledger is the worker's destination; the API server never touches it.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Ledger struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewLedger builds a ledger client for the given spreadsheet and sheet.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func NewLedger(ctx context.Context, spreadsheetID, sheetName string) (*Ledger, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Ledger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append writes one transaction row and returns the updated range reference.
func (l *Ledger) Append(ctx context.Context, t core.Transaction) (string, error) {
	row := []interface{}{
		strconv.FormatInt(t.ID, 10),
		t.Date.Format("2006-01-02"),
		string(t.Type),
		t.Category,
		t.Description,
		t.Amount.Units(),
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	resp, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheetName+"!A:F", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append ledger row: %w", err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Transaction appended to ledger",
		log.FieldComponent, log.ComponentLedger,
		log.FieldTxID, t.ID,
		log.FieldLedgerRef, ref)

	return ref, nil
}

// Strike records a deletion as a reversal row. Rewriting spreadsheet history
// in place is fragile across concurrent appends, so the ledger stays
// append-only.
func (l *Ledger) Strike(ctx context.Context, transactionID int64) error {
	row := []interface{}{
		strconv.FormatInt(transactionID, 10),
		"", "deleted", "", "transaction removed", "",
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheetName+"!A:F", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append reversal row: %w", err)
	}

	slog.InfoContext(ctx, "Transaction struck from ledger",
		log.FieldComponent, log.ComponentLedger,
		log.FieldTxID, transactionID)
	return nil
}
