package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var (
	spreadsheetUrlRegex = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	spreadsheetIdRegex  = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

// ParseSpreadsheetID accepts either a spreadsheet url or a bare id.
func ParseSpreadsheetID(locator string) (string, error) {
	if groups := spreadsheetUrlRegex.FindStringSubmatch(locator); len(groups) == 2 {
		return groups[1], nil
	}
	if spreadsheetIdRegex.MatchString(locator) {
		return locator, nil
	}
	return "", fmt.Errorf("not a spreadsheet url or id: %q", locator)
}

// CredentialsFromEnv returns the service account json held in the given
// environment variable.
func CredentialsFromEnv(name string) ([]byte, error) {
	payload := os.Getenv(name)
	if payload == "" {
		return nil, fmt.Errorf("environment variable %s is empty", name)
	}
	return []byte(payload), nil
}

// GoogleValues implements ValuesAPI with the Google Sheets v4 API.
type GoogleValues struct {
	svc *gsheets.Service
}

// NewGoogleValues authorizes a service account for the spreadsheets scope.
func NewGoogleValues(ctx context.Context, credentialsJson []byte) (GoogleValues, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJson, gsheets.SpreadsheetsScope)
	if err != nil {
		return GoogleValues{}, fmt.Errorf("parse service account credentials: %w", err)
	}
	return newGoogleValues(ctx, option.WithCredentials(creds))
}

func newGoogleValues(ctx context.Context, opts ...option.ClientOption) (GoogleValues, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return GoogleValues{}, fmt.Errorf("create sheets service: %w", err)
	}
	return GoogleValues{svc: svc}, nil
}

func (g GoogleValues) Clear(ctx context.Context, spreadsheetId, rangeA1 string) error {
	_, err := g.svc.Spreadsheets.Values.
		BatchClear(spreadsheetId, &gsheets.BatchClearValuesRequest{
			Ranges: []string{rangeA1},
		}).
		Context(ctx).
		Do()
	return err
}

func (g GoogleValues) Update(ctx context.Context, spreadsheetId, rangeA1 string, values [][]any, inputOption string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(spreadsheetId, rangeA1, &gsheets.ValueRange{
			Range:  rangeA1,
			Values: values,
		}).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	return err
}
