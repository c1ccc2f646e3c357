package sheets

import (
	"context"
	"fmt"

	"screener-sync/internal/components/assert"
	"screener-sync/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sheets")

const (
	report_writer_write = "writer.write"

	// InputUserEntered makes the backend parse values as if typed by a user,
	// so formulas like =HYPERLINK(...) are evaluated.
	InputUserEntered = "USER_ENTERED"
)

// ValuesAPI is the part of the spreadsheet backend the writer needs.
//
// note: fault injection point
type ValuesAPI interface {
	Clear(ctx context.Context, spreadsheetId, rangeA1 string) error
	Update(ctx context.Context, spreadsheetId, rangeA1 string, values [][]any, inputOption string) error
}

// WriteFailure is returned when clearing or updating a range is rejected.
type WriteFailure struct {
	Range string
	Stage string
	Err   error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("write %s: %s: %s", e.Range, e.Stage, e.Err.Error())
}

func (e *WriteFailure) Unwrap() error {
	return e.Err
}

// Writer overwrites fixed ranges of one tab of one spreadsheet.
type Writer struct {
	api           ValuesAPI
	spreadsheetId string
	tab           string
	tel           telemetry.API
}

func NewWriter(api ValuesAPI, spreadsheetId, tab string, tel telemetry.API) Writer {
	assert.NotNil(api)
	assert.NotNil(tel)
	assert.NotEmptyStr(spreadsheetId)

	return Writer{
		api:           api,
		spreadsheetId: spreadsheetId,
		tab:           tab,
		tel:           telemetry.NewScopedAPI("sheet_writer", tel),
	}
}

func toValues(rows [][]string) [][]any {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

func widestRow(rows [][]string) int {
	widest := 0
	for _, row := range rows {
		widest = max(widest, len(row))
	}
	return widest
}

// Write clears the whole range and then writes rows from its top left cell.
func (w Writer) Write(ctx context.Context, rangeA1 string, rows [][]string) error {
	ctx, span := tracer.Start(ctx, "writer:Write")
	defer span.End()

	qualified := QualifyRange(w.tab, rangeA1)
	span.SetAttributes(
		attribute.String("range", qualified),
		attribute.Int("rows", len(rows)),
	)

	fail := func(stage string, err error) error {
		failure := &WriteFailure{Range: qualified, Stage: stage, Err: err}
		w.tel.ReportBroken(report_writer_write, failure)
		span.SetStatus(codes.Error, failure.Error())
		return failure
	}

	err := w.api.Clear(ctx, w.spreadsheetId, qualified)
	if err != nil {
		return fail("clear", err)
	}
	if len(rows) == 0 {
		w.tel.ReportWarning(report_writer_write, fmt.Errorf("no rows to write, range left cleared"), qualified)
		return nil
	}

	r, err := ParseRange(rangeA1)
	if err == nil && widestRow(rows) > r.Columns() {
		w.tel.ReportWarning(
			report_writer_write,
			fmt.Errorf("rows are %d columns wide but the range holds %d", widestRow(rows), r.Columns()),
			qualified,
		)
	}

	err = w.api.Update(ctx, w.spreadsheetId, qualified, toValues(rows), InputUserEntered)
	if err != nil {
		return fail("update", err)
	}

	w.tel.ReportInfo("data written", qualified, len(rows))
	return nil
}
