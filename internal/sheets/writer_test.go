package sheets

import (
	"context"
	"errors"
	"testing"

	"screener-sync/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type call struct {
	method      string
	id          string
	rangeA1     string
	values      [][]any
	inputOption string
}

type fakeValues struct {
	calls     []call
	clearErr  error
	updateErr error
}

func (f *fakeValues) Clear(ctx context.Context, spreadsheetId, rangeA1 string) error {
	f.calls = append(f.calls, call{method: "clear", id: spreadsheetId, rangeA1: rangeA1})
	return f.clearErr
}

func (f *fakeValues) Update(ctx context.Context, spreadsheetId, rangeA1 string, values [][]any, inputOption string) error {
	f.calls = append(f.calls, call{
		method:      "update",
		id:          spreadsheetId,
		rangeA1:     rangeA1,
		values:      values,
		inputOption: inputOption,
	})
	return f.updateErr
}

func TestWriteClearsThenUpdates(t *testing.T) {
	api := &fakeValues{}
	tel := &telemetry.Recorder{}
	writer := NewWriter(api, "sheet-id", "Sheet2", tel)

	rows := [][]string{
		{"Name", "Hyperlink"},
		{"TCS", `=HYPERLINK("https://www.screener.in/company/TCS/", "TCS")`},
		{"", ""},
	}
	err := writer.Write(context.Background(), "A1:T6000", rows)
	require.NoError(t, err)

	require.Equal(t, []call{
		{method: "clear", id: "sheet-id", rangeA1: "'Sheet2'!A1:T6000"},
		{
			method:  "update",
			id:      "sheet-id",
			rangeA1: "'Sheet2'!A1:T6000",
			values: [][]any{
				{"Name", "Hyperlink"},
				{"TCS", `=HYPERLINK("https://www.screener.in/company/TCS/", "TCS")`},
				{"", ""},
			},
			inputOption: InputUserEntered,
		},
	}, api.calls)
	require.True(t, tel.Contains("info", "data written"))
}

func TestWriteEmptyRowsOnlyClears(t *testing.T) {
	api := &fakeValues{}
	tel := &telemetry.Recorder{}
	writer := NewWriter(api, "sheet-id", "Sheet2", tel)

	err := writer.Write(context.Background(), "Z1:AQ6000", nil)
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	require.Equal(t, "clear", api.calls[0].method)
	require.True(t, tel.Contains("warning", report_writer_write))
}

func TestWriteFailures(t *testing.T) {
	rejected := errors.New("permission denied")
	cases := []struct {
		name  string
		api   *fakeValues
		stage string
		calls int
	}{
		{name: "clear", api: &fakeValues{clearErr: rejected}, stage: "clear", calls: 1},
		{name: "update", api: &fakeValues{updateErr: rejected}, stage: "update", calls: 2},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			tel := &telemetry.Recorder{}
			writer := NewWriter(test.api, "sheet-id", "Sheet2", tel)

			err := writer.Write(context.Background(), "A1:T6000", [][]string{{"a"}})
			var failure *WriteFailure
			require.True(t, errors.As(err, &failure))
			require.Equal(t, test.stage, failure.Stage)
			require.Equal(t, "'Sheet2'!A1:T6000", failure.Range)
			require.ErrorIs(t, err, rejected)
			require.Len(t, test.api.calls, test.calls)
			require.True(t, tel.Contains("broken", report_writer_write))
		})
	}
}

func TestWriteWarnsWhenRowsOverflowRange(t *testing.T) {
	api := &fakeValues{}
	tel := &telemetry.Recorder{}
	writer := NewWriter(api, "sheet-id", "Sheet2", tel)

	err := writer.Write(context.Background(), "A1:B10", [][]string{{"a", "b", "c"}})
	require.NoError(t, err)
	require.Len(t, api.calls, 2)
	require.True(t, tel.Contains("warning", report_writer_write))

	tel = &telemetry.Recorder{}
	writer = NewWriter(api, "sheet-id", "Sheet2", tel)
	err = writer.Write(context.Background(), "A1:C10", [][]string{{"a", "b", "c"}})
	require.NoError(t, err)
	require.Empty(t, tel.Reports("warning"))
}
