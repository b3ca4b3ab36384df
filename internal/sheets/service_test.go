package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

func TestServiceAppenderWritesRawValues(t *testing.T) {
	var (
		gotPath   string
		gotQuery  map[string]string
		gotValues [][]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(body, &vr); err != nil {
			t.Errorf("request body %q is not a ValueRange: %v", body, err)
		}
		gotValues = vr.Values

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"spreadsheetId":"sheet-123","updates":{"updatedRange":"'Calls'!A7:P7"}}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	a := &serviceAppender{values: svc.Spreadsheets.Values}

	row := []any{"=HYPERLINK(\"http://evil.test\")", "+15551234567", "$500,000"}
	id, err := a.Append(ctx, "sheet-123", "'Calls'!A:P", row)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if id != "'Calls'!A7:P7" {
		t.Errorf("Append() id = %q, want %q", id, "'Calls'!A7:P7")
	}
	if gotQuery["valueInputOption"] != "RAW" {
		t.Errorf("valueInputOption = %q, want RAW", gotQuery["valueInputOption"])
	}
	if gotQuery["insertDataOption"] != "INSERT_ROWS" {
		t.Errorf("insertDataOption = %q, want INSERT_ROWS", gotQuery["insertDataOption"])
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-123/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("request path = %q, want a values append for sheet-123", gotPath)
	}
	if len(gotValues) != 1 || len(gotValues[0]) != len(row) {
		t.Fatalf("values = %v, want one row of %d cells", gotValues, len(row))
	}
	for i, want := range row {
		if gotValues[0][i] != want {
			t.Errorf("cell %d = %v, want %v", i, gotValues[0][i], want)
		}
	}
}
