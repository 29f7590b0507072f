package probe

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ilkin0/bomprobe/internal/crypto"
	"github.com/ilkin0/bomprobe/internal/storage"
	"github.com/ilkin0/bomprobe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArchive writes a small KiCad project zip into a temp dir and returns
// its path and bytes.
func writeArchive(t *testing.T) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("power_sym_demo/power_sym_demo.kicad_sch")
	require.NoError(t, err)
	_, err = w.Write([]byte(`(kicad_sch (version 20231120) (generator "eeschema"))`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "power_sym_demo.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	return path, buf.Bytes()
}

func TestRun_PrintsStatusAndJSON(t *testing.T) {
	srv := testutil.NewMockServer(t, testutil.RespondJSON(http.StatusOK, map[string]string{"result": "ok"}))
	path, _ := writeArchive(t)

	var stdout bytes.Buffer
	err := New(nil, "").Run(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path}, &stdout)

	require.NoError(t, err)
	assert.Equal(t, "200\n{\"result\":\"ok\"}\n", stdout.String())
	assert.Equal(t, 1, srv.Requests())
}

func TestRun_PrintsReportStructure(t *testing.T) {
	srv := testutil.NewMockServer(t, nil)
	path, _ := writeArchive(t)

	var stdout bytes.Buffer
	err := New(nil, "").Run(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path}, &stdout)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "200", lines[0])

	want, err := json.Marshal(testutil.SampleReport())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), lines[1])
}

func TestRun_MissingFileMakesNoRequest(t *testing.T) {
	srv := testutil.NewMockServer(t, nil)
	missing := filepath.Join(t.TempDir(), "power_sym_demo.zip")

	var stdout bytes.Buffer
	err := New(nil, "").Run(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: missing}, &stdout)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenSource)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, stdout.String())
	assert.Equal(t, 0, srv.Requests())
}

func TestRun_NonJSONBodyAfterStatus(t *testing.T) {
	srv := testutil.NewMockServer(t, testutil.RespondRaw(http.StatusOK, "text/plain", "oops"))
	path, _ := writeArchive(t)

	var stdout bytes.Buffer
	err := New(nil, "").Run(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path}, &stdout)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeBody)
	assert.Equal(t, "200\n", stdout.String())
}

func TestRun_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + testutil.EndpointPath
	srv.Close()
	path, _ := writeArchive(t)

	var stdout bytes.Buffer
	err := New(nil, "").Run(context.Background(), url, storage.LocalFile{Path: path}, &stdout)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSend)
	assert.Empty(t, stdout.String())
}

func TestRun_ErrorStatusIsReported(t *testing.T) {
	srv := testutil.NewMockServer(t, nil)
	path, _ := writeArchive(t)

	var stdout bytes.Buffer
	err := New(nil, "archive").Run(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path}, &stdout)

	require.NoError(t, err)
	assert.Equal(t, "400\n{\"error\":\"No file uploaded\"}\n", stdout.String())
}

func TestUpload_SendsExactBytesUnderFileField(t *testing.T) {
	srv := testutil.NewMockServer(t, testutil.RespondEcho())
	path, data := writeArchive(t)

	res, err := New(nil, "").Upload(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var echo testutil.EchoResponse
	require.NoError(t, json.Unmarshal(res.Body, &echo))
	assert.Equal(t, "file", echo.Field)
	assert.Equal(t, "power_sym_demo.zip", echo.Filename)
	assert.Equal(t, data, echo.Content)
	assert.Equal(t, crypto.HashBytes(data), echo.SHA256)

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "file", uploads[0].Field)
	assert.Equal(t, data, uploads[0].Data)
	assert.Equal(t, "application/octet-stream", uploads[0].ContentType)
}

func TestUpload_SendsRequestID(t *testing.T) {
	srv := testutil.NewMockServer(t, testutil.RespondEcho())
	path, _ := writeArchive(t)

	res, err := New(nil, "").Upload(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path})
	require.NoError(t, err)

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Len(t, res.RequestID, 36)
	assert.Equal(t, res.RequestID, uploads[0].RequestID)
}

func TestUpload_EmptyFile(t *testing.T) {
	srv := testutil.NewMockServer(t, testutil.RespondEcho())
	path := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	res, err := New(nil, "").Upload(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path})
	require.NoError(t, err)

	var echo testutil.EchoResponse
	require.NoError(t, json.Unmarshal(res.Body, &echo))
	assert.Equal(t, 0, echo.Size)
	assert.Equal(t, crypto.HashBytes(nil), echo.SHA256)
}

func TestUpload_ClientTimeout(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request, _ testutil.Upload) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}
	srv := testutil.NewMockServer(t, slow)
	path, _ := writeArchive(t)

	_, err := New(NewHTTPClient(50*time.Millisecond), "").Upload(context.Background(), srv.EndpointURL(), storage.LocalFile{Path: path})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSend)
}

func TestUpload_CancelledContext(t *testing.T) {
	srv := testutil.NewMockServer(t, nil)
	path, _ := writeArchive(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, "").Upload(ctx, srv.EndpointURL(), storage.LocalFile{Path: path})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSend)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_JSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"object", `{"result": "ok"}`, `{"result":"ok"}`, false},
		{"keeps number text", `{"price": 0.10, "qty": 12345678901234567890}`, `{"price":0.10,"qty":12345678901234567890}`, false},
		{"array", `[1, "a", null]`, `[1,"a",null]`, false},
		{"trailing newline", "{\"a\":true}\n", `{"a":true}`, false},
		{"no html escaping", `{"ref":"R1&R2<>"}`, `{"ref":"R1&R2<>"}`, false},
		{"plain text", "oops", "", true},
		{"empty body", "", "", true},
		{"trailing garbage", `{"a":1} {"b":2}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Result{StatusCode: http.StatusOK, Body: []byte(tt.body)}

			v, err := res.JSON()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDecodeBody)
				return
			}
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, printJSON(&out, v))
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}
