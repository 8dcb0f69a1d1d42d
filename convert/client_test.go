package convert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// minimal file content that mimetype detects as application/pdf
var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func writeSamplePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, samplePDF, 0o644))
	return path
}

// newTestClient builds a client without retries or poll throttling.
func newTestClient(serverURL string) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	return &Client{
		baseURL:    serverURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestClientConvert(t *testing.T) {
	archiveContent := []byte("PK\x03\x04 fake zip payload")
	polls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/v1alpha/convert/source/async", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		err := r.ParseMultipartForm(10 << 20)
		require.NoError(t, err)
		assert.Equal(t, "json", r.FormValue("to_formats"))
		f, fh, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "sample.pdf", fh.Filename)
		f.Close()

		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-123", Status: "pending"})
	})
	mux.HandleFunc("/v1alpha/status/poll/task-123", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "started"
		if polls >= 2 {
			status = "success"
		}
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-123", Status: status})
	})
	mux.HandleFunc("/v1alpha/result/task-123", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archiveContent)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	outDir := t.TempDir()

	archive, err := client.Convert(context.Background(), writeSamplePDF(t), outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "json_task-123.zip"), archive)
	assert.GreaterOrEqual(t, polls, 2, "client polled until the task succeeded")

	content, err := os.ReadFile(archive)
	require.NoError(t, err)
	assert.Equal(t, archiveContent, content)
}

func TestClientConvertRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	client := newTestClient("http://unused")
	_, err := client.Convert(context.Background(), path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestClientConvertTaskFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1alpha/convert/source/async", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-9", Status: "pending"})
	})
	mux.HandleFunc("/v1alpha/status/poll/task-9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-9", Status: "failure"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Convert(context.Background(), writeSamplePDF(t), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestClientConvertServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Convert(context.Background(), writeSamplePDF(t), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientConvertAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1alpha/convert/source/async", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-a", Status: "pending"})
	})
	mux.HandleFunc("/v1alpha/status/poll/task-a", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-a", Status: "success"})
	})
	mux.HandleFunc("/v1alpha/result/task-a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zip"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	pdf := writeSamplePDF(t)

	archives, err := client.ConvertAll(context.Background(), []string{pdf}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestClientBearerTransport(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(taskResponse{TaskID: "task-b", Status: "success"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	client.httpClient.RetryMax = 0
	client.httpClient.Logger = nil
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := client.awaitTask(ctx, "task-b")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}
