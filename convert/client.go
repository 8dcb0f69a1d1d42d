package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var log = logrus.New()

// SetLogLevel sets the logging level for the convert package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

const (
	// convertConcurrency bounds how many conversion tasks may be in flight
	// at once. Result processing downstream stays strictly sequential.
	convertConcurrency = 3

	pollInterval   = 2 * time.Second
	requestTimeout = 5 * time.Minute
)

// Client talks to a document-conversion server: it uploads a PDF, polls the
// conversion task and downloads the result archive.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
}

// NewClient creates a conversion client for the given server. apiKey may be
// empty for servers without authentication.
func NewClient(baseURL, apiKey string) *Client {
	logger := log.WithFields(logrus.Fields{
		"url": baseURL,
	})
	logger.Info("Creating new conversion client")

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = logger
	if apiKey != "" {
		client.HTTPClient = newHTTPClientWithBearer(apiKey)
		client.HTTPClient.Timeout = requestTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Every(pollInterval), 1),
	}
}

// taskResponse mirrors the conversion task JSON
type taskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"task_status"`
}

// Convert uploads one PDF, waits for the conversion to finish and downloads
// the result archive into outDir. It returns the archive path.
func (c *Client) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	logger := log.WithFields(logrus.Fields{
		"pdf": pdfPath,
		"url": c.baseURL,
	})

	mtype, err := mimetype.DetectFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("error detecting input type: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return "", fmt.Errorf("input %s is %s, not a PDF", pdfPath, mtype.String())
	}

	taskID, err := c.submit(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	logger = logger.WithField("task_id", taskID)
	logger.Info("Conversion task submitted")

	if err := c.awaitTask(ctx, taskID); err != nil {
		return "", err
	}
	logger.Info("Conversion task finished")

	archivePath := filepath.Join(outDir, fmt.Sprintf("json_%s.zip", taskID))
	if err := c.downloadResult(ctx, taskID, archivePath); err != nil {
		return "", err
	}
	logger.WithField("archive", archivePath).Info("Result archive downloaded")
	return archivePath, nil
}

// ConvertAll converts several PDFs. Submission and waiting may overlap up to
// a small concurrency limit; the returned archive paths are in no particular
// order.
func (c *Client) ConvertAll(ctx context.Context, pdfPaths []string, outDir string) ([]string, error) {
	var mu sync.Mutex
	var archives []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(convertConcurrency)
	for _, pdfPath := range pdfPaths {
		g.Go(func() error {
			archive, err := c.Convert(ctx, pdfPath, outDir)
			if err != nil {
				return fmt.Errorf("error converting %s: %w", pdfPath, err)
			}
			mu.Lock()
			archives = append(archives, archive)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return archives, nil
}

func (c *Client) submit(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("error opening input PDF: %w", err)
	}
	defer f.Close()

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile("files", filepath.Base(pdfPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to copy PDF content to form: %w", err)
	}

	_ = writer.WriteField("to_formats", "json")
	_ = writer.WriteField("do_ocr", "false")

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	requestURL := c.baseURL + "/v1alpha/convert/source/async"
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", requestURL, &requestBody)
	if err != nil {
		return "", fmt.Errorf("error creating conversion request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending conversion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading conversion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("conversion API returned status %d: %s", resp.StatusCode, string(body))
	}

	var task taskResponse
	if err := json.Unmarshal(body, &task); err != nil {
		return "", fmt.Errorf("error parsing conversion response: %w", err)
	}
	if task.TaskID == "" {
		return "", fmt.Errorf("conversion response carries no task ID: %s", string(body))
	}
	return task.TaskID, nil
}

// awaitTask polls the task endpoint until it reports success. Polling is
// rate-limited so a slow conversion does not hammer the server.
func (c *Client) awaitTask(ctx context.Context, taskID string) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		requestURL := fmt.Sprintf("%s/v1alpha/status/poll/%s", c.baseURL, taskID)
		req, err := retryablehttp.NewRequestWithContext(ctx, "GET", requestURL, nil)
		if err != nil {
			return fmt.Errorf("error creating status request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("error polling task %s: %w", taskID, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("error reading status response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status API returned status %d: %s", resp.StatusCode, string(body))
		}

		var task taskResponse
		if err := json.Unmarshal(body, &task); err != nil {
			return fmt.Errorf("error parsing status response: %w", err)
		}

		switch task.Status {
		case "success":
			return nil
		case "failure":
			return fmt.Errorf("conversion task %s failed", taskID)
		default:
			log.WithFields(logrus.Fields{
				"task_id": taskID,
				"status":  task.Status,
			}).Debug("Conversion task still running")
		}
	}
}

func (c *Client) downloadResult(ctx context.Context, taskID, archivePath string) error {
	requestURL := fmt.Sprintf("%s/v1alpha/result/%s", c.baseURL, taskID)
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return fmt.Errorf("error creating result request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error downloading result for task %s: %w", taskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("result API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return fmt.Errorf("error creating result directory: %w", err)
	}
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("error creating result archive: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("error writing result archive: %w", err)
	}
	return nil
}
