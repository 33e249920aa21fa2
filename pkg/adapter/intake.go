package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/utils/logging"
)

var (
	// ErrIntakeRejected means the intake service refused the document
	ErrIntakeRejected = goerr.New("intake service rejected the document")

	// ErrIntakeExhausted means the job was still processing when the
	// polling budget ran out. Distinct from rejection so callers can
	// tell "gave up waiting" from "never started".
	ErrIntakeExhausted = goerr.New("intake polling budget exhausted")
)

// Intake is the interface for the external OCR service that turns an
// uploaded document into plain text
type Intake interface {
	// Submit hands a retrievable document URL to the service and
	// returns the processing job ID
	Submit(ctx context.Context, url string) (string, error)
	// ExtractText polls the job until it leaves the processing state
	// and returns the concatenated document text
	ExtractText(ctx context.Context, jobID string) (string, error)
}

// statusProcessing is the only non-terminal job status the service reports
const statusProcessing = "Processing"

type intakeClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client

	maxPolls     int
	pollInterval time.Duration
}

type IntakeOption func(*intakeClient)

// WithIntakeHTTPClient replaces the underlying HTTP client
func WithIntakeHTTPClient(c *http.Client) IntakeOption {
	return func(i *intakeClient) {
		i.httpClient = c
	}
}

// WithIntakeMaxPolls sets the polling attempt budget
func WithIntakeMaxPolls(n int) IntakeOption {
	return func(i *intakeClient) {
		i.maxPolls = n
	}
}

// WithIntakePollInterval sets the initial polling interval. The interval
// doubles after each attempt up to 30 seconds.
func WithIntakePollInterval(d time.Duration) IntakeOption {
	return func(i *intakeClient) {
		i.pollInterval = d
	}
}

// NewIntake creates a client for the document intake service
func NewIntake(endpoint, apiKey string, opts ...IntakeOption) Intake {
	i := &intakeClient{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		maxPolls:     10,
		pollInterval: time.Second,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

type submitRequest struct {
	InputSource struct {
		URL string `json:"url"`
	} `json:"inputSource"`
}

type submitResponse struct {
	ID string `json:"id"`
}

func (i *intakeClient) Submit(ctx context.Context, url string) (string, error) {
	var body submitRequest
	body.InputSource.URL = url

	raw, err := json.Marshal(body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal intake request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build intake request")
	}
	req.Header.Set("Authorization", "Bearer "+i.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call intake service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", goerr.Wrap(ErrIntakeRejected, "unexpected submit status",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(msg)))
	}

	var jobs []submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return "", goerr.Wrap(err, "failed to decode intake response")
	}
	if len(jobs) == 0 || jobs[0].ID == "" {
		return "", goerr.Wrap(ErrIntakeRejected, "intake response carries no job ID")
	}

	return jobs[0].ID, nil
}

// jobResult is the normalized shape of the service's job document. Any
// response that does not decode into it is treated as malformed rather
// than probed for alternative field names.
type jobResult struct {
	Meta struct {
		Status string `json:"status"`
	} `json:"meta"`
	Text struct {
		Layout struct {
			Pages []struct {
				Texts []struct {
					Lines []struct {
						Text string `json:"text"`
					} `json:"lines"`
				} `json:"texts"`
			} `json:"pages"`
		} `json:"layout"`
	} `json:"text"`
}

func (i *intakeClient) ExtractText(ctx context.Context, jobID string) (string, error) {
	logger := logging.From(ctx)
	interval := i.pollInterval

	for attempt := 0; attempt < i.maxPolls; attempt++ {
		result, err := i.pollOnce(ctx, jobID)
		if err == nil && result.Meta.Status != statusProcessing {
			return concatLines(result), nil
		}
		if err != nil {
			logger.Warn("intake poll failed", "job_id", jobID, "attempt", attempt, "error", err)
		} else {
			logger.Debug("intake job still processing", "job_id", jobID, "attempt", attempt)
		}

		select {
		case <-ctx.Done():
			return "", goerr.Wrap(ctx.Err(), "intake polling canceled", goerr.V("job_id", jobID))
		case <-time.After(interval):
		}

		interval *= 2
		if interval > 30*time.Second {
			interval = 30 * time.Second
		}
	}

	return "", goerr.Wrap(ErrIntakeExhausted, "job never left processing state",
		goerr.V("job_id", jobID), goerr.V("max_polls", i.maxPolls))
}

func (i *intakeClient) pollOnce(ctx context.Context, jobID string) (*jobResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.endpoint+"/"+jobID, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build poll request")
	}
	req.Header.Set("Authorization", "Bearer "+i.apiKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to poll intake service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected poll status", goerr.V("status", resp.StatusCode))
	}

	var result jobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode poll response")
	}

	return &result, nil
}

// concatLines joins all recognized lines in document order
func concatLines(result *jobResult) string {
	var sb strings.Builder
	for _, page := range result.Text.Layout.Pages {
		for _, block := range page.Texts {
			for _, line := range block.Lines {
				sb.WriteString(line.Text)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
