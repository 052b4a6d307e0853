package cohorttest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitCohort submits records in batches using a worker pool.
func submitCohort(ctx context.Context, config *Config, records []Record, stats *Stats) error {
	log.Printf("submitting %d records in batches of %d with %d workers...", len(records), config.BatchSize, config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/results"

	// Counters for statistics
	var (
		accepted  int64
		duplicate int64
		rejected  int64
		submitted int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Slice records into batches
	var batches [][]Record
	for start := 0; start < len(records); start += config.BatchSize {
		end := start + config.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}

	batchChan := make(chan []Record, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for batch := range batchChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome, err := submitBatch(ctx, client, url, batch)
					atomic.AddInt64(&submitted, int64(len(batch)))
					if err != nil {
						atomic.AddInt64(&rejected, int64(len(batch)))
						if config.Verbose {
							log.Printf("batch submission failed: %v", err)
						}
						continue
					}
					atomic.AddInt64(&accepted, int64(outcome.Accepted))
					atomic.AddInt64(&duplicate, int64(outcome.Duplicates))
					atomic.AddInt64(&rejected, int64(len(outcome.Rejected)))

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("progress: %d/%d submitted (accepted: %d, duplicate: %d, rejected: %d)",
							atomic.LoadInt64(&submitted), len(records),
							atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&rejected))
					}
				}
			}
		}()
	}

	// Send batches to workers
	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	// Update stats
	stats.RecordsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RecordsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RecordsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RecordsRejected = int(atomic.LoadInt64(&rejected))

	log.Printf(`record submission completed:
   Accepted: %d
   Duplicate: %d
   Rejected: %d
`, stats.RecordsAccepted, stats.RecordsDuplicate, stats.RecordsRejected)

	return nil
}

// submitBatch submits one batch of records and parses the outcome.
// A 429 is retried once after a short backoff before giving up.
func submitBatch(ctx context.Context, client *HTTPClient, url string, batch []Record) (SubmitResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Post(ctx, url, batch)
		if err != nil {
			return SubmitResponse{}, fmt.Errorf("request failed: %w", err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return SubmitResponse{}, fmt.Errorf("failed to read response: %w", err)
		}

		switch resp.StatusCode {
		case StatusAccepted:
			var outcome SubmitResponse
			if err := unmarshalJSON(body, &outcome); err != nil {
				return SubmitResponse{}, fmt.Errorf("failed to parse response: %w", err)
			}
			return outcome, nil
		case http.StatusTooManyRequests:
			if attempt == 0 {
				select {
				case <-ctx.Done():
					return SubmitResponse{}, ctx.Err()
				case <-time.After(ProcessingPollInterval):
				}
				continue
			}
			return SubmitResponse{}, fmt.Errorf("queue full after retry: HTTP %d", resp.StatusCode)
		default:
			return SubmitResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
	}
}
