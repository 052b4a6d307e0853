package cohorttest

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// retrieveRanklists fetches the overall ranklist plus one per branch.
// The map is keyed by branch short label; "" holds the unfiltered list.
func retrieveRanklists(ctx context.Context, config *Config, stats *Stats) (map[string]RanklistResponse, error) {
	client := newHTTPClient(config.Timeout)

	results := make(map[string]RanklistResponse)

	keys := []string{""}
	for _, b := range model.AllBranches() {
		keys = append(keys, b.Short)
	}

	for _, branch := range keys {
		rl, err := retrieveRanklist(ctx, client, config.BaseURL, branch, "sgpa", "desc")
		if err != nil {
			return nil, fmt.Errorf("ranklist retrieval for branch %q failed: %w", branch, err)
		}
		results[branch] = rl
		stats.RanklistsChecked++

		if config.Verbose {
			log.Printf("ranklist branch=%q total=%d avg=%.2f", branch, rl.Total, rl.AverageMetric)
		}
	}

	return results, nil
}

// retrieveRanklist fetches a single filtered ranklist.
func retrieveRanklist(ctx context.Context, client *HTTPClient, baseURL, branch, sortBy, order string) (RanklistResponse, error) {
	params := url.Values{}
	if branch != "" {
		params.Set("branch", branch)
	}
	params.Set("sort_by", sortBy)
	params.Set("order", order)

	resp, err := client.Get(ctx, baseURL+"/api/ranklist?"+params.Encode())
	if err != nil {
		return RanklistResponse{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return RanklistResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return RanklistResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rl RanklistResponse
	if err := unmarshalJSON(body, &rl); err != nil {
		return RanklistResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return rl, nil
}

// retrieveStudent fetches a single student detail by roll number.
func retrieveStudent(ctx context.Context, client *HTTPClient, baseURL, rollNo string) (Entry, error) {
	resp, err := client.Get(ctx, baseURL+"/api/student/"+rollNo)
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return Entry{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var entry Entry
	if err := unmarshalJSON(body, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return entry, nil
}

// spotCheckStudents verifies a sample of ranklist entries against the
// student detail endpoint.
func spotCheckStudents(ctx context.Context, config *Config, ranklist RanklistResponse, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	sample := len(ranklist.Ranklist)
	if sample > 10 {
		sample = 10
	}

	for i := 0; i < sample; i++ {
		entry := ranklist.Ranklist[i]
		detail, err := retrieveStudent(ctx, client, config.BaseURL, entry.RollNo)
		if err != nil {
			stats.VerificationFails++
			log.Printf("student detail for %s failed: %v", entry.RollNo, err)
			continue
		}
		if detail.SGPA != entry.SGPA || detail.Percentage != entry.Percentage {
			stats.VerificationFails++
			log.Printf("student detail mismatch for %s: sgpa %.2f vs %.2f, pct %.2f vs %.2f",
				entry.RollNo, detail.SGPA, entry.SGPA, detail.Percentage, entry.Percentage)
			continue
		}
		stats.StudentsVerified++
	}

	log.Printf("spot-checked %d students (%d mismatches)", sample, stats.VerificationFails)
	return nil
}
