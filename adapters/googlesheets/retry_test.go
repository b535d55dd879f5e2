package googlesheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tablestate "github.com/ideamans/go-tablestate"
	"google.golang.org/api/option"
)

func TestSheetsAdaptor_LoadWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		failCount    int32
		wantErr      bool
		wantRecords  int
		responseData string
	}{
		{
			name:      "success on first try",
			failCount:   0,
			wantErr:     false,
			wantRecords: 2,
			responseData: `{
				"values": [
					["name", "age"],
					["John", "30"],
					["Jane", "25"]
				]
			}`,
		},
		{
			name:      "success after one retry",
			failCount:   1,
			wantErr:     false,
			wantRecords: 1,
			responseData: `{
				"values": [
					["name", "age"],
					["John", "30"]
				]
			}`,
		},
		{
			name:      "success after two retries",
			failCount:   2,
			wantErr:     false,
			wantRecords: 1,
			responseData: `{
				"values": [
					["status"],
					["active"]
				]
			}`,
		},
		{
			name:      "give up after max retries",
			failCount: 10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var callCount int32

			// Create mock server that fails initially
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				currentCall := atomic.AddInt32(&callCount, 1)

				if currentCall <= tt.failCount {
					// Return error for initial calls
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte(`{"error": {"code": 503, "message": "Service Unavailable"}}`))
					return
				}

				// Success response
				if r.URL.Path == "/v4/spreadsheets/test-id/values/TestSheet!A:ZZ" {
					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(tt.responseData))
				} else {
					w.WriteHeader(404)
				}
			}))
			defer server.Close()

			// Create adaptor with mock
			ctx := context.Background()
			adaptor, err := NewSheetsAdaptor(ctx, Config{
				SpreadsheetID: "test-id",
				SheetName:     "TestSheet",
			}, option.WithEndpoint(server.URL), option.WithoutAuthentication())

			if err != nil {
				t.Fatalf("Failed to create adaptor: %v", err)
			}

			var last tablestate.LoadResult[*tablestate.Record]
			refresher := tablestate.NewRefresher(adaptor, &tablestate.RefreshConfig{
				MaxRetries:    3,
				RetryInterval: time.Millisecond,
			}, func(result tablestate.LoadResult[*tablestate.Record], _ []string) {
				last = result
			})

			err = refresher.Load(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				if last.Status != tablestate.StatusFailed {
					t.Errorf("final status = %v, want failed", last.Status)
				}
				if got := atomic.LoadInt32(&callCount); got != 4 {
					t.Errorf("Expected 4 API calls, got %d", got)
				}
				return
			}

			if last.Status != tablestate.StatusReady {
				t.Fatalf("final status = %v, want ready", last.Status)
			}
			if len(last.Rows) != tt.wantRecords {
				t.Errorf("Expected %d records, got %d", tt.wantRecords, len(last.Rows))
			}

			// Verify retry was attempted
			finalCallCount := atomic.LoadInt32(&callCount)
			expectedCalls := tt.failCount + 1
			if finalCallCount != expectedCalls {
				t.Errorf("Expected %d API calls, got %d", expectedCalls, finalCallCount)
			}
		})
	}
}
