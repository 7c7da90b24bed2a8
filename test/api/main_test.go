//go:build integration

package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

var (
	baseURL = "http://localhost:8080/api/v1"

	patient      *http.Client
	professional *http.Client
	patientID    string
	hcpID        string
)

// APIResponse represents the API response structure
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Code    int             `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	StatusCode int
	Status     string
	Message    string
	Data       map[string]interface{}
	List       []map[string]interface{}
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Timeout: 30 * time.Second, Jar: jar}
}

func makeRequest(client *http.Client, method, path string, body interface{}) TestResponse {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Status: "error", Message: err.Error()}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return TestResponse{StatusCode: resp.StatusCode, Status: "error", Message: err.Error()}
	}

	out := TestResponse{StatusCode: resp.StatusCode, Status: apiResp.Status, Message: apiResp.Message}
	if len(apiResp.Data) > 0 {
		if json.Unmarshal(apiResp.Data, &out.Data) != nil {
			_ = json.Unmarshal(apiResp.Data, &out.List)
		}
	}
	return out
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func TestMain(m *testing.M) {
	if url := os.Getenv("API_URL"); url != "" {
		baseURL = url + "/api/v1"
	}

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		if err := checkAPIServer(); err != nil {
			if i == maxRetries-1 {
				fmt.Printf("Error: %v\nMake sure the API server is running at %s\n", err, baseURL)
				os.Exit(1)
			}
			fmt.Printf("Waiting for API server (attempt %d/%d)...\n", i+1, maxRetries)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}

	patient, patientID = signUp(map[string]interface{}{
		"name":          "Test Patient",
		"role":          "patient",
		"paymentMethod": "card",
	})
	professional, hcpID = signUp(map[string]interface{}{
		"name":           "Dr Test",
		"role":           "hcp",
		"practiceNumber": "PR-0001",
		"specialty":      "General Practice",
	})

	os.Exit(m.Run())
}

func signUp(fields map[string]interface{}) (*http.Client, string) {
	client := newClient()
	email := uniqueEmail(fields["role"].(string))
	fields["email"] = email
	fields["password"] = "secret123"

	reg := makeRequest(client, http.MethodPost, "/auth/register", fields)
	if !reg.IsSuccess() {
		fmt.Printf("Failed to register %s: %s\n", fields["role"], reg.Message)
		os.Exit(1)
	}

	login := makeRequest(client, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	if !login.IsSuccess() {
		fmt.Printf("Failed to login: %s\n", login.Message)
		os.Exit(1)
	}
	return client, reg.GetString("id")
}
