// smoke-reports exercises a running fieldtrack API end to end: obtain a
// token, log one time entry and read it back through the dashboard.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.SetFlags(0)

	baseURL := env("FIELDTRACK_API_URL", "http://localhost:8080")
	email := env("FIELDTRACK_SMOKE_EMAIL", "admin@fieldtrack.local")
	password := env("FIELDTRACK_SMOKE_PASSWORD", "")
	if password == "" {
		log.Fatal("missing FIELDTRACK_SMOKE_PASSWORD")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var tokenResp struct {
		Token string `json:"token"`
	}
	postJSON(client, baseURL+"/v1/auth/token", map[string]any{
		"email":    email,
		"password": password,
	}, "", &tokenResp)
	if tokenResp.Token == "" {
		log.Fatal("token endpoint returned no token")
	}

	var created struct {
		ID string `json:"id"`
	}
	postJSON(client, baseURL+"/v1/time-entries", map[string]any{
		"supportedCountry": "HN",
		"workingLanguage":  "es",
		"startDate":        time.Now().UTC().Format("2006-01-02"),
		"startTimeOfDay":   "09:00",
		"endTimeOfDay":     "10:00",
		"note":             "smoke entry",
	}, tokenResp.Token, &created)
	if created.ID == "" {
		log.Fatal("entry creation returned no id")
	}

	var dash struct {
		TotalHours   float64 `json:"totalHours"`
		TotalEntries int     `json:"totalEntries"`
	}
	getJSON(client, baseURL+"/v1/reports/dashboard-summary", tokenResp.Token, &dash)
	if dash.TotalEntries < 1 || dash.TotalHours < 1 {
		log.Fatalf("dashboard does not reflect the smoke entry: %+v", dash)
	}

	fmt.Printf("smoke passed: entry=%s hours=%.2f entries=%d\n",
		created.ID, dash.TotalHours, dash.TotalEntries)
}

func postJSON(client *http.Client, url string, body any, token string, out any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	doJSON(client, req, out)
}

func getJSON(client *http.Client, url, token string, out any) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	doJSON(client, req, out)
}

func doJSON(client *http.Client, req *http.Request, out any) {
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s response: %v", req.URL.Path, err)
		}
	}
}
