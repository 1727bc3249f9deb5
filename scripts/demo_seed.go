package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type logSeed struct {
	Message string `json:"message"`
	Device  string `json:"device,omitempty"`
	Type    string `json:"type,omitempty"`
}

type httpError struct {
	StatusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.body)
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "API base URL")
	reset := flag.Bool("clear", false, "clear the buffer before seeding")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	if *reset {
		if err := doJSONRequest(client, http.MethodDelete, *baseURL+"/api/v1/logs", nil); err != nil {
			log.Printf("clear failed: %v", err)
		}
	}

	seeds := []logSeed{
		{Message: "Front door opened", Device: "door-sensor", Type: "device"},
		{Message: "Living room temperature 22.4°C", Device: "thermostat", Type: "info"},
		{Message: "Garage light switched on", Device: "garage-light", Type: "success"},
		{Message: "Kitchen motion sensor battery low", Device: "motion-kitchen", Type: "warning"},
		{Message: "Washer reported error E21", Device: "washer", Type: "error"},
	}

	for _, s := range seeds {
		if err := doJSONRequest(client, http.MethodPost, *baseURL+"/api/v1/logs", s); err != nil {
			log.Printf("seed %q failed: %v", s.Message, err)
		}
	}
}

func doJSONRequest(client *http.Client, method, url string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &httpError{StatusCode: resp.StatusCode, body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
