// Command smoke sends a few chat requests to a running backend and prints the replies.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Pretty print JSON helper
func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(client *http.Client, method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "backend base URL")
	adminToken := flag.String("admin-token", "", "admin JWT; admin checks are skipped when empty")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}
	failed := false

	color.Cyan("Chat backend smoke test against %s\n", *baseURL)

	color.Yellow("\n1. Health")
	resp, body, err := sendRequest(client, http.MethodGet, *baseURL+"/", "", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	sessionID := ""
	for i, msg := range []string{"hi", "What is the school motto?", "fees", "When does the school term start?"} {
		color.Yellow("\n%d. Chat: %q", i+2, msg)
		resp, body, err := sendRequest(client, http.MethodPost, *baseURL+"/api/chat", "", map[string]string{
			"message":   msg,
			"sessionId": sessionID,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			failed = true
			continue
		}
		if resp.StatusCode != http.StatusOK {
			color.Red("Status: %s", resp.Status)
			failed = true
		} else {
			color.Green("Status: %s", resp.Status)
		}
		prettyPrint(body)

		var parsed struct {
			SessionId string `json:"sessionId"`
		}
		if json.Unmarshal(body, &parsed) == nil && parsed.SessionId != "" {
			sessionID = parsed.SessionId
		}
	}

	color.Yellow("\n6. Empty message must be rejected")
	resp, _, err = sendRequest(client, http.MethodPost, *baseURL+"/api/chat", "", map[string]string{"message": ""})
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		color.Red("Expected 400, got %v (%v)", statusOf(resp), err)
		failed = true
	} else {
		color.Green("Status: %s", resp.Status)
	}

	if *adminToken != "" {
		for _, path := range []string{"/api/admin/usage", "/api/admin/sessions/" + sessionID} {
			color.Yellow("\n[ADMIN] GET %s", path)
			resp, body, err := sendRequest(client, http.MethodGet, *baseURL+path, *adminToken, nil)
			if err != nil {
				color.Red("Failed: %v", err)
				failed = true
				continue
			}
			color.Green("Status: %s", resp.Status)
			prettyPrint(body)
		}
	}

	if failed {
		os.Exit(1)
	}
	color.Cyan("\nAll checks passed")
}

func statusOf(resp *http.Response) string {
	if resp == nil {
		return "no response"
	}
	return resp.Status
}
