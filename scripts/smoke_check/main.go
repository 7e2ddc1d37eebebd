// Command smoke_check logs into a running API and probes a list of endpoints,
// failing when a critical endpoint answers with an unexpected status.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Body     json.RawMessage `json:"body,omitempty"`
	Expect   int             `json:"expect"`
	Public   bool            `json:"public"`
	Critical bool            `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type probe struct {
	Target    target
	Status    int
	Enveloped bool
	Error     error
	Duration  time.Duration
}

func (p probe) ok() bool {
	return p.Error == nil && p.Status == p.Target.Expect && p.Enveloped
}

func main() {
	var (
		base        string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke_check", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	_ = godotenv.Load()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logger.Fatal("failed to load targets", zap.Error(err))
	}

	client := &http.Client{Timeout: timeout}
	token, err := login(client, base, os.Getenv("SMOKE_EMAIL"), os.Getenv("SMOKE_PASSWORD"))
	if err != nil {
		logger.Warn("login failed, secured targets will answer 401", zap.Error(err))
	}

	var (
		probes   []probe
		breaking int
		soft     int
	)
	for _, t := range targets {
		p := run(client, base, token, t)
		if !p.ok() {
			if t.Critical {
				breaking++
			} else {
				soft++
			}
		}
		probes = append(probes, p)
	}

	printReport(probes)

	fmt.Printf("Critical failures: %d, Non-critical: %d\n", breaking, soft)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTargets(data, path)
}

func parseTargets(data []byte, source string) ([]target, error) {
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", source)
	}
	for i := range cfg.Targets {
		if cfg.Targets[i].Expect == 0 {
			cfg.Targets[i].Expect = http.StatusOK
		}
	}
	return cfg.Targets, nil
}

func login(client *http.Client, base, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("SMOKE_EMAIL and SMOKE_PASSWORD are not set")
	}
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, _, err := perform(client, base, "", target{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: payload, Public: true})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login answered %d", resp.StatusCode)
	}
	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	return envelope.Data.AccessToken, nil
}

func run(client *http.Client, base, token string, tgt target) probe {
	p := probe{Target: tgt}
	resp, dur, err := perform(client, base, token, tgt)
	p.Duration = dur
	if err != nil {
		p.Error = err
		return p
	}
	defer resp.Body.Close()
	p.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.Error = fmt.Errorf("read body: %w", err)
		return p
	}
	p.Enveloped = enveloped(resp.Header.Get("Content-Type"), body)
	return p
}

func perform(client *http.Client, base, token string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	var body io.Reader
	if len(tgt.Body) > 0 {
		body = bytes.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" && !tgt.Public {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

// enveloped reports whether a JSON body follows the data/error envelope.
// Non-JSON bodies (metrics, downloads, 204s) pass.
func enveloped(contentType string, body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 || !strings.Contains(contentType, "json") {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	if _, ok := fields["status"]; ok {
		return true
	}
	_, hasData := fields["data"]
	_, hasError := fields["error"]
	return hasData || hasError
}

func printReport(results []probe) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.ok() {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d (want %d) in %s | Envelope: %t | Critical: %t\n", res.Status, res.Target.Expect, res.Duration, res.Enveloped, res.Target.Critical)
	}
}
