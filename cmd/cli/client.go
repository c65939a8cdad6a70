package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
)

// apiClient talks to the Krishi Sakhi HTTP API and keeps the bearer token
// in a file under the user's home directory.
type apiClient struct {
	http      *resty.Client
	tokenPath string
}

type apiError struct {
	Error string `json:"error"`
}

func newAPIClient(baseURL, tokenPath string) *apiClient {
	c := &apiClient{
		http:      resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		tokenPath: tokenPath,
	}
	if token := c.loadToken(); token != "" {
		c.http.SetAuthToken(token)
	}
	return c
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".krishisakhi", "token")
}

func (c *apiClient) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.tokenPath), 0o700); err != nil {
		return err
	}
	c.http.SetAuthToken(token)
	return os.WriteFile(c.tokenPath, []byte(token), 0o600)
}

func (c *apiClient) loadToken() string {
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *apiClient) clearToken() error {
	err := os.Remove(c.tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// call sends body (when non-nil) and decodes the response into out.
func (c *apiClient) call(method, path string, body, out any) error {
	var failure apiError
	req := c.http.R().SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if failure.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status(), failure.Error)
		}
		return errors.New(resp.Status())
	}
	return nil
}

// download saves a binary response to path.
func (c *apiClient) download(path, dest string) error {
	resp, err := c.http.R().SetOutput(dest).Get(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		os.Remove(dest)
		return errors.New(resp.Status())
	}
	return nil
}
