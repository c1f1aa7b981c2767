package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type BaseHttpSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHttpSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping end-to-end scenarios")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseHttpSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// PostJSON sends a JSON body to path and decodes the response envelope.
// An empty token skips the Authorization header.
func (s *BaseHttpSuite) PostJSON(t *testing.T, path, token string, body any) (int, map[string]any) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path), bytes.NewReader(raw))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	if s.Config.DebugJSON {
		t.Logf("POST %s [%d] in %v\nREQUEST:\n%s\nRESPONSE:\n%s",
			path, resp.StatusCode, time.Since(start), raw, payload)
	} else {
		t.Logf("POST %s [%d] in %v", path, resp.StatusCode, time.Since(start))
	}

	var envelope map[string]any
	s.Require().NoError(json.Unmarshal(payload, &envelope))
	return resp.StatusCode, envelope
}

// Dial opens an authenticated websocket connection to the relay endpoint
func (s *BaseHttpSuite) Dial(t *testing.T, token string) *websocket.Conn {
	wsURL := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: "/ws"}
	header := http.Header{"Authorization": []string{"Bearer " + token}}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), header)
	s.Require().NoError(err, "Failed to open websocket to "+wsURL.String())
	return conn
}
