package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseHttpSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

// TestFullChatFlow walks the whole surface against a live server:
// registration, relay delivery between two live connections, durable
// append, and history retrieval.
func (s *testChatScenarioSuite) TestFullChatFlow() {
	suffix := uuid.New().String()[:8]
	alice := "alice" + suffix
	bob := "bob" + suffix
	password := "SuperSecret123!"

	var aliceToken, bobToken string

	// --- STEP 0: REGISTER BOTH USERS ---
	s.Run("Step 0: Register alice and bob", func() {
		s.Step(s.T(), "Registering users")
		for _, username := range []string{alice, bob} {
			status, envelope := s.PostJSON(s.T(), "/api/auth/register", "", map[string]any{
				"username": username,
				"fullName": "E2E " + username,
				"email":    fmt.Sprintf("%s@example.com", username),
				"password": password,
			})
			s.Require().Equal(http.StatusCreated, status)

			data := envelope["data"].(map[string]any)
			token := data["token"].(string)
			s.Require().NotEmpty(token)
			if username == alice {
				aliceToken = token
			} else {
				bobToken = token
			}
		}
	})

	// --- STEP 1: LIVE DELIVERY THROUGH THE RELAY ---
	s.Run("Step 1: Relay a message from alice to bob", func() {
		s.Step(s.T(), "Connecting both users to the relay")

		aliceConn := s.Dial(s.T(), aliceToken)
		defer aliceConn.Close()
		bobConn := s.Dial(s.T(), bobToken)
		defer bobConn.Close()

		s.Require().NoError(aliceConn.WriteJSON(map[string]string{
			"type": "identify", "userId": alice,
		}))
		s.Require().NoError(bobConn.WriteJSON(map[string]string{
			"type": "identify", "userId": bob,
		}))

		// Identify frames get no ack; a short pause lets the registry settle
		time.Sleep(200 * time.Millisecond)

		s.Require().NoError(aliceConn.WriteJSON(map[string]string{
			"type": "send", "to": bob, "message": "hi bob",
		}))

		s.Require().NoError(bobConn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		_, raw, err := bobConn.ReadMessage()
		s.Require().NoError(err, "Bob never received the relayed message")

		var frame map[string]any
		s.Require().NoError(json.Unmarshal(raw, &frame))
		s.Require().Equal("message", frame["type"])
		s.Require().Equal(alice, frame["from"])
		s.Require().Equal("hi bob", frame["message"])
	})

	// --- STEP 2: DURABLE APPEND + HISTORY ---
	s.Run("Step 2: Append a message and read it back from history", func() {
		s.Step(s.T(), "Posting a durable message")
		status, _ := s.PostJSON(s.T(), "/api/messages", aliceToken, map[string]any{
			"to": bob, "message": "for the record",
		})
		s.Require().Equal(http.StatusCreated, status)

		s.Step(s.T(), "Reading history from bob's side")
		status, envelope := s.PostJSON(s.T(), "/api/messages/history", bobToken, map[string]any{
			"with": alice,
		})
		s.Require().Equal(http.StatusOK, status)

		entries := envelope["data"].([]any)
		s.Require().NotEmpty(entries)
		last := entries[len(entries)-1].(map[string]any)
		s.Require().Equal("for the record", last["message"])
		s.Require().Equal(false, last["fromSelf"])
	})
}
