package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"datachat-backend/internal/agent"
	"datachat-backend/internal/extract"
	"datachat-backend/internal/schema"
	"datachat-backend/internal/session"
)

// chatHandler runs one question-answer interaction over HTTP.
func (app *App) chatHandler(c *gin.Context) {
	s := app.session(c)

	var req struct {
		Question string `json:"question" binding:"required"`
		APIKey   string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = app.apiKey(c)
	}

	msg, err := app.processQuestion(c.Request.Context(), s, req.Question, apiKey)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrMissingAPIKey) || errors.Is(err, agent.ErrNotConnected) || errors.Is(err, errDuplicateQuestion) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	analytics := s.Analytics()
	s.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":   msg,
		"analytics": analytics,
	})
}

var errDuplicateQuestion = errors.New("duplicate question ignored")

// processQuestion is the heart of the app: it asks the agent, records the
// outcome, extracts any embedded SQL, re-executes it for display, and appends
// the assistant turn to the transcript and the interaction to the ledger.
//
// Precondition failures (no credential, no connection, duplicate submit)
// abort before anything is recorded. Once the agent has been asked, the
// interaction always lands in the analytics counters, failed or not.
func (app *App) processQuestion(ctx context.Context, s *session.Session, question, apiKey string) (session.Message, error) {
	s.Lock()
	defer s.Unlock()

	if apiKey == "" {
		return session.Message{}, agent.ErrMissingAPIKey
	}
	database := s.Database()
	if database == nil {
		return session.Message{}, agent.ErrNotConnected
	}

	if !s.AppendUserMessage(question) {
		return session.Message{}, errDuplicateQuestion
	}

	ag, err := app.Agents.Get(database, agent.Config{
		APIKey:  apiKey,
		BaseURL: app.Config.BaseURL,
		Model:   app.Config.Model,
	})
	if err != nil {
		return session.Message{}, fmt.Errorf("agent unavailable: %w", err)
	}

	// The timer spans the whole agent round trip, tool calls included.
	start := time.Now()
	answer, askErr := ag.Ask(ctx, question)
	responseTime := time.Since(start).Seconds()

	s.RecordOutcome(askErr == nil, responseTime)

	if askErr != nil {
		failure := s.AppendAssistantMessage(session.Message{
			Content: "Sorry, I could not answer that: " + askErr.Error(),
			IsError: true,
		})
		s.AppendHistory(session.HistoryEntry{
			Question:      question,
			Response:      failure.Content,
			ExecutionTime: responseTime,
			Timestamp:     time.Now(),
		})
		return failure, nil
	}

	msg := session.Message{Content: answer}

	if sql, ok := extract.Extract(answer); ok {
		msg.SQLQuery = sql
		result, execTime, err := database.Execute(ctx, sql)
		if err != nil {
			// The answer stands; only the replay for display failed.
			log.Printf("chat: re-execution of extracted SQL failed: %v", err)
			msg.Content += fmt.Sprintf("\n\n(Could not re-run the query for display: %v)", err)
		} else {
			msg.Result = result
			msg.ExecutionTime = execTime
			if chart, ok := schema.ChartFor(result); ok {
				msg.Chart = chart
			}
		}
	}

	appended := s.AppendAssistantMessage(msg)
	s.AppendHistory(session.HistoryEntry{
		Question:      question,
		Response:      answer,
		SQLQuery:      msg.SQLQuery,
		ExecutionTime: responseTime,
		Timestamp:     time.Now(),
	})
	return appended, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"api_key,omitempty"`
}

type wsResponse struct {
	Message   *session.Message   `json:"message,omitempty"`
	Analytics *session.Analytics `json:"analytics,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// wsChatHandler runs the same interaction loop over a WebSocket. Questions
// on one connection are processed one at a time, in order.
func (app *App) wsChatHandler(c *gin.Context) {
	s := app.session(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read failed: %v", err)
			}
			return
		}

		apiKey := req.APIKey
		if apiKey == "" {
			apiKey = app.Config.APIKey
		}

		msg, err := app.processQuestion(c.Request.Context(), s, req.Question, apiKey)
		if err != nil {
			if writeErr := conn.WriteJSON(wsResponse{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		s.Lock()
		analytics := s.Analytics()
		s.Unlock()

		if err := conn.WriteJSON(wsResponse{Message: &msg, Analytics: &analytics}); err != nil {
			return
		}
	}
}
