package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datachat-backend/internal/db"
	"datachat-backend/internal/schema"
	"datachat-backend/internal/session"
)

const sessionHeader = "X-Session-ID"

// session resolves the caller's session from the X-Session-ID header, minting
// a new one when the header is absent or unknown. The session ID is echoed
// back on every response so clients can pick it up after a mint.
func (app *App) session(c *gin.Context) *session.Session {
	s := app.Sessions.GetOrCreate(c.GetHeader(sessionHeader))
	c.Header(sessionHeader, s.ID)
	return s
}

// apiKey resolves the credential for a request: a per-request X-API-Key
// header wins over the server-wide key.
func (app *App) apiKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return app.Config.APIKey
}

func (app *App) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   "1.0.0",
	})
}

// connectHandler points the session at a database, either by path in a JSON
// body or by a multipart SQLite upload. A changed path invalidates any cached
// agents for both the old and new locations. An empty path falls back to the
// server's configured default database.
func (app *App) connectHandler(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		app.uploadHandler(c)
		return
	}

	s := app.session(c)

	var req struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.Path == "" {
		req.Path = app.Config.DBPath
	}

	app.connectSession(c, s, req.Path)
}

// uploadHandler accepts a SQLite file upload, stores it under the configured
// upload directory, and connects the session to it.
func (app *App) uploadHandler(c *gin.Context) {
	s := app.session(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload: " + err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file type %q, expected .db, .sqlite or .sqlite3", ext)})
		return
	}

	dest := filepath.Join(app.Config.UploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload: " + err.Error()})
		return
	}

	app.connectSession(c, s, dest)
}

func (app *App) connectSession(c *gin.Context, s *session.Session, path string) {
	database, err := db.Connect(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Connection failed: " + err.Error()})
		return
	}

	s.Lock()
	previous := s.SetDatabase(database)
	s.Unlock()

	// Agents bound to either location now carry stale schema context.
	if previous != "" && previous != path {
		app.Agents.Invalidate(previous)
	}
	app.Agents.Invalidate(path)

	snapshot, total, err := schema.Inspect(c.Request.Context(), database)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"connected":     true,
			"path":          path,
			"tables":        []schema.Table{},
			"total_records": 0,
			"warning":       err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":     true,
		"path":          path,
		"tables":        snapshot.Tables,
		"total_records": total,
	})
}

// connectedDB fetches the session's database, replying 400 when the session
// has not connected yet.
func (app *App) connectedDB(c *gin.Context, s *session.Session) (*db.Database, bool) {
	s.Lock()
	database := s.Database()
	s.Unlock()
	if database == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No database connected"})
		return nil, false
	}
	return database, true
}

func (app *App) schemaHandler(c *gin.Context) {
	s := app.session(c)
	database, ok := app.connectedDB(c, s)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	snapshot, total, err := schema.Inspect(ctx, database)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Schema inspection failed: " + err.Error()})
		return
	}

	samples := make(map[string][][]string, len(snapshot.Tables))
	for _, table := range snapshot.Tables {
		result, err := schema.SampleRows(ctx, database, table.Name, 5)
		if err != nil {
			continue
		}
		rows := make([][]string, 0, len(result.Rows))
		for _, row := range result.Rows {
			cells := make([]string, len(row.Values))
			for i, v := range row.Values {
				cells[i] = v.Display()
			}
			rows = append(rows, cells)
		}
		samples[table.Name] = rows
	}

	c.JSON(http.StatusOK, gin.H{
		"tables":        snapshot.Tables,
		"total_records": total,
		"samples":       samples,
	})
}

func (app *App) insightsHandler(c *gin.Context) {
	s := app.session(c)
	database, ok := app.connectedDB(c, s)
	if !ok {
		return
	}

	snapshot, _, err := schema.Inspect(c.Request.Context(), database)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Schema inspection failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": schema.Insights(snapshot)})
}

func (app *App) overviewHandler(c *gin.Context) {
	s := app.session(c)
	database, ok := app.connectedDB(c, s)
	if !ok {
		return
	}

	snapshot, total, err := schema.Inspect(c.Request.Context(), database)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Schema inspection failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"series":        schema.OverviewSeries(snapshot),
		"total_records": total,
	})
}

func (app *App) suggestionsHandler(c *gin.Context) {
	s := app.session(c)

	s.Lock()
	database := s.Database()
	s.Unlock()

	var snapshot *schema.Snapshot
	if database != nil {
		snapshot, _, _ = schema.Inspect(c.Request.Context(), database)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": schema.SuggestedQuestions(snapshot)})
}

func (app *App) messagesHandler(c *gin.Context) {
	s := app.session(c)
	s.Lock()
	messages := s.Messages()
	s.Unlock()
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// clearHandler resets the transcript. History and analytics survive.
func (app *App) clearHandler(c *gin.Context) {
	s := app.session(c)
	s.Lock()
	s.ClearMessages()
	s.Unlock()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (app *App) analyticsHandler(c *gin.Context) {
	s := app.session(c)
	s.Lock()
	analytics := s.Analytics()
	historyLen := len(s.History())
	s.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"total_queries":       analytics.TotalQueries,
		"successful_queries":  analytics.SuccessfulQueries,
		"success_rate":        analytics.SuccessRate(),
		"avg_response_time":   analytics.AvgResponseTime(),
		"total_response_time": analytics.TotalResponseTime,
		"history_entries":     historyLen,
	})
}

func (app *App) exportResultsHandler(c *gin.Context) {
	s := app.session(c)

	s.Lock()
	result, ok := s.LatestResult()
	s.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No query results to export"})
		return
	}

	data, err := session.ResultCSV(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (app *App) exportHistoryHandler(c *gin.Context) {
	s := app.session(c)

	s.Lock()
	history := s.History()
	s.Unlock()
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No history to export"})
		return
	}

	data, err := session.HistoryCSV(history)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="history.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
