package controllerImp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ego5g/turizm/database"
	"github.com/ego5g/turizm/pkg/forum/repositoryImp"
	"github.com/ego5g/turizm/pkg/forum/serviceImp"
	"github.com/ego5g/turizm/pkg/logger"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "forum.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close(db) })

	h := NewForumCtrl(serviceImp.NewForumService(repositoryImp.New(db, nil), logger.Nop(), nil), logger.Nop())
	e := echo.New()
	g := e.Group("/api/forum")
	g.GET("/categories", h.Categories)
	g.GET("/topics", h.ListTopics)
	g.POST("/topics", h.CreateTopic)
	g.GET("/topics/:id", h.GetTopic)
	g.POST("/topics/:id/replies", h.CreateReply)
	return e
}

func do(e *echo.Echo, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestForumFlow(t *testing.T) {
	e := newServer(t)

	code, topic := do(e, http.MethodPost, "/api/forum/topics", `{"title":"Hello","author":"A","content":"Hi","category":"general"}`)
	if code != http.StatusCreated {
		t.Fatalf("create topic: %d %v", code, topic)
	}
	id, _ := topic["id"].(string)
	if topic["repliesCount"].(float64) != 0 || topic["views"].(float64) != 0 {
		t.Errorf("topic = %v", topic)
	}

	code, reply := do(e, http.MethodPost, "/api/forum/topics/"+id+"/replies", `{"author":"B","content":"Gamarjoba"}`)
	if code != http.StatusCreated || reply["id"] == "" {
		t.Fatalf("create reply: %d %v", code, reply)
	}

	code, got := do(e, http.MethodGet, "/api/forum/topics/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("get: %d", code)
	}
	if got["repliesCount"].(float64) != 1 || got["views"].(float64) != 1 {
		t.Errorf("topic after reply = %v", got)
	}
	if list, _ := got["replyList"].([]any); len(list) != 1 {
		t.Errorf("replyList = %v", got["replyList"])
	}

	code, list := do(e, http.MethodGet, "/api/forum/topics?category=general", "")
	if topics, _ := list["topics"].([]any); code != http.StatusOK || len(topics) != 1 {
		t.Errorf("list = %d %v", code, list)
	}
}

func TestForumErrors(t *testing.T) {
	e := newServer(t)
	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/forum/topics/missing", "", http.StatusNotFound},
		{http.MethodPost, "/api/forum/topics", `{"title":"","content":""}`, http.StatusBadRequest},
		{http.MethodPost, "/api/forum/topics", `{"title":`, http.StatusBadRequest},
		{http.MethodPost, "/api/forum/topics/missing/replies", `{"author":"a","content":"b"}`, http.StatusNotFound},
		{http.MethodGet, "/api/forum/categories", "", http.StatusOK},
	}
	for _, tt := range tests {
		if code, body := do(e, tt.method, tt.path, tt.body); code != tt.want {
			t.Errorf("%s %s = %d (%v), want %d", tt.method, tt.path, code, body, tt.want)
		}
	}
}
