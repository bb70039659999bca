package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/pocketnotes/internal/models"
	"github.com/starford/pocketnotes/internal/noterepo"
	"github.com/starford/pocketnotes/internal/testutil"
	"github.com/starford/pocketnotes/internal/viewmodel"
)

func testServer(t *testing.T) (*Server, *noterepo.Repository) {
	t.Helper()
	_, store := testutil.TestFSStore(t)
	repo := testutil.TestRepo(t, store)
	return New(repo, testutil.Quiet), repo
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func resultNote(t *testing.T, r *mcp.CallToolResult) models.Note {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var n models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	srv, _ := testServer(t)

	created := resultNote(t, callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Groceries",
		"content": "Milk, eggs",
		"tags":    "home, errands",
	}))
	if created.ID == "" || created.Title != "Groceries" || len(created.Tags) != 2 {
		t.Errorf("created = %+v", created)
	}

	got := resultNote(t, callTool(t, srv, "get_note", map[string]interface{}{"id": created.ID}))
	if got.Content != "Milk, eggs" {
		t.Errorf("get = %+v", got)
	}
}

func TestCreateNote_NoArgs(t *testing.T) {
	srv, _ := testServer(t)

	n := resultNote(t, callTool(t, srv, "create_note", map[string]interface{}{}))
	if n.Title != viewmodel.UntitledTitle || n.Content != "" || len(n.Tags) != 0 {
		t.Errorf("created = %+v", n)
	}
}

func TestUpdateNote_OnlyPassedFields(t *testing.T) {
	srv, repo := testServer(t)
	n, err := repo.Create(context.Background(), "Groceries", "Milk", []string{"home"})
	if err != nil {
		t.Fatal(err)
	}

	got := resultNote(t, callTool(t, srv, "update_note", map[string]interface{}{
		"id":      n.ID,
		"content": "Milk, eggs, bread",
	}))
	if got.Title != "Groceries" || got.Content != "Milk, eggs, bread" {
		t.Errorf("updated = %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "home" {
		t.Errorf("tags = %v, want unchanged", got.Tags)
	}

	got = resultNote(t, callTool(t, srv, "update_note", map[string]interface{}{"id": n.ID, "tags": ""}))
	if len(got.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", got.Tags)
	}
}

func TestUpdateNote_Errors(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "update_note", map[string]interface{}{"id": "ghost", "title": "x"})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("missing note result = %q", resultText(r))
	}

	r = callTool(t, srv, "update_note", map[string]interface{}{"id": "ghost", "title": 42})
	if !r.IsError {
		t.Error("expected error for non-string title")
	}

	r = callTool(t, srv, "update_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without id")
	}
}

func TestListNotes_NewestFirst(t *testing.T) {
	srv, _ := testServer(t)
	a := resultNote(t, callTool(t, srv, "create_note", map[string]interface{}{"title": "a"}))
	b := resultNote(t, callTool(t, srv, "create_note", map[string]interface{}{"title": "b"}))
	_ = resultNote(t, callTool(t, srv, "update_note", map[string]interface{}{"id": a.ID, "content": "touched"}))

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	var notes []models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d", len(notes))
	}
	if notes[0].ID != a.ID || notes[1].ID != b.ID {
		t.Errorf("order = %s, %s; want %s first", notes[0].ID, notes[1].ID, a.ID)
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDeleteNote(t *testing.T) {
	srv, repo := testServer(t)
	n, err := repo.Create(context.Background(), "a", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "delete_note", map[string]interface{}{"id": n.ID})
	if text := resultText(r); text != "deleted: "+n.ID {
		t.Errorf("delete result = %q", text)
	}
	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": n.ID})
	if r.IsError {
		t.Errorf("deleting an absent id failed: %q", resultText(r))
	}
	if len(repo.ListAll(context.Background())) != 0 {
		t.Error("note still stored")
	}
}

func TestNotesResource(t *testing.T) {
	srv, repo := testServer(t)
	if _, err := repo.Create(context.Background(), "a", "", nil); err != nil {
		t.Fatal(err)
	}

	contents, err := srv.readNotesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != notesResourceURI || !strings.Contains(tc.Text, `"title":"a"`) {
		t.Errorf("resource = %+v", contents[0])
	}
}
