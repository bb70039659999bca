// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pocketnotes/internal/apperr"
	"github.com/starford/pocketnotes/internal/viewmodel"
)

const notesResourceURI = "pocketnotes://notes"

// Server wraps the MCP server with note tools.
type Server struct {
	mcp    *server.MCPServer
	repo   viewmodel.Repository
	logger *slog.Logger
}

// New creates a new MCP server with all note tools registered.
func New(repo viewmodel.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{repo: repo, logger: logger}

	s.mcp = server.NewMCPServer(
		"PocketNotes",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, most recently updated first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read one note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. A blank title becomes \""+viewmodel.UntitledTitle+"\"."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Free-text body")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"work, home\"")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update a note. Only the fields passed are changed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags; empty clears them")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id. Deleting an unknown id is not an error."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddResource(
		mcp.NewResource(notesResourceURI, "Notes",
			mcp.WithResourceDescription("The whole note collection as JSON, newest first."),
			mcp.WithMIMEType("application/json"),
		),
		s.readNotesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) list() *viewmodel.NoteList {
	return viewmodel.NewNoteList(s.repo, viewmodel.WithLogger(s.logger))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("note not found")
	}
	return mcp.NewToolResultError(err.Error())
}

// optionalString returns the argument and whether it was passed at all.
func optionalString(req mcp.CallToolRequest, key string) (*string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", apperr.ErrInvalidInput, key)
	}
	return &str, nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l := s.list()
	l.Load(ctx)
	return jsonResult(l.Notes())
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.list().GetByID(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := viewmodel.NewDraft(
		req.GetString("title", ""),
		req.GetString("content", ""),
		req.GetString("tags", ""),
	)
	if err := draft.Validate(); err != nil {
		return errorResult(err), nil
	}
	note, err := s.list().Create(ctx, draft)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(note)
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var fields viewmodel.PatchFields
	for key, dst := range map[string]**string{
		"title":   &fields.Title,
		"content": &fields.Content,
		"tags":    &fields.Tags,
	} {
		v, err := optionalString(req, key)
		if err != nil {
			return errorResult(err), nil
		}
		*dst = v
	}

	patch, err := viewmodel.NewPatch(fields)
	if err != nil {
		return errorResult(err), nil
	}
	note, err := s.list().Update(ctx, id, patch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.list().Delete(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) readNotesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	l := s.list()
	l.Load(ctx)
	out, err := json.Marshal(l.Notes())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notesResourceURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
