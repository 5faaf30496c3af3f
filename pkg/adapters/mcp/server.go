// Package mcp exposes the driving-school requests as Model Context Protocol
// tools, so agents can drive the mediator the same way the HTTP API does.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/internal/school"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/courier/pkg/result"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing what the mediator can dispatch.
const CatalogURI = "courier://catalog"

// Server wraps a Dispatcher and exposes it as an MCP server.
type Server struct {
	dispatch  ports.Dispatcher
	catalog   func() mediator.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for failed tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCatalog publishes the catalog returned by fn as the CatalogURI resource.
func WithCatalog(fn func() mediator.Catalog) Option {
	return func(s *Server) {
		s.catalog = fn
	}
}

// NewServer creates an MCP server dispatching into d.
func NewServer(d ports.Dispatcher, version string, opts ...Option) *Server {
	s := &Server{
		dispatch:  d,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("courier-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.catalog != nil {
		s.registerResources()
	}
	return s
}

// HandleMessage processes one JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, msg json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, msg)
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type registerUserArgs struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createSchoolArgs struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
	City    string `json:"city"`
}

type renameSchoolArgs struct {
	ActorID  string `json:"actor_id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
}

type schoolArgs struct {
	ActorID  string `json:"actor_id"`
	SchoolID string `json:"school_id"`
}

type listSchoolsArgs struct {
	OwnerID string `json:"owner_id"`
}

// Deleted is the output of delete_school.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

// Schools is the output of list_schools.
type Schools struct {
	Schools []domain.School `json:"schools"`
}

func (s *Server) registerTools() {
	actor := mcp.WithString("actor_id", mcp.Required(), mcp.Description("ID of the acting user"))
	schoolID := mcp.WithString("school_id", mcp.Required(), mcp.Description("ID of the school"))

	s.mcpServer.AddTool(mcp.NewTool("register_user",
		mcp.WithDescription("Register a user. Emails are unique."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithOutputSchema[domain.User](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args registerUserArgs) (domain.User, error) {
		return send[domain.User](ctx, s, school.RegisterUser{Name: args.Name, Email: args.Email})
	}))

	s.mcpServer.AddTool(mcp.NewTool("create_school",
		mcp.WithDescription("Open a school owned by the acting user."),
		actor,
		mcp.WithString("name", mcp.Required(), mcp.Description("School name")),
		mcp.WithString("city", mcp.Required(), mcp.Description("City")),
		mcp.WithOutputSchema[domain.School](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args createSchoolArgs) (domain.School, error) {
		return send[domain.School](ctx, s, school.CreateSchool{ActorID: args.ActorID, Name: args.Name, City: args.City})
	}))

	s.mcpServer.AddTool(mcp.NewTool("rename_school",
		mcp.WithDescription("Rename a school. Only its owner may do so."),
		actor,
		schoolID,
		mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
		mcp.WithOutputSchema[domain.School](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args renameSchoolArgs) (domain.School, error) {
		return send[domain.School](ctx, s, school.RenameSchool{ActorID: args.ActorID, SchoolID: args.SchoolID, Name: args.Name})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_school",
		mcp.WithDescription("Close a school. Only its owner may do so."),
		actor,
		schoolID,
		mcp.WithOutputSchema[Deleted](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args schoolArgs) (Deleted, error) {
		ok, err := send[bool](ctx, s, school.DeleteSchool{ActorID: args.ActorID, SchoolID: args.SchoolID})
		return Deleted{Deleted: ok}, err
	}))

	s.mcpServer.AddTool(mcp.NewTool("get_school",
		mcp.WithDescription("Get a school by id."),
		schoolID,
		mcp.WithOutputSchema[domain.School](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args schoolArgs) (domain.School, error) {
		return send[domain.School](ctx, s, school.GetSchool{ID: args.SchoolID})
	}))

	s.mcpServer.AddTool(mcp.NewTool("get_overview",
		mcp.WithDescription("Get a school together with its owner."),
		schoolID,
		mcp.WithOutputSchema[school.Overview](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args schoolArgs) (school.Overview, error) {
		return send[school.Overview](ctx, s, school.GetOverview{SchoolID: args.SchoolID})
	}))

	s.mcpServer.AddTool(mcp.NewTool("list_schools",
		mcp.WithDescription("List schools, optionally only those of one owner."),
		mcp.WithString("owner_id", mcp.Description("Only schools of this user (optional)")),
		mcp.WithOutputSchema[Schools](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args listSchoolsArgs) (Schools, error) {
		all, err := send[[]domain.School](ctx, s, school.ListSchools{OwnerID: args.OwnerID})
		return Schools{Schools: all}, err
	}))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Dispatch catalog",
		mcp.WithResourceDescription("Registered requests, behaviors and subscribers"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.catalog())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// send dispatches req and unwraps its Result. Failures come back as one
// error listing every result.Error.
func send[T any](ctx context.Context, s *Server, req mediator.Request[result.Result[T]]) (T, error) {
	var zero T
	out, err := s.dispatch.SendAny(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "dispatch failed", "request", fmt.Sprintf("%T", req), "err", err)
		return zero, fmt.Errorf("dispatch failed: %w", err)
	}
	res, ok := out.(result.Result[T])
	if !ok {
		return zero, fmt.Errorf("unexpected response %T", out)
	}
	if v, ok := res.Get(); ok {
		return v, nil
	}
	return zero, res.Err()
}
