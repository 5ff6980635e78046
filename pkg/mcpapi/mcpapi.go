// Package mcpapi implements Fortitude's MCP-style tool surface: a
// dispatch table keyed by tool name, returning JSON, mirroring
// pkg/httpapi's route handlers but without HTTP framing (out of scope
// per spec.md §1 — "the MCP transport framing" is a collaborator, not
// a component this package owns). Adapted from the teacher's
// pkg/proxy/handlers, which dispatches by HTTP method+path onto typed
// request/response structs; here dispatch is by tool name onto the
// same style of typed structs.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/pipeline"
	"github.com/fortitude-run/fortitude/pkg/proactive"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// ToolName identifies one callable tool.
type ToolName string

const (
	ToolResearchQuery    ToolName = "research_query"
	ToolClassifyQuery    ToolName = "classify_query"
	ToolDetectContext    ToolName = "detect_context"
	ToolProactiveStart   ToolName = "proactive_start"
	ToolProactiveStop    ToolName = "proactive_stop"
	ToolProactiveStatus  ToolName = "proactive_status"
	ToolProactiveConfig  ToolName = "proactive_configure"
	ToolProactiveTasks   ToolName = "proactive_list_tasks"
	ToolProactiveNotices ToolName = "proactive_get_notifications"
)

// ResourceURI identifies one readable resource.
type ResourceURI string

const (
	ResourceCacheStatistics ResourceURI = "mcp://fortitude/cache/statistics"
	ResourceConfigCurrent   ResourceURI = "mcp://fortitude/config/current"
	ResourceSystemMetrics   ResourceURI = "mcp://fortitude/system/metrics"
)

// Deps wires the components tool calls dispatch to. Proactive may be
// nil, in which case every proactive_* tool reports ErrNotImplemented
// rather than panicking — a deployment that disables the proactive
// loop (config.ProactiveConfig.Enabled = false) never constructs a
// Supervisor.
type Deps struct {
	Pipeline      *pipeline.Pipeline
	Store         storage.Backend
	Classifier    *classifier.Classifier
	Authenticator *auth.Authenticator
	Proactive     *proactive.Supervisor
	Config        config.MCPConfig
	AppConfig     *config.Config
}

// Server dispatches MCP tool calls and resource reads onto Deps.
type Server struct {
	deps Deps
}

// NewServer builds a Server. It does not open any transport; callers
// wire Dispatch/ReadResource to whatever JSON-RPC/stdio framing they
// use.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// ToolError is the stable, JSON-serializable error shape returned to
// an MCP client on tool failure.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// classifyToolError maps an internal error onto a stable code string,
// the MCP-surface analogue of httpapi.classifyError.
func classifyToolError(err error) *ToolError {
	switch e := err.(type) {
	case *ferrors.InvalidInputError:
		return &ToolError{Code: "invalid_input", Message: e.Error()}
	case *ferrors.UnauthorizedError:
		return &ToolError{Code: "unauthorized", Message: e.Error()}
	case *ferrors.ForbiddenError:
		return &ToolError{Code: "forbidden", Message: e.Error()}
	case *ferrors.NotFoundError:
		return &ToolError{Code: "not_found", Message: e.Error()}
	case *ferrors.RateLimitExceededError:
		return &ToolError{Code: "rate_limit_exceeded", Message: e.Error()}
	case *ferrors.ClassificationLowConfidenceError:
		return &ToolError{Code: "classification_low_confidence", Message: e.Error()}
	default:
		if err == ferrors.ErrNotImplemented {
			return &ToolError{Code: "not_implemented", Message: err.Error()}
		}
		return &ToolError{Code: "internal_error", Message: err.Error()}
	}
}

// Dispatch runs tool by name against rawArgs (a JSON object) after
// verifying authorizationHeader carries the permission the tool
// requires, and returns the tool's JSON-encoded result. An unknown
// tool name returns a not_found ToolError, matching spec.md §6
// ("unknown tool names return an error").
func (s *Server) Dispatch(ctx context.Context, name ToolName, rawArgs json.RawMessage, authorizationHeader, clientIdentity string) (json.RawMessage, error) {
	perm, ok := toolPermissions[name]
	if !ok {
		return nil, classifyToolError(&ferrors.NotFoundError{Kind: "tool", ID: string(name)})
	}

	if _, _, err := s.deps.Authenticator.Authenticate(authorizationHeader, clientIdentity, perm); err != nil {
		return nil, classifyToolError(err)
	}

	handler, ok := toolHandlers[name]
	if !ok {
		return nil, classifyToolError(&ferrors.NotFoundError{Kind: "tool", ID: string(name)})
	}

	result, err := handler(s, ctx, rawArgs)
	if err != nil {
		return nil, classifyToolError(err)
	}
	return result, nil
}

// toolHandlerFunc is the shape every registered tool implements.
type toolHandlerFunc func(s *Server, ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error)

var toolPermissions = map[ToolName]research.Permission{
	ToolResearchQuery:    research.PermResearchRead,
	ToolClassifyQuery:    research.PermResearchRead,
	ToolDetectContext:    research.PermResearchRead,
	ToolProactiveStart:   research.PermAdmin,
	ToolProactiveStop:    research.PermAdmin,
	ToolProactiveStatus:  research.PermResearchRead,
	ToolProactiveConfig:  research.PermAdmin,
	ToolProactiveTasks:   research.PermResearchRead,
	ToolProactiveNotices: research.PermResearchRead,
}

var toolHandlers = map[ToolName]toolHandlerFunc{
	ToolResearchQuery:    (*Server).handleResearchQuery,
	ToolClassifyQuery:    (*Server).handleClassifyQuery,
	ToolDetectContext:    (*Server).handleDetectContext,
	ToolProactiveStart:   (*Server).handleProactiveStart,
	ToolProactiveStop:    (*Server).handleProactiveStop,
	ToolProactiveStatus:  (*Server).handleProactiveStatus,
	ToolProactiveConfig:  (*Server).handleProactiveConfigure,
	ToolProactiveTasks:   (*Server).handleProactiveListTasks,
	ToolProactiveNotices: (*Server).handleProactiveNotifications,
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ferrors.InvalidInputError{Field: "arguments", Message: "malformed JSON: " + err.Error()}
	}
	return nil
}

func encodeResult(v any) (json.RawMessage, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, &ferrors.SerializationError{Cause: err}
	}
	return out, nil
}
