package mcpapi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fortitude-run/fortitude/pkg/research"
)

func TestDispatch_ResearchQuery(t *testing.T) {
	s := testServer(t)

	raw, err := dispatch(t, s, ToolResearchQuery, researchQueryArgs{Text: "how do I write a custom io.Reader in Go"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var result research.ResearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ImmediateAnswer == "" {
		t.Error("expected a non-empty answer")
	}
}

func TestDispatch_ResearchQuery_InvalidInput(t *testing.T) {
	s := testServer(t)

	_, err := dispatch(t, s, ToolResearchQuery, researchQueryArgs{Text: ""})
	if err == nil {
		t.Fatal("expected an error for empty query text")
	}
	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if toolErr.Code != "invalid_input" {
		t.Errorf("code = %q, want invalid_input", toolErr.Code)
	}
}

func TestDispatch_ClassifyQuery(t *testing.T) {
	s := testServer(t)

	raw, err := dispatch(t, s, ToolClassifyQuery, classifyQueryArgs{Text: "how to fix a NullPointerException in Java"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var classified research.ClassifiedRequest
	if err := json.Unmarshal(raw, &classified); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if classified.ResearchType == "" {
		t.Error("expected a non-empty research type")
	}
}

func TestDispatch_DetectContext(t *testing.T) {
	s := testServer(t)

	raw, err := dispatch(t, s, ToolDetectContext, detectContextArgs{Text: "urgent: production database is down"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var result detectContextResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	s := testServer(t)

	_, err := dispatch(t, s, ToolName("does_not_exist"), struct{}{})
	if err == nil {
		t.Fatal("expected an error for unknown tool")
	}
	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if toolErr.Code != "not_found" {
		t.Errorf("code = %q, want not_found", toolErr.Code)
	}
}

func TestDispatch_ProactiveTools_NotImplementedWithoutSupervisor(t *testing.T) {
	s := testServer(t)

	for _, tool := range []ToolName{
		ToolProactiveStart, ToolProactiveStop, ToolProactiveStatus,
		ToolProactiveConfig, ToolProactiveTasks, ToolProactiveNotices,
	} {
		_, err := dispatch(t, s, tool, struct{}{})
		if err == nil {
			t.Fatalf("%s: expected an error with no supervisor wired", tool)
		}
		toolErr, ok := err.(*ToolError)
		if !ok {
			t.Fatalf("%s: expected *ToolError, got %T", tool, err)
		}
		if toolErr.Code != "not_implemented" {
			t.Errorf("%s: code = %q, want not_implemented", tool, toolErr.Code)
		}
	}
}

func TestReadResource_CacheStatistics(t *testing.T) {
	s := testServer(t)

	raw, err := s.ReadResource(context.Background(), ResourceCacheStatistics)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if len(raw) == 0 {
		t.Error("expected a non-empty stats payload")
	}
}

func TestReadResource_ConfigCurrent_RedactsSecrets(t *testing.T) {
	s := testServer(t)

	raw, err := s.ReadResource(context.Background(), ResourceConfigCurrent)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}

	if strings.Contains(string(raw), "super-secret-signing-key") {
		t.Error("signing key leaked into config/current resource")
	}
	if strings.Contains(string(raw), "sk-test-key") {
		t.Error("provider API key leaked into config/current resource")
	}
	if !strings.Contains(string(raw), "[REDACTED]") {
		t.Error("expected redacted secrets to appear as [REDACTED]")
	}
}

func TestReadResource_SystemMetrics(t *testing.T) {
	s := testServer(t)

	raw, err := s.ReadResource(context.Background(), ResourceSystemMetrics)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if len(raw) == 0 {
		t.Error("expected a non-empty metrics payload")
	}
}

func TestReadResource_UnknownURI(t *testing.T) {
	s := testServer(t)

	_, err := s.ReadResource(context.Background(), ResourceURI("mcp://fortitude/nope"))
	if err == nil {
		t.Fatal("expected an error for an unknown resource URI")
	}
}
