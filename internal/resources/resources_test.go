package resources

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeMenu struct {
	items []backend.MenuItem
	err   error
}

func (f fakeMenu) ListMenu(context.Context) ([]backend.MenuItem, error) { return f.items, f.err }
func (f fakeMenu) Categories(context.Context) ([]string, error)         { return nil, f.err }

func readText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	return tc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestHandleProfile(t *testing.T) {
	h := NewHandler(dialogue.DefaultProfile(), backend.DefaultWindow, fakeMenu{})
	if h.ProfileResource().URI != ProfileURI {
		t.Errorf("URI = %q", h.ProfileResource().URI)
	}

	contents, err := h.HandleProfile(context.Background(), readRequest(ProfileURI))
	if err != nil {
		t.Fatalf("HandleProfile failed: %v", err)
	}
	tc := readText(t, contents)
	var got profileView
	if err := json.Unmarshal([]byte(tc.Text), &got); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if got.Name != "White Palace Grill" || got.Opens != "06:00" || got.Closes != "23:00" {
		t.Errorf("profile = %+v", got)
	}
	if tc.MIMEType != "application/json" || tc.URI != ProfileURI {
		t.Errorf("contents = %s %s", tc.URI, tc.MIMEType)
	}
}

func TestHandleMenu(t *testing.T) {
	menu := fakeMenu{items: []backend.MenuItem{{ID: 1, Name: "Classic Burger", Price: 9.5}}}
	h := NewHandler(dialogue.DefaultProfile(), backend.DefaultWindow, menu)

	contents, err := h.HandleMenu(context.Background(), readRequest(MenuURI))
	if err != nil {
		t.Fatalf("HandleMenu failed: %v", err)
	}
	var got []backend.MenuItem
	if err := json.Unmarshal([]byte(readText(t, contents).Text), &got); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Classic Burger" {
		t.Errorf("menu = %+v", got)
	}
}

func TestHandleMenu_BackendDown(t *testing.T) {
	h := NewHandler(dialogue.DefaultProfile(), backend.DefaultWindow, fakeMenu{err: errors.New("connection refused")})

	contents, err := h.HandleMenu(context.Background(), readRequest(MenuURI))
	if err != nil {
		t.Fatalf("backend failure should not be a protocol error: %v", err)
	}
	tc := readText(t, contents)
	if tc.MIMEType != "text/plain" || !strings.Contains(tc.Text, "connection refused") {
		t.Errorf("contents = %+v", tc)
	}
}
