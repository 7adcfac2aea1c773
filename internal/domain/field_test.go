package domain

import (
	"encoding/json"
	"testing"
)

func TestUpdateNoteRequestPresence(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentSet  bool
		contentNull bool
		content     string
		titleSet    bool
	}{
		{name: "content omitted", body: `{"title":"t"}`, titleSet: true},
		{name: "content present", body: `{"content":"hello "}`, contentSet: true, content: "hello "},
		{name: "content empty", body: `{"content":""}`, contentSet: true},
		{name: "content null", body: `{"content":null}`, contentSet: true, contentNull: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateNoteRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if req.Content.Set != tt.contentSet {
				t.Errorf("Content.Set = %v, want %v", req.Content.Set, tt.contentSet)
			}
			if req.Content.Null != tt.contentNull {
				t.Errorf("Content.Null = %v, want %v", req.Content.Null, tt.contentNull)
			}
			if req.Content.Value != tt.content {
				t.Errorf("Content.Value = %q, want %q", req.Content.Value, tt.content)
			}
			if req.Title.Set != tt.titleSet {
				t.Errorf("Title.Set = %v, want %v", req.Title.Set, tt.titleSet)
			}
		})
	}
}

func TestFieldPtr(t *testing.T) {
	if (Field[string]{}).Ptr() != nil {
		t.Error("absent field should yield nil")
	}
	if Null[string]().Ptr() != nil {
		t.Error("null field should yield nil")
	}
	if p := Present("x").Ptr(); p == nil || *p != "x" {
		t.Errorf("Present(\"x\").Ptr() = %v", p)
	}
}

func TestFieldTimeParsesRFC3339(t *testing.T) {
	var req UpdateNoteRequest
	if err := json.Unmarshal([]byte(`{"consultation_date":"2024-05-01T10:30:00Z"}`), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !req.ConsultationDate.Set || req.ConsultationDate.Value.Hour() != 10 {
		t.Errorf("ConsultationDate = %+v", req.ConsultationDate)
	}
	if err := json.Unmarshal([]byte(`{"consultation_date":"yesterday"}`), &req); err == nil {
		t.Error("expected error for non RFC 3339 date")
	}
}
