package models

import "testing"

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr bool
	}{
		{"empty question", &ChatRequest{Question: ""}, true},
		{"valid question", &ChatRequest{Question: "what is kotae?"}, false},
		{"keeps explicit session", &ChatRequest{Question: "q", SessionID: "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.req.SessionID == "" {
				t.Error("expected session id default to be set")
			}
			if tt.req.UseMemory == nil || !*tt.req.UseMemory {
				t.Error("expected use_memory to default to true")
			}
		})
	}
}

func TestChatRequest_Validate_ExplicitMemoryOff(t *testing.T) {
	f := false
	req := &ChatRequest{Question: "q", UseMemory: &f}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if *req.UseMemory {
		t.Error("explicit use_memory=false must be preserved")
	}
	if req.SessionID != DefaultSessionID {
		t.Errorf("SessionID = %q, want %q", req.SessionID, DefaultSessionID)
	}
}
