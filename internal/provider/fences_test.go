package provider

import (
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n```json\n{\"a\":1}\n```\n ", want: `{"a":1}`},
		{name: "single line fence", in: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "inner backticks kept", in: "```json\n{\"code\":\"use ```x``` here\"}\n```", want: "{\"code\":\"use ```x``` here\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "fenced object", in: "```json\n{\"isValidCode\":false,\"message\":\"x\"}\n```", want: `{"isValidCode":false,"message":"x"}`},
		{name: "prose around object", in: "Here is the report:\n{\"score\":90}\nHope it helps.", want: `{"score":90}`},
		{name: "prose only", in: "I cannot analyse this code.", wantErr: true},
		{name: "broken object", in: "{\"score\": 9", wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ParseJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
