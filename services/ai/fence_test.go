package aisvc

import (
	"testing"

	"github.com/trezcool/njia/core"
)

func TestExtractFencedJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{
			name: "fenced object",
			text: "Sure! Here is your plan:\n```json\n{\"modules\": []}\n```\nLet me know if you need more.",
			want: `{"modules": []}`,
		},
		{
			name: "fenced array",
			text: "```json\n[{\"id\": \"go-basics\"}]\n```",
			want: `[{"id": "go-basics"}]`,
		},
		{
			name:    "no fence at all",
			text:    `{"modules": []}`,
			wantErr: core.ErrUpstreamFormat,
		},
		{
			name:    "plain fence without json label",
			text:    "```\n{\"modules\": []}\n```",
			wantErr: core.ErrUpstreamFormat,
		},
		{
			name:    "fenced but malformed",
			text:    "```json\n{\"modules\": \n```",
			wantErr: core.ErrUpstreamParse,
		},
		{
			name:    "empty fence",
			text:    "```json\n```",
			wantErr: core.ErrUpstreamParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFencedJSON(tt.text)
			if err != tt.wantErr {
				t.Fatalf("ExtractFencedJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && string(got) != tt.want {
				t.Errorf("ExtractFencedJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}
