package discord

import (
	"net/http"
	"testing"
)

func TestClassifyDelete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    Outcome
		wantErr bool
	}{
		{name: "no content", status: http.StatusNoContent, want: OutcomeOK},
		{name: "ok", status: http.StatusOK, want: OutcomeOK},
		{name: "not found", status: http.StatusNotFound, want: OutcomeNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, want: OutcomeRateLimited},
		{name: "forbidden", status: http.StatusForbidden, want: OutcomeOther, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, want: OutcomeOther, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classifyDelete(tt.status, nil, "delete role")
			if got != tt.want {
				t.Errorf("classifyDelete(%d) = %v, want %v", tt.status, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("classifyDelete(%d) error = %v, wantErr %v", tt.status, err, tt.wantErr)
			}
		})
	}
}
