package broadcasting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantErr    bool
		wantMethod string
		wantTarget string
	}{
		{name: "full request", input: "GET /events HTTP/1.1\r\nHost: x\r\n\r\n", wantOK: true, wantMethod: "GET", wantTarget: "/events"},
		{name: "request line without headers", input: "POST /events HTTP/1.1\r\n", wantOK: true, wantMethod: "POST", wantTarget: "/events"},
		{name: "version still missing", input: "GET /events ", wantOK: true, wantMethod: "GET", wantTarget: "/events"},
		{name: "leading empty lines", input: "\r\n\r\nGET /x HTTP/1.1\r\n", wantOK: true, wantMethod: "GET", wantTarget: "/x"},
		{name: "empty", input: ""},
		{name: "partial method", input: "GE"},
		{name: "partial target", input: "GET /eve"},
		{name: "bad method byte", input: "G\x00T /events HTTP/1.1", wantErr: true},
		{name: "missing method", input: " /events HTTP/1.1", wantErr: true},
		{name: "missing target", input: "GET  HTTP/1.1", wantErr: true},
		{name: "line ends inside target", input: "GET /events\r\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, target, ok, err := parseRequestLine([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, errMalformedRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantMethod, method)
			require.Equal(t, tt.wantTarget, target)
		})
	}
}
