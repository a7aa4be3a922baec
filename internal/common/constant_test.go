package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: ""},
		{name: "short", token: "abc", want: "****"},
		{name: "twelve", token: "abcdefghijkl", want: "****"},
		{name: "long", token: "eyJhbGciOiJIUzI1NiJ9.payload.sig", want: "eyJh….sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskToken(tt.token))
		})
	}
}
