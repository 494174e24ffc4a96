package server_test

import (
	"testing"

	"sheet-reconciler/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		cfg  server.Config
		want string
	}{
		{"AllInterfaces", server.Config{Port: "8080"}, ":8080"},
		{"Loopback", server.Config{Host: "127.0.0.1", Port: "9000"}, "127.0.0.1:9000"},
		{"IPv6", server.Config{Host: "::1", Port: "80"}, "[::1]:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}
