package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpers(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		prefix string
	}{
		{"success", Success("done"), "✓"},
		{"warn", Warn("careful"), "⚠"},
		{"error", Err("failed"), "✗"},
		{"info", Info("submitted"), "ℹ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.got, tt.prefix)
		})
	}
	assert.Contains(t, Success("done"), "done")
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("1.5 ETH"), "1.5 ETH")
	assert.Contains(t, Meta("meta"), "meta")
	assert.Contains(t, NetworkName("mainnet"), "mainnet")
}

func TestYesNo(t *testing.T) {
	assert.Contains(t, YesNo(true), "yes")
	assert.Contains(t, YesNo(false), "no")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x4040…74f4", TruncateAddr("0x404079604e7d565d068ac8e8eb213b4f05b174f4"))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
}
