package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneEther() *big.Int { return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil) }

// ---------------------------------------------------------------------------
// ParseUnits
// ---------------------------------------------------------------------------

func TestParseUnitsTrailingZerosAreIrrelevant(t *testing.T) {
	a, err := ParseUnits("1.5", 18)
	require.NoError(t, err)
	b, err := ParseUnits("1.500000000000000000", 18)
	require.NoError(t, err)
	c, err := ParseUnits("1.50000000000000000000000", 18)
	require.NoError(t, err)

	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, want, a)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestParseUnitsTable(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     string
	}{
		{"0", 18, "0"},
		{"1", 18, "1000000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{"1.", 6, "1000000"},
		{".25", 6, "250000"},
		{"001.10", 6, "1100000"},
		{"42", 0, "42"},
		{"123456789.123456", 6, "123456789123456"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseUnitsRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", " ", ".", "abc", "1e18", "-1", "+1", "1,5", "1.2.3", "0x10", "1 000"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseUnits(in, 18)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestParseUnitsRejectsExcessPrecision(t *testing.T) {
	_, err := ParseUnits("1.0000001", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParsePositiveUnitsRejectsZero(t *testing.T) {
	_, err := ParsePositiveUnits("0.000", 18)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseEther(t *testing.T) {
	v, err := ParseEther("1")
	require.NoError(t, err)
	assert.Equal(t, oneEther(), v)
}

// ---------------------------------------------------------------------------
// FormatUnits / FormatDisplay
// ---------------------------------------------------------------------------

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "1", FormatUnits(oneEther(), 18))
	assert.Equal(t, "0.000000000000000001", FormatUnits(big.NewInt(1), 18))
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
	assert.Equal(t, "-0.5", FormatUnits(big.NewInt(-500_000), 6))
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestFormatUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "1.5", "0.000001", "98765.4321"} {
		v, err := ParseUnits(s, 18)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(v, 18))
	}
}

func TestFormatDisplayTruncatesToFourDigits(t *testing.T) {
	v, _ := ParseUnits("1.23456789", 18)
	assert.Equal(t, "1.2345", FormatDisplay(v, 18))

	v, _ = ParseUnits("2.00001", 18)
	assert.Equal(t, "2", FormatDisplay(v, 18))

	v, _ = ParseUnits("0.1200", 6)
	assert.Equal(t, "0.12", FormatDisplay(v, 6))
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1", FormatEther(oneEther()))
}

// ---------------------------------------------------------------------------
// ParseAddress
// ---------------------------------------------------------------------------

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), addr)
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "0x", "0x1234", "f39Fd6e51aad88F6F4ce6aB8827279cffFb92266", "0xZZ9Fd6e51aad88F6F4ce6aB8827279cffFb92266"} {
		_, err := ParseAddress(in)
		assert.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}
