package services

import (
	"testing"

	"juntos/internal/testutil"
)

func TestPositiveAmount(t *testing.T) {
	tests := []struct {
		amount string
		code   string
	}{
		{"10", ""},
		{"10.5", ""},
		{"10.50", ""},
		{"10.500", ""},
		{"0.01", ""},
		{"0", "INVALID_INPUT"},
		{"-1", "INVALID_INPUT"},
		{"0.005", "INVALID_INPUT"},
		{"10.001", "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := positiveAmount("amount", testutil.Dec(tt.amount))
			if tt.code == "" {
				testutil.AssertNoError(t, err)
				return
			}
			testutil.AssertAppError(t, err, tt.code)
		})
	}
}

func TestCentsOnly(t *testing.T) {
	testutil.AssertNoError(t, centsOnly("balance", testutil.Dec("-12.34")))
	testutil.AssertNoError(t, centsOnly("balance", testutil.Dec("0")))
	testutil.AssertAppError(t, centsOnly("balance", testutil.Dec("-12.345")), "INVALID_INPUT")
}
