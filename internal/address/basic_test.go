package address_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addresscomplete/internal/address"
)

func TestBasicValidator_Valid(t *testing.T) {
	v := address.NewBasicValidator()

	result, err := v.Validate(context.Background(), address.New("123 Main St", "Toronto", "on", "m5v2t6"))

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.NormalizedAddress)
	assert.Equal(t, "ON", result.NormalizedAddress.Province)
	assert.Equal(t, "M5V 2T6", result.NormalizedAddress.PostalCode)
}

func TestBasicValidator_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		addr   address.Address
		fields []string
	}{
		{
			name:   "degenerate suggestion",
			addr:   address.Address{Street: "Unit 5 Somewhere", DisplayText: "Unit 5 Somewhere"},
			fields: []string{"city", "province", "postal_code"},
		},
		{
			name:   "unknown province",
			addr:   address.New("1 A St", "Springfield", "ZZ", "K1A 0B1"),
			fields: []string{"province"},
		},
		{
			name:   "US zip code",
			addr:   address.New("1 A St", "Toronto", "ON", "90210"),
			fields: []string{"postal_code"},
		},
		{
			name:   "forbidden letter",
			addr:   address.New("1 A St", "Toronto", "ON", "D1A 0B1"),
			fields: []string{"postal_code"},
		},
	}

	v := address.NewBasicValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(context.Background(), tt.addr)
			require.NoError(t, err)

			assert.False(t, result.IsValid)
			var got []string
			for _, fe := range result.Errors {
				got = append(got, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestBasicValidator_ForeignCountryWarns(t *testing.T) {
	a := address.New("1 A St", "Toronto", "ON", "M5V 2T6")
	a.Country = "USA"

	result, err := address.NewBasicValidator().Validate(context.Background(), a)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Len(t, result.Warnings, 1)
}

func TestNormalize(t *testing.T) {
	got := address.Normalize(address.Address{
		Street:     "  1 A St ",
		City:       " Ottawa",
		Province:   "on ",
		PostalCode: " k1a   0b1 ",
	})

	assert.Equal(t, "1 A St", got.Street)
	assert.Equal(t, "Ottawa", got.City)
	assert.Equal(t, "ON", got.Province)
	assert.Equal(t, "K1A 0B1", got.PostalCode)
	assert.Equal(t, "Canada", got.Country)
}

func TestProvinceName(t *testing.T) {
	name, ok := address.ProvinceName("qc")
	assert.True(t, ok)
	assert.Equal(t, "Quebec", name)

	_, ok = address.ProvinceName("XX")
	assert.False(t, ok)
}

func TestMockValidator(t *testing.T) {
	m := address.NewMockValidator()

	result, err := m.Validate(context.Background(), address.New("1 A St", "", "", ""))
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	boom := errors.New("boom")
	m.ValidateFunc = func(ctx context.Context, addr address.Address) (*address.ValidationResult, error) {
		return nil, boom
	}
	_, err = m.Validate(context.Background(), address.Address{})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, m.Calls, 2)
}
