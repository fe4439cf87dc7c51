package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("creates address with required fields", func(t *testing.T) {
		addr, err := NewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", addr.Name())
		assert.Equal(t, "1 Main St", addr.Street())
		assert.Equal(t, "Springfield", addr.City())
		assert.Equal(t, "IL", addr.State())
		assert.Equal(t, "62701", addr.ZipCode())
		assert.Equal(t, "USA", addr.Country())
		assert.Empty(t, addr.Phone())
	})

	t.Run("applies options", func(t *testing.T) {
		addr, err := NewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701",
			WithPhone("555-0100"), WithCountry("Canada"))
		require.NoError(t, err)
		assert.Equal(t, "555-0100", addr.Phone())
		assert.Equal(t, "Canada", addr.Country())
	})

	t.Run("trims whitespace", func(t *testing.T) {
		addr, err := NewAddress("  Jane Doe ", " 1 Main St ", " Springfield ", " IL ", " 62701 ")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", addr.Name())
		assert.Equal(t, "62701", addr.ZipCode())
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		tests := []struct {
			name                                string
			recipient, street, city, state, zip string
		}{
			{"empty name", "", "1 Main St", "Springfield", "IL", "62701"},
			{"empty street", "Jane", "", "Springfield", "IL", "62701"},
			{"empty city", "Jane", "1 Main St", "", "IL", "62701"},
			{"empty state", "Jane", "1 Main St", "Springfield", "", "62701"},
			{"empty zip", "Jane", "1 Main St", "Springfield", "IL", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewAddress(tt.recipient, tt.street, tt.city, tt.state, tt.zip)
				assert.Error(t, err)
			})
		}
	})
}

func TestAddress_FullAddress(t *testing.T) {
	addr := MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
	assert.Equal(t, "Jane Doe, 1 Main St, Springfield, IL 62701, USA", addr.FullAddress())

	assert.Empty(t, EmptyAddress().FullAddress())
}

func TestAddress_Equals(t *testing.T) {
	a := MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
	b := MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
	c := MustNewAddress("John Doe", "1 Main St", "Springfield", "IL", "62701")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestAddress_JSONRoundTrip(t *testing.T) {
	addr := MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701", WithPhone("555-0100"))

	data, err := json.Marshal(addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, addr.Equals(decoded))
}

func TestAddress_SQLRoundTrip(t *testing.T) {
	addr := MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")

	v, err := addr.Value()
	require.NoError(t, err)

	var scanned Address
	require.NoError(t, scanned.Scan(v))
	assert.True(t, addr.Equals(scanned))

	t.Run("empty address stores NULL", func(t *testing.T) {
		v, err := EmptyAddress().Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("nil scans to empty", func(t *testing.T) {
		var a Address
		require.NoError(t, a.Scan(nil))
		assert.True(t, a.IsEmpty())
	})
}
