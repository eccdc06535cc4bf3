package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskFieldRedactsUnknownKeys(t *testing.T) {
	attr := MaskField("api_key", "super-secret")
	require.Equal(t, RedactedValue, attr.Value.String())
}

func TestMaskFieldAllowsKnownKeys(t *testing.T) {
	attr := MaskField("person_id", "123e4567-e89b-12d3-a456-426614174000")
	require.Equal(t, "123e4567-e89b-12d3-a456-426614174000", attr.Value.String())
}

func TestMaskFieldSkipsEmptyValues(t *testing.T) {
	attr := MaskField("api_key", "")
	require.Equal(t, "", attr.Value.String())
}
