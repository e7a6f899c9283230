package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	appValidator "github.com/charlesng35/dbnav/pkg/validator"
)

func TestFormatValidationError(t *testing.T) {
	err := appValidator.ValidationErrors{
		{Field: "pos2_value", Tag: "gte", Param: "0"},
		{Field: "kind", Tag: "required"},
		{Field: "vpath", Tag: "base64path"},
		{Field: "mode", Tag: "oneof", Param: "a b"},
		{Field: "other", Tag: "max", Param: "3"},
	}

	require.Equal(t,
		"pos2 value must be at least 0; kind is required; vpath must be a dot-joined list of base64 segments; mode must be one of: a b; other failed validation: max=3",
		formatValidationError(err))
	require.Equal(t, "invalid request", formatValidationError(nil))
	require.Equal(t, "invalid request", formatValidationError(appValidator.ValidationErrors{}))
	require.Equal(t, "field is required", formatValidationError(appValidator.ValidationErrors{{Tag: "required"}}))
}

func TestBase64PathRule(t *testing.T) {
	type probe struct {
		Path string `json:"path" validate:"omitempty,base64path"`
	}
	require.NoError(t, appValidator.ValidateStruct(probe{Path: "bG9jYWxob3N0.bWFpbg=="}))
	require.NoError(t, appValidator.ValidateStruct(probe{}))
	require.Error(t, appValidator.ValidateStruct(probe{Path: "bG9j!"}))
}
