package common

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/pkg/errors"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, sortID := range []int64{0, 1, 42, 170001, 9223372036854775807} {
		token := EncodeCursor(sortID)

		cursor, err := DecodeCursor(token)
		require.NoError(t, err)
		require.NotNil(t, cursor)
		assert.Equal(t, sortID, cursor.SortID)
	}
}

func TestDecodeCursorEmptyToken(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursorInvalidBase64(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.True(t, errors.IsValidation(err))
}

func TestDecodeCursorMalformedJSON(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("{bad json"))

	_, err := DecodeCursor(token)
	assert.True(t, errors.IsValidation(err))
}

func TestEncodeCursorIsStandardBase64JSON(t *testing.T) {
	token := EncodeCursor(123)

	data, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sortId":123}`, string(data))
}

func TestExtractPaginationParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/domains?limit=10&offset=abc", nil)
	params := ExtractPaginationParams(r, 50, 100)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "abc", params.Offset)
}

func TestExtractPaginationParamsDefaultsAndClamp(t *testing.T) {
	r := httptest.NewRequest("GET", "/domains", nil)
	params := ExtractPaginationParams(r, 50, 100)
	assert.Equal(t, 50, params.Limit)
	assert.Empty(t, params.Offset)

	r = httptest.NewRequest("GET", "/domains?limit=5000", nil)
	params = ExtractPaginationParams(r, 50, 100)
	assert.Equal(t, 100, params.Limit)

	r = httptest.NewRequest("GET", "/domains?limit=-3", nil)
	params = ExtractPaginationParams(r, 50, 100)
	assert.Equal(t, 50, params.Limit)
}
