package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_NASDAQ_Valid(t *testing.T) {
	doc := `{"data":{"rows":[{"symbol":"AAPL","name":"Apple Inc. Common Stock","country":"United States","sector":"Technology","industry":null}]}}`
	assert.NoError(t, Validate(NASDAQScreener, []byte(doc)))
}

func TestValidate_NASDAQ_MissingRows(t *testing.T) {
	err := Validate(NASDAQScreener, []byte(`{"data":{"headers":{}}}`))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Error(), NASDAQScreener)
}

func TestValidate_NASDAQ_NullData(t *testing.T) {
	// the screener answers {"data":null,...} when it rejects the request headers
	err := Validate(NASDAQScreener, []byte(`{"data":null,"status":{"rCode":400}}`))
	require.Error(t, err)
	_, ok := err.(*ValidationError)
	assert.True(t, ok)
}

func TestValidate_DatasetRows_WrongType(t *testing.T) {
	err := Validate(DatasetRows, []byte(`{"rows":[{"row":{"symbol":1,"security":"3M"}}]}`))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, validationErr.Errors[0].Field, "symbol")
}

func TestValidate_MediaWiki_Valid(t *testing.T) {
	doc := `{"batchcomplete":true,"query":{"pages":[{"title":"Apple Inc.","revisions":[]},{"title":"Nope","missing":true}]}}`
	assert.NoError(t, Validate(MediaWikiQuery, []byte(doc)))
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate(NASDAQScreener, []byte("<html>"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoad_UnknownSchema(t *testing.T) {
	_, err := Load("missing.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema not embedded")
}
