package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow_SnakeCase(t *testing.T) {
	row, err := ParseRow([]byte(`{"form":" 바다 ","definition":"지구 표면의 짠물","english_definition":"sea","usages":["바다를 건너다"]}`))
	require.NoError(t, err)

	assert.Equal(t, "바다", row.Form)
	assert.Equal(t, "지구 표면의 짠물", row.Definition)
	assert.Equal(t, "sea", row.EnglishDefinition)
	assert.Equal(t, []string{"바다를 건너다"}, row.Usages)
	assert.NoError(t, row.UsagesErr)
}

func TestParseRow_DefinitionFallback(t *testing.T) {
	row, err := ParseRow([]byte(`{"form":"산","definition":null,"korean_definition":"높이 솟은 땅"}`))
	require.NoError(t, err)
	assert.Equal(t, "높이 솟은 땅", row.Definition)

	row, err = ParseRow([]byte(`{"form":"산","definition":"","korean_definition":"높이 솟은 땅"}`))
	require.NoError(t, err)
	assert.Equal(t, "높이 솟은 땅", row.Definition)

	row, err = ParseRow([]byte(`{"form":"산","definition":"먼저","korean_definition":"나중"}`))
	require.NoError(t, err)
	assert.Equal(t, "먼저", row.Definition)
}

func TestParseRow_DatasetHeaders(t *testing.T) {
	row, err := ParseRow([]byte(`{"Form":"강","Korean Definition":"넓고 길게 흐르는 물줄기","English Definition":"river","Usages":"['강을 건너다', '강이 흐르다']"}`))
	require.NoError(t, err)

	assert.Equal(t, "강", row.Form)
	assert.Equal(t, "넓고 길게 흐르는 물줄기", row.Definition)
	assert.Equal(t, "river", row.EnglishDefinition)
	assert.Equal(t, []string{"강을 건너다", "강이 흐르다"}, row.Usages)
}

func TestParseRow_MissingForm(t *testing.T) {
	row, err := ParseRow([]byte(`{"definition":"뜻"}`))
	require.NoError(t, err)
	assert.Empty(t, row.Form)
	assert.Nil(t, row.Usages)
}

func TestParseRow_Malformed(t *testing.T) {
	for _, line := range []string{`not json`, `["a"]`, `null`, `{"form":`} {
		_, err := ParseRow([]byte(line))
		assert.ErrorIs(t, err, ErrMalformedRow, line)
	}
}
