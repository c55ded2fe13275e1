package token2022

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 2)

	metadata := Metadata{
		UpdateAuthority: keys[0],
		Mint:            keys[1],
		Name:            "My Token",
		Symbol:          "MYTKN",
		URI:             "https://example.com/token.json",
		AdditionalFields: []Field{
			{Key: "website", Value: "https://example.com"},
			{Key: "tier", Value: "gold"},
		},
	}

	data := metadata.Marshal()
	assert.Equal(t, metadata.encodedLen(), len(data))
	assert.Equal(t, tlvHeaderSize+len(data), metadata.TLVLen())

	var decoded Metadata
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, metadata, decoded)
}

func TestMetadata_UnmarshalTruncated(t *testing.T) {
	keys := generateKeys(t, 2)

	metadata := Metadata{
		UpdateAuthority: keys[0],
		Mint:            keys[1],
		Name:            "My Token",
		Symbol:          "MYTKN",
		URI:             "https://example.com/token.json",
	}
	data := metadata.Marshal()

	var decoded Metadata
	assert.Error(t, decoded.Unmarshal(data[:len(data)-10]))
	assert.Error(t, decoded.Unmarshal(data[:40]))
	assert.Error(t, decoded.Unmarshal(nil))
}

func TestMetadata_Validate(t *testing.T) {
	metadata := Metadata{
		Name:   strings.Repeat("n", MaxMetadataNameLen),
		Symbol: strings.Repeat("s", MaxMetadataSymbolLen),
		URI:    strings.Repeat("u", MaxMetadataURILen),
	}
	assert.NoError(t, metadata.Validate())

	var tooLong *MetadataFieldTooLongError

	metadata.Name += "n"
	require.ErrorAs(t, metadata.Validate(), &tooLong)
	assert.Equal(t, FieldKeyName, tooLong.Field)

	metadata.Name = "ok"
	metadata.Symbol += "s"
	require.ErrorAs(t, metadata.Validate(), &tooLong)
	assert.Equal(t, FieldKeySymbol, tooLong.Field)

	metadata.Symbol = "OK"
	metadata.URI += "u"
	require.ErrorAs(t, metadata.Validate(), &tooLong)
	assert.Equal(t, FieldKeyURI, tooLong.Field)
}

func TestMetadata_Fields(t *testing.T) {
	metadata := Metadata{
		Name:   "My Token",
		Symbol: "MYTKN",
		URI:    "https://example.com/token.json",
	}

	// Reserved keys resolve to the base fields.
	name, ok := metadata.Field(FieldKeyName)
	require.True(t, ok)
	assert.Equal(t, "My Token", name)

	metadata.SetField(FieldKeyURI, "https://example.com/v2.json")
	assert.Equal(t, "https://example.com/v2.json", metadata.URI)
	assert.Empty(t, metadata.AdditionalFields)

	_, ok = metadata.Field("website")
	assert.False(t, ok)

	metadata.SetField("website", "https://example.com")
	metadata.SetField("tier", "gold")
	metadata.SetField("website", "https://example.org")

	// Updating in place preserves insertion order.
	require.Len(t, metadata.AdditionalFields, 2)
	assert.Equal(t, Field{Key: "website", Value: "https://example.org"}, metadata.AdditionalFields[0])
	assert.Equal(t, Field{Key: "tier", Value: "gold"}, metadata.AdditionalFields[1])
}
