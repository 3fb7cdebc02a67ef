package locationlog

import (
	"encoding/base64"
	"strings"
	"testing"

	"geo-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	records := []models.LocationRecord{
		{Latitude: 40.71, Longitude: -74.00, Timestamp: "2024-01-01T00:00:00Z"},
		{Latitude: 35.681236, Longitude: 139.767125, Timestamp: "2024-01-01T00:00:00.123Z", Source: models.SourceBrowser},
		{Latitude: -33.86, Longitude: 151.2, Timestamp: "2024-01-02T10:00:00+10:00", Source: models.SourceIP, City: "Sydney", Region: "New South Wales", Country: "Australia"},
	}

	content, err := Encode(records)
	require.NoError(t, err)

	decoded, err := Decode(content)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestCodec_EncodeEmpty(t *testing.T) {
	content, err := Encode(nil)
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(content)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	decoded, err := Decode(content)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodec_IndentedJSON(t *testing.T) {
	content, err := Encode([]models.LocationRecord{{Latitude: 1.5, Longitude: 2.5, Timestamp: "2024-01-01T00:00:00Z"}})
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(content)
	require.NoError(t, err)
	expected := "[\n  {\n    \"latitude\": 1.5,\n    \"longitude\": 2.5,\n    \"timestamp\": \"2024-01-01T00:00:00Z\"\n  }\n]"
	assert.Equal(t, expected, string(data))
}

func TestCodec_DecodeWrappedBase64(t *testing.T) {
	// GitHub returns base64 content wrapped at 60 columns.
	raw := `[{"latitude":40.71,"longitude":-74,"timestamp":"2024-01-01T00:00:00Z"},{"latitude":1,"longitude":2,"timestamp":"2024-01-01T00:00:01Z"}]`
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	var wrapped strings.Builder
	for i := 0; i < len(encoded); i += 60 {
		end := min(i+60, len(encoded))
		wrapped.WriteString(encoded[i:end])
		wrapped.WriteString("\n")
	}

	decoded, err := Decode(wrapped.String())
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, 40.71, decoded[0].Latitude)
	assert.Equal(t, "2024-01-01T00:00:01Z", decoded[1].Timestamp)
}

func TestCodec_DecodeRejectsNonArrays(t *testing.T) {
	for _, raw := range []string{"null", `{"a":1}`, `"text"`, "  ", "[{]", "[1,2,3]", `[{},null]`, `[{},"x"]`} {
		_, err := Decode(base64.StdEncoding.EncodeToString([]byte(raw)))
		assert.Error(t, err, raw)
	}
}
