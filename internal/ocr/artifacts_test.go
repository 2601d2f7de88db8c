package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArtifacts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "file URL removed",
			input: "REPUBBLICA ITALIANA file:///C:/Users/scan/card.html CARTA",
			want:  "REPUBBLICA ITALIANA CARTA",
		},
		{
			name:  "http URL removed",
			input: "NAME SURNAME https://upload.wikimedia.org/id.png",
			want:  "NAME SURNAME",
		},
		{
			name:  "timestamp removed",
			input: "2/17/26, 9:23 AM IDENTITY CARD",
			want:  "IDENTITY CARD",
		},
		{
			name:  "image filename with dimensions removed",
			input: "card_front.png (1280x802) COMUNE DI ROMA",
			want:  "COMUNE DI ROMA",
		},
		{
			name:  "browser title removed",
			input: "Google Chrome CARTA DI IDENTITA",
			want:  "CARTA DI IDENTITA",
		},
		{
			name:  "clean text untouched",
			input: "CARTA DI IDENTITA ROSSI MARIO",
			want:  "CARTA DI IDENTITA ROSSI MARIO",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArtifacts(tt.input))
		})
	}
}

func TestFilterForConfidence_DropsNoiseLines(t *testing.T) {
	input := "CARTA DI IDENTITA\n!@# $%^\n123 45\nROSSI MARIO"
	got := FilterForConfidence(input)
	assert.Contains(t, got, "CARTA DI IDENTITA")
	assert.Contains(t, got, "ROSSI MARIO")
	assert.NotContains(t, got, "!@#")
	assert.NotContains(t, got, "123 45")
}

func TestHasArtifacts(t *testing.T) {
	assert.True(t, HasArtifacts("see https://example.com/page"))
	assert.True(t, HasArtifacts("C:\\Users\\scan\\doc"))
	assert.True(t, HasArtifacts("Microsoft Edge"))
	assert.False(t, HasArtifacts("CARTA DI IDENTITA"))
	assert.False(t, HasArtifacts(""))
}

func TestIsArtifactToken(t *testing.T) {
	assert.True(t, IsArtifactToken("screenshot.png"))
	assert.True(t, IsArtifactToken("(1280x802)"))
	assert.False(t, IsArtifactToken("ROSSI"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "ROSSI MARIO", CleanText("ROSSI\x00  MARIO"))
	assert.Equal(t, "NAME", CleanText("NAME????????"))
	assert.Equal(t, "A\nB", CleanText("  A  \n\n\n\n  B  "))
	assert.Empty(t, CleanText(""))
	assert.Equal(t, "COMUNE", CleanText("COMUNE\uFFFD"))
}
