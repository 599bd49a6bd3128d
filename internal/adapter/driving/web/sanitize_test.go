package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestRenderPopup_NameAndDate(t *testing.T) {
	result := RenderPopup("Paris, France", "3rd May 2024", "")
	assert.Equal(t, "<b>Paris, France</b><br>3rd May 2024<br>", result)
}

func TestRenderPopup_EscapesName(t *testing.T) {
	result := RenderPopup(`<script>alert("x")</script>Rome`, "", "")
	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "Rome")
}

func TestRenderPopup_DataURIPhoto(t *testing.T) {
	result := RenderPopup("Tokyo", "", tinyPNG)
	assert.Contains(t, result, `<img class="popup-photo" src="`+tinyPNG+`"`)
	assert.Contains(t, result, `alt="Tokyo"`)
}

func TestRenderPopup_DropsRemoteAndScriptPhotos(t *testing.T) {
	tests := []struct {
		name  string
		photo string
	}{
		{"javascript url", "javascript:alert(1)"},
		{"attribute breakout", `x" onerror="alert(1)`},
		{"remote image", "https://example.com/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderPopup("Oslo", "", tt.photo)
			assert.NotContains(t, result, "<img")
		})
	}
}

func TestSafePhotoSrc(t *testing.T) {
	assert.Equal(t, tinyPNG, SafePhotoSrc(tinyPNG))
	assert.Equal(t, "", SafePhotoSrc("https://example.com/a.png"))
	assert.Equal(t, "", SafePhotoSrc("data:text/html;base64,PGI+"))
	assert.Equal(t, "", SafePhotoSrc(""))
}
