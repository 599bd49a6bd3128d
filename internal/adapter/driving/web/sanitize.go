package web

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

var popupSanitizer *bluemonday.Policy

func init() {
	popupSanitizer = bluemonday.NewPolicy()
	popupSanitizer.AllowElements("b", "br")
	popupSanitizer.AllowImages()
	popupSanitizer.AllowDataURIImages()
	popupSanitizer.AllowAttrs("class").OnElements("img")
}

// RenderPopup builds the marker popup HTML: bold name, formatted date and an
// optional thumbnail. Text is escaped and the result is sanitized so only
// data-URI images survive in the img src.
func RenderPopup(name, dateLabel, photo string) string {
	photo = SafePhotoSrc(photo)

	var buf strings.Builder
	buf.WriteString("<b>")
	buf.WriteString(templ.EscapeString(name))
	buf.WriteString("</b><br>")
	buf.WriteString(templ.EscapeString(dateLabel))
	buf.WriteString("<br>")
	if photo != "" {
		buf.WriteString(`<img class="popup-photo" src="`)
		buf.WriteString(templ.EscapeString(photo))
		buf.WriteString(`" alt="`)
		buf.WriteString(templ.EscapeString(name))
		buf.WriteString(`">`)
	}
	return popupSanitizer.Sanitize(buf.String())
}

// SafePhotoSrc returns photo when it is an inline image data URL and "" for
// anything else, so stored values can never point the page at another origin.
func SafePhotoSrc(photo string) string {
	if strings.HasPrefix(photo, "data:image/") {
		return photo
	}
	return ""
}
