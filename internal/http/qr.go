package httpapp

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cesargomez89/requestline/internal/constants"
)

var qrPage = template.Must(template.New("qr").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}} - Join</title>
<style>
body { font-family: sans-serif; text-align: center; padding: 2rem; }
img { width: {{.Size}}px; height: {{.Size}}px; }
.code { font-size: 2rem; letter-spacing: 0.3rem; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<img src="{{.Image}}" alt="QR code for {{.URL}}">
<p class="code">{{.Code}}</p>
<p><a href="{{.URL}}">{{.URL}}</a></p>
</body>
</html>
`))

type qrPageData struct {
	Image template.URL
	Name  string
	Code  string
	URL   string
	Size  int
}

// QRPage renders a printable page with a QR code pointing at the session's
// short URL.
func (h *Handler) QRPage(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	joinURL := h.baseURL(r) + "/" + session.ID
	png, err := qrcode.Encode(joinURL, qrcode.Medium, constants.QRCodeSize)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to encode QR code: %w", err))
		return
	}

	data := qrPageData{
		Image: template.URL("data:" + constants.MimeTypePNG + ";base64," + base64.StdEncoding.EncodeToString(png)),
		Name:  session.Name,
		Code:  session.ID,
		URL:   joinURL,
		Size:  constants.QRCodeSize,
	}

	w.Header().Set("Content-Type", constants.MimeTypeHTML)
	if err := qrPage.Execute(w, data); err != nil {
		h.Logger.Error("Failed to render QR page", "session_id", session.ID, "error", err)
	}
}
