package handler

import (
	"html/template"
	"net/http"

	"github.com/weedscan-auth/internal/application/linking"
	"github.com/weedscan-auth/internal/domain"
)

// resultPage is the static HTML confirmation page rendered when the user
// follows the email link. It is the one browser-facing endpoint; everything
// else speaks JSON.
var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; background: #f4f6f4; margin: 0; }
    .card { max-width: 28rem; margin: 6rem auto; padding: 2rem; background: #fff;
            border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.12); text-align: center; }
    h1 { font-size: 1.3rem; color: {{if .Success}}#2e7d32{{else}}#c62828{{end}}; }
    p  { color: #444; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
  </div>
</body>
</html>
`))

type resultPageData struct {
	Success bool
	Title   string
	Message string
}

// CompleteLinkHandler serves GET /auth/complete-link?id=&token=.
type CompleteLinkHandler struct {
	svc linking.Service
}

func NewCompleteLinkHandler(svc linking.Service) *CompleteLinkHandler {
	return &CompleteLinkHandler{svc: svc}
}

func (h *CompleteLinkHandler) Complete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := h.svc.CompleteVerification(r.Context(), q.Get("id"), q.Get("token"))

	data := resultPageData{Success: res.Success}
	status := http.StatusOK
	if res.Success {
		data.Title = "Account linked"
		data.Message = "Your email is confirmed and your account is ready. You can close this page and return to the app."
	} else {
		data.Title = "Verification failed"
		data.Message = res.Message
		if data.Message == "" {
			data.Message = domain.ErrInternal.Message
		}
		if res.StatusCode != 0 {
			status = res.StatusCode
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = resultPage.Execute(w, data)
}
