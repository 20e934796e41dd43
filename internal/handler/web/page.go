package web

import "html/template"

// pageData feeds pageTemplate.
type pageData struct {
	Title       string
	Caption     string
	Placeholder string
	Lines       []lineData
	Notice      string
	Models      []modelOption
	NeedsKey    bool
	CanChat     bool
}

type lineData struct {
	Role    string
	Label   string
	Content string
}

type modelOption struct {
	ID       string
	Name     string
	Selected bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; display: flex; min-height: 100vh; }
aside { width: 260px; padding: 1.5rem; background: #f0f2f6; }
main { flex: 1; padding: 2rem 4rem; display: flex; flex-direction: column; }
.caption { color: #6b7280; margin-top: -0.5rem; }
.turn { display: flex; gap: 0.75rem; padding: 0.75rem 0; }
.turn .role { font-weight: 600; min-width: 6rem; }
.turn.user .role { color: #ef4444; }
.turn.assistant .role { color: #f59e0b; }
.turn .content { white-space: pre-wrap; }
.notice { background: #fee2e2; color: #991b1b; padding: 0.75rem 1rem; border-radius: 0.5rem; }
form.input { margin-top: auto; display: flex; gap: 0.5rem; }
form.input input { flex: 1; padding: 0.75rem; }
</style>
</head>
<body>
<aside>
  <h3>Chat Controls</h3>
  {{if .CanChat}}
  <form method="post" action="/chat/model">
    <label for="model">Select Model</label>
    <select id="model" name="model" onchange="this.form.submit()">
      {{range .Models}}<option value="{{.ID}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>{{end}}
    </select>
  </form>
  <form method="post" action="/chat/reset">
    <button type="submit">Clear Chat History</button>
  </form>
  {{end}}
</aside>
<main>
  <h1>💬 {{.Title}}</h1>
  <p class="caption">🚀 {{.Caption}}</p>
  {{if .NeedsKey}}
  <form method="post" action="/chat/key">
    <label for="apiKey">Enter your API Key:</label>
    <input id="apiKey" name="apiKey" type="password" autocomplete="off">
    <button type="submit">Start</button>
  </form>
  {{end}}
  {{if .Notice}}<p class="notice" role="alert">{{.Notice}}</p>{{end}}
  <section id="transcript">
    {{range .Lines}}
    <div class="turn {{.Role}}"><span class="role">{{.Label}}</span><div class="content">{{.Content}}</div></div>
    {{end}}
  </section>
  {{if .CanChat}}
  <form class="input" method="post" action="/chat/send">
    <input name="prompt" placeholder="{{.Placeholder}}" autofocus autocomplete="off">
    <button type="submit">Send</button>
  </form>
  {{end}}
</main>
</body>
</html>
`))
