package preview

import (
	stderrors "errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

const liveReloadPrefix = "/livereload/"

var (
	rxLiveReload = regexp.MustCompile(`^/livereload/([0-9]+)/?$`)
	rxIndex      = regexp.MustCompile(`(?i)/index$`)

	rootStaticFiles = []string{"/favicon.ico", "/robots.txt", "/humans.txt"}
)

const errorBody = `<body>
<title>%[1]s</title>
<h1>%[1]s</h1>
<h2><pre>%[2]s</pre></h2>
<pre>%[3]s</pre>
</body>
`

// handleLiveReload holds the request until the epoch is newer than the
// one in the URL or the poll timeout expires, then replies the current
// epoch.
func (s *Server) handleLiveReload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	m := rxLiveReload.FindStringSubmatch(r.URL.Path)
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	baseline, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.recorder.SetWaitingClients(int(s.waiting.Add(1)))
	var epoch int64
	woken := s.epochCond.WaitFor(r.Context(), func() bool {
		epoch = s.epoch
		return s.epoch > baseline || s.closing
	}, s.cfg.PollTimeout)
	s.recorder.SetWaitingClients(int(s.waiting.Add(-1)))
	s.recorder.IncLongPoll(woken && epoch > baseline)

	_, _ = w.Write([]byte(strconv.FormatInt(epoch, 10)))
}

func (s *Server) redirectStatic(w http.ResponseWriter, r *http.Request) {
	s.redirect(w, r, s.cfg.Static.URL+r.URL.Path)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	location := (&url.URL{Path: to}).EscapedPath()
	s.logger.Info("Redirect", logfields.Path(r.URL.Path), logfields.Target(location))
	http.Redirect(w, r, location, http.StatusFound)
}

// handlePage renders the page at the request path.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if rxIndex.MatchString(path) {
		s.redirect(w, r, rxIndex.ReplaceAllString(path, "/"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := http.StatusOK
	body, err := s.deps.Render(r.Context(), strings.TrimRight(path, "/"))
	switch {
	case err != nil:
		s.errs.LogError(r, err)
		body, status = errorPage(err), s.errs.StatusCodeFor(err)
	case body == "":
		if strings.HasSuffix(path, "/") {
			path += "index"
		}
		body, status = path+" not found", http.StatusNotFound
	}

	out := s.injectScript(body)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

// injectScript adds the live reload script before the last </body>, or at
// the end when there is none.
func (s *Server) injectScript(body string) string {
	script := "<script>" + strings.Replace(strings.TrimSpace(liveReloadJS), "__EPOCH__", strconv.FormatInt(s.Epoch(), 10), 1) + "</script>"
	end := strings.LastIndex(body, "</body>")
	if end < 0 {
		return body + script
	}
	return body[:end] + script + body[end:]
}

// errorPage renders err with its type name, message and cause chain.
func errorPage(err error) string {
	var chain strings.Builder
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		fmt.Fprintf(&chain, "%T: %v\n", e, e)
		if c, ok := e.(*errors.ClassifiedError); ok {
			for k, v := range c.Context() {
				fmt.Fprintf(&chain, "    %s: %v\n", k, v)
			}
		}
	}
	return fmt.Sprintf(errorBody,
		html.EscapeString(typeName(err)),
		html.EscapeString(err.Error()),
		html.EscapeString(chain.String()))
}

func typeName(err error) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
