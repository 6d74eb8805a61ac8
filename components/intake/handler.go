package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/gorilla/mux"

	"github.com/goliatone/go-intakeqc"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/qcform"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/routes"
	"github.com/goliatone/go-intakeqc/pkg/submit"
)

// Messages shown by the web front-end only.
const (
	MessagePageNotFound = "페이지를 찾을 수 없습니다."
	MessageForbidden    = "요청을 확인할 수 없습니다. 페이지를 새로 고친 뒤 다시 시도해 주세요."
	MessageInFlight     = "이미 저장 중입니다."
	MessageTooLarge     = "첨부 파일이 너무 큽니다."
	MessageTokenMissing = "토큰을 입력해 주세요."
	MessageTokenExpired = "만료된 토큰입니다."
	MessageSignedIn     = "로그인 되었습니다."
	MessageSignedOut    = "로그아웃 되었습니다."
)

const titleSession = "로그인"

func (c *Component) index(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, c.app.IndexPage(), render.RenderOptions{})
}

func (c *Component) list(w http.ResponseWriter, r *http.Request) {
	res, ok := c.resource(w, r)
	if !ok {
		return
	}
	ctx := c.withSession(r)
	query := r.URL.Query()

	state := res.Load(ctx)
	if query.Get("refresh") == "1" && state.Err == nil {
		state = res.Revalidate(ctx)
	}

	page := res.ListPage(state, query.Get("q"), query.Get("selected"))
	if state.Err != nil {
		c.opts.Logger.Warn("intake: list fetch failed", "resource", res.Name(), "error", state.Err)
		page.Status = http.StatusBadGateway
	}
	c.render(w, r, page, render.RenderOptions{})
}

func (c *Component) detail(w http.ResponseWriter, r *http.Request) {
	res, ok := c.resource(w, r)
	if !ok {
		return
	}
	detail, err := res.Open(c.withSession(r), mux.Vars(r)["assetId"])
	if err != nil {
		c.openFailed(w, r, res, err)
		return
	}
	c.render(w, r, detail.Page(), render.RenderOptions{})
}

func (c *Component) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(c.opts.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.message(w, r, http.StatusText(http.StatusRequestEntityTooLarge), MessageTooLarge, http.StatusRequestEntityTooLarge)
		return
	}
	if err := c.checkCSRF(r); err != nil {
		c.message(w, r, http.StatusText(http.StatusForbidden), MessageForbidden, statusOf(err, http.StatusForbidden))
		return
	}

	res, ok := c.resource(w, r)
	if !ok {
		return
	}
	ctx := c.withSession(r)
	detail, err := res.Open(ctx, mux.Vars(r)["assetId"])
	if err != nil {
		c.openFailed(w, r, res, err)
		return
	}

	detail.Draft.SetAll(postedValues(r, detail.Draft))
	if r.MultipartForm != nil {
		detail.Draft.SetFiles(form.FilesFromMultipart(r.MultipartForm.File[qcform.FieldImages]))
	}

	var flash []render.Flash
	var next string
	err = detail.Submit(ctx, nil, submit.Hooks{
		Notifier: submit.NotifierFunc(func(_ context.Context, n submit.Notification) {
			flash = append(flash, render.Flash{Level: string(n.Level), Message: n.Message})
		}),
		Navigator: submit.NavigatorFunc(func(_ context.Context, route string) {
			next = route
		}),
	})

	switch {
	case err == nil:
		for _, f := range flash {
			c.setFlash(w, f.Level, f.Message)
		}
		if next == "" {
			next = routes.List(res.Route())
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	case errors.Is(err, submit.ErrInFlight):
		page := detail.Page(MessageInFlight)
		page.Status = http.StatusConflict
		c.render(w, r, page, render.RenderOptions{})
	default:
		page := detail.Page()
		if _, invalid := submit.IsInvalid(err); invalid {
			page.Status = http.StatusUnprocessableEntity
		} else {
			page.Status = statusOf(err, http.StatusBadGateway)
		}
		c.render(w, r, page, render.RenderOptions{Flash: flash})
	}
}

// postedValues collects the submitted scalar fields the draft knows about.
// Fields missing from the post keep their current draft value.
func postedValues(r *http.Request, draft *form.Draft) map[string]string {
	values := make(map[string]string)
	for _, binding := range draft.Bindings() {
		if binding.Kind == model.FieldTypeFile {
			continue
		}
		if posted, ok := r.PostForm[binding.Name]; ok && len(posted) > 0 {
			values[binding.Name] = strings.TrimSpace(posted[0])
		}
	}
	return values
}

func (c *Component) sessionForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, c.sessionPage(r, r.URL.Query().Get("next")), render.RenderOptions{})
}

func (c *Component) sessionSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.message(w, r, titleSession, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := c.checkCSRF(r); err != nil {
		c.message(w, r, http.StatusText(http.StatusForbidden), MessageForbidden, statusOf(err, http.StatusForbidden))
		return
	}

	next := r.PostFormValue("next")
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r.PostFormValue("token")), "Bearer "))
	reject := func(message string) {
		page := c.sessionPage(r, next)
		page.Status = http.StatusUnprocessableEntity
		c.render(w, r, page, render.RenderOptions{Flash: []render.Flash{{Level: render.FlashError, Message: message}}})
	}
	if token == "" {
		reject(MessageTokenMissing)
		return
	}
	if err := credentials.CheckExpiry(token, c.opts.Now()); err != nil {
		reject(MessageTokenExpired)
		return
	}
	if err := c.storeSession(w, token); err != nil {
		c.opts.Logger.Error("intake: store session", "error", err)
		c.message(w, r, titleSession, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	c.setFlash(w, render.FlashSuccess, MessageSignedIn)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (c *Component) sessionLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.message(w, r, titleSession, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := c.checkCSRF(r); err != nil {
		c.message(w, r, http.StatusText(http.StatusForbidden), MessageForbidden, statusOf(err, http.StatusForbidden))
		return
	}
	c.clearSession(w)
	c.setFlash(w, render.FlashSuccess, MessageSignedOut)
	http.Redirect(w, r, PathSession, http.StatusSeeOther)
}

func (c *Component) sessionPage(r *http.Request, next string) render.Page {
	view := &render.SessionView{Action: PathSession, Logout: PathLogout}
	if next = strings.TrimSpace(next); next != "" {
		view.Next = safeNext(next)
	}
	if token := c.token(r); token != "" {
		view.SignedIn = true
		if exp, ok := credentials.Expiry(token); ok {
			view.ExpiresAt = exp
		}
	}
	return render.Page{Kind: render.KindSession, Title: titleSession, Session: view}
}

func (c *Component) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (c *Component) notFound(w http.ResponseWriter, r *http.Request) {
	c.message(w, r, MessagePageNotFound, intakeqc.MessageNotFound, http.StatusNotFound)
}

// resource resolves the {route} variable, answering 404 when unknown.
func (c *Component) resource(w http.ResponseWriter, r *http.Request) (*intakeqc.Resource, bool) {
	res, ok := c.app.Resource(mux.Vars(r)["route"])
	if !ok {
		c.notFound(w, r)
		return nil, false
	}
	return res, true
}

// openFailed answers a detail request whose record could not be prepared.
func (c *Component) openFailed(w http.ResponseWriter, r *http.Request, res *intakeqc.Resource, err error) {
	back := render.Link{Name: res.Name(), Title: res.Title(), Href: routes.List(res.Route())}
	if errors.Is(err, qcform.ErrRecordNotFound) || errors.Is(err, qcform.ErrMissingLookup) {
		c.render(w, r, intakeqc.MessagePage(res.Title(), intakeqc.MessageNotFound, http.StatusNotFound, back), render.RenderOptions{})
		return
	}
	c.opts.Logger.Warn("intake: detail fetch failed", "resource", res.Name(), "error", err)
	c.render(w, r, intakeqc.MessagePage(res.Title(), intakeqc.MessageFetchFailed, http.StatusBadGateway, back), render.RenderOptions{})
}

func (c *Component) message(w http.ResponseWriter, r *http.Request, title, message string, status int) {
	home := render.Link{Name: "index", Title: "처음으로", Href: "/"}
	c.render(w, r, intakeqc.MessagePage(title, message, status, home), render.RenderOptions{})
}

// render resolves the renderer from the format parameter, adds the CSRF
// token, pending flash and theme, and writes the page with its status.
func (c *Component) render(w http.ResponseWriter, r *http.Request, page render.Page, options render.RenderOptions) {
	renderer, err := c.opts.Renderers.Resolve(r.URL.Query().Get(c.opts.FormatParam), c.opts.DefaultFormat)
	if err != nil {
		c.opts.Logger.Error("intake: resolve renderer", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	options.Hidden = render.MergeHiddenFields(options.Hidden, render.CSRFToken(c.opts.CSRFField, c.csrfToken(w, r)))
	options.Flash = append(c.takeFlash(w, r), options.Flash...)
	if options.Theme == nil {
		options.Theme = c.theme(r)
	}

	body, err := renderer.Render(r.Context(), page, options)
	if err != nil {
		c.opts.Logger.Error("intake: render page", "kind", page.Kind, "renderer", renderer.Name(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := page.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// theme picks ?theme= and ?variant= when they resolve, else the defaults.
func (c *Component) theme(r *http.Request) *theme.RendererConfig {
	query := r.URL.Query()
	if cfg, err := c.opts.Themes.RendererConfig(query.Get("theme"), query.Get("variant")); err == nil {
		return cfg
	}
	cfg, err := c.opts.Themes.RendererConfig(c.opts.ThemeName, c.opts.ThemeVariant)
	if err != nil {
		return nil
	}
	return cfg
}
