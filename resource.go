package intakeqc

import (
	"context"
	"fmt"

	"github.com/goliatone/go-intakeqc/internal/config"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/fetch"
	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/listing"
	"github.com/goliatone/go-intakeqc/pkg/metrics"
	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/qcform"
	"github.com/goliatone/go-intakeqc/pkg/record"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/routes"
	"github.com/goliatone/go-intakeqc/pkg/submit"
)

// Resource is one configured workflow. List data is cached per credential;
// the pipeline is shared.
type Resource struct {
	cfg      config.Resource
	lists    *lists
	pipeline *submit.Pipeline
	metrics  *metrics.Collector
}

func (r *Resource) Name() string               { return r.cfg.Name }
func (r *Resource) Title() string              { return r.cfg.Title }
func (r *Resource) Route() string              { return r.cfg.Route }
func (r *Resource) Config() config.Resource    { return r.cfg }
func (r *Resource) Pipeline() *submit.Pipeline { return r.pipeline }
func (r *Resource) Profile() qcform.Profile    { return r.cfg.FormProfile() }

func (r *Resource) plateField() string {
	if r.cfg.PlateField != "" {
		return r.cfg.PlateField
	}
	return record.FieldPlate
}

// Fetcher returns the list fetcher for the caller's token.
func (r *Resource) Fetcher(ctx context.Context) (*fetch.Fetcher, error) {
	return r.lists.fetcher(ctx, nil)
}

// Load returns the caller's list state, fetching on first use.
func (r *Resource) Load(ctx context.Context) fetch.State {
	f, err := r.Fetcher(ctx)
	if err != nil {
		return fetch.State{Err: err}
	}
	return f.Load(ctx)
}

// Revalidate reloads the caller's list.
func (r *Resource) Revalidate(ctx context.Context) fetch.State {
	f, err := r.Fetcher(ctx)
	if err != nil {
		return fetch.State{Err: err}
	}
	return f.Revalidate(ctx)
}

// Records returns the normalised records of state.
func (r *Resource) Records(state fetch.State) []record.Record {
	return state.Response(r.cfg.RecordKeys...).Records
}

// ListPage builds the filtered table for state. A row links to what clicking
// it does: the selected row opens its detail route, every other row links back
// to the list with itself selected. The confirm link is set only while a row
// is selected.
func (r *Resource) ListPage(state fetch.State, query, selected string) render.Page {
	view := &render.ListView{
		Resource:     r.cfg.Name,
		Action:       routes.List(r.cfg.Route),
		Query:        query,
		Loading:      state.Loading,
		Revalidating: state.Revalidating,
		FetchedAt:    state.FetchedAt,
	}
	for _, column := range r.cfg.Columns {
		view.Columns = append(view.Columns, render.Column{Field: column.Field, Label: column.Label})
	}

	page := render.Page{Kind: render.KindList, Title: r.cfg.Title, Description: r.cfg.Description, List: view}
	if state.Err != nil {
		view.Error = MessageFetchFailed
		return page
	}

	records := r.Records(state)
	selection := listing.NewSelection(selected, records)
	view.Selected = selection.Selected()
	if assetNo, ok := selection.Confirm(); ok {
		view.Confirm = routes.Detail(r.cfg.Route, assetNo)
	}

	for _, rec := range listing.Filter(records, r.plateField(), query) {
		assetNo := rec.AssetNo()
		row := render.Row{AssetNo: assetNo}
		for _, column := range r.cfg.Columns {
			row.Cells = append(row.Cells, rec.String(column.Field))
		}
		click := selection
		switch click.Click(assetNo, records) {
		case listing.ActionNavigate:
			row.Selected = true
			row.Href = routes.Detail(r.cfg.Route, assetNo)
		case listing.ActionSelect:
			row.Href = routes.ListWith(r.cfg.Route, map[string]string{"q": query, "selected": assetNo})
		}
		view.Rows = append(view.Rows, row)
	}
	view.Total = len(view.Rows)
	return page
}

// Open loads the list and builds the edit session for assetNo. Errors are the
// fetch error, qcform.ErrRecordNotFound or qcform.ErrMissingLookup.
func (r *Resource) Open(ctx context.Context, assetNo string) (*Detail, error) {
	state := r.Load(ctx)
	if state.Err != nil {
		return nil, state.Err
	}
	resp := state.Response(r.cfg.RecordKeys...)
	rec, ok := resp.Find(assetNo)
	if !ok {
		return nil, fmt.Errorf("%w: %s", qcform.ErrRecordNotFound, assetNo)
	}

	definition, err := qcform.Build(qcform.Request{
		Resource: r.cfg.Name,
		Title:    r.cfg.DetailTitle,
		Endpoint: r.cfg.SubmitEndpoint,
		Profile:  r.Profile(),
		Record:   rec,
		Lookups:  resp.Lookups,
	})
	if err != nil {
		return nil, err
	}
	if err := model.Decorate(&definition, model.FieldHelp(r.cfg.Help)); err != nil {
		return nil, err
	}
	return &Detail{
		resource: r,
		Record:   rec,
		Draft:    form.NewDraft(definition, qcform.Defaults(definition, rec)),
	}, nil
}

// Detail is one record being edited.
type Detail struct {
	resource *Resource
	Record   record.Record
	Draft    *form.Draft
}

// AssetNo returns the record identifier.
func (d *Detail) AssetNo() string { return d.Record.AssetNo() }

// Resource returns the owning resource.
func (d *Detail) Resource() *Resource { return d.resource }

// Page builds the detail page. formErrors are shown above the fields.
func (d *Detail) Page(formErrors ...string) render.Page {
	cfg := d.resource.cfg
	definition := d.Draft.Form()
	view := &render.DetailView{
		Resource:   cfg.Name,
		AssetNo:    d.AssetNo(),
		Variant:    definition.Metadata["variant"],
		Fields:     d.Draft.Bindings(),
		Action:     routes.Detail(cfg.Route, d.AssetNo()),
		Back:       routes.ListWith(cfg.Route, map[string]string{"selected": d.AssetNo()}),
		FormErrors: render.MergeFormErrors(nil, formErrors...),
		CanSubmit:  d.Draft.CanSubmit(),
	}
	for _, column := range cfg.Summary {
		view.Summary = append(view.Summary, render.SummaryItem{Label: column.Label, Value: d.Record.String(column.Field)})
	}
	title := cfg.DetailTitle
	if title == "" {
		title = cfg.Title
	}
	return render.Page{Kind: render.KindDetail, Title: title, Description: cfg.Description, Detail: view}
}

// Submit validates the draft and sends it with creds, falling back to the
// app's provider when creds is nil. A draft that is already submitting
// returns submit.ErrInFlight. Every field is marked touched first so the
// page shows all messages after a rejected attempt.
func (d *Detail) Submit(ctx context.Context, creds credentials.Provider, hooks submit.Hooks) error {
	if d.Draft.InFlight() {
		return submit.ErrInFlight
	}
	if result := d.Draft.ValidateAll(); !result.Valid {
		return &submit.ValidationError{Result: result}
	}
	finish, ok := d.Draft.Begin()
	if !ok {
		return submit.ErrInFlight
	}
	defer finish()

	if m := d.resource.metrics; m != nil {
		m.SubmitStarted()
		defer m.SubmitFinished()
	}

	pipeline := d.resource.pipeline
	if list, err := d.resource.lists.fetcher(ctx, creds); err == nil {
		pipeline = pipeline.WithList(list)
	}
	if creds != nil {
		pipeline = pipeline.WithCredentials(creds)
	}
	err := pipeline.Submit(ctx, submit.Request{
		AssetNo: d.AssetNo(),
		Values:  d.Draft.Values(),
		Files:   d.Draft.Files(),
		Form:    d.Draft.Form(),
	}, hooks)

	return err
}
