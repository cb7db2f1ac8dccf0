package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-choices/pkg/fetch"
	"github.com/goliatone/go-choices/pkg/interpolate"
	"github.com/goliatone/go-choices/pkg/model"
)

type remoteLoader struct {
	cfg      model.FieldConfig
	client   *fetch.Client
	renderer *interpolate.Renderer
	logger   *slog.Logger
}

func newRemote(cfg model.FieldConfig, o options) *remoteLoader {
	client := o.client
	if client == nil {
		client = fetch.New(fetch.WithLogger(o.logger))
	}
	return &remoteLoader{
		cfg:      cfg,
		client:   client,
		renderer: o.renderer,
		logger:   o.logger,
	}
}

func (l *remoteLoader) Kind() model.SourceKind {
	return model.SourceRemote
}

// Load queries the remote endpoint for one page. Searches without text are
// skipped, as are loads whose URL renders empty. Transport and status errors
// are returned to the caller.
func (l *remoteLoader) Load(ctx context.Context, req model.LoadRequest, env Env) (Result, error) {
	if req.Trigger == model.TriggerSearch && req.SearchText == "" {
		return Result{Skipped: true}, nil
	}

	target := req.URL
	if target == "" {
		target = l.client.ResolveURL(l.cfg.Remote)
	} else if strings.HasPrefix(target, "/") {
		target = l.client.BaseURL() + target
	}
	rendered, err := l.renderer.Render(target, map[string]any{
		"data":       env.Data,
		"formioBase": l.client.BaseURL(),
	})
	if err != nil {
		return Result{}, err
	}
	rendered = strings.TrimSpace(rendered)
	if rendered == "" {
		l.logger.Debug("remote url rendered empty, skipping load", "field", l.cfg.Key)
		return Result{Skipped: true}, nil
	}

	var filter string
	if l.cfg.FilterExpression != "" {
		filter, err = l.renderer.Render(l.cfg.FilterExpression, map[string]any{"data": env.Data})
		if err != nil {
			return Result{}, err
		}
	}

	requestURL := fetch.BuildURL(rendered, fetch.Query{
		Limit:       req.Limit,
		Skip:        req.Offset,
		Select:      l.cfg.Remote.SelectFields,
		SearchField: l.cfg.SearchField,
		SearchText:  req.SearchText,
		Filter:      strings.TrimSpace(filter),
	})
	header := l.client.Headers(requestURL, l.cfg.Remote.Authenticate, l.cfg.Remote.Headers)

	body, err := l.client.Get(ctx, requestURL, header)
	if err != nil {
		return Result{URL: requestURL}, err
	}
	items, err := fetch.Unwrap(body, l.cfg.SelectValuesPath)
	if err != nil {
		return Result{URL: requestURL}, goerr.Wrap(err, "failed to decode options response",
			goerr.V("field", l.cfg.Key), goerr.V("url", requestURL))
	}
	return Result{Items: items, URL: requestURL}, nil
}
