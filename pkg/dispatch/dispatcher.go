// pkg/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskbridge/connector-core/pkg/catalog"
	"github.com/taskbridge/connector-core/pkg/codec"
	hmetrics "github.com/taskbridge/connector-core/pkg/middleware/metrics"
	"go.uber.org/zap"
)

var (
	// ErrUnknownRoute reports a connector name with no registered recipes.
	ErrUnknownRoute = errors.New("dispatch: unknown route")

	// ErrUnknownOperation reports an operation with no match inside an
	// existing route group.
	ErrUnknownOperation = errors.New("dispatch: unknown operation")
)

// routeParam is the chi URL parameter carrying the connector name.
const routeParam = "connector"

// Pattern is the chi route pattern the dispatcher is mounted on.
const Pattern = catalog.PathPrefix + "{" + routeParam + "}"

// Dispatcher resolves inbound requests against a frozen catalog snapshot.
// It holds no mutable state, so concurrent requests need no locking.
type Dispatcher struct {
	groups map[string][]catalog.Recipe
	order  []string
	codec  codec.Codec
	log    *zap.Logger
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithCodec(c codec.Codec) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.codec = c
		}
	}
}

// New groups the snapshot's recipes by connector name. Recipe order within a
// group is registration order; group order is first-registration order.
func New(recipes []catalog.Recipe, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		groups: make(map[string][]catalog.Recipe, len(recipes)),
		codec:  codec.JSON,
		log:    zap.NewNop(),
	}
	for _, rec := range recipes {
		key := rec.RouteKey()
		if _, ok := d.groups[key]; !ok {
			d.order = append(d.order, key)
		}
		d.groups[key] = append(d.groups[key], rec)
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Resolve returns the handler for (route, operation). The scan is linear in
// registration order; the first operation match wins.
func (d *Dispatcher) Resolve(route, operation string) (catalog.Handler, error) {
	group, ok := d.groups[route]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", route, ErrUnknownRoute)
	}
	for _, rec := range group {
		if rec.Operation == operation {
			return rec.Handler, nil
		}
	}
	return nil, fmt.Errorf("resolve %s/%s: %w", route, operation, ErrUnknownOperation)
}

// RouteInfo describes one mounted route group.
type RouteInfo struct {
	Connector  string
	Path       string
	Operations []string
}

// Routes lists the mounted surface in first-registration order.
func (d *Dispatcher) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.order))
	for _, key := range d.order {
		ri := RouteInfo{Connector: key, Path: catalog.PathPrefix + key}
		for _, rec := range d.groups[key] {
			ri.Operations = append(ri.Operations, rec.Operation)
		}
		out = append(out, ri)
	}
	return out
}

// Handler returns the http.HandlerFunc mounted on Pattern.
func (d *Dispatcher) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connector := chi.URLParam(r, routeParam)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			hmetrics.CountDispatch(connector, "", hmetrics.OutcomeMalformed)
			d.writeError(w, http.StatusBadRequest, "read body: "+err.Error())
			return
		}

		var env Envelope
		if err := d.codec.Unmarshal(body, &env); err != nil {
			hmetrics.CountDispatch(connector, "", hmetrics.OutcomeMalformed)
			d.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := env.Validate(); err != nil {
			hmetrics.CountDispatch(connector, "", hmetrics.OutcomeMalformed)
			d.writeError(w, http.StatusBadRequest, MalformedPayloadMessage)
			return
		}

		op := env.Params.Operation
		h, err := d.Resolve(connector, op)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownRoute):
				hmetrics.CountDispatch(connector, op, hmetrics.OutcomeUnknownRoute)
				d.writeError(w, http.StatusNotFound, fmt.Sprintf("no connector registered for '%s'", connector))
			default:
				hmetrics.CountDispatch(connector, op, hmetrics.OutcomeUnknownOperation)
				d.writeError(w, http.StatusNotFound, fmt.Sprintf("no operation '%s' on connector '%s'", op, connector))
			}
			return
		}

		start := time.Now()
		out, err := invoke(r.Context(), h, *env.ID, env.Params.Input)
		hmetrics.ObserveHandler(connector, op, time.Since(start).Seconds())
		if err != nil {
			hmetrics.CountDispatch(connector, op, hmetrics.OutcomeHandlerError)
			d.log.Error("handler failed",
				zap.String("connector", connector),
				zap.String("operation", op),
				zap.Int64("taskId", *env.ID),
				zap.Error(err),
			)
			d.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		payload, err := d.codec.Marshal(out)
		if err != nil {
			hmetrics.CountDispatch(connector, op, hmetrics.OutcomeHandlerError)
			d.log.Error("handler result not serializable",
				zap.String("connector", connector),
				zap.String("operation", op),
				zap.Error(err),
			)
			d.writeError(w, http.StatusInternalServerError, "encode response: "+err.Error())
			return
		}
		hmetrics.CountDispatch(connector, op, hmetrics.OutcomeOK)
		d.writeJSON(w, http.StatusOK, payload)
	}
}

// invoke runs the handler in the request goroutine. A panic surfaces as a
// handler failure rather than tearing down the connection.
func invoke(ctx context.Context, h catalog.Handler, taskID int64, input json.RawMessage) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h(ctx, taskID, input)
}

func (d *Dispatcher) writeJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", d.codec.ContentType())
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

type errorBody struct {
	Error string `json:"error"`
}

func (d *Dispatcher) writeError(w http.ResponseWriter, status int, msg string) {
	payload, err := d.codec.Marshal(errorBody{Error: msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	d.writeJSON(w, status, payload)
}
