package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	"github.com/mitchellh/mapstructure"
	"github.com/riandyrn/otelchi"
	"github.com/rs/zerolog/log"
)

const (
	applicationJSON = "application/json"
)

type Routing struct {
	ServerName   string
	ParentRouter chi.Router

	Resolver  discovery.Resolver
	AppConfig config.ApplicationConfiguration
}

func (rtr *Routing) SetupFunctionalRoutes(r chi.Router) error {
	if e := rtr.enableOTelForRouter(r); e != nil {
		return e
	}

	r.Get("/v1/lookup/{service}", rtr.lookupHandler())

	return nil
}

// lookupRequest carries the per-request overrides; anything unset falls
// back to the configured defaults.
type lookupRequest struct {
	PortName string        `mapstructure:"portName"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Pretty   string        `mapstructure:"pretty"`
}

func (rtr *Routing) lookupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceName := chi.URLParam(r, "service")
		if serviceName == "" {
			writeBadRequest(w, errors.New("missing service name"))
			return
		}

		params, err := decodeLookupRequest(r.URL.Query())
		if err != nil {
			writeBadRequest(w, err)
			return
		}

		started := time.Now()
		resolved, err := rtr.Resolver.Lookup(r.Context(), discovery.Query{
			ServiceName: serviceName,
			PortName:    params.PortName,
			Timeout:     params.Timeout,
		})
		observeLookup(discovery.KindOf(err), time.Since(started))

		if err != nil {
			rtr.writeError(w, err)
			return
		}

		pretty := overrideBooleanDefault(params.Pretty, rtr.AppConfig.Defaults.PrettyPrintJson)
		body, marshalErr := marshalResponseJson(resolved, pretty)

		rtr.handleOutput(w, marshalErr, body, rtr.AppConfig.Defaults.LogResponses)
	}
}

// decodeLookupRequest maps the raw query values onto the request
// struct; weak typing plus the duration hook handles `timeout=250ms`.
func decodeLookupRequest(queries url.Values) (lookupRequest, error) {
	values := map[string]any{}
	for key := range queries {
		values[key] = queries.Get(key)
	}

	var params lookupRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &params,
	})
	if err != nil {
		return lookupRequest{}, err
	}

	if err := decoder.Decode(values); err != nil {
		return lookupRequest{}, err
	}
	return params, nil
}

func marshalResponseJson(val interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(val, "", "  ")
	}
	return json.Marshal(val)
}

func (rtr *Routing) handleOutput(w http.ResponseWriter, err error, bytes []byte, logResponses bool) {
	if err != nil {
		rtr.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", applicationJSON)
	_, _ = w.Write(bytes)

	if logResponses {
		log.Debug().Msgf("Response: %s", string(bytes))
	}
}

func (rtr *Routing) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", applicationJSON)
	w.WriteHeader(statusForError(err))

	info := map[string]interface{}{"message": err.Error(), "kind": discovery.KindOf(err)}
	_ = json.NewEncoder(w).Encode(info)

	log.Error().Err(err).Stack().Msg("Lookup error")
}

func writeBadRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", applicationJSON)
	w.WriteHeader(http.StatusBadRequest)

	info := map[string]interface{}{"message": err.Error()}
	_ = json.NewEncoder(w).Encode(info)
}

// statusForError keeps the resolver's own misconfiguration distinct
// from upstream trouble: config problems are ours (500), API-server
// failures arrive as bad-gateway variants.
func statusForError(err error) int {
	switch {
	case errors.Is(err, discovery.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, discovery.ErrConfigurationMissing):
		return http.StatusInternalServerError
	case errors.Is(err, discovery.ErrForbidden), errors.Is(err, discovery.ErrNetwork):
		return http.StatusBadGateway
	}

	var statusErr *discovery.StatusError
	var unmarshalErr *discovery.UnmarshalError
	var addressErr *discovery.AddressError
	if errors.As(err, &statusErr) || errors.As(err, &unmarshalErr) || errors.As(err, &addressErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (rtr *Routing) enableOTelForRouter(r chi.Router) error {
	if !rtr.AppConfig.Tracing.Enabled {
		return nil
	}

	if rtr.ServerName == "" || rtr.ParentRouter == nil {
		return errors.New("OTel not configured")
	}

	r.Use(otelchi.Middleware(rtr.ServerName, otelchi.WithChiRoutes(rtr.ParentRouter)))

	log.Info().Msgf("OpenTelemetry trace is enabled")
	return nil
}

func overrideBooleanDefault(queryValue string, defaultVal bool) bool {
	if queryValue == "true" {
		return true
	} else if queryValue == "false" {
		return false
	}
	return defaultVal
}
