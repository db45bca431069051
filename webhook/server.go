package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/pkg/reference"
	"github.com/rifapix/settlement/repository"
)

const maxBodySize = 1 << 20

// Server exposes one POST endpoint per provider adapter under /webhooks/
type Server struct {
	logger   *zap.Logger
	settler  Settler
	adapters []Adapter
	tracer   trace.Tracer
}

// NewServer ...
func NewServer(logger *zap.Logger, settler Settler, adapters ...Adapter) *Server {
	for _, a := range adapters {
		if !a.Verified() {
			logger.Warn("provider adapter performs no signature verification",
				zap.String("provider", a.Name()))
		}
	}
	return &Server{
		logger:   logger,
		settler:  settler,
		adapters: adapters,
		tracer:   otel.GetTracerProvider().Tracer("webhook"),
	}
}

// Handler builds the webhook http handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, a := range s.adapters {
		mux.Handle("/webhooks/"+a.Name(), s.webhookHandler(a))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, response{Success: true})
	})
	return otellib.LoggerMiddleware(s.logger, s.recovered(mux))
}

type response struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, response{Success: false, Error: message})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (s *Server) recovered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in webhook handler", zap.Any("panic", rec))
				respondError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) webhookHandler(a Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			recordDelivery(a.Name(), "method_not_allowed")
			respondError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		ctx, span := s.tracer.Start(r.Context(), "webhook/"+a.Name())
		defer span.End()

		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			recordDelivery(a.Name(), "read_error")
			respondError(w, http.StatusBadRequest, "cannot read body")
			return
		}

		ev, err := a.Parse(ctx, body)
		if err != nil {
			respondParseError(w, a.Name(), err)
			return
		}

		if ev.Ack {
			recordDelivery(a.Name(), "ignored")
			respondJSON(w, http.StatusOK, response{Success: true, Message: "event ignored"})
			return
		}

		result, err := s.settler.Process(ctx, ev)
		recordSettleDuration(a.Name(), time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, reference.ErrInvalidReference) {
				recordDelivery(a.Name(), "invalid_reference")
				respondError(w, http.StatusBadRequest, "invalid reference")
				return
			}
			recordDelivery(a.Name(), "store_error")
			otellib.Extract(ctx).Error("settlement failed",
				zap.String("provider", a.Name()),
				zap.String("transaction", ev.ProviderTransactionID),
				zap.Error(err),
			)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		recordDelivery(a.Name(), string(result.Outcome))
		otellib.Extract(ctx).Info("webhook settled",
			zap.String("provider", a.Name()),
			zap.String("campaign", result.CampaignID),
			zap.String("outcome", string(result.Outcome)),
			zap.Int64("updated", result.Updated),
		)
		respondJSON(w, http.StatusOK, response{
			Success:       true,
			Message:       string(result.Outcome),
			TransactionID: ev.ProviderTransactionID,
		})
	}
}

func respondParseError(w http.ResponseWriter, provider string, err error) {
	switch {
	case errors.Is(err, ErrAuthentication):
		recordDelivery(provider, "auth_failed")
		respondError(w, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, reference.ErrInvalidReference):
		recordDelivery(provider, "invalid_reference")
		respondError(w, http.StatusBadRequest, "invalid reference")
	case errors.Is(err, repository.ErrNotFound):
		recordDelivery(provider, "not_found")
		respondError(w, http.StatusNotFound, "unknown campaign or integration")
	case errors.Is(err, ErrMalformedPayload):
		recordDelivery(provider, "malformed")
		respondError(w, http.StatusBadRequest, "malformed payload")
	default:
		recordDelivery(provider, "parse_error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
