package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jgivc/w1r3catcher/internal/adapter/sink"
	"github.com/jgivc/w1r3catcher/internal/common"
	"github.com/jgivc/w1r3catcher/internal/entity"
)

const (
	maxBodySize = 64 << 10
)

type MessageQueue interface {
	Enqueue(msg *entity.Message) error
}

type CommandService interface {
	Execute(ctx context.Context, line string, out sink.Sink) error
}

type DomainLister interface {
	List(ctx context.Context) ([]string, error)
}

// NewMessageHandler accepts a parsed chat message from the IRC host and
// queues it for the pipeline.
func NewMessageHandler(queue MessageQueue, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "MessageHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var msg entity.Message
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&msg); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		if msg.Network == "" || msg.Channel == "" || msg.Text == "" {
			http.Error(w, "network, channel and text are required", http.StatusBadRequest)

			return
		}

		if msg.ReceivedAt.IsZero() {
			msg.ReceivedAt = time.Now()
		}

		if err := queue.Enqueue(&msg); err != nil {
			switch {
			case errors.Is(err, common.ErrQueueFull):
				http.Error(w, "Queue is full", http.StatusServiceUnavailable)
			default:
				log.Error("Cannot enqueue message", slog.Any("error", err))
				http.Error(w, "Cannot enqueue message", http.StatusInternalServerError)
			}

			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

// NewCommandHandler runs the raw command text from the request body. Output
// lines go to the response and to out.
func NewCommandHandler(srv CommandService, tag string, out sink.Sink, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CommandHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		buf := sink.NewBuffer(tag)
		err = srv.Execute(r.Context(), strings.TrimSpace(string(body)), sink.Multi(buf, out))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		switch {
		case err == nil:
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, common.ErrUsage), errors.Is(err, common.ErrEmptyDomain),
			errors.Is(err, common.ErrBadDomain):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, common.ErrInvalidIndex), errors.Is(err, common.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			log.Error("Command failed", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
		}

		w.Write([]byte(buf.String()))
	}
}

func NewListHandler(srv DomainLister, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ListHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		domains, err := srv.List(r.Context())
		if err != nil {
			log.Error("Cannot list domains", slog.Any("error", err))
			http.Error(w, "Cannot list domains", http.StatusInternalServerError)

			return
		}

		if domains == nil {
			domains = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(domains); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
