package pipeline

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/w1r3catcher/internal/adapter/sink"
	"github.com/jgivc/w1r3catcher/internal/common"
	"github.com/jgivc/w1r3catcher/internal/entity"
)

type DomainRegistry interface {
	List(ctx context.Context) ([]string, error)
}

type URLExtractor interface {
	Extract(message string, domains []string) iter.Seq[entity.MatchedURL]
}

type Downloader interface {
	Save(ctx context.Context, req *entity.DownloadRequest) (*entity.StoredFile, error)
}

type LoggingFlag interface {
	Enabled(ctx context.Context) bool
}

type Metrics interface {
	Message()
	Matched(domain string)
	Succeeded(size int64)
	Failed(kind string)
}

// Pipeline turns chat messages into downloads. Messages are handled one at a
// time: Run is the only consumer of the queue.
type Pipeline struct {
	registry   DomainRegistry
	extractor  URLExtractor
	downloader Downloader
	flag       LoggingFlag
	out        sink.Sink
	metrics    Metrics
	queue      chan *entity.Message
	done       chan struct{}
	now        func() time.Time
	log        *slog.Logger
}

func New(registry DomainRegistry, extractor URLExtractor, downloader Downloader, flag LoggingFlag,
	out sink.Sink, metrics Metrics, queueSize int, log *slog.Logger) *Pipeline {
	return &Pipeline{
		registry:   registry,
		extractor:  extractor,
		downloader: downloader,
		flag:       flag,
		out:        out,
		metrics:    metrics,
		queue:      make(chan *entity.Message, queueSize),
		done:       make(chan struct{}),
		now:        time.Now,
		log:        log.With(slog.String("item", "Pipeline")),
	}
}

// Enqueue hands msg to Run without blocking.
func (p *Pipeline) Enqueue(msg *entity.Message) error {
	select {
	case p.queue <- msg:
		return nil
	default:
		p.log.Warn("Queue is full, message dropped", slog.String("network", msg.Network), slog.String("channel", msg.Channel))

		return common.ErrQueueFull
	}
}

// Run consumes the queue until ctx is done. It must be called once.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.done)

	p.log.Info("Started")

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Stopped")

			return
		case msg := <-p.queue:
			p.Handle(ctx, msg)
		}
	}
}

// Done is closed when Run has returned and no message is being handled.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Handle downloads every watched link in msg. A failed download does not
// stop the remaining ones.
func (p *Pipeline) Handle(ctx context.Context, msg *entity.Message) []*entity.Outcome {
	p.metrics.Message()

	domains, err := p.registry.List(ctx)
	if err != nil {
		p.log.Error("Cannot list domains", slog.Any("error", err))

		return nil
	}

	foundAt := msg.ReceivedAt
	if foundAt.IsZero() {
		foundAt = p.now()
	}

	var outcomes []*entity.Outcome
	for match := range p.extractor.Extract(msg.Text, domains) {
		p.metrics.Matched(match.Domain)

		req := &entity.DownloadRequest{
			ID:      uuid.NewString(),
			Network: msg.Network,
			Channel: msg.Channel,
			Nick:    msg.Nick,
			URL:     match.URL,
			FoundAt: foundAt,
		}

		outcomes = append(outcomes, p.download(ctx, req))
	}

	return outcomes
}

func (p *Pipeline) download(ctx context.Context, req *entity.DownloadRequest) *entity.Outcome {
	log := p.log.With(slog.String("id", req.ID), slog.String("url", req.URL))
	log.Info("Link matched", slog.String("nick", req.Nick), slog.String("network", req.Network), slog.String("channel", req.Channel))

	if p.flag.Enabled(ctx) {
		p.out.Printf("Downloading %s from %s on %s %s", req.URL, req.Nick, req.Network, req.Channel)
	}

	file, err := p.downloader.Save(ctx, req)
	if err != nil {
		kind := common.ErrorKind(err)
		p.metrics.Failed(kind)
		log.Warn("Download failed", slog.String("kind", kind), slog.Any("error", err))

		if p.flag.Enabled(ctx) {
			p.reportFailure(req.URL, err)
		}

		return &entity.Outcome{Request: req, Err: err}
	}

	p.metrics.Succeeded(file.Size)

	if p.flag.Enabled(ctx) {
		p.out.Printf("filename: %s", file.Name)
	}

	return &entity.Outcome{Request: req, File: file}
}

func (p *Pipeline) reportFailure(url string, err error) {
	var (
		httpErr      *common.HTTPError
		transportErr *common.TransportError
		fsErr        *common.FilesystemError
	)

	switch {
	case errors.As(err, &httpErr):
		p.out.Printf("Downloading %s failed with Error %d", url, httpErr.Status)
	case errors.As(err, &transportErr):
		p.out.Printf("Error opening %s - %s", url, transportErr.Reason)
	case errors.As(err, &fsErr):
		p.out.Printf("Cannot save %s - %s", url, fsErr.Err)
	default:
		p.out.Printf("Error opening %s - %s", url, err)
	}
}
