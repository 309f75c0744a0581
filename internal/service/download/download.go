package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jgivc/w1r3catcher/internal/common"
	"github.com/jgivc/w1r3catcher/internal/config"
	"github.com/jgivc/w1r3catcher/internal/entity"
	"github.com/jgivc/w1r3catcher/internal/service/filename"
	"github.com/spf13/afero"
	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"
)

const (
	dirMode  = 0o755
	fileMode = 0o644

	schemePrefix = "http://"
)

// Mirror receives a copy of every stored file. Its failures never fail a download.
type Mirror interface {
	Put(ctx context.Context, req *entity.DownloadRequest, file *entity.StoredFile, data []byte) error
}

type Downloader struct {
	fs      afero.Fs
	cfg     *config.DownloadConfig
	client  *http.Client
	limiter bucket.Limiter
	mirror  Mirror

	mu       sync.Mutex
	dirReady bool

	log *slog.Logger
}

func NewDownloader(cfg *config.DownloadConfig, log *slog.Logger) (*Downloader, error) {
	return NewDownloaderWithFS(afero.NewOsFs(), cfg, log)
}

func NewDownloaderWithFS(fs afero.Fs, cfg *config.DownloadConfig, log *slog.Logger) (*Downloader, error) {
	d := &Downloader{
		fs:     fs,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With(slog.String("item", "Downloader")),
	}

	if cfg.Rate > 0 {
		burst := int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}

		limiter, err := bucket.NewSafe(bucket.Limit(cfg.Rate), burst)
		if err != nil {
			return nil, fmt.Errorf("cannot create rate limiter: %w", err)
		}
		d.limiter = limiter
	}

	return d, nil
}

func (d *Downloader) SetMirror(m Mirror) {
	d.mirror = m
}

// Save downloads req.URL and stores it under a fresh name in the save
// directory. A URL without a usable scheme is retried once as http://.
func (d *Downloader) Save(ctx context.Context, req *entity.DownloadRequest) (*entity.StoredFile, error) {
	log := d.log.With(slog.String("id", req.ID), slog.String("url", req.URL))

	if err := d.ensureSaveDir(); err != nil {
		return nil, err
	}

	data, err := d.Fetch(ctx, req.URL)
	if errors.Is(err, common.ErrMalformedURL) {
		log.Debug("Retry with scheme", slog.Any("error", err))

		data, err = d.Fetch(ctx, schemePrefix+req.URL)
	}

	if err != nil {
		log.Error("Cannot fetch", slog.Any("error", err))

		return nil, err
	}

	name := filename.Allocate(req.Network, req.Channel, req.FoundAt, req.URL, d.exists)
	path := filepath.Join(d.cfg.SaveDir, name)

	err = d.write(path, data)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("Save directory is gone, recreating", slog.String("save_dir", d.cfg.SaveDir))

		d.resetSaveDir()
		if err = d.ensureSaveDir(); err == nil {
			err = d.write(path, data)
		}
	}

	if err != nil {
		log.Error("Cannot store file", slog.String("path", path), slog.Any("error", err))

		return nil, err
	}

	log.Info("File stored", slog.String("path", path), slog.Int("size", len(data)))

	file := &entity.StoredFile{
		Name: name,
		Path: path,
		Size: int64(len(data)),
	}

	if d.mirror != nil {
		if err := d.mirror.Put(ctx, req, file, data); err != nil {
			log.Warn("Cannot mirror file", slog.String("name", name), slog.Any("error", err))
		}
	}

	return file, nil
}

// Fetch performs a single GET and returns the whole body.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", rawURL, common.ErrMalformedURL)
	}

	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unknown url type %q in %s: %w", u.Scheme, rawURL, common.ErrMalformedURL)
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, &common.TransportError{URL: rawURL, Reason: err.Error()}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request for %s: %w", rawURL, common.ErrMalformedURL)
	}

	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &common.TransportError{URL: rawURL, Reason: reason(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &common.HTTPError{URL: rawURL, Status: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if d.cfg.MaxSize > 0 {
		body = io.LimitReader(resp.Body, d.cfg.MaxSize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &common.TransportError{URL: rawURL, Reason: reason(err)}
	}

	if d.cfg.MaxSize > 0 && int64(len(data)) > d.cfg.MaxSize {
		return nil, &common.TransportError{URL: rawURL, Reason: fmt.Sprintf("response exceeds %d bytes", d.cfg.MaxSize)}
	}

	return data, nil
}

// ensureSaveDir creates the save directory on first use. A failure is
// retried on the next download.
func (d *Downloader) ensureSaveDir() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dirReady {
		return nil
	}

	if err := d.fs.MkdirAll(d.cfg.SaveDir, dirMode); err != nil {
		d.log.Error("Cannot create save directory, downloading is degraded",
			slog.String("save_dir", d.cfg.SaveDir), slog.Any("error", err))

		return &common.FilesystemError{Op: "create directory", Path: d.cfg.SaveDir, Err: err}
	}

	d.dirReady = true

	return nil
}

func (d *Downloader) resetSaveDir() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dirReady = false
}

func (d *Downloader) write(path string, data []byte) error {
	f, err := d.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return &common.FilesystemError{Op: "create", Path: path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = d.fs.Remove(path)

		return &common.FilesystemError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		_ = d.fs.Remove(path)

		return &common.FilesystemError{Op: "close", Path: path, Err: err}
	}

	return nil
}

func (d *Downloader) exists(name string) bool {
	ok, err := afero.Exists(d.fs, filepath.Join(d.cfg.SaveDir, name))
	if err != nil {
		// O_EXCL in write still refuses to overwrite.
		d.log.Warn("Cannot stat file", slog.String("name", name), slog.Any("error", err))

		return false
	}

	return ok
}

func reason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}

	return err.Error()
}
