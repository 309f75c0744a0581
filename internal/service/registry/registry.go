package registry

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/jgivc/w1r3catcher/internal/common"
	"github.com/jgivc/w1r3catcher/internal/storage/settings"
)

// Delimiter separates persisted domains. It cannot appear in a hostname.
const Delimiter = "|@|"

var schemeRegexp = regexp.MustCompile(`(?i)^https?://`)

// Registry is the ordered set of watched domains. Every call loads the list
// from the store; every mutation writes it back.
type Registry struct {
	mu    sync.Mutex
	store settings.Store
	log   *slog.Logger
}

func New(store settings.Store, log *slog.Logger) *Registry {
	return &Registry{
		store: store,
		log:   log.With(slog.String("item", "DomainRegistry")),
	}
}

func (r *Registry) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// Add normalizes candidate and appends it unless it is already present.
// The returned bool reports whether the registry changed.
func (r *Registry) Add(ctx context.Context, candidate string) (string, bool, error) {
	domain := Normalize(candidate)
	if domain == "" {
		return "", false, fmt.Errorf("cannot add %q: %w", candidate, common.ErrEmptyDomain)
	}

	if strings.Contains(domain, Delimiter) {
		return "", false, fmt.Errorf("cannot add %q: %w", candidate, common.ErrBadDomain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	domains, err := r.load(ctx)
	if err != nil {
		return "", false, err
	}

	for _, d := range domains {
		if d == domain {
			r.log.Info("Domain already present", slog.String("domain", domain))

			return domain, false, nil
		}
	}

	if err := r.save(ctx, append(domains, domain)); err != nil {
		return "", false, err
	}

	r.log.Info("Domain added", slog.String("domain", domain))

	return domain, true, nil
}

// Remove deletes a domain by 1-based position or by exact name and returns it.
func (r *Registry) Remove(ctx context.Context, selector string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	domains, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	idx := -1
	if n, err := strconv.Atoi(strings.TrimSpace(selector)); err == nil {
		if n < 1 || n > len(domains) {
			return "", fmt.Errorf("cannot remove domain #%d of %d: %w", n, len(domains), common.ErrInvalidIndex)
		}
		idx = n - 1
	} else {
		for i, d := range domains {
			if d == selector {
				idx = i

				break
			}
		}

		if idx < 0 {
			return "", fmt.Errorf("cannot remove %s: %w", selector, common.ErrNotFound)
		}
	}

	removed := domains[idx]
	rest := make([]string, 0, len(domains)-1)
	rest = append(rest, domains[:idx]...)
	rest = append(rest, domains[idx+1:]...)

	if err := r.save(ctx, rest); err != nil {
		return "", err
	}

	r.log.Info("Domain removed", slog.String("domain", removed))

	return removed, nil
}

// Seed writes defaults when nothing has been persisted yet.
func (r *Registry) Seed(ctx context.Context, defaults []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var domains []string
	for _, d := range defaults {
		d = Normalize(d)
		if strings.Contains(d, Delimiter) {
			r.log.Warn("Default domain skipped", slog.String("domain", d), slog.Any("error", common.ErrBadDomain))

			continue
		}

		if d != "" && !contains(domains, d) {
			domains = append(domains, d)
		}
	}

	return settings.SetDefault(ctx, r.store, settings.KeyDomains, Join(domains))
}

func (r *Registry) load(ctx context.Context) ([]string, error) {
	data, err := r.store.Get(ctx, settings.KeyDomains)
	if err != nil {
		r.log.Error("Cannot load domains", slog.Any("error", err))

		return nil, fmt.Errorf("cannot load domains: %w", err)
	}

	return Split(data), nil
}

func (r *Registry) save(ctx context.Context, domains []string) error {
	if err := r.store.Set(ctx, settings.KeyDomains, Join(domains)); err != nil {
		r.log.Error("Cannot save domains", slog.Any("error", err))

		return fmt.Errorf("cannot save domains: %w", err)
	}

	return nil
}

// Normalize strips a leading http(s):// and everything from the first slash.
func Normalize(candidate string) string {
	domain := schemeRegexp.ReplaceAllString(strings.TrimSpace(candidate), "")
	if i := strings.Index(domain, "/"); i >= 0 {
		domain = domain[:i]
	}

	return domain
}

func Split(data string) []string {
	var domains []string
	for _, d := range strings.Split(data, Delimiter) {
		if d != "" {
			domains = append(domains, d)
		}
	}

	return domains
}

func Join(domains []string) string {
	return strings.Join(domains, Delimiter)
}

func contains(domains []string, domain string) bool {
	for _, d := range domains {
		if d == domain {
			return true
		}
	}

	return false
}
