package checks

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// fetchCertExpiry returns the NotAfter of the leaf certificate served for
// domain. Overridden in tests.
var fetchCertExpiry = func(ctx context.Context, domain string) (time.Time, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 10 * time.Second},
		Config: &tls.Config{
			ServerName: domain,
			// Expired or otherwise invalid certificates must still be read.
			InsecureSkipVerify: true, //nolint:gosec
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(domain, "443"))
	if err != nil {
		return time.Time{}, err
	}
	defer func() { _ = conn.Close() }()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return time.Time{}, errors.New("not a tls connection")
	}
	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return time.Time{}, errors.New("no peer certificates")
	}
	return certs[0].NotAfter.UTC(), nil
}

// SSL reports site certificates expiring within ssl_warn_days.
type SSL struct{}

func (SSL) Category() todo.Category { return todo.CategorySSL }

func (SSL) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	warnDays := env.Config.Todo.Thresholds.SSLWarnDays
	if warnDays <= 0 {
		return nil, nil
	}

	now := env.now()
	seq := todo.NewIDSeq(todo.CategorySSL)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if site.Domain == "" {
			return nil
		}

		expires, err := fetchCertExpiry(ctx, site.Domain)
		if err != nil {
			return fmt.Errorf("fetch certificate for %s: %w", site.Domain, err)
		}

		left := expires.Sub(now)
		if left >= time.Duration(warnDays)*24*time.Hour {
			return nil
		}

		item := todo.Item{
			Category:    todo.CategorySSL,
			Priority:    todo.PriorityMedium,
			Description: fmt.Sprintf("Certificate expires %s", expires.Format(time.RFC3339)),
			Site:        site.Name,
			Action:      "pl ssl renew " + site.Name,
		}

		days := int(left.Hours() / 24)
		switch {
		case left <= 0:
			item.Priority = todo.PriorityHigh
			item.Title = fmt.Sprintf("SSL certificate for %s has expired", site.Domain)
		case days <= 3:
			item.Priority = todo.PriorityHigh
			item.Title = fmt.Sprintf("SSL certificate for %s expires in %s", site.Domain, plural(days, "day"))
		default:
			item.Title = fmt.Sprintf("SSL certificate for %s expires in %s", site.Domain, plural(days, "day"))
		}

		item.ID = seq.Next()
		items = append(items, item)
		return nil
	})

	return items, err
}
