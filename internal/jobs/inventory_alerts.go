package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockmed/internal/analytics"
	"stockmed/internal/models"
	"stockmed/internal/services"
)

// AlertDispatcher emails stock health warnings to the configured recipients.
// Low stock and near expiry are reported in separate messages so that one
// quiet category does not suppress the other.
type AlertDispatcher struct {
	analyticsSvc *analytics.Service
	mailer       services.Mailer
	recipients   []string
}

func NewAlertDispatcher(analyticsSvc *analytics.Service, mailer services.Mailer, recipients []string) *AlertDispatcher {
	return &AlertDispatcher{
		analyticsSvc: analyticsSvc,
		mailer:       mailer,
		recipients:   recipients,
	}
}

// Dispatch sends the low stock and near expiry alert emails. An empty set
// sends no email for that category. The two sends are independent: a failure
// in one does not stop the other. Returns the number of emails sent.
func (d *AlertDispatcher) Dispatch(ctx context.Context, now time.Time) (int, error) {
	if len(d.recipients) == 0 {
		log.Printf("alert dispatch skipped: no recipients configured")
		return 0, nil
	}

	sent := 0
	var errs []error

	lowStock, err := d.analyticsSvc.LowStock(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load low stock products: %w", err))
	} else if len(lowStock) > 0 {
		body := lowStockBody(lowStock)
		if err := d.mailer.Send("Low Stock Alert", body, d.recipients); err != nil {
			errs = append(errs, fmt.Errorf("failed to send low stock alert: %w", err))
		} else {
			sent++
		}
	}

	nearExpiry, err := d.analyticsSvc.NearExpiry(ctx, now, models.ExpiryHorizonDays)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load near expiry products: %w", err))
	} else if len(nearExpiry) > 0 {
		body := nearExpiryBody(nearExpiry)
		if err := d.mailer.Send("Expiry Alert", body, d.recipients); err != nil {
			errs = append(errs, fmt.Errorf("failed to send expiry alert: %w", err))
		} else {
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

func lowStockBody(products []*models.Product) string {
	var b strings.Builder
	b.WriteString("The following products are at or below their reorder level:\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (batch %s): %d in stock, reorder at %d\n", p.Name, p.BatchNumber, p.QuantityInStock, p.ReorderLevel)
	}
	b.WriteString("\nPlease restock them as soon as possible.\n")
	return b.String()
}

func nearExpiryBody(products []*models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following products expire within %d days:\n\n", models.ExpiryHorizonDays)
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (batch %s): expires %s\n", p.Name, p.BatchNumber, p.ExpiryDate.Format("2006-01-02"))
	}
	b.WriteString("\nPlease review and remove expired items.\n")
	return b.String()
}
