package worker

// shortage_worker.go
// Mails the daily report sheet to the owner when a reconciliation closes
// with a cash shortage at or beyond SHORTAGE_ALERT_THRESHOLD.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ShortageAlertPayload is the job envelope sent to QueueAlerts.
type ShortageAlertPayload struct {
	ReportID    uint   `json:"report_id"`
	ShopID      uint   `json:"shop_id"`
	CashBalance int64  `json:"cash_balance"`
	ToEmail     string `json:"to_email"`
}

// Sender delivers one mail; infra.Mailer implements it.
type Sender interface {
	Send(to, subject, body, attachment string) error
}

type ShortageAlertWorker struct {
	reports     repository.ReportRepository
	shops       repository.ShopRepository
	mailer      Sender
	cb          *infra.CircuitBreaker
	storagePath string
	loc         *time.Location
}

func NewShortageAlertWorker(
	reports repository.ReportRepository,
	shops repository.ShopRepository,
	mailer Sender,
	cb *infra.CircuitBreaker,
	storagePath string,
	loc *time.Location,
) *ShortageAlertWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &ShortageAlertWorker{reports: reports, shops: shops, mailer: mailer, cb: cb, storagePath: storagePath, loc: loc}
}

// Process renders the report PDF and mails it through the breaker.
// Missing rows and a disabled mailer are final; anything else is retried.
func (w *ShortageAlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p ShortageAlertPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("shortage_worker: invalid payload")
		return nil
	}
	if p.ToEmail == "" {
		log.Warn().Uint("report_id", p.ReportID).Msg("shortage_worker: empty to_email, skipping")
		return nil
	}

	rep, err := w.reports.FindByID(ctx, p.ReportID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Uint("report_id", p.ReportID).Msg("shortage_worker: report deleted before alert, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	shop, err := w.shops.FindByID(ctx, rep.ShopID)
	if err != nil {
		return err
	}

	pdfPath, err := infra.GenerateReportPDF(shop, rep, w.loc, w.storagePath)
	if err != nil {
		log.Error().Err(err).Uint("report_id", rep.ID).Msg("shortage_worker: pdf failed, sending without attachment")
		pdfPath = ""
	}

	subject := fmt.Sprintf("Cash shortage at %s: %d", shop.Name, rep.CashBalance)
	body := fmt.Sprintf(
		"Report #%d for %s closed with cash balance %d.\nActual balance %d, cashless %d, cashbox %d.\n",
		rep.ID, shop.Name, rep.CashBalance, rep.ActualBalance, rep.Cashless, rep.Cashbox,
	)

	send := func() error { return w.mailer.Send(p.ToEmail, subject, body, pdfPath) }
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Warn().Uint("report_id", rep.ID).Msg("shortage_worker: smtp not configured, alert dropped")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("to", p.ToEmail).Uint("report_id", rep.ID).Msg("shortage_worker: alert sent")
	return nil
}
