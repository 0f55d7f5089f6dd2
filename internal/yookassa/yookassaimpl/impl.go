package yookassaimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/yookassa"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"github.com/orgball2608/post-publisher-bot/pkg/retry"
	"go.uber.org/fx"
)

var ErrEmptyPaymentID = errors.New("empty payment id")

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type YookassaImpl struct {
	HTTP      *http.Client
	BaseURL   string
	ShopID    string
	SecretKey string
	Retry     retry.Config
	Logger    logger.Logger
}

func New(opts Opts) *YookassaImpl {
	return &YookassaImpl{
		HTTP:      &http.Client{Timeout: opts.Config.Payment.Timeout},
		BaseURL:   strings.TrimRight(opts.Config.Payment.BaseURL, "/"),
		ShopID:    opts.Config.Payment.ShopID,
		SecretKey: opts.Config.Payment.SecretKey,
		Retry:     retry.DefaultConfig(),
		Logger:    opts.Logger.WithComponent("Yookassa"),
	}
}

var _ yookassa.Client = (*YookassaImpl)(nil)

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Paid   bool   `json:"paid"`
}

// QueryStatus reads GET /payments/{id}. Transport errors and 5xx answers are
// retried; anything else is returned at once.
func (y *YookassaImpl) QueryStatus(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	if paymentID == "" {
		return "", pkgerrors.Classify(ErrEmptyPaymentID, pkgerrors.ErrProviderQuery, pkgerrors.CodeProviderQuery, "query payment")
	}

	var status domain.PaymentStatus
	err := retry.Do(ctx, y.Logger, "yookassa.query_status", func() error {
		s, err := y.fetch(ctx, paymentID)
		if err != nil {
			return err
		}
		status = s
		return nil
	}, y.Retry)
	if err != nil {
		return "", pkgerrors.Classify(
			fmt.Errorf("payment %s: %w", paymentID, err),
			pkgerrors.ErrProviderQuery, pkgerrors.CodeProviderQuery, "query payment",
		)
	}

	return status, nil
}

func (y *YookassaImpl) fetch(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	endpoint := y.BaseURL + "/payments/" + url.PathEscape(paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", retry.Permanent(err)
	}
	req.SetBasicAuth(y.ShopID, y.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := y.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer safeClose(resp.Body, y.Logger)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("yookassa returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", retry.Permanent(fmt.Errorf("yookassa returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payment paymentResponse
	if err := json.Unmarshal(body, &payment); err != nil {
		return "", retry.Permanent(fmt.Errorf("decode payment: %w", err))
	}

	return mapStatus(payment.Status), nil
}

// mapStatus folds provider states into the three states the loop acts on.
func mapStatus(status string) domain.PaymentStatus {
	switch status {
	case "succeeded":
		return domain.PaymentStatusSucceeded
	case "canceled":
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusPending
	}
}

// safeClose safely closes an io.ReadCloser and logs any errors
func safeClose(closer io.ReadCloser, logger logger.Logger) {
	if err := closer.Close(); err != nil {
		logger.Error("Error closing response body", "error", err)
	}
}
