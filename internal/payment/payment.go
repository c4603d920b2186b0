package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GarageLink/GarageLink/internal/api"
	"github.com/GarageLink/GarageLink/internal/apperr"
	"github.com/GarageLink/GarageLink/internal/common/logger"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// Backend 订阅下单/回验端点，由 api.Client 实现。
type Backend interface {
	CreateOrder(ctx context.Context, plan string) (*api.PaymentOrder, error)
	VerifyPayment(ctx context.Context, in api.VerifyPaymentInput) error
}

// Gateway 第三方支付网关的确认步骤。
type Gateway interface {
	Confirm(ctx context.Context, order *api.PaymentOrder) (paymentID string, err error)
}

// gatewayMessages 网关错误码 → 用户可读文案。
// 只维护固定的一组常见码，认不出的码走兜底文案。
var gatewayMessages = map[string]string{
	"card_declined":           "Your card was declined. Please try another card.",
	"expired_card":            "Your card has expired. Please use a different card.",
	"incorrect_cvc":           "The security code is incorrect. Please check and retry.",
	"insufficient_funds":      "Insufficient funds on the card.",
	"processing_error":        "The payment could not be processed. Please try again.",
	"authentication_required": "Additional authentication is required by your bank.",
}

const genericGatewayMessage = "Payment failed. Please try again or contact support."

// MessageForCode 按网关错误码取用户文案，未知码返回兜底文案。
func MessageForCode(code string) string {
	if msg, ok := gatewayMessages[code]; ok {
		return msg
	}
	return genericGatewayMessage
}

// GatewayError 网关侧失败，Message 可直接展示。
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (%s): %s", e.Code, e.Message)
}

// StripeGateway stripe SDK 封装。
type StripeGateway struct {
	key string
}

// NewStripeGateway 创建网关适配器。
func NewStripeGateway(key string) *StripeGateway {
	return &StripeGateway{key: key}
}

// Confirm 用下单返回的 client_secret 确认扣款。
func (g *StripeGateway) Confirm(ctx context.Context, order *api.PaymentOrder) (string, error) {
	if g == nil || g.key == "" {
		return "", &GatewayError{Code: "not_configured", Message: MessageForCode("not_configured")}
	}
	if order == nil || order.ClientSecret == "" {
		return "", &GatewayError{Code: "invalid_order", Message: MessageForCode("invalid_order")}
	}

	stripe.Key = g.key
	intentID := intentIDFromSecret(order.ClientSecret)
	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			code := string(stripeErr.Code)
			return "", &GatewayError{Code: code, Message: MessageForCode(code)}
		}
		return "", apperr.NewNetworkError("gateway confirm", err)
	}
	return pi.ID, nil
}

// intentIDFromSecret client_secret 形如 pi_xxx_secret_yyy，前半段是 intent id。
func intentIDFromSecret(secret string) string {
	if i := strings.Index(secret, "_secret_"); i > 0 {
		return secret[:i]
	}
	return secret
}

// Flow 订阅购买编排：下单 → 网关确认 → 回验。
type Flow struct {
	backend Backend
	gateway Gateway
	log     logger.Logger
}

// NewFlow 创建支付编排
func NewFlow(backend Backend, gateway Gateway, log logger.Logger) *Flow {
	return &Flow{backend: backend, gateway: gateway, log: log}
}

// Purchase 购买一个订阅方案。任何一步失败都返回带类型的错误，不会 panic。
func (f *Flow) Purchase(ctx context.Context, plan string) error {
	if f == nil || f.backend == nil || f.gateway == nil {
		return fmt.Errorf("payment flow not initialized")
	}

	order, err := f.backend.CreateOrder(ctx, plan)
	if err != nil {
		return err
	}

	paymentID, err := f.gateway.Confirm(ctx, order)
	if err != nil {
		if f.log != nil {
			f.log.WithError(err).Warnf("gateway confirm failed for order %s", order.OrderID)
		}
		return err
	}

	return f.backend.VerifyPayment(ctx, api.VerifyPaymentInput{
		OrderID:   order.OrderID,
		PaymentID: paymentID,
	})
}
