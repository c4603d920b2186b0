package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GarageLink/GarageLink/internal/apperr"
	"github.com/GarageLink/GarageLink/internal/common/httpx"
	"github.com/GarageLink/GarageLink/internal/customer"
	"github.com/GarageLink/GarageLink/internal/servicerec"
	"github.com/GarageLink/GarageLink/internal/vehicle"
)

// Client 把后端各 REST 端点包成带类型的方法。
// 所有实体都归后端所有，这里拿到的只是本屏会话内的临时副本。
type Client struct {
	http *httpx.Client
	now  func() time.Time
}

// New 创建API客户端
func New(h *httpx.Client) *Client {
	return &Client{http: h, now: time.Now}
}

// Profile 账户画像与试用/订阅状态。
type Profile struct {
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	ServiceCenterName  string     `json:"service_center_name"`
	TrialActive        bool       `json:"is_trial_active"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	SubscriptionActive bool       `json:"is_subscription_active"`
}

// Authorized 试用/订阅门禁。
func (p *Profile) Authorized(now time.Time) bool {
	if p == nil {
		return false
	}
	if p.SubscriptionActive {
		return true
	}
	if p.TrialActive {
		return p.TrialEndsAt == nil || now.Before(*p.TrialEndsAt)
	}
	return false
}

// DashboardStats 仪表盘聚合数据。
type DashboardStats struct {
	TotalCustomers int     `json:"total_customers"`
	TotalVehicles  int     `json:"total_vehicles"`
	TotalServices  int     `json:"total_services"`
	MonthRevenue   float64 `json:"month_revenue"`
}

// MonthlyStat 某个月的保养量/营收。
type MonthlyStat struct {
	Month    string  `json:"month"` // YYYY-MM
	Services int     `json:"services"`
	Revenue  float64 `json:"revenue"`
}

// UpcomingService 即将到期的保养提醒。
type UpcomingService struct {
	CustomerID    int    `json:"customer"`
	CustomerName  string `json:"customer_name"`
	VehicleID     int    `json:"vehicle"`
	VehicleNumber string `json:"vehicle_number"`
	NextKilometer int    `json:"next_kilometer"`
	LastServiced  string `json:"last_serviced"` // YYYY-MM-DD
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.http.Get(ctx, "profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	var out []customer.Customer
	if err := c.http.Get(ctx, "customers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CustomerVehicles(ctx context.Context, customerID int) ([]vehicle.Vehicle, error) {
	var out []vehicle.Vehicle
	path := fmt.Sprintf("customers/%d/vehicles", customerID)
	if err := c.http.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListVehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	var out []vehicle.Vehicle
	if err := c.http.Get(ctx, "vehicles", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomerInput 新建客户入参。
type CreateCustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

func (c *Client) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*customer.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.NewValidationError("name", "required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperr.NewValidationError("phone", "required")
	}
	var out customer.Customer
	if err := c.http.Post(ctx, "customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVehicleInput 登记车辆入参。
type CreateVehicleInput struct {
	CustomerID int    `json:"customer"`
	Number     string `json:"vehicle_number"`
	Model      string `json:"vehicle_model"`
	Type       string `json:"vehicle_type"`
}

func (c *Client) CreateVehicle(ctx context.Context, in CreateVehicleInput) (*vehicle.Vehicle, error) {
	if in.CustomerID <= 0 {
		return nil, apperr.NewValidationError("customer", "required")
	}
	if strings.TrimSpace(in.Number) == "" {
		return nil, apperr.NewValidationError("vehicle_number", "required")
	}
	var out vehicle.Vehicle
	if err := c.http.Post(ctx, "vehicles", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateServiceInput 保养记录入参。service_date 由客户端在提交时打当天日期。
type CreateServiceInput struct {
	CustomerID    int             `json:"customer"`
	VehicleID     int             `json:"vehicle"`
	Type          servicerec.Type `json:"service_type"`
	Price         float64         `json:"price"`
	Kilometer     int             `json:"kilometer"`
	NextKilometer int             `json:"next_kilometer"`
	Description   string          `json:"description,omitempty"`
	ServiceDate   string          `json:"service_date,omitempty"`
}

func (c *Client) CreateService(ctx context.Context, in CreateServiceInput) (*servicerec.Record, error) {
	if in.ServiceDate == "" {
		in.ServiceDate = c.now().Format("2006-01-02")
	}
	var out servicerec.Record
	if err := c.http.Post(ctx, "services", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListServices 容忍几种历史包裹格式，见 servicerec.DecodeList。
func (c *Client) ListServices(ctx context.Context) ([]servicerec.Record, error) {
	var raw json.RawMessage
	if err := c.http.Get(ctx, "services", &raw); err != nil {
		return nil, err
	}
	return servicerec.DecodeList(raw)
}

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.http.Get(ctx, "dashboard/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MonthlyStats(ctx context.Context) ([]MonthlyStat, error) {
	var out []MonthlyStat
	if err := c.http.Get(ctx, "services/monthly_stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpcomingServices(ctx context.Context) ([]UpcomingService, error) {
	var out []UpcomingService
	if err := c.http.Get(ctx, "services/upcoming", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PaymentOrder 支付下单结果，client_secret 交给网关 SDK 确认扣款。
type PaymentOrder struct {
	OrderID      string `json:"order_id"`
	Amount       int64  `json:"amount"` // 最小货币单位
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
}

func (c *Client) CreateOrder(ctx context.Context, plan string) (*PaymentOrder, error) {
	if strings.TrimSpace(plan) == "" {
		return nil, apperr.NewValidationError("plan", "required")
	}
	in := map[string]string{"plan": plan}
	var out PaymentOrder
	if err := c.http.Post(ctx, "subscription/create-order", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPaymentInput 支付回验入参。
type VerifyPaymentInput struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

func (c *Client) VerifyPayment(ctx context.Context, in VerifyPaymentInput) error {
	return c.http.Post(ctx, "subscription/verify-payment", in, nil)
}
