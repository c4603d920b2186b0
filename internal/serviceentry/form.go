package serviceentry

import (
	"context"
	"strconv"
	"strings"

	"github.com/GarageLink/GarageLink/internal/api"
	"github.com/GarageLink/GarageLink/internal/apperr"
	"github.com/GarageLink/GarageLink/internal/servicerec"
)

// Sender 提交保养记录的远端能力，由 api.Client 实现。
type Sender interface {
	CreateService(ctx context.Context, in api.CreateServiceInput) (*servicerec.Record, error)
}

// Form 保养录入表单的状态机。
//
// 下次保养里程的推导规则：
// - 当前里程每次变化都重算 next = current + interval
// - 用户手动改过 next 后，手动值优先，直到当前里程再次变化为止
// 输入框只吃数字，非数字字符在输入时逐个丢弃，不做事后报错。
type Form struct {
	interval int

	currentRaw string // 数字串，可为空
	nextRaw    string
	overridden bool

	alignment   bool
	balancing   bool
	price       float64
	description string
}

// NewForm 创建表单，interval 取自本地偏好（公里）。
func NewForm(interval int) *Form {
	if interval <= 0 {
		interval = 5000
	}
	return &Form{interval: interval}
}

// digitsOnly 逐字符过滤，只留 0-9。
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SetCurrentKilometer 更新当前里程。
// 里程一变，手动覆盖失效，next 立即按 current + interval 重算。
func (f *Form) SetCurrentKilometer(raw string) {
	cleaned := digitsOnly(raw)
	if cleaned == f.currentRaw {
		return
	}
	f.currentRaw = cleaned
	f.overridden = false

	if cleaned == "" {
		f.nextRaw = ""
		return
	}
	km, err := strconv.Atoi(cleaned)
	if err != nil {
		// 纯数字串超出 int 范围才会走到这里
		f.nextRaw = ""
		return
	}
	f.nextRaw = strconv.Itoa(km + f.interval)
}

// OverrideNextKilometer 手动指定下次保养里程。
// 覆盖值一直生效，直到当前里程再次变化。
func (f *Form) OverrideNextKilometer(raw string) {
	f.nextRaw = digitsOnly(raw)
	f.overridden = true
}

func (f *Form) CurrentKilometer() string { return f.currentRaw }

func (f *Form) NextKilometer() string { return f.nextRaw }

func (f *Form) Overridden() bool { return f.overridden }

// SetServiceTypes 勾选保养项目。
func (f *Form) SetServiceTypes(alignment, balancing bool) {
	f.alignment = alignment
	f.balancing = balancing
}

func (f *Form) SetPrice(price float64) { f.price = price }

func (f *Form) SetDescription(d string) { f.description = d }

// Validate 提交前校验。校验不过的表单绝不发网络请求。
func (f *Form) Validate() error {
	if strings.TrimSpace(f.nextRaw) == "" {
		return apperr.NewValidationError("next_kilometer", "required")
	}
	n, err := strconv.Atoi(f.nextRaw)
	if err != nil || n < 0 {
		return apperr.NewValidationError("next_kilometer", "must be a non-negative integer")
	}
	if _, ok := servicerec.Collapse(f.alignment, f.balancing); !ok {
		return apperr.NewValidationError("service_type", "select at least one service type")
	}
	return nil
}

// Input 组装提交载荷。两项同时勾选折算为 other，见 servicerec.Collapse。
func (f *Form) Input(customerID, vehicleID int) api.CreateServiceInput {
	serviceType, _ := servicerec.Collapse(f.alignment, f.balancing)
	current, _ := strconv.Atoi(f.currentRaw)
	next, _ := strconv.Atoi(f.nextRaw)
	return api.CreateServiceInput{
		CustomerID:    customerID,
		VehicleID:     vehicleID,
		Type:          serviceType,
		Price:         f.price,
		Kilometer:     current,
		NextKilometer: next,
		Description:   strings.TrimSpace(f.description),
	}
}

// Submit 校验并提交。ValidationError 原样返回给界面做行内提示。
func (f *Form) Submit(ctx context.Context, sender Sender, customerID, vehicleID int) (*servicerec.Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return sender.CreateService(ctx, f.Input(customerID, vehicleID))
}
