package home

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GarageLink/GarageLink/internal/api"
	"github.com/GarageLink/GarageLink/internal/common/logger"
	"github.com/GarageLink/GarageLink/internal/common/middleware"
	"github.com/GarageLink/GarageLink/internal/customer"
	"github.com/GarageLink/GarageLink/internal/vehicle"
)

// Backend 主屏依赖的远端能力，由 api.Client 实现；测试里用假实现。
type Backend interface {
	GetProfile(ctx context.Context) (*api.Profile, error)
	ListCustomers(ctx context.Context) ([]customer.Customer, error)
	ListVehicles(ctx context.Context) ([]vehicle.Vehicle, error)
	CustomerVehicles(ctx context.Context, customerID int) ([]vehicle.Vehicle, error)
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
	MonthlyStats(ctx context.Context) ([]api.MonthlyStat, error)
	UpcomingServices(ctx context.Context) ([]api.UpcomingService, error)
}

// 生成计数器的资源名。每类资源独立编号，旧请求的响应到得再晚也只会被丢弃。
const (
	resProfile   = "profile"
	resCustomers = "customers"
	resDashboard = "dashboard"
	resMonthly   = "monthly"
	resUpcoming  = "upcoming"
	resSearch    = "search"
	resExpand    = "expand"
)

// 车牌搜索最少要敲够这么多字符才出远端请求。
const minVehicleQueryLen = 3

// Options 控制器可选项
type Options struct {
	SearchLimiter  middleware.RateLimiter // 车牌搜索限流，nil 表示不限
	OnUnauthorized func()                 // 试用/订阅失效时的跳转回调
	Now            func() time.Time       // 测试注入
}

// Controller 主屏状态控制器。
// 持有客户主列表和各个看板分区的状态；所有读写都在锁内，
// 远端响应带代际编号，只有最新一次请求的结果会被应用。
type Controller struct {
	backend Backend
	log     logger.Logger
	opts    Options

	mu sync.Mutex

	// 客户主列表（按 date_added 从新到旧）
	customers []customer.Customer

	// 搜索状态
	query              string
	searchingByVehicle bool
	vehicleResults     []customer.Customer

	// 展开状态：同一时刻至多展开一个客户
	expandedID      int
	currentVehicles []vehicle.Vehicle
	vehiclesLoading bool

	// 看板分区
	profile   *api.Profile
	dashboard *api.DashboardStats
	monthly   []api.MonthlyStat
	upcoming  []api.UpcomingService

	unauthorized bool

	gen map[string]uint64
}

// NewController 创建主屏控制器
func NewController(backend Backend, log logger.Logger, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		backend: backend,
		log:     log,
		opts:    opts,
		gen:     make(map[string]uint64),
	}
}

// begin 为一次新请求领取代际编号。
func (c *Controller) begin(res string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[res]++
	return c.gen[res]
}

// currentLocked 判断响应是否仍是该资源的最新一代。调用方须持锁。
func (c *Controller) currentLocked(res string, gen uint64) bool {
	return c.gen[res] == gen
}

// Refresh 五路并发刷新：画像、客户列表、仪表盘、月度统计、到期提醒。
// 五路互不等待，单路失败只影响自己的分区；全部落定后才返回。
func (c *Controller) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		c.refreshProfile(ctx)
	}()
	go func() {
		defer wg.Done()
		c.refreshCustomers(ctx)
	}()
	go func() {
		defer wg.Done()
		gen := c.begin(resDashboard)
		stats, err := c.backend.DashboardStats(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.currentLocked(resDashboard, gen) {
			return
		}
		if err != nil {
			c.warnf(err, "dashboard stats refresh failed")
			return // 保留旧数据
		}
		c.dashboard = stats
	}()
	go func() {
		defer wg.Done()
		gen := c.begin(resMonthly)
		stats, err := c.backend.MonthlyStats(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.currentLocked(resMonthly, gen) {
			return
		}
		if err != nil {
			c.warnf(err, "monthly stats refresh failed")
			return
		}
		c.monthly = stats
	}()
	go func() {
		defer wg.Done()
		gen := c.begin(resUpcoming)
		list, err := c.backend.UpcomingServices(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.currentLocked(resUpcoming, gen) {
			return
		}
		if err != nil {
			c.warnf(err, "upcoming services refresh failed")
			return
		}
		c.upcoming = list
	}()

	wg.Wait()
}

func (c *Controller) refreshProfile(ctx context.Context) {
	gen := c.begin(resProfile)
	p, err := c.backend.GetProfile(ctx)

	var gateTripped bool
	c.mu.Lock()
	if c.currentLocked(resProfile, gen) {
		if err != nil {
			c.warnf(err, "profile refresh failed")
		} else {
			c.profile = p
			if !p.Authorized(c.opts.Now()) {
				// 门禁：无有效试用/订阅，整屏跳转
				if !c.unauthorized {
					gateTripped = true
				}
				c.unauthorized = true
			}
		}
	}
	c.mu.Unlock()

	if gateTripped && c.opts.OnUnauthorized != nil {
		c.opts.OnUnauthorized()
	}
}

func (c *Controller) refreshCustomers(ctx context.Context) {
	gen := c.begin(resCustomers)
	list, err := c.backend.ListCustomers(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(resCustomers, gen) {
		return
	}
	if err != nil {
		c.warnf(err, "customer list refresh failed")
		return
	}
	c.customers = customer.SortByRecency(list)
}

// SetMode 切换搜索模式。切换时清掉另一个模式的结果缓存，
// 并用当前查询在新模式下重新推导显示列表。
func (c *Controller) SetMode(ctx context.Context, byVehicle bool) {
	c.mu.Lock()
	c.searchingByVehicle = byVehicle
	c.vehicleResults = nil
	query := c.query
	c.mu.Unlock()

	if byVehicle {
		c.searchVehicles(ctx, query)
	}
}

// SetQuery 更新查询串。
// 身份模式纯本地过滤不出网；车牌模式长度不足 3 直接给空结果。
func (c *Controller) SetQuery(ctx context.Context, query string) {
	c.mu.Lock()
	c.query = query
	byVehicle := c.searchingByVehicle
	if byVehicle {
		c.vehicleResults = nil
	}
	c.mu.Unlock()

	if byVehicle {
		c.searchVehicles(ctx, query)
	}
}

// searchVehicles 车牌模式的远端查询：
// 拉全量车辆 → 车牌子串过滤 → 去重车主 → 拉客户 → 求交集 → 挂上命中的车辆。
// 任何一步网络失败都降级为空结果，不向界面抛错。
func (c *Controller) searchVehicles(ctx context.Context, query string) {
	if len([]rune(strings.TrimSpace(query))) < minVehicleQueryLen {
		return
	}
	if c.opts.SearchLimiter != nil && !c.opts.SearchLimiter.Allow(ctx) {
		return
	}

	gen := c.begin(resSearch)

	vehicles, err := c.backend.ListVehicles(ctx)
	if err != nil {
		c.warnf(err, "vehicle search failed")
		c.applySearch(gen, nil)
		return
	}
	matched := vehicle.FilterByPlate(vehicles, query)
	if len(matched) == 0 {
		c.applySearch(gen, nil)
		return
	}

	owners := make(map[int]bool)
	for _, id := range vehicle.OwnerIDs(matched) {
		owners[id] = true
	}
	byOwner := vehicle.GroupByOwner(matched)

	customers, err := c.backend.ListCustomers(ctx)
	if err != nil {
		c.warnf(err, "vehicle search failed")
		c.applySearch(gen, nil)
		return
	}

	// 结果顺序保持后端返回的客户顺序
	results := make([]customer.Customer, 0, len(owners))
	for _, cu := range customers {
		if owners[cu.ID] {
			cu.Vehicles = byOwner[cu.ID]
			results = append(results, cu)
		}
	}
	c.applySearch(gen, results)
}

func (c *Controller) applySearch(gen uint64, results []customer.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(resSearch, gen) {
		return
	}
	c.vehicleResults = results
}

// Results 当前模式下应展示的客户列表。
func (c *Controller) Results() []customer.Customer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchingByVehicle {
		out := make([]customer.Customer, len(c.vehicleResults))
		copy(out, c.vehicleResults)
		return out
	}
	return customer.FilterByIdentity(c.customers, c.query)
}

// OfferAddCustomer 身份模式下查无此人时，界面给出“新建客户”入口。
// 查询一清空该入口随之消失。
func (c *Controller) OfferAddCustomer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchingByVehicle || strings.TrimSpace(c.query) == "" {
		return false
	}
	return len(customer.FilterByIdentity(c.customers, c.query)) == 0
}

// Expand 展开一个客户卡片，按需拉取其车辆列表。
// 单选语义：展开 B 会隐式收起 A。每次展开都重新拉取，
// 回写到主列表的副本只服务其他读者，不作为读缓存。
func (c *Controller) Expand(ctx context.Context, customerID int) {
	c.mu.Lock()
	c.expandedID = customerID
	c.currentVehicles = nil
	c.vehiclesLoading = true
	c.mu.Unlock()

	gen := c.begin(resExpand)
	vs, err := c.backend.CustomerVehicles(ctx, customerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(resExpand, gen) || c.expandedID != customerID {
		return
	}
	c.vehiclesLoading = false
	if err != nil {
		c.warnf(err, "vehicle fetch failed for customer %d", customerID)
		c.currentVehicles = nil
		return
	}
	c.currentVehicles = vs
	customer.AttachVehicles(c.customers, customerID, vs)
}

// Collapse 收起当前展开的客户。
// 只清空明细槽；主列表上已回写的车辆副本保持原样，两份缓存各自失效。
func (c *Controller) Collapse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expandedID = 0
	c.currentVehicles = nil
	c.vehiclesLoading = false
}

// 下面是只读访问器，全部返回副本或标量。

func (c *Controller) Customers() []customer.Customer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]customer.Customer, len(c.customers))
	copy(out, c.customers)
	return out
}

func (c *Controller) ExpandedID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expandedID
}

func (c *Controller) CurrentVehicles() []vehicle.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]vehicle.Vehicle, len(c.currentVehicles))
	copy(out, c.currentVehicles)
	return out
}

func (c *Controller) VehiclesLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vehiclesLoading
}

func (c *Controller) Profile() *api.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) Dashboard() *api.DashboardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dashboard
}

func (c *Controller) Monthly() []api.MonthlyStat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.MonthlyStat, len(c.monthly))
	copy(out, c.monthly)
	return out
}

func (c *Controller) Upcoming() []api.UpcomingService {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.UpcomingService, len(c.upcoming))
	copy(out, c.upcoming)
	return out
}

func (c *Controller) Unauthorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unauthorized
}

func (c *Controller) SearchingByVehicle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchingByVehicle
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) warnf(err error, format string, args ...interface{}) {
	if c.log == nil {
		return
	}
	c.log.WithError(err).Warnf(format, args...)
}
