package customer

import (
	"sort"
	"strings"
	"time"

	"github.com/GarageLink/GarageLink/internal/vehicle"
)

// Customer 服务中心的客户。
// Vehicles 为 nil 表示“尚未拉取”，不是“没有车”；只有按需拉取后才会被填上。
type Customer struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email,omitempty"`
	VehicleCount int               `json:"vehicle_count"`
	DateAdded    time.Time         `json:"date_added"`
	Vehicles     []vehicle.Vehicle `json:"vehicles,omitempty"`
}

// FilterByIdentity 按姓名或电话做大小写不敏感子串过滤。
// 空查询返回整个列表的副本（清空搜索框即回到全量列表）。
func FilterByIdentity(list []Customer, query string) []Customer {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Customer, len(list))
		copy(out, list)
		return out
	}
	out := make([]Customer, 0)
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(strings.ToLower(c.Phone), query) {
			out = append(out, c)
		}
	}
	return out
}

// SortByRecency 按 date_added 从新到旧稳定排序（相同时间保持服务端顺序）。
// 返回新切片，不改动入参。
func SortByRecency(list []Customer) []Customer {
	out := make([]Customer, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateAdded.After(out[j].DateAdded)
	})
	return out
}

// AttachVehicles 把车辆列表回写到主列表中对应的客户条目上。
// 找不到对应 id 时返回 false。
func AttachVehicles(list []Customer, customerID int, vs []vehicle.Vehicle) bool {
	for i := range list {
		if list[i].ID == customerID {
			list[i].Vehicles = vs
			return true
		}
	}
	return false
}

// IDs 提取 id 列表，顺序不变。
func IDs(list []Customer) []int {
	out := make([]int, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}
