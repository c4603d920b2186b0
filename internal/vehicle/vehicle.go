package vehicle

import "strings"

// Vehicle 客户名下登记的车辆，客户端持有的是远端数据的临时副本。
type Vehicle struct {
	ID          int    `json:"id"`
	CustomerID  int    `json:"customer"`
	Number      string `json:"vehicle_number"`
	Model       string `json:"vehicle_model"`
	Type        string `json:"vehicle_type"`
	DisplayName string `json:"display_name"`
}

// FilterByPlate 按车牌大小写不敏感子串过滤。
func FilterByPlate(list []Vehicle, query string) []Vehicle {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	out := make([]Vehicle, 0)
	for _, v := range list {
		if strings.Contains(strings.ToLower(v.Number), query) {
			out = append(out, v)
		}
	}
	return out
}

// OwnerIDs 取去重后的车主 id，保持首次出现的顺序。
func OwnerIDs(list []Vehicle) []int {
	seen := make(map[int]bool, len(list))
	out := make([]int, 0, len(list))
	for _, v := range list {
		if seen[v.CustomerID] {
			continue
		}
		seen[v.CustomerID] = true
		out = append(out, v.CustomerID)
	}
	return out
}

// GroupByOwner 按车主 id 分组。
func GroupByOwner(list []Vehicle) map[int][]Vehicle {
	out := make(map[int][]Vehicle, len(list))
	for _, v := range list {
		out[v.CustomerID] = append(out[v.CustomerID], v)
	}
	return out
}
