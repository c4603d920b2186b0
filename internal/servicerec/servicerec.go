package servicerec

import (
	"encoding/json"
	"fmt"
)

// Type 保养项目类型（持久化为字符串）。
type Type string

const (
	TypeAlignment Type = "alignment" // 四轮定位
	TypeBalancing Type = "balancing" // 动平衡
	TypeOther     Type = "other"     // 两项同时勾选时的合并值
)

// Collapse 把勾选状态折算成提交值。
// 规则：两项都勾 → other；只勾一项 → 原样；一项都没勾 → ok=false。
func Collapse(alignment, balancing bool) (Type, bool) {
	switch {
	case alignment && balancing:
		return TypeOther, true
	case alignment:
		return TypeAlignment, true
	case balancing:
		return TypeBalancing, true
	default:
		return "", false
	}
}

// Record 一次保养记录。拉回来的记录一律视为已完成。
type Record struct {
	ID            int     `json:"id"`
	CustomerID    int     `json:"customer"`
	VehicleID     int     `json:"vehicle"`
	Type          Type    `json:"service_type"`
	Price         float64 `json:"price"`
	Kilometer     int     `json:"kilometer"`
	NextKilometer int     `json:"next_kilometer"`
	Description   string  `json:"description,omitempty"`
	ServiceDate   string  `json:"service_date"` // YYYY-MM-DD，提交时由客户端打当天日期
}

// DecodeList 容忍后端历史上出现过的几种列表包裹格式：
// 裸数组、{data:[...]}、{results:[...]}、{services:[...]}。
func DecodeList(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var bare []Record
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var envelope struct {
		Data     []Record `json:"data"`
		Results  []Record `json:"results"`
		Services []Record `json:"services"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unrecognized service list payload: %w", err)
	}
	switch {
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.Results != nil:
		return envelope.Results, nil
	case envelope.Services != nil:
		return envelope.Services, nil
	}
	return nil, fmt.Errorf("unrecognized service list payload")
}
