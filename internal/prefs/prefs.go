package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// 偏好键。全部按字符串存储，与后端无关。
const (
	KeyLanguage        = "language"
	KeyServiceInterval = "service_interval"
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
)

const (
	defaultLanguage        = "en"
	defaultServiceInterval = 5000
)

// Store 文件型 key-value 偏好存储。
// 只存少量标量（语言、保养间隔、token），实体数据一概不落地。
// 以显式注入的方式传给需要的控制器，不做包级全局读。
type Store struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// Open 打开（或初始化）偏好文件。文件不存在时返回空存储。
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs path is empty")
	}

	s := &Store{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("failed to parse prefs file: %w", err)
		}
	}
	return s, nil
}

// Get 读取原始字符串值，缺失时返回空串。
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set 写入并立刻持久化。
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

// flushLocked 持久化到磁盘，偏好里有 token，权限收紧到 0600。
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Language 界面语言，默认 en。
func (s *Store) Language() string {
	if v := s.Get(KeyLanguage); v != "" {
		return v
	}
	return defaultLanguage
}

func (s *Store) SetLanguage(lang string) error {
	return s.Set(KeyLanguage, lang)
}

// ServiceInterval 保养间隔（公里）。存的是字符串，解析失败时退回默认值。
func (s *Store) ServiceInterval() int {
	v := s.Get(KeyServiceInterval)
	if v == "" {
		return defaultServiceInterval
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultServiceInterval
	}
	return n
}

func (s *Store) SetServiceInterval(km int) error {
	if km <= 0 {
		return fmt.Errorf("service interval must be positive")
	}
	return s.Set(KeyServiceInterval, strconv.Itoa(km))
}

// AccessToken 实现 httpx.TokenSource。
func (s *Store) AccessToken() string {
	return s.Get(KeyAccessToken)
}

func (s *Store) RefreshToken() string {
	return s.Get(KeyRefreshToken)
}

// SetTokens 保存会话 token 对。
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyAccessToken] = access
	s.values[KeyRefreshToken] = refresh
	return s.flushLocked()
}

// ClearTokens 登出时清空会话。
func (s *Store) ClearTokens() error {
	return s.SetTokens("", "")
}
