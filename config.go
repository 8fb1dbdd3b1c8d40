package main

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ===============================
// 配置加载模块
// ===============================

// 默认配置文件路径
const defaultConfigPath = "config.yaml"

// Config 运行时配置
type Config struct {
	Protocol     Protocol      // 强制使用的HTTP协议版本
	RequestCount int           // 每个端点的采样次数
	Warmup       int           // 预热请求次数
	Timeout      time.Duration // 单次请求超时
	Interval     time.Duration // 请求间隔

	Environments map[string]Environment // 按环境名索引的URL映射
	Endpoints    []EndpointSpec         // 待测试的端点列表

	// 输出配置
	OutputDir   string // 输出目录
	EnableLog   bool   // 是否启用日志文件
	EnableJSON  bool   // 是否生成 JSON 结果
	EnableCSV   bool   // 是否生成 CSV 报告
	EnableExcel bool   // 是否生成 Excel 报告
}

// Environment 单个环境的新旧URL与测试数据
type Environment struct {
	OldURL     string // 旧的直连地址
	NewURL     string // 新的网关地址
	CustomerID string // 路径模板参数
	VentureID  string // 路径模板参数
}

// EndpointSpec 端点配置
type EndpointSpec struct {
	Name         string // 名称（用于显示）
	Path         string // 路径模板，支持 {customer_id} / {venture_id} 占位符
	AuthRequired bool   // 是否携带 Authorization 头
}

// Protocol 协议类型
type Protocol int

const (
	HTTP1 Protocol = iota
	HTTP2
	HTTP3
)

func (p Protocol) String() string {
	switch p {
	case HTTP1:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	case HTTP3:
		return "HTTP/3"
	default:
		return "Unknown"
	}
}

// parseProtocol 解析协议字符串
func parseProtocol(s string) Protocol {
	switch s {
	case "HTTP/3", "http3", "h3":
		return HTTP3
	case "HTTP/2", "http2", "h2":
		return HTTP2
	default:
		return HTTP1
	}
}

// EnvironmentNames 返回排序后的环境名列表
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpandPath 将路径模板中的占位符替换为该环境的测试数据
func (e Environment) ExpandPath(path string) string {
	path = strings.ReplaceAll(path, "{customer_id}", e.CustomerID)
	path = strings.ReplaceAll(path, "{venture_id}", e.VentureID)
	return path
}

// ===============================
// YAML 配置结构
// ===============================

type yamlConfig struct {
	Protocol     string `yaml:"protocol"`
	RequestCount int    `yaml:"request_count"`
	Warmup       int    `yaml:"warmup"`
	Timeout      string `yaml:"timeout"`
	Interval     string `yaml:"interval"`

	Environments map[string]struct {
		OldURL     string `yaml:"old_url"`
		NewURL     string `yaml:"new_url"`
		CustomerID string `yaml:"customer_id"`
		VentureID  string `yaml:"venture_id"`
	} `yaml:"environments"`

	Endpoints []struct {
		Name         string `yaml:"name"`
		Path         string `yaml:"path"`
		AuthRequired bool   `yaml:"auth_required"`
	} `yaml:"endpoints"`

	Output struct {
		Dir         string `yaml:"dir"`
		EnableLog   bool   `yaml:"enable_log"`
		EnableJSON  bool   `yaml:"enable_json"`
		EnableCSV   bool   `yaml:"enable_csv"`
		EnableExcel bool   `yaml:"enable_excel"`
	} `yaml:"output"`
}

// LoadConfig 从 YAML 文件加载配置并校验
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg := &Config{
		Protocol:     parseProtocol(yc.Protocol),
		RequestCount: yc.RequestCount,
		Warmup:       yc.Warmup,
		Environments: make(map[string]Environment, len(yc.Environments)),
		OutputDir:    yc.Output.Dir,
		EnableLog:    yc.Output.EnableLog,
		EnableJSON:   yc.Output.EnableJSON,
		EnableCSV:    yc.Output.EnableCSV,
		EnableExcel:  yc.Output.EnableExcel,
	}

	// 解析超时时间
	cfg.Timeout, err = time.ParseDuration(yc.Timeout)
	if err != nil {
		cfg.Timeout = 10 * time.Second
	}

	// 解析请求间隔
	cfg.Interval, err = time.ParseDuration(yc.Interval)
	if err != nil {
		cfg.Interval = 100 * time.Millisecond
	}

	for name, env := range yc.Environments {
		cfg.Environments[name] = Environment{
			OldURL:     env.OldURL,
			NewURL:     env.NewURL,
			CustomerID: env.CustomerID,
			VentureID:  env.VentureID,
		}
	}

	for _, ep := range yc.Endpoints {
		cfg.Endpoints = append(cfg.Endpoints, EndpointSpec{
			Name:         ep.Name,
			Path:         ep.Path,
			AuthRequired: ep.AuthRequired,
		})
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 校验配置，任何问题都在发起网络请求之前报出
func (c *Config) Validate() error {
	if c.RequestCount <= 0 {
		return fmt.Errorf("采样次数必须为正数: %d", c.RequestCount)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("预热次数不能为负数: %d", c.Warmup)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("请求超时必须为正数: %s", c.Timeout)
	}
	if c.Interval < 0 {
		return fmt.Errorf("请求间隔不能为负数: %s", c.Interval)
	}
	if len(c.Environments) == 0 {
		return fmt.Errorf("至少需要配置一个环境")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("至少需要配置一个端点")
	}

	for name, env := range c.Environments {
		if err := validateBaseURL(env.OldURL); err != nil {
			return fmt.Errorf("环境 %s 的 old_url 无效: %w", name, err)
		}
		if err := validateBaseURL(env.NewURL); err != nil {
			return fmt.Errorf("环境 %s 的 new_url 无效: %w", name, err)
		}

		// 路径模板用到的占位符必须有对应的测试数据
		for _, ep := range c.Endpoints {
			if strings.Contains(ep.Path, "{customer_id}") && env.CustomerID == "" {
				return fmt.Errorf("环境 %s 缺少 customer_id（端点 %s 需要）", name, ep.Name)
			}
			if strings.Contains(ep.Path, "{venture_id}") && env.VentureID == "" {
				return fmt.Errorf("环境 %s 缺少 venture_id（端点 %s 需要）", name, ep.Name)
			}
		}
	}

	for _, ep := range c.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("端点名称不能为空")
		}
		if !strings.HasPrefix(ep.Path, "/") {
			return fmt.Errorf("端点 %s 的路径必须以 / 开头: %s", ep.Name, ep.Path)
		}
	}

	return nil
}

// validateBaseURL 校验必须是绝对的 HTTPS 地址
func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("地址不能为空")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("地址解析失败: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("必须使用 https 协议: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("缺少主机名: %s", raw)
	}
	return nil
}

// Environment 按名称查找环境，未知环境名视为配置错误
func (c *Config) Environment(name string) (Environment, error) {
	env, ok := c.Environments[name]
	if !ok {
		return Environment{}, fmt.Errorf("未知的环境: %s（可用: %s）", name, strings.Join(c.EnvironmentNames(), ", "))
	}
	return env, nil
}
