package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ===============================
// 结果导出模块
// ===============================

// TestReport 完整测试报告
type TestReport struct {
	StartTime time.Time     `json:"start_time"` // 测试开始时间
	EndTime   time.Time     `json:"end_time"`   // 测试结束时间
	Duration  time.Duration `json:"duration"`   // 总耗时
	Config    ReportConfig  `json:"config"`     // 测试配置快照
	Runs      []EndpointRun `json:"results"`    // 按 (环境, 端点) 的对比结果
}

// ReportConfig 配置快照（用于报告）
type ReportConfig struct {
	Protocol     string   `json:"protocol"`
	RequestCount int      `json:"request_count"`
	Warmup       int      `json:"warmup"`
	Environments []string `json:"environments"`
	Endpoints    []string `json:"endpoints"`
}

// NewTestReport 创建新的测试报告
func NewTestReport(startTime time.Time, cfg Config) *TestReport {
	endpoints := make([]string, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		endpoints[i] = ep.Name
	}

	return &TestReport{
		StartTime: startTime,
		Config: ReportConfig{
			Protocol:     cfg.Protocol.String(),
			RequestCount: cfg.RequestCount,
			Warmup:       cfg.Warmup,
			Environments: cfg.EnvironmentNames(),
			Endpoints:    endpoints,
		},
	}
}

// AddRuns 追加一批端点测试结果
func (r *TestReport) AddRuns(runs []EndpointRun) {
	r.Runs = append(r.Runs, runs...)
}

// Records 返回全部对比记录（不含原始样本）
func (r *TestReport) Records() []ComparisonRecord {
	records := make([]ComparisonRecord, len(r.Runs))
	for i, run := range r.Runs {
		records[i] = run.ComparisonRecord
	}
	return records
}

// Finalize 完成报告
func (r *TestReport) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// ExportJSON 导出 JSON 格式结果
func ExportJSON(report *TestReport, outputDir string) (string, error) {
	reportDir := filepath.Join(outputDir, "reports")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	timestamp := report.StartTime.Format("2006-01-02_15-04-05")
	filePath := filepath.Join(reportDir, fmt.Sprintf("%s.json", timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("JSON 序列化失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("写入 JSON 文件失败: %w", err)
	}

	return filePath, nil
}

// LoadReport 读取之前导出的 JSON 结果
// report 子命令用它来离线重新生成 CSV/Excel 报告
func LoadReport(path string) (*TestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取结果文件失败: %w", err)
	}

	var report TestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("解析结果文件失败: %w", err)
	}

	return &report, nil
}
