package main

import (
	"context"
	"net/http"
)

// ===============================
// 测试驱动
// ===============================

// EndpointRun 单个端点的完整测试结果（对比 + 原始样本）
type EndpointRun struct {
	ComparisonRecord
	RawOld SampleSet `json:"raw_old,omitempty"`
	RawNew SampleSet `json:"raw_new,omitempty"`
}

// Tester 按 (环境, 端点) 逐对执行新旧对比
type Tester struct {
	cfg    *Config
	token  string
	client *http.Client
	logger *Logger
}

// NewTester 创建测试驱动
// 新旧两侧共用一个客户端但严格串行执行，
// 避免并发争抢连接池导致一侧的测量被另一侧干扰
func NewTester(cfg *Config, token string, logger *Logger) *Tester {
	return &Tester{
		cfg:    cfg,
		token:  token,
		client: newClient(cfg.Protocol, cfg.Timeout),
		logger: logger,
	}
}

// RunEnvironment 对一个环境的所有端点执行新旧对比
func (t *Tester) RunEnvironment(ctx context.Context, envName string) ([]EndpointRun, error) {
	env, err := t.cfg.Environment(envName)
	if err != nil {
		return nil, err
	}

	t.logger.LogEnvironment(envName, env)

	var runs []EndpointRun
	for _, ep := range t.cfg.Endpoints {
		t.logger.Section("端点: " + ep.Name)

		if ep.AuthRequired && t.token == "" {
			t.logger.Printf("⚠️  端点需要认证但未提供 token，可能收到 401/403\n")
		}

		run := t.compareEndpoint(ctx, envName, env, ep)
		runs = append(runs, run)

		printEndpointTable(t.logger, run.ComparisonRecord)
	}

	return runs, nil
}

// compareEndpoint 对单个端点先测旧地址再测新地址，然后归约对比
func (t *Tester) compareEndpoint(ctx context.Context, envName string, env Environment, ep EndpointSpec) EndpointRun {
	path := env.ExpandPath(ep.Path)
	oldURL := env.OldURL + path
	newURL := env.NewURL + path

	headers := make(map[string]string)
	if ep.AuthRequired && t.token != "" {
		headers["Authorization"] = "Bearer " + t.token
	}

	sampler := &Sampler{
		Client:   t.client,
		Headers:  headers,
		Count:    t.cfg.RequestCount,
		Warmup:   t.cfg.Warmup,
		Interval: t.cfg.Interval,
		Timeout:  t.cfg.Timeout,
	}

	t.logger.Printf("\n📊 测试旧地址 %s ...\n", oldURL)
	oldSamples := sampler.Run(ctx, oldURL, t.logger)

	t.logger.Printf("\n📊 测试新地址 %s ...\n", newURL)
	newSamples := sampler.Run(ctx, newURL, t.logger)

	oldStats := Summarize(oldSamples)
	newStats := Summarize(newSamples)

	t.logger.Println()
	t.logger.LogRunSummary("旧地址", oldStats)
	t.logger.LogRunSummary("新地址", newStats)

	record := Compare(envName, ep.Name, path, oldURL, newURL, oldStats, newStats)
	if !record.Comparable {
		t.logger.Printf("  ⚠️  一侧没有成功样本，无法计算额外延迟\n")
	}

	return EndpointRun{
		ComparisonRecord: record,
		RawOld:           oldSamples,
		RawNew:           newSamples,
	}
}
