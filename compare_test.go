package main

import (
	"math"
	"testing"
)

func definedStats(mean, median, p95, p99 float64) SummaryStats {
	return SummaryStats{
		SuccessCount: 10,
		Defined:      true,
		MeanMs:       mean,
		MedianMs:     median,
		P95Ms:        p95,
		P99Ms:        p99,
	}
}

// 差值符号固定为 新 - 旧：旧均值100ms、新均值113.8ms 时额外延迟为 +13.8ms (+13.8%)
func TestCompareDeltaSign(t *testing.T) {
	oldStats := definedStats(100, 98, 120, 130)
	newStats := definedStats(113.8, 110, 135, 150)

	record := Compare("dev", "Health Check", "/health-check", "https://old", "https://new", oldStats, newStats)

	if !record.Comparable {
		t.Fatal("expected comparable record")
	}
	if math.Abs(record.Delta.Mean-13.8) > 1e-9 {
		t.Errorf("delta mean = %v, want 13.8", record.Delta.Mean)
	}
	pct, ok := record.Percent["mean"]
	if !ok {
		t.Fatal("percent change for mean should be defined")
	}
	if math.Abs(pct-13.8) > 1e-9 {
		t.Errorf("percent mean = %v, want 13.8", pct)
	}
}

func TestCompareNegativeDeltaMeansFaster(t *testing.T) {
	oldStats := definedStats(206.3, 205, 207.8, 210)
	newStats := definedStats(205.0, 204, 209.2, 211)

	record := Compare("dev", "Health Check", "/health-check", "https://old", "https://new", oldStats, newStats)

	if record.Delta.Mean >= 0 {
		t.Errorf("delta mean = %v, want negative (new side faster)", record.Delta.Mean)
	}
	if record.Status != "Excellent" {
		t.Errorf("status = %q, want Excellent", record.Status)
	}
}

// 任意一侧没有成功样本时对比必须标记为不可用，而不是算出误导性的差值
func TestCompareUndefinedPropagation(t *testing.T) {
	oldStats := definedStats(100, 100, 100, 100)
	failedStats := SummaryStats{FailCount: 30}

	record := Compare("prod", "Brands Data", "/v1/brands", "https://old", "https://new", oldStats, failedStats)

	if record.Comparable {
		t.Fatal("record must not be comparable when one side has no successes")
	}
	if record.Percent != nil {
		t.Error("percent map should be absent for incomparable record")
	}
	if record.Status != "" {
		t.Errorf("status = %q, want empty", record.Status)
	}
	// 计数仍然要保留，读者需要区分"变慢"和"不可达"
	if record.New.FailCount != 30 {
		t.Errorf("fail count = %d, want 30", record.New.FailCount)
	}
}

func TestPercentChangeUndefinedForZeroOld(t *testing.T) {
	if _, ok := percentChange(5, 0); ok {
		t.Error("percent change must be undefined when old value is 0")
	}
	if pct, ok := percentChange(6.5, 213.4); !ok || math.Abs(pct-6.5/213.4*100) > 1e-9 {
		t.Errorf("percent change = %v (ok=%v)", pct, ok)
	}
}

func TestRateAdditionalLatency(t *testing.T) {
	cases := []struct {
		delta float64
		want  string
	}{
		{-1.2, "Excellent"},
		{4.9, "Excellent"},
		{8.8, "Good"},
		{13.8, "Good"},
		{29.9, "Fair"},
		{30.0, "Concerning"},
	}
	for _, c := range cases {
		if got := rateAdditionalLatency(c.delta); got != c.want {
			t.Errorf("rate(%v) = %q, want %q", c.delta, got, c.want)
		}
	}
}
