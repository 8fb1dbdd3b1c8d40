package main

// ===============================
// 新旧对比
// ===============================

// 评级阈值（基于平均值的额外延迟，单位 ms）
const (
	ratingExcellentMs = 5.0
	ratingGoodMs      = 15.0
	ratingFairMs      = 30.0
)

// percentChange 计算百分比变化，旧值不大于0时无意义
func percentChange(delta, old float64) (float64, bool) {
	if old <= 0 {
		return 0, false
	}
	return delta / old * 100, true
}

// rateAdditionalLatency 根据平均额外延迟评级
func rateAdditionalLatency(meanDeltaMs float64) string {
	switch {
	case meanDeltaMs < ratingExcellentMs:
		return "Excellent"
	case meanDeltaMs < ratingGoodMs:
		return "Good"
	case meanDeltaMs < ratingFairMs:
		return "Fair"
	default:
		return "Concerning"
	}
}

// Compare 将一对新旧汇总统计归约为对比结果
// 差值固定为 新 - 旧；任意一侧没有成功样本时 Comparable 为 false，
// 不会基于缺失数据计算差值
func Compare(env, endpointName, path, oldURL, newURL string, oldStats, newStats SummaryStats) ComparisonRecord {
	record := ComparisonRecord{
		Environment:  env,
		EndpointName: endpointName,
		Path:         path,
		OldURL:       oldURL,
		NewURL:       newURL,
		Old:          oldStats,
		New:          newStats,
	}

	if !oldStats.Defined || !newStats.Defined {
		return record
	}

	record.Comparable = true
	record.Delta = LatencyDelta{
		Mean:   newStats.MeanMs - oldStats.MeanMs,
		Median: newStats.MedianMs - oldStats.MedianMs,
		P95:    newStats.P95Ms - oldStats.P95Ms,
		P99:    newStats.P99Ms - oldStats.P99Ms,
	}

	record.Percent = make(map[string]float64)
	oldValues := map[string]float64{
		"mean":   oldStats.MeanMs,
		"median": oldStats.MedianMs,
		"p95":    oldStats.P95Ms,
		"p99":    oldStats.P99Ms,
	}
	deltas := map[string]float64{
		"mean":   record.Delta.Mean,
		"median": record.Delta.Median,
		"p95":    record.Delta.P95,
		"p99":    record.Delta.P99,
	}
	for metric, delta := range deltas {
		if pct, ok := percentChange(delta, oldValues[metric]); ok {
			record.Percent[metric] = pct
		}
	}

	record.Status = rateAdditionalLatency(record.Delta.Mean)
	return record
}
