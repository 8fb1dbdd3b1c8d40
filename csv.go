package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ===============================
// CSV 报告
// ===============================

// overallAssessment 汇总所有可对比记录，给出整体评估
func overallAssessment(records []ComparisonRecord) (avgDelta, maxDelta float64, assessment, risk string) {
	comparable := 0
	first := true
	for _, r := range records {
		if !r.Comparable {
			continue
		}
		avgDelta += r.Delta.Mean
		if first || r.Delta.Mean > maxDelta {
			maxDelta = r.Delta.Mean
			first = false
		}
		comparable++
	}

	if comparable == 0 {
		return 0, 0, "Unavailable - no comparable results", "UNKNOWN - measurement failed"
	}
	avgDelta /= float64(comparable)

	switch {
	case maxDelta < ratingGoodMs:
		assessment = "Excellent - All endpoints within acceptable ranges"
		risk = "LOW - No concerning performance degradation"
	case maxDelta < ratingFairMs:
		assessment = "Acceptable - Some endpoints show moderate overhead"
		risk = "MEDIUM - Monitor gateway latency after migration"
	default:
		assessment = "Concerning - Gateway overhead exceeds 30ms on some endpoints"
		risk = "HIGH - Investigate before proceeding with migration"
	}
	return avgDelta, maxDelta, assessment, risk
}

// writeCSV 写出单个CSV文件
func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 CSV 文件失败: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("写入 CSV 失败: %w", err)
	}
	return nil
}

// ExportCSV 导出CSV报告集（可直接导入 Excel / Google Sheets）
func ExportCSV(report *TestReport, outputDir string) ([]string, error) {
	csvDir := filepath.Join(outputDir, "reports", "csv")
	if err := os.MkdirAll(csvDir, 0755); err != nil {
		return nil, fmt.Errorf("创建 CSV 目录失败: %w", err)
	}

	records := report.Records()
	testDate := report.StartTime.Format("2006-01-02")
	avgDelta, maxDelta, assessment, risk := overallAssessment(records)

	var written []string

	// 1. 总览
	summaryPath := filepath.Join(csvDir, "executive_summary.csv")
	summaryRows := [][]string{
		{"Metric", "Value"},
		{"Test Date", testDate},
		{"Report Generated", time.Now().Format("2006-01-02 15:04:05")},
		{"Comparisons", fmt.Sprintf("%d", len(records))},
		{"Average Additional Latency (ms)", fmt.Sprintf("%.1f", avgDelta)},
		{"Maximum Additional Latency (ms)", fmt.Sprintf("%.1f", maxDelta)},
		{"Overall Assessment", assessment},
		{"Risk Level", risk},
	}
	if err := writeCSV(summaryPath, summaryRows); err != nil {
		return written, err
	}
	written = append(written, summaryPath)

	// 2. 详细结果
	detailPath := filepath.Join(csvDir, "detailed_results.csv")
	detailRows := [][]string{{
		"Environment", "Endpoint", "Old URL", "New URL",
		"Old Avg Latency (ms)", "New Avg Latency (ms)",
		"Additional Latency (ms)", "Percent Increase (%)",
		"Old P95 (ms)", "New P95 (ms)",
		"Requests Tested", "Successful (Old)", "Successful (New)",
		"Status", "Test Date",
	}}
	for _, r := range records {
		requests := r.Old.SuccessCount + r.Old.FailCount

		if !r.Comparable {
			detailRows = append(detailRows, []string{
				r.Environment, r.EndpointName, r.OldURL, r.NewURL,
				"-", "-", "-", "-", "-", "-",
				fmt.Sprintf("%d", requests),
				fmt.Sprintf("%d", r.Old.SuccessCount),
				fmt.Sprintf("%d", r.New.SuccessCount),
				"Unavailable", testDate,
			})
			continue
		}

		detailRows = append(detailRows, []string{
			r.Environment, r.EndpointName, r.OldURL, r.NewURL,
			fmt.Sprintf("%.1f", r.Old.MeanMs),
			fmt.Sprintf("%.1f", r.New.MeanMs),
			fmt.Sprintf("%+.1f", r.Delta.Mean),
			formatPercent(r, "mean"),
			fmt.Sprintf("%.1f", r.Old.P95Ms),
			fmt.Sprintf("%.1f", r.New.P95Ms),
			fmt.Sprintf("%d", requests),
			fmt.Sprintf("%d", r.Old.SuccessCount),
			fmt.Sprintf("%d", r.New.SuccessCount),
			r.Status, testDate,
		})
	}
	if err := writeCSV(detailPath, detailRows); err != nil {
		return written, err
	}
	written = append(written, detailPath)

	// 3. URL 映射
	mappingPath := filepath.Join(csvDir, "url_mapping.csv")
	mappingRows := [][]string{{"Environment", "Old URL (Direct)", "New URL (Edge Gateway)"}}
	seen := make(map[string]bool)
	for _, r := range records {
		key := r.Environment + "|" + r.OldURL + "|" + r.NewURL
		if seen[key] {
			continue
		}
		seen[key] = true
		mappingRows = append(mappingRows, []string{r.Environment, r.OldURL, r.NewURL})
	}
	if err := writeCSV(mappingPath, mappingRows); err != nil {
		return written, err
	}
	written = append(written, mappingPath)

	// 4. 指标对比
	comparisonPath := filepath.Join(csvDir, "performance_comparison.csv")
	comparisonRows := [][]string{{
		"Environment", "Endpoint", "Metric",
		"Old (ms)", "New (ms)", "Difference (ms)", "Percent Change (%)",
	}}
	for _, r := range records {
		if !r.Comparable {
			continue
		}
		metrics := []struct {
			label    string
			old, new float64
			delta    float64
			key      string
		}{
			{"Mean Latency", r.Old.MeanMs, r.New.MeanMs, r.Delta.Mean, "mean"},
			{"Median Latency", r.Old.MedianMs, r.New.MedianMs, r.Delta.Median, "median"},
			{"P95 Latency", r.Old.P95Ms, r.New.P95Ms, r.Delta.P95, "p95"},
			{"P99 Latency", r.Old.P99Ms, r.New.P99Ms, r.Delta.P99, "p99"},
		}
		for _, m := range metrics {
			comparisonRows = append(comparisonRows, []string{
				r.Environment, r.EndpointName, m.label,
				fmt.Sprintf("%.1f", m.old),
				fmt.Sprintf("%.1f", m.new),
				fmt.Sprintf("%+.1f", m.delta),
				formatPercent(r, m.key),
			})
		}
	}
	if err := writeCSV(comparisonPath, comparisonRows); err != nil {
		return written, err
	}
	written = append(written, comparisonPath)

	// 5. 建议
	recommendationsPath := filepath.Join(csvDir, "recommendations.csv")
	recommendationRows := [][]string{{"Priority", "Recommendation", "Rationale"}}
	recommendationRows = append(recommendationRows, buildRecommendations(avgDelta, maxDelta)...)
	if err := writeCSV(recommendationsPath, recommendationRows); err != nil {
		return written, err
	}
	written = append(written, recommendationsPath)

	return written, nil
}

// buildRecommendations 根据测量结果生成迁移建议
func buildRecommendations(avgDelta, maxDelta float64) [][]string {
	var rows [][]string

	switch {
	case maxDelta < ratingGoodMs:
		rows = append(rows, []string{"HIGH", "PROCEED with migration",
			fmt.Sprintf("All endpoints show additional latency below %.0fms", ratingGoodMs)})
	case maxDelta < ratingFairMs:
		rows = append(rows, []string{"HIGH", "PROCEED with caution",
			fmt.Sprintf("Worst endpoint adds %.1fms through the gateway", maxDelta)})
	default:
		rows = append(rows, []string{"HIGH", "HOLD migration and investigate gateway overhead",
			fmt.Sprintf("Worst endpoint adds %.1fms, average %.1fms", maxDelta, avgDelta)})
	}

	rows = append(rows,
		[]string{"MEDIUM", "Set up ongoing latency monitoring",
			"Proactive monitoring will catch performance degradation after cutover"},
		[]string{"MEDIUM", "Re-run with authenticated business endpoints",
			"Health check results may not represent full API performance"},
		[]string{"LOW", "Repeat the test during peak hours",
			"Gateway overhead may vary with load and time of day"},
	)

	return rows
}
